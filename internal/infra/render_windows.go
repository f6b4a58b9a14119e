//go:build windows

package infra

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/layout"
)

const gradientBands = 48

// paintSnapshot draws the frozen frame and the unlock panel into hdc through
// an off-screen bitmap.
func paintSnapshot(hdc uintptr, snap domain.Snapshot, now time.Time) {
	w, h := snap.Frame.Width, snap.Frame.Height
	if !snap.Frame.Valid() {
		return
	}

	mem, _, _ := procCreateCompatibleDC.Call(hdc)
	if mem == 0 {
		return
	}
	defer procDeleteDC.Call(mem)
	bmp, _, _ := procCreateCompatibleBitmap.Call(hdc, uintptr(w), uintptr(h))
	if bmp == 0 {
		return
	}
	defer procDeleteObject.Call(bmp)
	old, _, _ := procSelectObject.Call(mem, bmp)
	defer procSelectObject.Call(mem, old)

	bi := topDownHeader(w, h)
	procStretchDIBits.Call(
		mem,
		0, 0, uintptr(w), uintptr(h),
		0, 0, uintptr(w), uintptr(h),
		uintptr(unsafe.Pointer(&snap.Frame.Pixels[0])),
		uintptr(unsafe.Pointer(&bi)),
		dibRGBColors, srcCopy,
	)

	drawPanel(mem, layout.Compute(snap, now))

	procBitBlt.Call(hdc, 0, 0, uintptr(w), uintptr(h), mem, 0, 0, srcCopy)
}

func drawPanel(hdc uintptr, p layout.Panel) {
	for _, band := range layout.Gradient(p.Rect, p.Background.Top, p.Background.Bottom, gradientBands) {
		fillRect(hdc, band.Rect, band.Color)
	}

	accent := p.Rect
	accent.Bottom = accent.Top + max(int(4*p.Scale), 2)
	fillRect(hdc, accent, p.Background.Accent)

	frameRect(hdc, p.Rect, p.Background.Border)
	if p.Divider != nil {
		fillRect(hdc, *p.Divider, layout.ColorDivider)
	}
	for _, t := range p.Texts {
		if t.HasFill {
			fillRect(hdc, t.Rect, t.Fill)
		}
		drawText(hdc, t)
	}
}

func toRect(r domain.Rect) rect {
	return rect{Left: int32(r.Left), Top: int32(r.Top), Right: int32(r.Right), Bottom: int32(r.Bottom)}
}

func fillRect(hdc uintptr, r domain.Rect, color uint32) {
	brush, _, _ := procCreateSolidBrush.Call(uintptr(color))
	if brush == 0 {
		return
	}
	defer procDeleteObject.Call(brush)
	rc := toRect(r)
	procFillRect.Call(hdc, uintptr(unsafe.Pointer(&rc)), brush)
}

func frameRect(hdc uintptr, r domain.Rect, color uint32) {
	brush, _, _ := procCreateSolidBrush.Call(uintptr(color))
	if brush == 0 {
		return
	}
	defer procDeleteObject.Call(brush)
	rc := toRect(r)
	procFrameRect.Call(hdc, uintptr(unsafe.Pointer(&rc)), brush)
}

func drawText(hdc uintptr, t layout.Text) {
	font, _, _ := procCreateFontW.Call(
		uintptr(int32(-t.Size)), 0, 0, 0,
		uintptr(t.Weight), 0, 0, 0,
		defaultCharset, 0, 0, cleartypeQuality, 0,
		uintptr(unsafe.Pointer(utf16Ptr(t.Face))),
	)
	if font != 0 {
		old, _, _ := procSelectObject.Call(hdc, font)
		defer func() {
			procSelectObject.Call(hdc, old)
			procDeleteObject.Call(font)
		}()
	}

	procSetTextColor.Call(hdc, uintptr(t.Color))
	procSetBkMode.Call(hdc, transparent)

	text, err := windows.UTF16FromString(t.Text)
	if err != nil || len(text) < 2 {
		return
	}
	rc := toRect(t.Rect)
	procDrawTextW.Call(
		hdc,
		uintptr(unsafe.Pointer(&text[0])),
		uintptr(len(text)-1),
		uintptr(unsafe.Pointer(&rc)),
		dtCenter|dtVCenter|dtSingleLine|dtNoPrefix,
	)
}
