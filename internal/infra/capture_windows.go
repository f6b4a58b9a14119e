//go:build windows

package infra

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// screenCapturer copies the primary screen into a top-down 32-bit frame.
type screenCapturer struct{}

func (screenCapturer) Capture() (*domain.Frame, error) {
	w, _, _ := procGetSystemMetrics.Call(smCxScreen)
	h, _, _ := procGetSystemMetrics.Call(smCyScreen)
	width, height := int(int32(w)), int(int32(h))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("primary screen has no size (%dx%d)", width, height)
	}

	screen, _, err := procGetDC.Call(0)
	if screen == 0 {
		return nil, fmt.Errorf("GetDC: %w", err)
	}
	defer procReleaseDC.Call(0, screen)

	mem, _, err := procCreateCompatibleDC.Call(screen)
	if mem == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC: %w", err)
	}
	defer procDeleteDC.Call(mem)

	bmp, _, err := procCreateCompatibleBitmap.Call(screen, uintptr(width), uintptr(height))
	if bmp == 0 {
		return nil, fmt.Errorf("CreateCompatibleBitmap: %w", err)
	}
	defer procDeleteObject.Call(bmp)

	old, _, _ := procSelectObject.Call(mem, bmp)
	ok, _, err := procBitBlt.Call(mem, 0, 0, uintptr(width), uintptr(height), screen, 0, 0, srcCopy|captureBlt)
	// GetDIBits requires the bitmap deselected.
	procSelectObject.Call(mem, old)
	if ok == 0 {
		return nil, fmt.Errorf("BitBlt: %w", err)
	}

	frame := &domain.Frame{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*domain.BytesPerPixel),
	}
	bi := topDownHeader(width, height)
	lines, _, err := procGetDIBits.Call(
		mem, bmp, 0, uintptr(height),
		uintptr(unsafe.Pointer(&frame.Pixels[0])),
		uintptr(unsafe.Pointer(&bi)),
		dibRGBColors,
	)
	if int(lines) != height {
		return nil, fmt.Errorf("GetDIBits copied %d of %d lines: %w", lines, height, err)
	}
	return frame, nil
}

// monitorEnumerator lists attached displays through EnumDisplayMonitors.
type monitorEnumerator struct{}

var (
	monitorMu    sync.Mutex
	monitorFound []domain.MonitorDescriptor

	monitorProcPtr = sync.OnceValue(func() uintptr {
		return windows.NewCallback(monitorProc)
	})
)

func monitorProc(hmon, _, _, _ uintptr) uintptr {
	var info monitorInfoEx
	info.Size = uint32(unsafe.Sizeof(info))
	if ok, _, _ := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&info))); ok == 0 {
		return 1
	}
	monitorFound = append(monitorFound, domain.MonitorDescriptor{
		Name: windows.UTF16ToString(info.Device[:]),
		Bounds: domain.Rect{
			Left:   int(info.Monitor.Left),
			Top:    int(info.Monitor.Top),
			Right:  int(info.Monitor.Right),
			Bottom: int(info.Monitor.Bottom),
		},
	})
	return 1
}

func (monitorEnumerator) Monitors() ([]domain.MonitorDescriptor, error) {
	monitorMu.Lock()
	defer monitorMu.Unlock()

	monitorFound = nil
	ok, _, err := procEnumDisplayMonitors.Call(0, 0, monitorProcPtr(), 0)
	if ok == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors: %w", err)
	}
	out := monitorFound
	monitorFound = nil
	return out, nil
}
