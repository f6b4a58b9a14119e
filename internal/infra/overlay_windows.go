//go:build windows

package infra

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/layout"
)

// overlayManager blanks secondary monitors with opaque black windows.
type overlayManager struct {
	ui     *uiThread
	logger *zap.Logger
}

type overlayWindow struct {
	showText bool
	width    int
	height   int
}

func (o *overlayWindow) handle(hwnd uintptr, message uint32, _, _ uintptr) (uintptr, bool) {
	switch message {
	case wmPaint:
		var ps paintStruct
		hdc, _, _ := procBeginPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
		if hdc != 0 && o.showText {
			drawText(hdc, layout.Text{
				Rect:   domain.Rect{Right: o.width, Bottom: o.height},
				Text:   layout.OverlayLabel,
				Size:   28,
				Weight: layout.WeightMedium,
				Color:  layout.ColorOverlayText,
				Face:   layout.PrimaryFont,
			})
		}
		procEndPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
		return 0, true
	case wmClose:
		// only Destroy removes an overlay
		return 0, true
	}
	return 0, false
}

func (m *overlayManager) Spawn(targets []domain.MonitorDescriptor, showText bool) ([]domain.OverlayHandle, error) {
	var (
		handles []domain.OverlayHandle
		err     error
	)
	m.ui.Do(func() {
		for _, t := range targets {
			win := &overlayWindow{showText: showText, width: t.Bounds.Width(), height: t.Bounds.Height()}
			bounds := rect{
				Left:   int32(t.Bounds.Left),
				Top:    int32(t.Bounds.Top),
				Right:  int32(t.Bounds.Right),
				Bottom: int32(t.Bounds.Bottom),
			}
			hwnd, cerr := m.ui.createPopup(overlayClass, "", bounds, win)
			if cerr != nil {
				for _, h := range handles {
					destroyWindow(uintptr(h))
				}
				handles = nil
				err = fmt.Errorf("create overlay on %s: %w", t.Name, cerr)
				return
			}
			handles = append(handles, domain.OverlayHandle(hwnd))
		}
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("overlays spawned", zap.Int("count", len(handles)))
	return handles, nil
}

func (m *overlayManager) Destroy(handles []domain.OverlayHandle) {
	if len(handles) == 0 {
		return
	}
	m.ui.Do(func() {
		for _, h := range handles {
			if h == 0 {
				continue
			}
			v, ok := handlers.Load(uintptr(h))
			if !ok {
				continue
			}
			if _, isOverlay := v.(*overlayWindow); !isOverlay {
				continue
			}
			destroyWindow(uintptr(h))
		}
	})
}
