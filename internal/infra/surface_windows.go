//go:build windows

package infra

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/layout"
)

const (
	surfaceTitle = "dwmlock"
	eventBuffer  = 256
)

// surfaceFactory opens the full-screen lock window.
type surfaceFactory struct {
	ui     *uiThread
	logger *zap.Logger
}

func (f *surfaceFactory) Open(width, height int, source domain.SnapshotSource) (domain.Surface, error) {
	s := &surface{
		ui:       f.ui,
		width:    width,
		height:   height,
		source:   source,
		settings: layout.SettingsButton(width, height),
		events:   newEventQueue(eventBuffer),
		logger:   f.logger,
	}

	var err error
	f.ui.Do(func() {
		s.hwnd, err = f.ui.createPopup(surfaceClass, surfaceTitle, rect{Right: int32(width), Bottom: int32(height)}, s)
	})
	if err != nil {
		return nil, fmt.Errorf("create lock window: %w", err)
	}
	return s, nil
}

// surface is the lock window. Message handling runs on the UI thread; the
// exported methods may be called from the dispatcher goroutine.
type surface struct {
	ui       *uiThread
	hwnd     uintptr
	width    int
	height   int
	source   domain.SnapshotSource
	settings domain.Rect

	events    *eventQueue
	closing   atomic.Bool
	closeOnce sync.Once

	// UI thread only
	cursorHidden bool
	pinned       bool

	logger *zap.Logger
}

func (s *surface) Events() <-chan domain.Event {
	return s.events.Events()
}

func (s *surface) center() (int32, int32) {
	return int32(s.width / 2), int32(s.height / 2)
}

func (s *surface) Refocus() {
	s.ui.Post(func() {
		if s.closing.Load() {
			return
		}
		procSetForegroundWindow.Call(s.hwnd)
		procSetFocus.Call(s.hwnd)
		if !s.cursorHidden {
			procShowCursor.Call(0)
			s.cursorHidden = true
		}
		cx, cy := s.center()
		clip := rect{Left: cx, Top: cy, Right: cx + 1, Bottom: cy + 1}
		procClipCursor.Call(uintptr(unsafe.Pointer(&clip)))
		procSetCursorPos.Call(uintptr(cx), uintptr(cy))
		s.pinned = true
	})
}

func (s *surface) Release() {
	s.ui.Do(func() {
		procClipCursor.Call(0)
		if s.cursorHidden {
			procShowCursor.Call(1)
			s.cursorHidden = false
		}
		s.pinned = false
	})
}

func (s *surface) Invalidate() {
	procInvalidateRect.Call(s.hwnd, 0, 0)
}

// Close destroys the window on the UI thread. Events is closed once the
// window is gone.
func (s *surface) Close() error {
	err := errors.New("lock surface already closed")
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		r, _, perr := procPostMessageW.Call(s.hwnd, wmClose, 0, 0)
		if r == 0 {
			err = fmt.Errorf("post close: %w", perr)
			return
		}
		err = nil
	})
	return err
}

// emit never blocks the UI thread.
func (s *surface) emit(ev domain.Event) {
	s.events.push(ev)
}

func (s *surface) handle(hwnd uintptr, message uint32, wparam, lparam uintptr) (uintptr, bool) {
	switch message {
	case wmChar:
		s.emit(domain.Event{Kind: domain.EventChar, Char: rune(wparam)})
		return 0, true

	case wmMouseMove:
		x, y := lParamPoint(lparam)
		cx, cy := s.center()
		if s.pinned && x == int(cx) && y == int(cy) {
			// echo of our own SetCursorPos
			return 0, true
		}
		s.emit(domain.Event{Kind: domain.EventPointerMove, X: x, Y: y})
		return 0, true

	case wmLButtonDown:
		x, y := lParamPoint(lparam)
		if s.settings.Contains(x, y) {
			s.emit(domain.Event{Kind: domain.EventSettingsRequested, X: x, Y: y})
		} else {
			s.emit(domain.Event{Kind: domain.EventPointerMove, X: x, Y: y})
		}
		return 0, true

	case wmEraseBkgnd:
		return 1, true

	case wmPaint:
		var ps paintStruct
		hdc, _, _ := procBeginPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
		if hdc != 0 {
			paintSnapshot(hdc, s.source.Snapshot(), time.Now())
		}
		procEndPaint.Call(hwnd, uintptr(unsafe.Pointer(&ps)))
		return 0, true

	case wmClose:
		if !s.closing.Load() {
			// Alt+F4 and friends do not end the lock
			return 0, true
		}
		destroyWindow(hwnd)
		return 0, true

	case wmDestroy:
		s.logger.Debug("lock window destroyed")
		s.emit(domain.Event{Kind: domain.EventClosed})
		s.events.close()
		return 0, true
	}
	return 0, false
}
