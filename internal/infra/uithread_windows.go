//go:build windows

package infra

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
	"go.uber.org/zap"
)

const (
	dispatchClass = "dwmlockDispatch"
	surfaceClass  = "dwmlockSurface"
	overlayClass  = "dwmlockOverlay"

	wmRunCalls = wmApp + 1
)

// windowHandler receives the messages of one window owned by dwmlock.
type windowHandler interface {
	handle(hwnd uintptr, message uint32, wparam, lparam uintptr) (uintptr, bool)
}

var (
	handlers sync.Map // hwnd -> windowHandler

	wndProcPtr = sync.OnceValue(func() uintptr {
		return windows.NewCallback(wndProc)
	})
)

func wndProc(hwnd, message, wparam, lparam uintptr) uintptr {
	if h, ok := handlers.Load(hwnd); ok {
		if r, handled := h.(windowHandler).handle(hwnd, uint32(message), wparam, lparam); handled {
			return r
		}
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, message, wparam, lparam)
	return r
}

// uiThread owns every window and the keyboard hook. Win32 ties both to the
// creating thread, which must keep pumping messages.
type uiThread struct {
	dispatcher uintptr
	instance   uintptr

	mu    sync.Mutex
	calls []func()

	logger *zap.Logger
}

func startUIThread(logger *zap.Logger) (*uiThread, error) {
	t := &uiThread{logger: logger}
	ready := make(chan error, 1)
	go t.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return t, nil
}

func (t *uiThread) run(ready chan<- error) {
	runtime.LockOSThread()

	t.instance = moduleHandle()
	for _, class := range []struct {
		name       string
		background uintptr
	}{
		{dispatchClass, 0},
		{surfaceClass, 0},
		{overlayClass, stockObject(blackBrush)},
	} {
		if err := registerClass(t.instance, class.name, class.background); err != nil {
			ready <- err
			return
		}
	}

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(utf16Ptr(dispatchClass))),
		0, 0, 0, 0, 0, 0,
		hwndMessage, 0, t.instance, 0,
	)
	if hwnd == 0 {
		ready <- fmt.Errorf("create dispatch window: %w", err)
		return
	}
	t.dispatcher = hwnd
	handlers.Store(hwnd, windowHandler(dispatchHandler{t}))
	ready <- nil

	var m msg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			t.logger.Debug("ui thread message loop ended")
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

type dispatchHandler struct{ t *uiThread }

func (d dispatchHandler) handle(_ uintptr, message uint32, _, _ uintptr) (uintptr, bool) {
	if message != wmRunCalls {
		return 0, false
	}
	d.t.drain()
	return 0, true
}

func (t *uiThread) drain() {
	t.mu.Lock()
	calls := t.calls
	t.calls = nil
	t.mu.Unlock()
	for _, fn := range calls {
		fn()
	}
}

// Post queues fn to run on the UI thread and returns immediately.
func (t *uiThread) Post(fn func()) {
	t.mu.Lock()
	t.calls = append(t.calls, fn)
	t.mu.Unlock()
	procPostMessageW.Call(t.dispatcher, wmRunCalls, 0, 0)
}

// Do runs fn on the UI thread and waits for it. Never call it from the UI
// thread itself.
func (t *uiThread) Do(fn func()) {
	done := make(chan struct{})
	t.Post(func() {
		defer close(done)
		fn()
	})
	<-done
}

func registerClass(instance uintptr, name string, background uintptr) error {
	wc := wndClassEx{
		WndProc:    wndProcPtr(),
		Instance:   instance,
		Background: background,
		ClassName:  utf16Ptr(name),
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
	if atom == 0 {
		return fmt.Errorf("register window class %s: %w", name, err)
	}
	return nil
}

func stockObject(id int) uintptr {
	h, _, _ := procGetStockObject.Call(uintptr(id))
	return h
}

// createPopup creates a topmost, borderless window. Must run on the UI thread.
func (t *uiThread) createPopup(class string, title string, bounds rect, h windowHandler) (uintptr, error) {
	hwnd, _, err := procCreateWindowExW.Call(
		wsExTopmost|wsExToolWindow,
		uintptr(unsafe.Pointer(utf16Ptr(class))),
		uintptr(unsafe.Pointer(utf16Ptr(title))),
		wsPopup,
		uintptr(bounds.Left), uintptr(bounds.Top),
		uintptr(bounds.Right-bounds.Left), uintptr(bounds.Bottom-bounds.Top),
		0, 0, t.instance, 0,
	)
	if hwnd == 0 {
		if err == nil || errors.Is(err, windows.ERROR_SUCCESS) {
			err = errors.New("CreateWindowExW returned NULL")
		}
		return 0, err
	}
	handlers.Store(hwnd, h)
	procShowWindow.Call(hwnd, swShow)
	procUpdateWindow.Call(hwnd)
	return hwnd, nil
}

// destroyWindow tears down a window created by createPopup. Must run on the
// UI thread.
func destroyWindow(hwnd uintptr) {
	procDestroyWindow.Call(hwnd)
	handlers.Delete(hwnd)
}
