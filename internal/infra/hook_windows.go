//go:build windows

package infra

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/gate"
)

var (
	// activeGate is consulted by the hook callback; nil passes everything.
	activeGate atomic.Pointer[gate.Gate]

	hookProcPtr = sync.OnceValue(func() uintptr {
		return windows.NewCallback(keyboardHookProc)
	})
)

func keyboardHookProc(code, wparam, lparam uintptr) uintptr {
	if int32(code) == hcAction {
		if g := activeGate.Load(); g != nil {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lparam))
			if g.Filter(gate.KeyEvent{Message: uint32(wparam), VirtualKey: kb.VkCode}) == gate.Swallow {
				return 1
			}
		}
	}
	r, _, _ := procCallNextHookEx.Call(0, code, wparam, lparam)
	return r
}

// asyncModifiers reads the physical key state.
var asyncModifiers = gate.ModifierFunc(func(vk uint32) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return int16(r) < 0
})

// keyboardHook installs a WH_KEYBOARD_LL hook that swallows the interrupt
// chord. The hook lives on the UI thread, which keeps pumping messages.
type keyboardHook struct {
	ui     *uiThread
	gate   *gate.Gate
	logger *zap.Logger

	mu          sync.Mutex
	handle      uintptr
	installed   bool
	uninstalled bool
}

func newKeyboardHook(ui *uiThread, logger *zap.Logger) *keyboardHook {
	return &keyboardHook{
		ui:     ui,
		gate:   gate.New(asyncModifiers),
		logger: logger,
	}
}

func (h *keyboardHook) Install() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.installed {
		return nil
	}

	var err error
	h.ui.Do(func() {
		activeGate.Store(h.gate)
		handle, _, callErr := procSetWindowsHookExW.Call(whKeyboardLL, hookProcPtr(), h.ui.instance, 0)
		if handle == 0 {
			activeGate.Store(nil)
			err = fmt.Errorf("SetWindowsHookExW: %w", callErr)
			return
		}
		h.handle = handle
	})
	if err != nil {
		return err
	}
	h.installed = true
	h.logger.Debug("low-level keyboard hook set")
	return nil
}

func (h *keyboardHook) Uninstall() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.installed || h.uninstalled {
		return nil
	}
	h.uninstalled = true

	var err error
	h.ui.Do(func() {
		activeGate.Store(nil)
		ok, _, callErr := procUnhookWindowsHookEx.Call(h.handle)
		if ok == 0 {
			err = fmt.Errorf("UnhookWindowsHookEx: %w", callErr)
		}
	})
	return err
}

func (h *keyboardHook) Swallowed() int {
	return h.gate.Swallowed()
}
