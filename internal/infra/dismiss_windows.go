//go:build windows

package infra

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
	"go.uber.org/zap"
)

// notificationDismisser closes visible toast and notification windows.
type notificationDismisser struct {
	logger *zap.Logger
}

var (
	dismissMu    sync.Mutex
	dismissFound []uintptr

	enumWindowsProcPtr = sync.OnceValue(func() uintptr {
		return windows.NewCallback(enumWindowsProc)
	})
)

func enumWindowsProc(hwnd, _ uintptr) uintptr {
	if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
		return 1
	}
	if LooksLikeNotification(windowClass(hwnd), windowTitle(hwnd)) {
		dismissFound = append(dismissFound, hwnd)
	}
	return 1
}

func windowClass(hwnd uintptr) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

func windowTitle(hwnd uintptr) string {
	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

func (d *notificationDismisser) Dismiss() (int, error) {
	dismissMu.Lock()
	defer dismissMu.Unlock()

	dismissFound = nil
	if ok, _, err := procEnumWindows.Call(enumWindowsProcPtr(), 0); ok == 0 {
		return 0, fmt.Errorf("EnumWindows: %w", err)
	}

	closed := 0
	for _, hwnd := range dismissFound {
		if r, _, _ := procPostMessageW.Call(hwnd, wmClose, 0, 0); r != 0 {
			closed++
		}
	}
	dismissFound = nil
	d.logger.Debug("notification windows closed", zap.Int("count", closed))
	return closed, nil
}
