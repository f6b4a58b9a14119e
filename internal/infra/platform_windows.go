//go:build windows

package infra

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// messageBoxPrompter asks yes/no questions with a topmost MessageBoxW.
type messageBoxPrompter struct{}

func (messageBoxPrompter) Confirm(caption, prompt string) (bool, error) {
	r, _, err := procMessageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(utf16Ptr(prompt))),
		uintptr(unsafe.Pointer(utf16Ptr(caption))),
		mbYesNo|mbIconQuestion|mbTopmost,
	)
	if r == 0 {
		return false, fmt.Errorf("MessageBoxW: %w", err)
	}
	return r == idYes, nil
}

// NewPlatform starts the UI thread and wires the Win32 collaborators.
func NewPlatform(logger *zap.Logger) (domain.Platform, error) {
	ui, err := startUIThread(logger)
	if err != nil {
		return domain.Platform{}, fmt.Errorf("start ui thread: %w", err)
	}
	return domain.Platform{
		Capturer:      screenCapturer{},
		Monitors:      monitorEnumerator{},
		Overlays:      &overlayManager{ui: ui, logger: logger},
		Gate:          newKeyboardHook(ui, logger),
		Surfaces:      &surfaceFactory{ui: ui, logger: logger},
		Notifications: &notificationDismisser{logger: logger},
		Prompter:      messageBoxPrompter{},
	}, nil
}

// NewMonitorEnumerator lists displays without starting the UI thread.
func NewMonitorEnumerator() (domain.MonitorEnumerator, error) {
	return monitorEnumerator{}, nil
}

var (
	_ domain.ScreenCapturer        = screenCapturer{}
	_ domain.MonitorEnumerator     = monitorEnumerator{}
	_ domain.OverlayManager        = (*overlayManager)(nil)
	_ domain.KeyboardGate          = (*keyboardHook)(nil)
	_ domain.SurfaceFactory        = (*surfaceFactory)(nil)
	_ domain.Surface               = (*surface)(nil)
	_ domain.NotificationDismisser = (*notificationDismisser)(nil)
	_ domain.Prompter              = messageBoxPrompter{}
)
