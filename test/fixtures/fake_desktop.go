// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"errors"
	"sort"
	"sync"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// FakeDesktop is an in-memory stand-in for every platform collaborator a
// lock session uses. It records the calls it receives in order.
type FakeDesktop struct {
	mu sync.Mutex

	// Capture
	Width, Height int
	Fill          byte // pixel value of the next capture; bumped after each
	CaptureErr    error
	Captures      int

	// Monitors
	MonitorList []domain.MonitorDescriptor
	MonitorsErr error

	// Overlays
	SpawnErr   error
	ShowText   bool
	live       map[domain.OverlayHandle]domain.MonitorDescriptor
	nextHandle domain.OverlayHandle
	Destroyed  int

	// Gate
	InstallErr    error
	UninstallErr  error
	GateInstalled bool
	Installs      int
	Uninstalls    int
	SwallowCount  int

	// Surface
	OpenErr error
	Surface *FakeSurface

	// Prompt
	ConfirmAnswer bool
	ConfirmErr    error
	Prompts       int

	// Notifications
	NotificationsOpen int
	Dismissals        int

	calls []string
}

// NewFakeDesktop creates a desktop with one 1920x1080 primary display.
func NewFakeDesktop(width, height int) *FakeDesktop {
	return &FakeDesktop{
		Width:  width,
		Height: height,
		Fill:   0x80,
		MonitorList: []domain.MonitorDescriptor{
			{Name: `\\.\DISPLAY1`, Bounds: domain.Rect{Right: width, Bottom: height}},
		},
		ConfirmAnswer: true,
		live:          make(map[domain.OverlayHandle]domain.MonitorDescriptor),
		nextHandle:    1,
	}
}

// AddMonitor appends a display to the topology.
func (d *FakeDesktop) AddMonitor(name string, bounds domain.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.MonitorList = append(d.MonitorList, domain.MonitorDescriptor{Name: name, Bounds: bounds})
}

// Platform bundles the fake as a domain.Platform.
func (d *FakeDesktop) Platform() domain.Platform {
	return domain.Platform{
		Capturer:      d,
		Monitors:      d,
		Overlays:      d,
		Gate:          d,
		Surfaces:      d,
		Notifications: d,
		Prompter:      d,
	}
}

// Calls returns the ordered call log.
func (d *FakeDesktop) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *FakeDesktop) record(call string) {
	d.calls = append(d.calls, call)
}

// Capture implements domain.ScreenCapturer with a uniform frame.
func (d *FakeDesktop) Capture() (*domain.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("capture")
	if d.CaptureErr != nil {
		return nil, d.CaptureErr
	}
	d.Captures++
	pixels := make([]byte, d.Width*d.Height*domain.BytesPerPixel)
	for i := range pixels {
		pixels[i] = d.Fill
	}
	d.Fill++
	return &domain.Frame{Width: d.Width, Height: d.Height, Pixels: pixels}, nil
}

// Monitors implements domain.MonitorEnumerator.
func (d *FakeDesktop) Monitors() ([]domain.MonitorDescriptor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.MonitorsErr != nil {
		return nil, d.MonitorsErr
	}
	return append([]domain.MonitorDescriptor(nil), d.MonitorList...), nil
}

// Spawn implements domain.OverlayManager.
func (d *FakeDesktop) Spawn(targets []domain.MonitorDescriptor, showText bool) ([]domain.OverlayHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("overlays.spawn")
	if d.SpawnErr != nil {
		return nil, d.SpawnErr
	}
	d.ShowText = showText
	handles := make([]domain.OverlayHandle, 0, len(targets))
	for _, t := range targets {
		h := d.nextHandle
		d.nextHandle++
		d.live[h] = t
		handles = append(handles, h)
	}
	return handles, nil
}

// Destroy implements domain.OverlayManager.
func (d *FakeDesktop) Destroy(handles []domain.OverlayHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("overlays.destroy")
	for _, h := range handles {
		if _, ok := d.live[h]; ok {
			delete(d.live, h)
			d.Destroyed++
		}
	}
}

// LiveOverlays returns the monitor names currently covered, sorted.
func (d *FakeDesktop) LiveOverlays() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.live))
	for _, m := range d.live {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// Install implements domain.KeyboardGate.
func (d *FakeDesktop) Install() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("gate.install")
	if d.InstallErr != nil {
		return d.InstallErr
	}
	d.Installs++
	d.GateInstalled = true
	return nil
}

// Uninstall implements domain.KeyboardGate.
func (d *FakeDesktop) Uninstall() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("gate.uninstall")
	d.Uninstalls++
	d.GateInstalled = false
	return d.UninstallErr
}

// Swallowed implements domain.KeyboardGate.
func (d *FakeDesktop) Swallowed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.SwallowCount
}

// Open implements domain.SurfaceFactory.
func (d *FakeDesktop) Open(width, height int, source domain.SnapshotSource) (domain.Surface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("surface.open")
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	d.Surface = &FakeSurface{
		desktop: d,
		Width:   width,
		Height:  height,
		Source:  source,
		events:  make(chan domain.Event, 64),
	}
	return d.Surface, nil
}

// Confirm implements domain.Prompter.
func (d *FakeDesktop) Confirm(caption, prompt string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("prompt")
	d.Prompts++
	return d.ConfirmAnswer, d.ConfirmErr
}

// Dismiss implements domain.NotificationDismisser.
func (d *FakeDesktop) Dismiss() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("notifications.dismiss")
	d.Dismissals++
	n := d.NotificationsOpen
	d.NotificationsOpen = 0
	return n, nil
}

// FakeSurface is the lock window of a FakeDesktop.
type FakeSurface struct {
	desktop *FakeDesktop
	Width   int
	Height  int
	Source  domain.SnapshotSource

	events    chan domain.Event
	closeOnce sync.Once

	mu          sync.Mutex
	Refocuses   int
	Releases    int
	Invalidates int
	Closed      bool
}

// Send queues an input event as if the OS delivered it.
func (s *FakeSurface) Send(ev domain.Event) {
	s.events <- ev
}

// Type queues one EventChar per rune.
func (s *FakeSurface) Type(text string) {
	for _, r := range text {
		s.Send(domain.Event{Kind: domain.EventChar, Char: r})
	}
}

// Events implements domain.Surface.
func (s *FakeSurface) Events() <-chan domain.Event { return s.events }

// Refocus implements domain.Surface.
func (s *FakeSurface) Refocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Refocuses++
}

// Release implements domain.Surface.
func (s *FakeSurface) Release() {
	s.mu.Lock()
	s.Releases++
	s.mu.Unlock()

	s.desktop.mu.Lock()
	s.desktop.record("surface.release")
	s.desktop.mu.Unlock()
}

// Invalidate implements domain.Surface.
func (s *FakeSurface) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Invalidates++
}

// Close implements domain.Surface. Closing twice is an error.
func (s *FakeSurface) Close() error {
	s.desktop.mu.Lock()
	s.desktop.record("surface.close")
	s.desktop.mu.Unlock()

	err := errors.New("surface already closed")
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.Closed = true
		s.mu.Unlock()
		close(s.events)
		err = nil
	})
	return err
}

// IsClosed reports whether Close has run.
func (s *FakeSurface) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Closed
}

// Counts returns refocus, release and invalidate counts.
func (s *FakeSurface) Counts() (refocus, release, invalidate int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Refocuses, s.Releases, s.Invalidates
}

var (
	_ domain.ScreenCapturer        = (*FakeDesktop)(nil)
	_ domain.MonitorEnumerator     = (*FakeDesktop)(nil)
	_ domain.OverlayManager        = (*FakeDesktop)(nil)
	_ domain.KeyboardGate          = (*FakeDesktop)(nil)
	_ domain.SurfaceFactory        = (*FakeDesktop)(nil)
	_ domain.Prompter              = (*FakeDesktop)(nil)
	_ domain.NotificationDismisser = (*FakeDesktop)(nil)
	_ domain.Surface               = (*FakeSurface)(nil)
)
