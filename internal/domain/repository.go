package domain

import (
	"errors"
	"time"
)

var (
	// ErrUnsupportedPlatform is returned by platform collaborators on non-Windows builds.
	ErrUnsupportedPlatform = errors.New("dwmlock: platform not supported")

	// ErrAlreadyLocked means another live lock session is registered.
	ErrAlreadyLocked = errors.New("dwmlock: a lock session is already running")

	// ErrLockDeclined means the user answered "no" to the confirmation prompt.
	ErrLockDeclined = errors.New("dwmlock: lock declined")
)

// Clock abstracts time to keep the session state machines deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ScreenCapturer grabs the primary desktop as a raw frame.
type ScreenCapturer interface {
	Capture() (*Frame, error)
}

// MonitorEnumerator lists the current display topology on demand.
type MonitorEnumerator interface {
	Monitors() ([]MonitorDescriptor, error)
}

// OverlayManager creates and destroys opaque blanking windows.
type OverlayManager interface {
	// Spawn creates one overlay per target. On error, overlays created so far
	// have already been destroyed.
	Spawn(targets []MonitorDescriptor, showText bool) ([]OverlayHandle, error)

	// Destroy tears down overlays. Unknown or zero handles are ignored.
	Destroy(handles []OverlayHandle)
}

// KeyboardGate is the system-wide filter suppressing the interrupt chord.
// Install and Uninstall are each effective at most once.
type KeyboardGate interface {
	Install() error
	Uninstall() error

	// Swallowed returns how many chords were suppressed so far.
	Swallowed() int
}

// SnapshotSource is read by the renderer on every paint.
type SnapshotSource interface {
	Snapshot() Snapshot
}

// Surface is the full-screen lock window.
type Surface interface {
	// Events delivers input in OS delivery order. Closed after the window is gone.
	Events() <-chan Event

	// Refocus brings the window to the foreground and pins the hidden pointer at its center.
	Refocus()

	// Release undoes pointer confinement and restores pointer visibility.
	Release()

	// Invalidate requests a repaint from the current snapshot.
	Invalidate()

	// Close destroys the window.
	Close() error
}

// SurfaceFactory opens the lock window sized to the captured frame.
type SurfaceFactory interface {
	Open(width, height int, source SnapshotSource) (Surface, error)
}

// NotificationDismisser closes toast/notification windows before locking.
type NotificationDismisser interface {
	Dismiss() (int, error)
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(caption, prompt string) (bool, error)
}

// Platform bundles the OS collaborators a lock session needs.
type Platform struct {
	Capturer      ScreenCapturer
	Monitors      MonitorEnumerator
	Overlays      OverlayManager
	Gate          KeyboardGate
	Surfaces      SurfaceFactory
	Notifications NotificationDismisser
	Prompter      Prompter
}

// ProcessManager handles OS process queries.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// SessionRegistry tracks the running lock session for single-instance checks.
type SessionRegistry interface {
	// Register records the current lock session.
	Register(entry RegistryEntry) error

	// Active returns the registered session, or nil if none is recorded.
	Active() (*RegistryEntry, error)

	// Clear removes the registration.
	Clear() error
}

// SessionJournal persists lock history.
type SessionJournal interface {
	// Begin inserts a new record and returns its ID.
	Begin(record SessionRecord) (int64, error)

	// Finish updates the record with end time, outcome and counters.
	Finish(record SessionRecord) error

	// Recent returns up to limit records, newest first.
	Recent(limit int) ([]SessionRecord, error)

	// Close releases resources (e.g., database connection).
	Close() error
}

// KeyProvider abstracts the source of encryption keys.
type KeyProvider interface {
	// GetKey returns the encryption key bytes.
	GetKey() ([]byte, error)

	// StoreKey persists a new encryption key.
	StoreKey(key []byte) error

	// KeyExists checks if a key has been generated.
	KeyExists() bool
}
