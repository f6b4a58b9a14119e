// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// BytesPerPixel is the channel count of every captured frame (32-bit BGRA).
const BytesPerPixel = 4

// Rect is a screen rectangle in virtual-desktop coordinates.
// Right and Bottom are exclusive, matching Win32 RECT.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// Frame is a captured desktop image: top-down rows, 4 bytes per pixel.
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// Valid reports whether the pixel buffer matches the declared dimensions.
func (f *Frame) Valid() bool {
	if f == nil || f.Width <= 0 || f.Height <= 0 {
		return false
	}
	return len(f.Pixels) == f.Width*f.Height*BytesPerPixel
}

// MonitorDescriptor describes one attached display.
// Produced fresh by every enumeration; never cached across settings changes.
type MonitorDescriptor struct {
	Name   string // OS device name, e.g. \\.\DISPLAY2
	Bounds Rect
}

// BlankingMode selects which secondary monitors receive an opaque overlay.
type BlankingMode string

const (
	BlankingNone   BlankingMode = "none"
	BlankingAll    BlankingMode = "all"
	BlankingCustom BlankingMode = "custom"
)

// Settings is the resolved configuration record consumed by a lock session.
// Persisted by the config package; the lock session never writes it.
type Settings struct {
	Password                      string       `toml:"password" yaml:"password"`
	BlurEnabled                   bool         `toml:"blur_enabled" yaml:"blur_enabled"`
	BlurRadius                    int          `toml:"blur_radius" yaml:"blur_radius"`
	MonitorMode                   BlankingMode `toml:"monitor_mode" yaml:"monitor_mode"`
	DisableMonitors               []string     `toml:"disable_monitors" yaml:"disable_monitors"`
	MinigameAutostart             bool         `toml:"minigame_autostart" yaml:"minigame_autostart"`
	TextOnAllMonitors             bool         `toml:"text_on_all_monitors" yaml:"text_on_all_monitors"`
	DismissNotificationsOnStartup bool         `toml:"dismiss_notifications_on_startup" yaml:"dismiss_notifications_on_startup"`
	OpenSettingsOnStartup         bool         `toml:"open_settings_on_startup" yaml:"open_settings_on_startup"`
}

// Clone returns a deep copy so callers can mutate the monitor list freely.
func (s Settings) Clone() Settings {
	c := s
	c.DisableMonitors = append([]string(nil), s.DisableMonitors...)
	return c
}

// EventKind identifies an inbound event delivered to the lock dispatcher.
type EventKind int

const (
	EventChar EventKind = iota
	EventPointerMove
	EventTick
	EventSettingsRequested
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventChar:
		return "char"
	case EventPointerMove:
		return "pointer_move"
	case EventTick:
		return "tick"
	case EventSettingsRequested:
		return "settings_requested"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is one OS callback translated into a value.
type Event struct {
	Kind EventKind
	Char rune // EventChar only
	X, Y int  // pointer position for EventPointerMove / EventSettingsRequested
}

// OverlayHandle identifies a blanking window owned by the session.
type OverlayHandle uintptr

// GameState is a read-only view of the mini-game for rendering.
type GameState struct {
	Active bool
	Target string // uppercase display form
	Score  int
	Misses int
}

// Snapshot is an internally consistent copy of the session handed to a renderer.
// Frame.Pixels is shared but never mutated after publication.
type Snapshot struct {
	Frame       Frame
	InputLength int
	Warning     bool
	Game        GameState
	Settings    Settings
	TakenAt     time.Time
}

// SessionOutcome records how a lock session ended.
type SessionOutcome string

const (
	OutcomeUnlocked SessionOutcome = "unlocked"
	OutcomeAborted  SessionOutcome = "aborted"
)

// SessionStats are the counters a session accumulates while locked.
type SessionStats struct {
	FailedAttempts  int
	TamperEvents    int
	SwallowedChords int
	GameScore       int
	GameMisses      int
}

// SessionRecord is one row of the lock history.
type SessionRecord struct {
	ID         int64
	PID        int
	StartedAt  time.Time
	EndedAt    time.Time
	Outcome    SessionOutcome
	AppVersion string
	SessionStats
}

// RegistryEntry marks the currently running lock session for single-instance checks.
type RegistryEntry struct {
	PID        int    `json:"pid"`
	StartedAt  int64  `json:"started_at"`
	AppVersion string `json:"app_version,omitempty"`
}
