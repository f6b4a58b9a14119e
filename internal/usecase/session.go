// Package usecase contains application business logic.
package usecase

import (
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/game"
	"github.com/eliteGoblin/focusd/dwmlock/internal/warning"
)

// Characters with a fixed meaning on the lock surface.
const (
	charBackspace rune = 0x08
	charTab       rune = 0x09
	charEnter     rune = 0x0D
	charEscape    rune = 0x1B
)

// Outcome tells the dispatcher which side effects to perform after a
// session method returns. Values combine as bit flags.
type Outcome uint8

const (
	OutcomeRedraw Outcome = 1 << iota
	OutcomeRefocus
	OutcomeUnlock
)

// OutcomeNone means the event changed nothing.
const OutcomeNone Outcome = 0

// Has reports whether all bits of flag are set.
func (o Outcome) Has(flag Outcome) bool { return o&flag == flag && flag != 0 }

// SessionOptions tune a session beyond its settings.
type SessionOptions struct {
	Clock           domain.Clock
	Rand            game.RandFunc
	WarningDuration time.Duration // zero selects warning.DefaultDuration
}

// Session is the state of one lock: the frozen frame, the password being
// typed, the warning timer, the mini-game, and the overlay handles.
//
// All fields are guarded by mu. Methods hold the lock only for their own
// body and never call out to the platform; the caller acts on the returned
// Outcome after the lock is released.
type Session struct {
	mu sync.Mutex

	frame    domain.Frame
	settings domain.Settings
	password string
	input    []rune
	warning  *warning.Timer
	game     *game.MiniGame
	overlays []domain.OverlayHandle
	unlocked bool
	stats    domain.SessionStats

	clock domain.Clock
}

// NewSession creates a locked session over an already blurred frame.
func NewSession(frame domain.Frame, settings domain.Settings, opts SessionOptions) *Session {
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}
	now := clock.Now()

	return &Session{
		frame:    frame,
		settings: settings.Clone(),
		password: settings.Password,
		warning:  warning.New(opts.WarningDuration),
		game:     game.New(settings.MinigameAutostart, now, opts.Rand),
		clock:    clock,
	}
}

// HandleChar applies one character of input.
//
// Tab toggles the mini-game and Escape stops it. Anything else is offered to
// an active mini-game first; only characters it does not consume reach the
// password buffer.
func (s *Session) HandleChar(r rune) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unlocked {
		return OutcomeNone
	}
	now := s.clock.Now()

	switch {
	case r == charTab:
		s.game.Toggle(now)
		return OutcomeRedraw
	case r == charEscape && s.game.Active():
		s.game.Stop()
		return OutcomeRedraw
	}

	if s.game.HandleInput(r, now) {
		s.syncGameStats()
		return OutcomeRedraw
	}

	switch {
	case r == charBackspace:
		if n := len(s.input); n > 0 {
			s.input = s.input[:n-1]
		}
	case r == charEnter:
		if string(s.input) == s.password {
			s.unlocked = true
			s.clearInput()
			return OutcomeUnlock | OutcomeRedraw
		}
		s.clearInput()
		s.warning.Arm(now)
		s.stats.FailedAttempts++
	case r == charEscape:
		// ignored: Escape never cancels the lock
	case r >= 0x20 && r < 0x7F:
		s.input = append(s.input, r)
	}
	return OutcomeRedraw
}

// HandlePointerMove arms the tamper warning. The caller re-centers the
// pointer and brings the surface back to the foreground.
func (s *Session) HandlePointerMove() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unlocked {
		return OutcomeNone
	}
	s.warning.Arm(s.clock.Now())
	s.stats.TamperEvents++
	return OutcomeRefocus | OutcomeRedraw
}

// Tick advances the mini-game timeout and clears an expired warning.
func (s *Session) Tick() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unlocked {
		return OutcomeNone
	}
	now := s.clock.Now()
	if s.game.Tick(now) {
		s.syncGameStats()
	}
	s.warning.ClearIfExpired(now)
	return OutcomeRedraw
}

// Snapshot returns a consistent copy for rendering. The pixel slice is
// shared but never written after publication.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	return domain.Snapshot{
		Frame:       s.frame,
		InputLength: len(s.input),
		Warning:     s.warning.Active(now),
		Game:        s.game.State(),
		Settings:    s.settings.Clone(),
		TakenAt:     now,
	}
}

// Replace swaps in a fresh frame and settings after a settings change.
// Typed input and the warning are reset; the mini-game keeps its counters.
func (s *Session) Replace(frame domain.Frame, settings domain.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame = frame
	s.settings = settings.Clone()
	s.password = settings.Password
	s.clearInput()
	s.warning.Reset()
}

// Settings returns a copy of the settings the session runs with.
func (s *Session) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// SetOverlays stores the overlay handles and returns the previous ones.
func (s *Session) SetOverlays(handles []domain.OverlayHandle) []domain.OverlayHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.overlays
	s.overlays = handles
	return prev
}

// TakeOverlays removes and returns the overlay handles.
func (s *Session) TakeOverlays() []domain.OverlayHandle {
	return s.SetOverlays(nil)
}

// Unlocked reports whether the correct password has been entered.
func (s *Session) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// Stats returns the counters accumulated so far.
func (s *Session) Stats() domain.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) syncGameStats() {
	st := s.game.State()
	s.stats.GameScore = st.Score
	s.stats.GameMisses = st.Misses
}

// clearInput zeroes the buffer before dropping it.
func (s *Session) clearInput() {
	for i := range s.input {
		s.input[i] = 0
	}
	s.input = s.input[:0]
}

var _ domain.SnapshotSource = (*Session)(nil)
