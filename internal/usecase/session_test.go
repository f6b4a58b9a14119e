package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// fakeClock is a settable domain.Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// firstTarget always rolls the first letter of the alphabet ('a').
func firstTarget(int) int { return 0 }

func testFrame() domain.Frame {
	return domain.Frame{Width: 2, Height: 2, Pixels: make([]byte, 16)}
}

func newTestSession(t *testing.T, password string) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	s := NewSession(testFrame(), domain.Settings{Password: password}, SessionOptions{
		Clock: clock,
		Rand:  firstTarget,
	})
	return s, clock
}

func typeString(s *Session, text string) Outcome {
	var out Outcome
	for _, r := range text {
		out = s.HandleChar(r)
	}
	return out
}

func TestSession_CorrectPasswordUnlocks(t *testing.T) {
	s, _ := newTestSession(t, "hunter2")

	typeString(s, "hunter2")
	out := s.HandleChar(charEnter)

	assert.True(t, out.Has(OutcomeUnlock))
	assert.True(t, s.Unlocked())
	assert.Zero(t, s.Snapshot().InputLength)
	assert.Zero(t, s.Stats().FailedAttempts)
}

func TestSession_WrongPasswordArmsWarning(t *testing.T) {
	s, clock := newTestSession(t, "hunter2")

	typeString(s, "hunter3")
	out := s.HandleChar(charEnter)

	assert.False(t, out.Has(OutcomeUnlock))
	assert.True(t, out.Has(OutcomeRedraw))
	assert.False(t, s.Unlocked())

	snap := s.Snapshot()
	assert.Zero(t, snap.InputLength, "buffer cleared on mismatch")
	assert.True(t, snap.Warning)
	assert.Equal(t, 1, s.Stats().FailedAttempts)

	clock.Advance(6 * time.Second)
	assert.False(t, s.Snapshot().Warning, "warning expires on its own")
}

func TestSession_BackspaceCorrection(t *testing.T) {
	s, _ := newTestSession(t, "abc")

	typeString(s, "abx")
	s.HandleChar(charBackspace)
	typeString(s, "c")
	out := s.HandleChar(charEnter)

	assert.True(t, out.Has(OutcomeUnlock))
}

func TestSession_BackspaceOnEmptyIsNoop(t *testing.T) {
	s, _ := newTestSession(t, "x")

	out := s.HandleChar(charBackspace)

	assert.Equal(t, OutcomeRedraw, out)
	assert.Zero(t, s.Snapshot().InputLength)
}

func TestSession_InputFiltering(t *testing.T) {
	tests := []struct {
		name    string
		input   []rune
		wantLen int
	}{
		{"printable ascii appended", []rune("a Z~!"), 5},
		{"escape ignored", []rune{'a', charEscape}, 1},
		{"control chars dropped", []rune{0x01, 0x7F, '\n', 'b'}, 1},
		{"non-ascii dropped", []rune("é日本"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, "pw")
			for _, r := range tt.input {
				assert.Equal(t, OutcomeRedraw, s.HandleChar(r))
			}
			assert.Equal(t, tt.wantLen, s.Snapshot().InputLength)
		})
	}
}

func TestSession_EscapeDoesNotCancel(t *testing.T) {
	s, _ := newTestSession(t, "pw")

	typeString(s, "p")
	s.HandleChar(charEscape)
	typeString(s, "w")
	out := s.HandleChar(charEnter)

	assert.True(t, out.Has(OutcomeUnlock))
}

func TestSession_EmptyPasswordMatchesEmptyInput(t *testing.T) {
	s, _ := newTestSession(t, "")
	assert.True(t, s.HandleChar(charEnter).Has(OutcomeUnlock))
}

func TestSession_PointerMove(t *testing.T) {
	s, clock := newTestSession(t, "pw")

	out := s.HandlePointerMove()

	assert.True(t, out.Has(OutcomeRefocus))
	assert.True(t, out.Has(OutcomeRedraw))
	assert.True(t, s.Snapshot().Warning)
	assert.Equal(t, 1, s.Stats().TamperEvents)

	clock.Advance(3 * time.Second)
	s.HandlePointerMove()
	clock.Advance(3 * time.Second)
	assert.True(t, s.Snapshot().Warning, "re-arm renews the window")

	clock.Advance(2 * time.Second)
	assert.False(t, s.Snapshot().Warning)
}

func TestSession_PointerMoveDoesNotBlockUnlock(t *testing.T) {
	s, _ := newTestSession(t, "pw")

	s.HandlePointerMove()
	typeString(s, "pw")

	assert.True(t, s.HandleChar(charEnter).Has(OutcomeUnlock))
}

func TestSession_TickClearsExpiredWarning(t *testing.T) {
	s, clock := newTestSession(t, "pw")
	s.HandlePointerMove()

	clock.Advance(5 * time.Second)
	assert.Equal(t, OutcomeRedraw, s.Tick())

	assert.False(t, s.Snapshot().Warning)
}

func TestSession_MiniGameOwnsInputWhileActive(t *testing.T) {
	s, _ := newTestSession(t, "pw")

	s.HandleChar(charTab)
	require.True(t, s.Snapshot().Game.Active)

	typeString(s, "a") // hit
	typeString(s, "p") // miss
	s.HandleChar(charEnter)

	snap := s.Snapshot()
	assert.Zero(t, snap.InputLength, "password buffer untouched")
	assert.False(t, snap.Warning, "enter consumed by the game")
	assert.False(t, s.Unlocked())
	assert.Equal(t, 1, snap.Game.Score)
	assert.Equal(t, 2, snap.Game.Misses)

	stats := s.Stats()
	assert.Equal(t, 1, stats.GameScore)
	assert.Equal(t, 2, stats.GameMisses)
}

func TestSession_EscapeStopsGame(t *testing.T) {
	s, _ := newTestSession(t, "pw")

	s.HandleChar(charTab)
	s.HandleChar(charEscape)
	require.False(t, s.Snapshot().Game.Active)

	typeString(s, "pw")
	assert.True(t, s.HandleChar(charEnter).Has(OutcomeUnlock))
}

func TestSession_TabTogglesGame(t *testing.T) {
	s, _ := newTestSession(t, "pw")

	s.HandleChar(charTab)
	assert.True(t, s.Snapshot().Game.Active)
	s.HandleChar(charTab)
	assert.False(t, s.Snapshot().Game.Active)
}

func TestSession_MiniGameAutostart(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(testFrame(), domain.Settings{Password: "pw", MinigameAutostart: true},
		SessionOptions{Clock: clock, Rand: firstTarget})

	assert.True(t, s.Snapshot().Game.Active)
	assert.Equal(t, "A", s.Snapshot().Game.Target)
}

func TestSession_TickCountsGameTimeout(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(testFrame(), domain.Settings{Password: "pw", MinigameAutostart: true},
		SessionOptions{Clock: clock, Rand: firstTarget})

	clock.Advance(5 * time.Second)
	s.Tick()

	assert.Equal(t, 1, s.Snapshot().Game.Misses)
	assert.Equal(t, 1, s.Stats().GameMisses)
}

func TestSession_InputIgnoredAfterUnlock(t *testing.T) {
	s, _ := newTestSession(t, "pw")
	typeString(s, "pw")
	s.HandleChar(charEnter)

	assert.Equal(t, OutcomeNone, s.HandleChar('x'))
	assert.Equal(t, OutcomeNone, s.HandlePointerMove())
	assert.Equal(t, OutcomeNone, s.Tick())
	assert.Zero(t, s.Snapshot().InputLength)
}

func TestSession_Replace(t *testing.T) {
	s, _ := newTestSession(t, "old")
	s.HandleChar(charTab)
	typeString(s, "a")
	s.HandleChar(charTab)
	typeString(s, "ol")
	s.HandlePointerMove()

	before := s.Snapshot()
	newFrame := domain.Frame{Width: 1, Height: 1, Pixels: []byte{9, 9, 9, 9}}
	s.Replace(newFrame, domain.Settings{Password: "new", BlurRadius: 3})

	snap := s.Snapshot()
	assert.Equal(t, newFrame, snap.Frame)
	assert.Equal(t, 3, snap.Settings.BlurRadius)
	assert.Zero(t, snap.InputLength)
	assert.False(t, snap.Warning)
	assert.Equal(t, 1, snap.Game.Score, "game counters survive refresh")

	// the old snapshot still sees its own frame
	assert.Equal(t, 2, before.Frame.Width)

	typeString(s, "old")
	assert.False(t, s.HandleChar(charEnter).Has(OutcomeUnlock))
	typeString(s, "new")
	assert.True(t, s.HandleChar(charEnter).Has(OutcomeUnlock))
}

func TestSession_Overlays(t *testing.T) {
	s, _ := newTestSession(t, "pw")

	assert.Nil(t, s.SetOverlays([]domain.OverlayHandle{1, 2}))
	assert.Equal(t, []domain.OverlayHandle{1, 2}, s.SetOverlays([]domain.OverlayHandle{3}))
	assert.Equal(t, []domain.OverlayHandle{3}, s.TakeOverlays())
	assert.Nil(t, s.TakeOverlays())
}

func TestSession_SnapshotSettingsIsCopy(t *testing.T) {
	clock := newFakeClock()
	s := NewSession(testFrame(), domain.Settings{Password: "pw", DisableMonitors: []string{"DISPLAY2"}},
		SessionOptions{Clock: clock})

	snap := s.Snapshot()
	snap.Settings.DisableMonitors[0] = "changed"

	assert.Equal(t, "DISPLAY2", s.Settings().DisableMonitors[0])
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s, _ := newTestSession(t, "pw")

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.HandleChar('x')
			s.HandleChar(charBackspace)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.HandlePointerMove()
			s.Tick()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = s.Snapshot()
		}
	}()
	wg.Wait()

	assert.Zero(t, s.Snapshot().InputLength)
	assert.Equal(t, 200, s.Stats().TamperEvents)
}

func TestOutcome_Has(t *testing.T) {
	o := OutcomeRefocus | OutcomeRedraw
	assert.True(t, o.Has(OutcomeRefocus))
	assert.True(t, o.Has(OutcomeRedraw))
	assert.False(t, o.Has(OutcomeUnlock))
	assert.False(t, o.Has(OutcomeNone))
}
