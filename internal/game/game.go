// Package game implements the typing drill shown while the screen is locked.
package game

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
)

// Alphabet is the set of targets the drill draws from.
const Alphabet = "asdfghjklqwertyuiopzxcvbnm1234567890"

// TickTimeout is how long a target may sit untyped before it counts as a miss.
const TickTimeout = 5 * time.Second

// RandFunc returns a uniformly random int in [0, n).
type RandFunc func(n int) int

// CryptoRand draws from crypto/rand. Falls back to 0 if the reader fails.
func CryptoRand(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// MiniGame is the drill state machine. Not safe for concurrent use.
type MiniGame struct {
	active     bool
	target     byte
	lastUpdate time.Time
	score      int
	misses     int
	rng        RandFunc
}

// New creates a drill, active when autostart is set.
// A nil rng selects CryptoRand.
func New(autostart bool, now time.Time, rng RandFunc) *MiniGame {
	if rng == nil {
		rng = CryptoRand
	}
	g := &MiniGame{
		active:     autostart,
		lastUpdate: now,
		rng:        rng,
	}
	g.roll()
	return g
}

// Active reports whether the drill currently owns character input.
func (g *MiniGame) Active() bool { return g.active }

// Toggle flips the drill on or off. Turning it on rolls a fresh target.
func (g *MiniGame) Toggle(now time.Time) {
	g.active = !g.active
	if g.active {
		g.roll()
	}
	g.lastUpdate = now
}

// Stop deactivates the drill without touching the counters.
func (g *MiniGame) Stop() {
	g.active = false
}

// HandleInput offers a character to the drill and reports whether it was
// consumed. An active drill consumes every character: a case-insensitive hit
// scores, other ASCII counts a miss, non-ASCII changes nothing.
func (g *MiniGame) HandleInput(r rune, now time.Time) bool {
	if !g.active {
		return false
	}

	switch {
	case r <= unicode.MaxASCII && unicode.ToLower(r) == rune(g.target):
		g.score++
		g.roll()
		g.lastUpdate = now
	case r <= unicode.MaxASCII:
		g.misses++
	}
	return true
}

// Tick counts a miss and re-rolls when the target has timed out.
// It returns true when a miss was counted.
func (g *MiniGame) Tick(now time.Time) bool {
	if !g.active || now.Sub(g.lastUpdate) < TickTimeout {
		return false
	}
	g.misses++
	g.roll()
	g.lastUpdate = now
	return true
}

// TargetDisplay is the current target in uppercase.
func (g *MiniGame) TargetDisplay() string {
	return strings.ToUpper(string(rune(g.target)))
}

// State returns a read-only view for rendering.
func (g *MiniGame) State() domain.GameState {
	return domain.GameState{
		Active: g.active,
		Target: g.TargetDisplay(),
		Score:  g.score,
		Misses: g.misses,
	}
}

func (g *MiniGame) roll() {
	i := g.rng(len(Alphabet))
	if i < 0 || i >= len(Alphabet) {
		i = 0
	}
	g.target = Alphabet[i]
}
