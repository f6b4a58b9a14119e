// Package gate decides which low-level keyboard events are suppressed.
//
// The decision is pure: it reads only the event and the live modifier state.
// Installing the decision as a system-wide hook lives in infra.
package gate

import (
	"sync/atomic"
)

// Virtual-key codes consulted by the gate.
const (
	VKControl  uint32 = 0x11
	VKMenu     uint32 = 0x12 // Alt
	VKDelete   uint32 = 0x2E
	VKLControl uint32 = 0xA2
	VKRControl uint32 = 0xA3
	VKLMenu    uint32 = 0xA4
	VKRMenu    uint32 = 0xA5
)

// Low-level keyboard message identifiers.
const (
	WMKeyDown    uint32 = 0x0100
	WMKeyUp      uint32 = 0x0101
	WMSysKeyDown uint32 = 0x0104
	WMSysKeyUp   uint32 = 0x0105
)

var (
	controlKeys = []uint32{VKControl, VKLControl, VKRControl}
	altKeys     = []uint32{VKMenu, VKLMenu, VKRMenu}
)

// Verdict is the result of filtering one keyboard event.
type Verdict int

const (
	// Pass hands the event to the next filter in the chain.
	Pass Verdict = iota
	// Swallow stops the event from reaching anything else.
	Swallow
)

func (v Verdict) String() string {
	if v == Swallow {
		return "swallow"
	}
	return "pass"
}

// KeyEvent is one low-level keyboard notification.
type KeyEvent struct {
	Message    uint32 // WMKeyDown, WMSysKeyDown, ...
	VirtualKey uint32
}

// IsDown reports whether the event is a key-down or sys-key-down.
func (e KeyEvent) IsDown() bool {
	return e.Message == WMKeyDown || e.Message == WMSysKeyDown
}

// ModifierState reads whether a virtual key is currently held.
type ModifierState interface {
	IsDown(vk uint32) bool
}

// ModifierFunc adapts a function to ModifierState.
type ModifierFunc func(vk uint32) bool

// IsDown calls f(vk).
func (f ModifierFunc) IsDown(vk uint32) bool { return f(vk) }

// Gate suppresses the Ctrl+Alt+Delete chord.
// It is safe for concurrent use; the hook thread only touches the counter.
type Gate struct {
	modifiers ModifierState
	swallowed atomic.Int64
}

// New creates a gate reading live modifiers from m.
func New(m ModifierState) *Gate {
	return &Gate{modifiers: m}
}

// Filter returns Swallow for a Delete key-down while a control key and an
// alt key are both held, Pass for everything else.
func (g *Gate) Filter(ev KeyEvent) Verdict {
	if !ev.IsDown() || ev.VirtualKey != VKDelete {
		return Pass
	}
	if !g.anyDown(controlKeys) || !g.anyDown(altKeys) {
		return Pass
	}
	g.swallowed.Add(1)
	return Swallow
}

// Swallowed returns how many events Filter has suppressed.
func (g *Gate) Swallowed() int {
	return int(g.swallowed.Load())
}

func (g *Gate) anyDown(keys []uint32) bool {
	for _, vk := range keys {
		if g.modifiers.IsDown(vk) {
			return true
		}
	}
	return false
}
