package warning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTimer_ActiveWindow(t *testing.T) {
	tm := New(DefaultDuration)
	assert.False(t, tm.Active(base), "unarmed timer is inactive")

	tm.Arm(base)

	tests := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{2 * time.Second, true},
		{4999 * time.Millisecond, true},
		{5 * time.Second, false},
		{6 * time.Second, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tm.Active(base.Add(tt.offset)), "offset %v", tt.offset)
	}
}

func TestTimer_RearmExtendsWindow(t *testing.T) {
	tm := New(0)
	assert.Equal(t, DefaultDuration, tm.Duration())

	tm.Arm(base)
	tm.Arm(base.Add(3 * time.Second))

	assert.True(t, tm.Active(base.Add(7*time.Second)))
	assert.False(t, tm.Active(base.Add(8*time.Second)))
}

func TestTimer_ClearIfExpired(t *testing.T) {
	tm := New(DefaultDuration)

	assert.False(t, tm.ClearIfExpired(base), "nothing to clear")

	tm.Arm(base)
	assert.False(t, tm.ClearIfExpired(base.Add(time.Second)))
	_, armed := tm.ArmedAt()
	assert.True(t, armed)

	assert.True(t, tm.ClearIfExpired(base.Add(6*time.Second)))
	_, armed = tm.ArmedAt()
	assert.False(t, armed)
	assert.False(t, tm.Active(base.Add(6*time.Second)))
}

func TestTimer_ArmedAt(t *testing.T) {
	tm := New(time.Second)
	at := base.Add(42 * time.Millisecond)
	tm.Arm(at)

	got, armed := tm.ArmedAt()
	assert.True(t, armed)
	assert.Equal(t, at, got)

	tm.Reset()
	got, armed = tm.ArmedAt()
	assert.False(t, armed)
	assert.True(t, got.IsZero())
}

func TestTimer_CustomDuration(t *testing.T) {
	tm := New(100 * time.Millisecond)
	tm.Arm(base)
	assert.True(t, tm.Active(base.Add(99*time.Millisecond)))
	assert.False(t, tm.Active(base.Add(100*time.Millisecond)))
}
