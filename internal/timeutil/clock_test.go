package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var _ Clock = RealClock{}
var _ Clock = (*MockClock)(nil)

func TestRealClock(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	assert.False(t, now.Before(before) || now.After(after), "Now() = %v, expected between %v and %v", now, before, after)
	assert.GreaterOrEqual(t, clock.Since(time.Now().Add(-time.Second)), time.Second)
}

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := NewMockClock(start)
	assert.True(t, clock.Now().Equal(start))

	clock.Advance(5 * time.Second)
	assert.Equal(t, 5*time.Second, clock.Since(start))

	later := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	clock.Set(later)
	assert.True(t, clock.Now().Equal(later))
}

func TestMockClock_Sleep(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Sleep(10 * time.Millisecond)
	clock.Sleep(20 * time.Millisecond)

	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, clock.Sleeps())
	assert.Equal(t, 30*time.Millisecond, clock.Since(start))

	// The returned slice is a copy.
	clock.Sleeps()[0] = 0
	assert.Equal(t, 10*time.Millisecond, clock.Sleeps()[0])
}
