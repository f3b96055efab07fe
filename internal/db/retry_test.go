package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBusy = errors.New("database is locked (5) (SQLITE_BUSY)")

func TestIsSQLiteBusy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"database is locked", errBusy, true},
		{"SQLITE_BUSY", errors.New("SQLITE_BUSY"), true},
		{"other error", errors.New("some other error"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isSQLiteBusy(tt.err), tt.name)
	}
}

func TestRetryOnBusy(t *testing.T) {
	t.Run("success after retry", func(t *testing.T) {
		clock := testClock()
		calls := 0
		err := retryOnBusy(clock, func() error {
			calls++
			if calls < 3 {
				return errBusy
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, clock.Sleeps())
	})

	t.Run("non-busy error fails immediately", func(t *testing.T) {
		clock := testClock()
		other := errors.New("constraint failed")
		calls := 0
		err := retryOnBusy(clock, func() error {
			calls++
			return other
		})
		assert.Equal(t, other, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, clock.Sleeps())
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		clock := testClock()
		calls := 0
		err := retryOnBusy(clock, func() error {
			calls++
			return errBusy
		})
		assert.Equal(t, errBusy, err)
		assert.Equal(t, busyRetries, calls)
		assert.Len(t, clock.Sleeps(), busyRetries-1)
	})
}
