package db

import (
	"strings"
	"time"

	"github.com/lakfel/fittsStudy/internal/timeutil"
)

const (
	busyRetries   = 5
	busyBaseDelay = 10 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// retryOnBusy runs fn until it succeeds, fails with a non-busy error, or
// busyRetries attempts have been made. Delays double from busyBaseDelay.
func retryOnBusy(clock timeutil.Clock, fn func() error) error {
	delay := busyBaseDelay
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		if err = fn(); !isSQLiteBusy(err) {
			return err
		}
		if attempt < busyRetries-1 {
			clock.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
