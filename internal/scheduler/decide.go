// internal/scheduler/decide.go
package scheduler

import (
	"errors"
	"syscall"
	"time"

	"github.com/tamzrod/telemetry-overlay/internal/metrics"
)

// Decide reports whether a frame must be composited on this tick.
// A zero last forces a redraw. No IO. No side effects.
func Decide(now, last time.Time, interval time.Duration, dirty bool) (bool, metrics.RedrawReason) {
	if last.IsZero() || now.Sub(last) >= interval {
		return true, metrics.RedrawInterval
	}
	if dirty {
		return true, metrics.RedrawDirty
	}
	return false, ""
}

// errorCode extracts a best-effort uint16 code from a sampling error.
// Errno values pass through; anything else is 1 (generic error).
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 && errno <= 0xFFFF {
		return uint16(errno)
	}
	return 1
}
