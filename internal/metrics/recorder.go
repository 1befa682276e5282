// internal/metrics/recorder.go
package metrics

import "time"

// RedrawReason labels why the scheduler composited a frame.
type RedrawReason string

const (
	RedrawInterval RedrawReason = "interval"
	RedrawDirty    RedrawReason = "dirty"
)

// Sample sources for IncSampleError.
const (
	SourceCamera = "camera"
	SourceHealth = "health"
)

// Recorder defines observability hooks for the overlay loop.
// Implementations must be cheap: they are called from the 10 ms tick.
type Recorder interface {
	IncTick()
	IncRedraw(reason RedrawReason)
	IncSampleError(source string)
	ObserveAcquireWait(d time.Duration)
	IncSubmitError()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncTick()                         {}
func (NoopRecorder) IncRedraw(RedrawReason)           {}
func (NoopRecorder) IncSampleError(string)            {}
func (NoopRecorder) ObserveAcquireWait(time.Duration) {}
func (NoopRecorder) IncSubmitError()                  {}
