// internal/writer/writer.go
package writer

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// Run delivers snapshots from in until ctx is done or in is closed.
// Failures are logged once per streak; the loop never blocks the producer.
func Run(ctx context.Context, w TelemetryWriter, in <-chan status.Snapshot, log hclog.Logger) {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-in:
			if !ok {
				return
			}
			err := w.WriteTelemetry(s)
			switch {
			case err != nil && !failing:
				failing = true
				log.Warn("mirror write failed", "error", err)
			case err == nil && failing:
				failing = false
				log.Info("mirror write recovered")
			}
		}
	}
}
