// internal/sampler/streak.go
package sampler

import "github.com/hashicorp/go-hclog"

// streaks logs the first failure of a source and its recovery.
// The loop runs at 100 Hz; a dead control must not flood the log.
type streaks struct {
	log     hclog.Logger
	failing map[string]bool
}

func newStreaks(log hclog.Logger) *streaks {
	return &streaks{log: log, failing: make(map[string]bool)}
}

// observe records one read outcome and reports whether it succeeded.
func (s *streaks) observe(source string, err error) bool {
	if err != nil {
		if !s.failing[source] {
			s.failing[source] = true
			s.log.Warn("read failed, keeping previous value", "source", source, "error", err)
		}
		return false
	}
	if s.failing[source] {
		delete(s.failing, source)
		s.log.Info("read recovered", "source", source)
	}
	return true
}
