// internal/sampler/health.go
package sampler

import (
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// CPUCounters is one snapshot of the aggregate CPU time counters.
// Both values only ever grow.
type CPUCounters struct {
	Total float64 // all categories
	Idle  float64 // idle category
}

// CPUReader reads the aggregate CPU counters.
type CPUReader interface {
	ReadCPU() (CPUCounters, error)
}

// ThermalReader reads the CPU temperature in degrees Celsius.
type ThermalReader interface {
	ReadTemperature() (float64, error)
}

// StorageReader reads used and total capacity of the recording mount in GB.
// An absent mount reports 0, 0 and no error.
type StorageReader interface {
	ReadStorage() (usedGB, totalGB float64, err error)
}

// Health derives HealthState from OS counters.
type Health struct {
	cpu     CPUReader
	thermal ThermalReader
	storage StorageReader
	log     hclog.Logger
	now     func() time.Time

	// CPU counters are compared over at least this window.
	cpuInterval time.Duration

	lastCPU   CPUCounters
	lastCPUAt time.Time
	haveCPU   bool

	lastErr error
	streak  *streaks
}

// HealthOption customises a Health sampler.
type HealthOption func(*Health)

// WithCPUInterval sets the minimum window between CPU counter reads.
func WithCPUInterval(d time.Duration) HealthOption {
	return func(h *Health) { h.cpuInterval = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) HealthOption {
	return func(h *Health) { h.now = now }
}

// NewHealth creates a health sampler.
func NewHealth(cpu CPUReader, thermal ThermalReader, storage StorageReader, log hclog.Logger, opts ...HealthOption) (*Health, error) {
	if cpu == nil || thermal == nil || storage == nil {
		return nil, errors.New("sampler: cpu, thermal and storage readers required")
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	h := &Health{
		cpu:     cpu,
		thermal: thermal,
		storage: storage,
		log:     log,
		now:     time.Now,
		streak:  newStreaks(log),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Sample returns prev updated with fresh readings.
// A failed reading keeps the previous field value.
func (h *Health) Sample(prev status.HealthState) status.HealthState {
	next := prev
	var errs []error

	// ---- temperature ----
	if temp, err := h.thermal.ReadTemperature(); h.streak.observe("thermal", err) {
		next.CPUTemperatureC = temp
	} else {
		errs = append(errs, err)
	}

	// ---- storage ----
	if used, total, err := h.storage.ReadStorage(); h.streak.observe("storage", err) {
		next.UsedStorageGB, next.TotalStorageGB = used, total
	} else {
		errs = append(errs, err)
	}

	// ---- cpu ----
	now := h.now()
	if !h.haveCPU || now.Sub(h.lastCPUAt) >= h.cpuInterval {
		counters, err := h.cpu.ReadCPU()
		if h.streak.observe("cpu", err) {
			if h.haveCPU {
				if pct, ok := IdlePercent(h.lastCPU, counters); ok {
					next.CPUIdlePercent = pct
				}
			}
			h.lastCPU = counters
			h.lastCPUAt = now
			h.haveCPU = true
		} else {
			errs = append(errs, err)
		}
	}

	h.lastErr = errors.Join(errs...)
	return next
}

// Err returns the joined errors of the last Sample, or nil.
func (h *Health) Err() error { return h.lastErr }

// IdlePercent returns the share of CPU time spent idle between two
// snapshots: (idleNow - idlePrev) * 100 / (sumNow - sumPrev).
// ok is false when no time elapsed between the snapshots.
func IdlePercent(prev, now CPUCounters) (float64, bool) {
	total := now.Total - prev.Total
	if total <= 0 {
		return 0, false
	}
	pct := (now.Idle - prev.Idle) * 100 / total
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	return pct, true
}
