// internal/scheduler/phase.go
package scheduler

// Phase is the scheduler's position within one tick.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseSampling
	PhaseDeciding
	PhaseCompositing
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "WAITING"
	case PhaseSampling:
		return "SAMPLING"
	case PhaseDeciding:
		return "DECIDING"
	case PhaseCompositing:
		return "COMPOSITING"
	default:
		return "UNKNOWN"
	}
}
