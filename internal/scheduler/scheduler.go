// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/tamzrod/telemetry-overlay/internal/metrics"
	"github.com/tamzrod/telemetry-overlay/internal/pool"
	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// CameraSource produces camera telemetry.
// Err reports the read failures of the last Sample, if any.
type CameraSource interface {
	Sample() status.CameraState
	Err() error
}

// HealthSource produces system telemetry from the previous state.
type HealthSource interface {
	Sample(prev status.HealthState) status.HealthState
	Err() error
}

// Renderer draws the overlay into its own surface.
type Renderer interface {
	Render(cam status.CameraState, health status.HealthState)
	Bytes() []byte
}

// Submitter hands a composited surface to presentation.
type Submitter interface {
	Submit(ctx context.Context, surface []byte) error
}

// Config is the minimal runtime config the scheduler needs.
type Config struct {
	Tick           time.Duration
	RedrawInterval time.Duration
}

// Scheduler drives sample -> decide -> composite -> submit.
// Single goroutine; it is the only writer of the LoopState.
type Scheduler struct {
	cfg Config

	state    *status.LoopState
	camera   CameraSource
	health   HealthSource
	renderer Renderer
	submit   Submitter

	mirror  chan status.Snapshot
	rec     metrics.Recorder
	log     hclog.Logger
	onPhase func(Phase)

	phase Phase
}

// Option configures optional collaborators.
type Option func(*Scheduler)

// WithMirror offers a Snapshot to ch after every redraw.
// ch should have capacity 1; a stale snapshot is replaced.
func WithMirror(ch chan status.Snapshot) Option {
	return func(s *Scheduler) { s.mirror = ch }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.rec = r
		}
	}
}

func WithLogger(l hclog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a scheduler with immutable config.
func New(cfg Config, state *status.LoopState, cam CameraSource, health HealthSource, r Renderer, sub Submitter, opts ...Option) (*Scheduler, error) {
	if cfg.Tick <= 0 {
		return nil, errors.New("scheduler: tick must be > 0")
	}
	if cfg.RedrawInterval < cfg.Tick {
		return nil, errors.New("scheduler: redraw interval shorter than tick")
	}
	if state == nil || cam == nil || health == nil || r == nil || sub == nil {
		return nil, errors.New("scheduler: missing collaborator")
	}

	s := &Scheduler{
		cfg:      cfg,
		state:    state,
		camera:   cam,
		health:   health,
		renderer: r,
		submit:   sub,
		rec:      metrics.NoopRecorder{},
		log:      hclog.NewNullLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Phase reports the current phase.
func (s *Scheduler) Phase() Phase { return s.phase }

func (s *Scheduler) enter(p Phase) {
	s.phase = p
	if s.onPhase != nil {
		s.onPhase(p)
	}
}

// Tick runs exactly one cycle at now.
// It returns the presentation error, if any; sampling errors never fail a tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) error {
	s.rec.IncTick()
	st := s.state

	// ------------------------------------------------------------
	// SAMPLING
	// ------------------------------------------------------------

	s.enter(PhaseSampling)

	prev := st.Camera
	st.Camera = s.camera.Sample()
	if err := s.camera.Err(); err != nil {
		st.DeviceHealth = status.HealthError
		st.LastErrorCode = errorCode(err)
		s.rec.IncSampleError(metrics.SourceCamera)
	} else {
		st.DeviceHealth = status.HealthOK
		st.LastErrorCode = 0
	}

	st.Health = s.health.Sample(st.Health)
	if s.health.Err() != nil {
		s.rec.IncSampleError(metrics.SourceHealth)
	}

	// ------------------------------------------------------------
	// DECIDING
	// ------------------------------------------------------------

	s.enter(PhaseDeciding)

	redraw, reason := Decide(now, st.LastRedraw, s.cfg.RedrawInterval, st.Camera != prev)
	if !redraw {
		s.enter(PhaseWaiting)
		return nil
	}

	// ------------------------------------------------------------
	// COMPOSITING
	// ------------------------------------------------------------

	s.enter(PhaseCompositing)

	s.renderer.Render(st.Camera, st.Health)
	st.Redraws++
	st.LastRedraw = now
	s.rec.IncRedraw(reason)

	err := s.submit.Submit(ctx, s.renderer.Bytes())

	s.offer(st.Snapshot())
	s.enter(PhaseWaiting)

	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}

// offer delivers snap to the mirror without blocking. Newest wins.
func (s *Scheduler) offer(snap status.Snapshot) {
	if s.mirror == nil {
		return
	}
	select {
	case s.mirror <- snap:
		return
	default:
	}
	select {
	case <-s.mirror:
	default:
	}
	select {
	case s.mirror <- snap:
	default:
	}
}

// Run ticks until ctx is cancelled or the pool is closed.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	s.log.Info("loop started", "tick", s.cfg.Tick, "redraw_interval", s.cfg.RedrawInterval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			err := s.Tick(ctx, now)
			switch {
			case err == nil:
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, pool.ErrClosed):
				s.log.Info("presentation pool closed, stopping loop")
				return nil
			default:
				s.log.Warn("frame dropped", "error", err)
			}
		}
	}
}
