// internal/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/telemetry-overlay/internal/metrics"
	"github.com/tamzrod/telemetry-overlay/internal/pool"
	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// ------------------------------------------------------------
// fakes
// ------------------------------------------------------------

type fakeCamera struct {
	state status.CameraState
	err   error
	calls int
}

func (c *fakeCamera) Sample() status.CameraState { c.calls++; return c.state }
func (c *fakeCamera) Err() error                 { return c.err }

type fakeHealth struct {
	next  status.HealthState
	err   error
	calls int
}

func (h *fakeHealth) Sample(status.HealthState) status.HealthState { h.calls++; return h.next }
func (h *fakeHealth) Err() error                                   { return h.err }

type fakeRenderer struct {
	renders int
	last    status.CameraState
	surface []byte
}

func (r *fakeRenderer) Render(cam status.CameraState, _ status.HealthState) {
	r.renders++
	r.last = cam
}
func (r *fakeRenderer) Bytes() []byte { return r.surface }

type fakeSubmitter struct {
	submits int
	err     error
}

func (s *fakeSubmitter) Submit(context.Context, []byte) error {
	s.submits++
	return s.err
}

type countingRecorder struct {
	metrics.NoopRecorder
	ticks        int
	redraws      map[metrics.RedrawReason]int
	sampleErrors map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{redraws: map[metrics.RedrawReason]int{}, sampleErrors: map[string]int{}}
}

func (r *countingRecorder) IncTick()                           { r.ticks++ }
func (r *countingRecorder) IncRedraw(why metrics.RedrawReason) { r.redraws[why]++ }
func (r *countingRecorder) IncSampleError(src string)          { r.sampleErrors[src]++ }

type rig struct {
	s      *Scheduler
	state  *status.LoopState
	cam    *fakeCamera
	health *fakeHealth
	render *fakeRenderer
	submit *fakeSubmitter
	rec    *countingRecorder
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()
	r := &rig{
		state:  &status.LoopState{},
		cam:    &fakeCamera{state: status.CameraState{ISO: 100, ShutterAngle: 180, FPS: 25, Width: 1920, Height: 1080}},
		health: &fakeHealth{next: status.HealthState{CPUTemperatureC: 45.2}},
		render: &fakeRenderer{surface: make([]byte, 16)},
		submit: &fakeSubmitter{},
		rec:    newCountingRecorder(),
	}
	opts = append([]Option{WithRecorder(r.rec)}, opts...)
	s, err := New(Config{Tick: 10 * time.Millisecond, RedrawInterval: time.Second},
		r.state, r.cam, r.health, r.render, r.submit, opts...)
	require.NoError(t, err)
	r.s = s
	return r
}

// ------------------------------------------------------------
// Decide
// ------------------------------------------------------------

func TestDecide(t *testing.T) {
	t0 := time.Unix(1000, 0)

	ok, why := Decide(t0, time.Time{}, time.Second, false)
	assert.True(t, ok)
	assert.Equal(t, metrics.RedrawInterval, why)

	ok, _ = Decide(t0.Add(999*time.Millisecond), t0, time.Second, false)
	assert.False(t, ok)

	ok, why = Decide(t0.Add(time.Second), t0, time.Second, false)
	assert.True(t, ok)
	assert.Equal(t, metrics.RedrawInterval, why)

	ok, why = Decide(t0.Add(10*time.Millisecond), t0, time.Second, true)
	assert.True(t, ok)
	assert.Equal(t, metrics.RedrawDirty, why)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	st := &status.LoopState{}
	c, h, r, s := &fakeCamera{}, &fakeHealth{}, &fakeRenderer{}, &fakeSubmitter{}

	_, err := New(Config{Tick: 0, RedrawInterval: time.Second}, st, c, h, r, s)
	require.Error(t, err)

	_, err = New(Config{Tick: time.Second, RedrawInterval: time.Millisecond}, st, c, h, r, s)
	require.Error(t, err)

	_, err = New(Config{Tick: time.Millisecond, RedrawInterval: time.Second}, nil, c, h, r, s)
	require.Error(t, err)
}

// ------------------------------------------------------------
// Tick
// ------------------------------------------------------------

func TestTick_FirstTickRedraws(t *testing.T) {
	r := newRig(t)
	now := time.Unix(1000, 0)

	require.NoError(t, r.s.Tick(context.Background(), now))

	assert.Equal(t, 1, r.render.renders)
	assert.Equal(t, 1, r.submit.submits)
	assert.Equal(t, uint64(1), r.state.Redraws)
	assert.Equal(t, now, r.state.LastRedraw)
	assert.Equal(t, r.cam.state, r.state.Camera)
	assert.Equal(t, 45.2, r.state.Health.CPUTemperatureC)
}

func TestTick_SuppressesIdleRedraws(t *testing.T) {
	r := newRig(t)
	now := time.Unix(1000, 0)
	ctx := context.Background()

	require.NoError(t, r.s.Tick(ctx, now))

	// 50 idle ticks, all within the interval
	for i := 1; i <= 50; i++ {
		require.NoError(t, r.s.Tick(ctx, now.Add(time.Duration(i)*10*time.Millisecond)))
	}

	assert.Equal(t, 1, r.render.renders)
	assert.Equal(t, 1, r.submit.submits)
	assert.Equal(t, 51, r.cam.calls, "camera sampled every tick")
	assert.Equal(t, 51, r.health.calls, "health sampled every tick")
	assert.Equal(t, 51, r.rec.ticks)
}

func TestTick_IntervalRedraw(t *testing.T) {
	r := newRig(t)
	now := time.Unix(1000, 0)
	ctx := context.Background()

	require.NoError(t, r.s.Tick(ctx, now))
	require.NoError(t, r.s.Tick(ctx, now.Add(990*time.Millisecond)))
	assert.Equal(t, 1, r.render.renders)

	require.NoError(t, r.s.Tick(ctx, now.Add(time.Second)))
	assert.Equal(t, 2, r.render.renders)
	assert.Equal(t, 2, r.rec.redraws[metrics.RedrawInterval])
}

func TestTick_DirtyRedraw(t *testing.T) {
	r := newRig(t)
	now := time.Unix(1000, 0)
	ctx := context.Background()

	require.NoError(t, r.s.Tick(ctx, now))

	r.cam.state.ISO = 200
	require.NoError(t, r.s.Tick(ctx, now.Add(10*time.Millisecond)))

	assert.Equal(t, 2, r.render.renders)
	assert.Equal(t, uint32(200), r.render.last.ISO)
	assert.Equal(t, 1, r.rec.redraws[metrics.RedrawDirty])

	// unchanged again: suppressed
	require.NoError(t, r.s.Tick(ctx, now.Add(20*time.Millisecond)))
	assert.Equal(t, 2, r.render.renders)
}

func TestTick_HealthChangeAloneDoesNotRedraw(t *testing.T) {
	r := newRig(t)
	now := time.Unix(1000, 0)
	ctx := context.Background()

	require.NoError(t, r.s.Tick(ctx, now))
	r.health.next.CPUTemperatureC = 60
	require.NoError(t, r.s.Tick(ctx, now.Add(10*time.Millisecond)))

	assert.Equal(t, 1, r.render.renders)
	assert.Equal(t, 60.0, r.state.Health.CPUTemperatureC)
}

func TestTick_PhaseOrder(t *testing.T) {
	r := newRig(t)
	var seen []Phase
	r.s.onPhase = func(p Phase) { seen = append(seen, p) }

	now := time.Unix(1000, 0)
	require.NoError(t, r.s.Tick(context.Background(), now))
	assert.Equal(t, []Phase{PhaseSampling, PhaseDeciding, PhaseCompositing, PhaseWaiting}, seen)

	seen = nil
	require.NoError(t, r.s.Tick(context.Background(), now.Add(10*time.Millisecond)))
	assert.Equal(t, []Phase{PhaseSampling, PhaseDeciding, PhaseWaiting}, seen)
	assert.Equal(t, PhaseWaiting, r.s.Phase())
}

func TestTick_CameraErrorSetsDeviceHealth(t *testing.T) {
	r := newRig(t)
	r.cam.err = fmt.Errorf("read gain: %w", syscall.EIO)
	r.health.err = errors.New("thermal")

	require.NoError(t, r.s.Tick(context.Background(), time.Unix(1000, 0)))

	assert.Equal(t, status.HealthError, r.state.DeviceHealth)
	assert.Equal(t, uint16(syscall.EIO), r.state.LastErrorCode)
	assert.Equal(t, 1, r.rec.sampleErrors[metrics.SourceCamera])
	assert.Equal(t, 1, r.rec.sampleErrors[metrics.SourceHealth])

	r.cam.err = nil
	r.health.err = nil
	require.NoError(t, r.s.Tick(context.Background(), time.Unix(1000, int64(10*time.Millisecond))))
	assert.Equal(t, status.HealthOK, r.state.DeviceHealth)
	assert.Zero(t, r.state.LastErrorCode)
}

func TestTick_SubmitErrorStillCountsRedraw(t *testing.T) {
	r := newRig(t)
	r.submit.err = errors.New("sink disabled")

	err := r.s.Tick(context.Background(), time.Unix(1000, 0))
	require.Error(t, err)
	assert.Equal(t, uint64(1), r.state.Redraws)
}

func TestTick_MirrorNewestWins(t *testing.T) {
	mirror := make(chan status.Snapshot, 1)
	r := newRig(t, WithMirror(mirror))
	ctx := context.Background()
	now := time.Unix(1000, 0)

	require.NoError(t, r.s.Tick(ctx, now))
	r.cam.state.ISO = 400
	require.NoError(t, r.s.Tick(ctx, now.Add(10*time.Millisecond)))

	require.Len(t, mirror, 1)
	snap := <-mirror
	assert.Equal(t, uint32(400), snap.Camera.ISO)
	assert.Equal(t, uint64(2), snap.Redraws)
}

func TestErrorCode(t *testing.T) {
	assert.Zero(t, errorCode(nil))
	assert.Equal(t, uint16(1), errorCode(errors.New("x")))
	assert.Equal(t, uint16(syscall.EINVAL), errorCode(errors.Join(errors.New("a"), syscall.EINVAL)))
}

// ------------------------------------------------------------
// Run
// ------------------------------------------------------------

func TestRun_StopsOnCancel(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_StopsWhenPoolClosed(t *testing.T) {
	r := newRig(t)
	r.submit.err = pool.ErrClosed

	done := make(chan error, 1)
	go func() { done <- r.s.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on closed pool")
	}
}
