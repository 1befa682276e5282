// internal/present/pipeline.go
package present

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/telemetry-overlay/internal/metrics"
	"github.com/tamzrod/telemetry-overlay/internal/pool"
)

var (
	ErrFrameTooLarge = errors.New("present: frame larger than pool buffer")
	ErrFrameSize     = errors.New("present: surface size mismatch")
	ErrSinkClosed    = errors.New("present: sink closed")
)

// Sink consumes filled buffers.
// The sink owns a buffer from Send until it calls buf.Release,
// usually from its own goroutine.
type Sink interface {
	Send(buf *pool.Buffer) error
	BufferCount() int
	Close() error
}

// Pipeline moves composited surfaces into pool buffers and on to the sink.
type Pipeline struct {
	pool      *pool.Pool
	sink      Sink
	frameSize int
	rec       metrics.Recorder
}

// NewPipeline binds a pool to a sink for frames of frameSize bytes.
func NewPipeline(p *pool.Pool, sink Sink, frameSize int, rec metrics.Recorder) (*Pipeline, error) {
	if frameSize > p.Size() {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, frameSize, p.Size())
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Pipeline{
		pool:      p,
		sink:      sink,
		frameSize: frameSize,
		rec:       rec,
	}, nil
}

// Submit copies exactly one frame into a free buffer and hands it to the sink.
// Blocks while every buffer is owned by the sink.
func (p *Pipeline) Submit(ctx context.Context, surface []byte) error {
	if len(surface) != p.frameSize {
		return fmt.Errorf("%w: got %d, want %d", ErrFrameSize, len(surface), p.frameSize)
	}

	start := time.Now()
	buf, err := p.pool.Acquire(ctx)
	p.rec.ObserveAcquireWait(time.Since(start))
	if err != nil {
		return err
	}

	// ------------------------------------------------------------
	// buffer is ours until Send succeeds
	// ------------------------------------------------------------

	copy(buf.Data, surface)
	buf.Length = len(buf.Data)

	if err := p.sink.Send(buf); err != nil {
		_ = buf.Release()
		p.rec.IncSubmitError()
		return fmt.Errorf("present: submit: %w", err)
	}
	return nil
}
