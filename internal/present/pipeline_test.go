// internal/present/pipeline_test.go
package present

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/telemetry-overlay/internal/pool"
)

// fakeSink holds buffers until the test releases them, or releases them
// itself on another goroutine when auto is set.
type fakeSink struct {
	mu      sync.Mutex
	auto    bool
	held    []*pool.Buffer
	frames  [][]byte
	owners  map[int]bool
	doubled bool
	fail    error
}

func newFakeSink(auto bool) *fakeSink {
	return &fakeSink{auto: auto, owners: map[int]bool{}}
}

func (s *fakeSink) Send(buf *pool.Buffer) error {
	if s.fail != nil {
		return s.fail
	}
	s.mu.Lock()
	if s.owners[buf.Index()] {
		s.doubled = true
	}
	s.owners[buf.Index()] = true
	s.frames = append(s.frames, append([]byte(nil), buf.Data[:buf.Length]...))
	s.mu.Unlock()

	if s.auto {
		go func() {
			time.Sleep(time.Millisecond)
			s.release(buf)
		}()
		return nil
	}

	s.mu.Lock()
	s.held = append(s.held, buf)
	s.mu.Unlock()
	return nil
}

func (s *fakeSink) release(buf *pool.Buffer) {
	s.mu.Lock()
	delete(s.owners, buf.Index())
	s.mu.Unlock()
	_ = buf.Release()
}

func (s *fakeSink) releaseOldest() {
	s.mu.Lock()
	buf := s.held[0]
	s.held = s.held[1:]
	s.mu.Unlock()
	s.release(buf)
}

func (s *fakeSink) BufferCount() int { return 2 }
func (s *fakeSink) Close() error     { return nil }

func TestNewPipeline_FrameTooLarge(t *testing.T) {
	p, err := pool.New(2, 16)
	require.NoError(t, err)

	_, err = NewPipeline(p, newFakeSink(true), 32, nil)
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestSubmit_CopiesFrame(t *testing.T) {
	p, err := pool.New(2, 8)
	require.NoError(t, err)
	sink := newFakeSink(false)

	pl, err := NewPipeline(p, sink, 8, nil)
	require.NoError(t, err)

	frame := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, pl.Submit(context.Background(), frame))

	// caller may reuse its surface immediately
	frame[0] = 99

	require.Len(t, sink.frames, 1)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, sink.frames[0])
	assert.Equal(t, 8, sink.held[0].Length)
}

func TestSubmit_SizeMismatch(t *testing.T) {
	p, _ := pool.New(2, 8)
	pl, err := NewPipeline(p, newFakeSink(true), 8, nil)
	require.NoError(t, err)

	require.ErrorIs(t, pl.Submit(context.Background(), make([]byte, 4)), ErrFrameSize)
	assert.Equal(t, 2, p.Free())
}

func TestSubmit_StallsUntilSinkReleases(t *testing.T) {
	p, _ := pool.New(2, 4)
	sink := newFakeSink(false)
	pl, err := NewPipeline(p, sink, 4, nil)
	require.NoError(t, err)

	frame := []byte{1, 1, 1, 1}
	require.NoError(t, pl.Submit(context.Background(), frame))
	require.NoError(t, pl.Submit(context.Background(), frame))

	done := make(chan error, 1)
	go func() { done <- pl.Submit(context.Background(), frame) }()

	select {
	case <-done:
		t.Fatal("third submit did not stall with both buffers owned by the sink")
	case <-time.After(50 * time.Millisecond):
	}

	sink.releaseOldest()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("submit did not resume after release")
	}
}

func TestSubmit_SinkErrorReturnsBuffer(t *testing.T) {
	p, _ := pool.New(2, 4)
	sink := newFakeSink(false)
	sink.fail = errors.New("disabled")

	pl, err := NewPipeline(p, sink, 4, nil)
	require.NoError(t, err)

	require.Error(t, pl.Submit(context.Background(), make([]byte, 4)))
	assert.Equal(t, 2, p.Free())
}

func TestSubmit_NoBufferHasTwoOwners(t *testing.T) {
	p, _ := pool.New(3, 64)
	sink := newFakeSink(true)
	pl, err := NewPipeline(p, sink, 64, nil)
	require.NoError(t, err)

	frame := make([]byte, 64)
	for i := 0; i < 200; i++ {
		frame[0] = byte(i)
		require.NoError(t, pl.Submit(context.Background(), frame))
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.False(t, sink.doubled)
	assert.Len(t, sink.frames, 200)
}
