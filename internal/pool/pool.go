// internal/pool/pool.go
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// MinBuffers is the smallest pool that allows one buffer to be
// composited while another is being presented.
const MinBuffers = 2

var (
	ErrPoolTooSmall = errors.New("pool: at least 2 buffers required")
	ErrClosed       = errors.New("pool: closed")
	ErrNotAcquired  = errors.New("pool: buffer released while not acquired")
)

// Buffer is one fixed-size presentation buffer.
//
// Ownership: pool -> Acquire caller -> sink -> Release -> pool.
// Exactly one owner at a time.
type Buffer struct {
	Data   []byte
	Length int // bytes valid in Data

	index int
	pool  *Pool
	held  atomic.Bool
}

// Index identifies the buffer within its pool.
func (b *Buffer) Index() int { return b.index }

// Release hands the buffer back to its pool.
// Safe from any goroutine. Touches only the free list.
func (b *Buffer) Release() error {
	if !b.held.CompareAndSwap(true, false) {
		return ErrNotAcquired
	}
	b.Length = 0
	// free has capacity for every buffer: never blocks
	b.pool.free <- b
	return nil
}

// Pool is a bounded set of equally sized buffers.
// The buffer count is fixed at construction.
type Pool struct {
	free    chan *Buffer
	size    int
	count   int
	closed  chan struct{}
	closeMu sync.Once
}

// New allocates count buffers of size bytes each.
func New(count, size int) (*Pool, error) {
	if count < MinBuffers {
		return nil, fmt.Errorf("%w (got %d)", ErrPoolTooSmall, count)
	}
	if size <= 0 {
		return nil, fmt.Errorf("pool: invalid buffer size %d", size)
	}

	p := &Pool{
		free:   make(chan *Buffer, count),
		size:   size,
		count:  count,
		closed: make(chan struct{}),
	}
	for i := 0; i < count; i++ {
		p.free <- &Buffer{
			Data:  make([]byte, size),
			index: i,
			pool:  p,
		}
	}
	return p, nil
}

// Acquire blocks until a buffer is free.
// There is no timeout: a stalled sink stalls the caller.
// Returns ErrClosed once the pool is closed, or ctx.Err() on cancellation.
func (p *Pool) Acquire(ctx context.Context) (*Buffer, error) {
	select {
	case <-p.closed:
		return nil, ErrClosed
	default:
	}

	select {
	case b := <-p.free:
		b.held.Store(true)
		return b, nil
	case <-p.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close wakes blocked acquirers. Buffers still held may be released
// afterwards; they are simply parked.
func (p *Pool) Close() {
	p.closeMu.Do(func() { close(p.closed) })
}

// Free reports how many buffers are currently in the pool.
func (p *Pool) Free() int { return len(p.free) }

// Count is the fixed number of buffers.
func (p *Pool) Count() int { return p.count }

// Size is the capacity of each buffer in bytes.
func (p *Pool) Size() int { return p.size }
