// internal/pool/pool_test.go
package pool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsSmallPool(t *testing.T) {
	_, err := New(1, 64)
	require.ErrorIs(t, err, ErrPoolTooSmall)

	_, err = New(2, 0)
	require.Error(t, err)

	p, err := New(2, 64)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Count())
	assert.Equal(t, 2, p.Free())
	assert.Equal(t, 64, p.Size())
}

func TestAcquire_DistinctBuffers(t *testing.T) {
	p, err := New(3, 8)
	require.NoError(t, err)

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		b, err := p.Acquire(context.Background())
		require.NoError(t, err)
		require.Len(t, b.Data, 8)
		require.False(t, seen[b.Index()], "buffer %d handed out twice", b.Index())
		seen[b.Index()] = true
	}
	assert.Equal(t, 0, p.Free())
}

func TestAcquire_BlocksUntilRelease(t *testing.T) {
	p, err := New(2, 8)
	require.NoError(t, err)

	a, _ := p.Acquire(context.Background())
	b, _ := p.Acquire(context.Background())

	got := make(chan *Buffer, 2)
	for i := 0; i < 2; i++ {
		go func() {
			buf, err := p.Acquire(context.Background())
			if err == nil {
				got <- buf
			}
		}()
	}

	select {
	case <-got:
		t.Fatal("acquire returned while pool exhausted")
	case <-time.After(50 * time.Millisecond):
	}

	// one release unblocks exactly one acquirer
	require.NoError(t, a.Release())

	select {
	case buf := <-got:
		assert.Same(t, a, buf)
	case <-time.After(time.Second):
		t.Fatal("acquire did not unblock after release")
	}

	select {
	case <-got:
		t.Fatal("second acquirer unblocked by a single release")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, b.Release())
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("second acquirer never unblocked")
	}
}

func TestRelease_Twice(t *testing.T) {
	p, err := New(2, 8)
	require.NoError(t, err)

	b, err := p.Acquire(context.Background())
	require.NoError(t, err)

	require.NoError(t, b.Release())
	require.ErrorIs(t, b.Release(), ErrNotAcquired)
	assert.Equal(t, 2, p.Free())
}

func TestRelease_FromOtherGoroutine(t *testing.T) {
	p, err := New(2, 8)
	require.NoError(t, err)

	b, _ := p.Acquire(context.Background())
	b.Length = 8

	done := make(chan error)
	go func() { done <- b.Release() }()
	require.NoError(t, <-done)

	assert.Zero(t, b.Length)
	assert.Equal(t, 2, p.Free())
}

func TestClose_UnblocksAcquire(t *testing.T) {
	p, err := New(2, 8)
	require.NoError(t, err)

	_, _ = p.Acquire(context.Background())
	_, _ = p.Acquire(context.Background())

	errc := make(chan error, 1)
	go func() {
		_, err := p.Acquire(context.Background())
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	p.Close()
	p.Close() // idempotent

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, ErrClosed))
	case <-time.After(time.Second):
		t.Fatal("close did not unblock acquire")
	}
}

func TestAcquire_ContextCancel(t *testing.T) {
	p, err := New(2, 8)
	require.NoError(t, err)

	_, _ = p.Acquire(context.Background())
	_, _ = p.Acquire(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = p.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
