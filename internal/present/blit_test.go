// internal/present/blit_test.go
package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlit_NarrowerDestination(t *testing.T) {
	// 2x2 source, 8-byte stride; destination rows hold one pixel
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	dst := make([]byte, 4*3)

	blit(dst, 4, src, 8, false)

	assert.Equal(t, []byte{1, 2, 3, 4, 9, 10, 11, 12, 0, 0, 0, 0}, dst)
}

func TestBlit_WiderDestination(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]byte, 12)

	blit(dst, 12, src, 4, false)

	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0}, dst)
}

func TestBlit_SwapRB(t *testing.T) {
	src := []byte{10, 20, 30, 255, 1, 2, 3, 4}
	dst := make([]byte, 8)

	blit(dst, 8, src, 8, true)

	assert.Equal(t, []byte{30, 20, 10, 255, 3, 2, 1, 4}, dst)
}

func TestBlit_ZeroStride(t *testing.T) {
	dst := []byte{9, 9}
	blit(dst, 0, []byte{1, 2}, 2, false)
	assert.Equal(t, []byte{9, 9}, dst)
}
