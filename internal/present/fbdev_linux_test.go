// internal/present/fbdev_linux_test.go
package present

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestScreenInfoLayout(t *testing.T) {
	assert.Equal(t, uintptr(160), unsafe.Sizeof(fbVarScreenInfo{}))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(fbVarScreenInfo{}.BitsPerPixel))
	assert.Equal(t, uintptr(32), unsafe.Offsetof(fbVarScreenInfo{}.Red))

	if unsafe.Sizeof(uintptr(0)) == 8 {
		assert.Equal(t, uintptr(80), unsafe.Sizeof(fbFixScreenInfo{}))
		assert.Equal(t, uintptr(48), unsafe.Offsetof(fbFixScreenInfo{}.LineLength))
	}
}

func TestOpenFramebuffer_Missing(t *testing.T) {
	_, err := OpenFramebuffer(t.TempDir()+"/fb9", 16, 3, nil)
	assert.Error(t, err)
}
