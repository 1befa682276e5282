// internal/present/framebuffer_linux.go
package present

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"

	"github.com/tamzrod/telemetry-overlay/internal/pool"
)

// FramebufferBuffers is the pool size the framebuffer sink works best with:
// one buffer being scanned out, one queued, one being filled.
const FramebufferBuffers = 3

// Framebuffer presents frames on a Linux fbdev device.
// Buffers are consumed on the sink's own goroutine and released there.
type Framebuffer struct {
	log   hclog.Logger
	mem   []byte
	unmap func() error

	stride    int // fb line length
	srcStride int // submitted frame stride
	swapRB    bool

	mu     sync.RWMutex
	closed bool
	in     chan *pool.Buffer
	done   chan struct{}
}

// OpenFramebuffer maps path and starts the consumer goroutine.
// srcStride is the row pitch of the frames that will be submitted;
// buffers is the pool size, so Send never waits on the queue.
func OpenFramebuffer(path string, srcStride, buffers int, log hclog.Logger) (*Framebuffer, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("framebuffer: open %s: %w", path, err)
	}
	fd := int(f.Fd())

	var vinfo fbVarScreenInfo
	if err := fbIoctl(fd, fbioGetVScreenInfo, unsafe.Pointer(&vinfo)); err != nil {
		f.Close()
		return nil, fmt.Errorf("framebuffer: FBIOGET_VSCREENINFO: %w", err)
	}
	var finfo fbFixScreenInfo
	if err := fbIoctl(fd, fbioGetFScreenInfo, unsafe.Pointer(&finfo)); err != nil {
		f.Close()
		return nil, fmt.Errorf("framebuffer: FBIOGET_FSCREENINFO: %w", err)
	}

	if vinfo.BitsPerPixel != 32 {
		f.Close()
		return nil, fmt.Errorf("framebuffer: %s is %d bpp, need 32", path, vinfo.BitsPerPixel)
	}
	if finfo.SmemLen == 0 || finfo.LineLength == 0 {
		f.Close()
		return nil, fmt.Errorf("framebuffer: %s reports no memory", path)
	}

	mem, err := unix.Mmap(fd, 0, int(finfo.SmemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("framebuffer: mmap: %w", err)
	}

	fb := newFramebuffer(mem, int(finfo.LineLength), srcStride, vinfo.Red.Offset == 16, buffers, log)
	fb.unmap = func() error {
		var firstErr error
		if err := unix.Munmap(mem); err != nil {
			firstErr = fmt.Errorf("framebuffer: munmap: %w", err)
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}

	log.Info("framebuffer opened",
		"device", path,
		"id", string(bytes.TrimRight(finfo.ID[:], "\x00")),
		"xres", vinfo.Xres,
		"yres", vinfo.Yres,
		"line_length", finfo.LineLength,
		"bgra", fb.swapRB,
	)

	go fb.run()
	return fb, nil
}

// newFramebuffer wraps already mapped memory. The caller starts run.
func newFramebuffer(mem []byte, stride, srcStride int, swapRB bool, buffers int, log hclog.Logger) *Framebuffer {
	return &Framebuffer{
		log:       log,
		mem:       mem,
		unmap:     func() error { return nil },
		stride:    stride,
		srcStride: srcStride,
		swapRB:    swapRB,
		in:        make(chan *pool.Buffer, max(buffers, FramebufferBuffers)),
		done:      make(chan struct{}),
	}
}

func (fb *Framebuffer) run() {
	defer close(fb.done)
	for buf := range fb.in {
		blit(fb.mem, fb.stride, buf.Data[:buf.Length], fb.srcStride, fb.swapRB)
		if err := buf.Release(); err != nil {
			fb.log.Error("buffer release failed", "buffer", buf.Index(), "error", err)
		}
	}
}

// Send queues buf for display.
func (fb *Framebuffer) Send(buf *pool.Buffer) error {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	if fb.closed {
		return ErrSinkClosed
	}
	fb.in <- buf
	return nil
}

// BufferCount is the recommended pool size.
func (fb *Framebuffer) BufferCount() int { return FramebufferBuffers }

// Close disables input, drains queued buffers and unmaps the device.
func (fb *Framebuffer) Close() error {
	fb.mu.Lock()
	if fb.closed {
		fb.mu.Unlock()
		return nil
	}
	fb.closed = true
	close(fb.in)
	fb.mu.Unlock()

	<-fb.done
	return fb.unmap()
}
