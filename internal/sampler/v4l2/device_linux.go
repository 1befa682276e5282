// internal/sampler/v4l2/device_linux.go
package v4l2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrUnsupportedType is returned for controls that do not carry a number.
var ErrUnsupportedType = errors.New("v4l2: control is not numeric")

// Device is an open V4L2 character device.
// This adapter is geometry-only: it issues ioctls and unpacks raw values.
// No unit conversion happens here.
type Device struct {
	path string
	fd   int
}

// Open opens the control device non-blocking.
func Open(path string) (*Device, error) {
	if path == "" {
		return nil, errors.New("v4l2: device path required")
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("v4l2: open %s: %w", path, err)
	}
	return &Device{path: path, fd: fd}, nil
}

// Close closes the device.
func (d *Device) Close() error {
	if d == nil || d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// Path returns the device node path.
func (d *Device) Path() string { return d.path }

// ---- sampler.Device interface ----

// QueryFormat returns the current capture frame geometry (VIDIOC_G_FMT).
func (d *Device) QueryFormat() (width, height uint32, err error) {
	f := new(v4l2Format)
	f.Type = bufTypeVideoCapture

	if err := d.ioctl(vidiocGFmt, unsafe.Pointer(f)); err != nil {
		return 0, 0, fmt.Errorf("v4l2: get format: %w", err)
	}

	// v4l2_pix_format: width(4) height(4) ...
	width = binary.NativeEndian.Uint32(f.Fmt.Raw[0:4])
	height = binary.NativeEndian.Uint32(f.Fmt.Raw[4:8])
	return width, height, nil
}

// QueryControl reads one numeric control.
//
// The extended API is tried first. Drivers that reject it (EINVAL/ENOTTY)
// are read through the legacy single-control ioctl, except for 64-bit
// controls which the legacy API cannot carry.
func (d *Device) QueryControl(id ControlID) (int64, error) {
	typ, err := d.controlType(id)
	if err != nil {
		return 0, err
	}
	if typ == TypeString {
		return 0, fmt.Errorf("v4l2: control %s: %w", id, ErrUnsupportedType)
	}

	ctrl := new(v4l2ExtControl)
	ctrl.ID = uint32(id)

	ctrls := new(v4l2ExtControls)
	ctrls.CtrlClass = id.Class()
	ctrls.Count = 1
	ctrls.Controls = unsafe.Pointer(ctrl)

	err = d.ioctl(vidiocGExtCtrls, unsafe.Pointer(ctrls))
	runtime.KeepAlive(ctrl)
	if err == nil {
		if typ == TypeInteger64 {
			return int64(binary.NativeEndian.Uint64(ctrl.Value[:])), nil
		}
		return int64(int32(binary.NativeEndian.Uint32(ctrl.Value[:4]))), nil
	}

	if typ != TypeInteger64 && (errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTTY)) {
		old := new(v4l2Control)
		old.ID = uint32(id)

		legacyErr := d.ioctl(vidiocGCtrl, unsafe.Pointer(old))
		if legacyErr == nil {
			return int64(old.Value), nil
		}
		err = legacyErr
	}

	return 0, fmt.Errorf("v4l2: get control %s: %w", id, err)
}

// controlType queries the control type.
// EINVAL means the driver does not describe the control; the read is still
// attempted with an unknown type.
func (d *Device) controlType(id ControlID) (ControlType, error) {
	q := new(v4l2Queryctrl)
	q.ID = uint32(id)

	err := d.ioctl(vidiocQueryCtrl, unsafe.Pointer(q))
	switch {
	case err == nil:
		return ControlType(q.Type), nil
	case errors.Is(err, unix.EINVAL):
		return TypeUnknown, nil
	default:
		return TypeUnknown, fmt.Errorf("v4l2: query control %s: %w", id, err)
	}
}

// ---- internal helpers ----

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	if d == nil || d.fd < 0 {
		return errors.New("v4l2: device closed")
	}
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
		switch errno {
		case 0:
			return nil
		case unix.EINTR:
			continue
		default:
			return errno
		}
	}
}
