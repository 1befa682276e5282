// internal/sampler/v4l2/ioctl.go
package v4l2

import "unsafe"

// ---- _IOC encoding (asm-generic) ----
//
//   dir(2) size(14) type(8) nr(8)

const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocWrite = 1
	iocRead  = 2
)

func iowr(typ byte, nr uintptr, size uintptr) uintptr {
	return (iocRead|iocWrite)<<iocDirShift |
		size<<iocSizeShift |
		uintptr(typ)<<iocTypeShift |
		nr<<iocNRShift
}

// ---- kernel structs (layout-locked) ----

// v4l2Format mirrors struct v4l2_format.
// The union holds pointers, so it is pointer-aligned: 208 bytes on 64-bit,
// 204 on 32-bit.
type v4l2Format struct {
	Type uint32
	Fmt  struct {
		_   [0]uintptr
		Raw [200]byte
	}
}

// v4l2Queryctrl mirrors struct v4l2_queryctrl (68 bytes).
type v4l2Queryctrl struct {
	ID           uint32
	Type         uint32
	Name         [32]byte
	Minimum      int32
	Maximum      int32
	Step         int32
	DefaultValue int32
	Flags        uint32
	Reserved     [2]uint32
}

// v4l2Control mirrors struct v4l2_control (8 bytes).
type v4l2Control struct {
	ID    uint32
	Value int32
}

// v4l2ExtControl mirrors the packed struct v4l2_ext_control (20 bytes).
// Value is the value/value64/ptr union in native byte order.
type v4l2ExtControl struct {
	ID        uint32
	Size      uint32
	Reserved2 uint32
	Value     [8]byte
}

// v4l2ExtControls mirrors struct v4l2_ext_controls.
type v4l2ExtControls struct {
	CtrlClass uint32
	Count     uint32
	ErrorIdx  uint32
	RequestFD int32
	Reserved  [1]uint32
	Controls  unsafe.Pointer
}

const bufTypeVideoCapture = 1

var (
	vidiocGFmt      = iowr('V', 4, unsafe.Sizeof(v4l2Format{}))
	vidiocGCtrl     = iowr('V', 27, unsafe.Sizeof(v4l2Control{}))
	vidiocQueryCtrl = iowr('V', 36, unsafe.Sizeof(v4l2Queryctrl{}))
	vidiocGExtCtrls = iowr('V', 71, unsafe.Sizeof(v4l2ExtControls{}))
)
