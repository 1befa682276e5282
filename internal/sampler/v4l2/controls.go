// internal/sampler/v4l2/controls.go
package v4l2

import "fmt"

// ControlID is a V4L2 control identifier.
type ControlID uint32

// Controls read by the camera sampler.
const (
	CIDExposure      ControlID = 0x00980911 // V4L2_CID_EXPOSURE, in lines
	CIDVerticalBlank ControlID = 0x009e0901 // V4L2_CID_VBLANK, in lines
	CIDHorizBlank    ControlID = 0x009e0902 // V4L2_CID_HBLANK, in pixels
	CIDAnalogueGain  ControlID = 0x009e0903 // V4L2_CID_ANALOGUE_GAIN, sensor code
	CIDPixelRate     ControlID = 0x009f0902 // V4L2_CID_PIXEL_RATE, int64
)

var controlNames = map[ControlID]string{
	CIDExposure:      "exposure",
	CIDVerticalBlank: "vertical_blanking",
	CIDHorizBlank:    "horizontal_blanking",
	CIDAnalogueGain:  "analogue_gain",
	CIDPixelRate:     "pixel_rate",
}

func (id ControlID) String() string {
	if n, ok := controlNames[id]; ok {
		return n
	}
	return fmt.Sprintf("0x%08x", uint32(id))
}

// Class returns the control class, as V4L2_CTRL_ID2CLASS.
func (id ControlID) Class() uint32 {
	return uint32(id) & 0x0fff0000
}

// ControlType is the v4l2_ctrl_type reported by VIDIOC_QUERYCTRL.
type ControlType uint32

const (
	TypeUnknown   ControlType = 0
	TypeInteger   ControlType = 1
	TypeBoolean   ControlType = 2
	TypeMenu      ControlType = 3
	TypeButton    ControlType = 4
	TypeInteger64 ControlType = 5
	TypeString    ControlType = 7
)
