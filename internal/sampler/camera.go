// internal/sampler/camera.go
package sampler

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-hclog"

	"github.com/tamzrod/telemetry-overlay/internal/sampler/v4l2"
	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// GainCodeMax is the exclusive upper bound of the analogue gain code.
// At 1024 the gain curve divides by zero.
const GainCodeMax = 1024

// ErrGainOutOfRange is reported when the gain code has no ISO equivalent.
var ErrGainOutOfRange = errors.New("sampler: analogue gain code out of range")

// ErrDegenerateTiming is reported when fps or shutter angle cannot be derived.
var ErrDegenerateTiming = errors.New("sampler: degenerate frame timing")

// Device abstracts the control interface the camera sampler needs.
// The sampler depends on raw values only.
type Device interface {
	QueryFormat() (width, height uint32, err error)
	QueryControl(id v4l2.ControlID) (int64, error)
}

// Timing holds the sensor timing constants.
// They are supplied by configuration, not discovered.
type Timing struct {
	PixelRate float64 // pixels per second
	HBlank    float64 // pixels
}

// Camera derives CameraState from raw control reads.
// Any failed read keeps the affected fields at their previous value.
type Camera struct {
	dev    Device
	timing Timing
	log    hclog.Logger

	state   status.CameraState
	lastErr error
	streak  *streaks
}

// NewCamera creates a camera sampler starting from zero state.
func NewCamera(dev Device, timing Timing, log hclog.Logger) (*Camera, error) {
	if dev == nil {
		return nil, errors.New("sampler: device required")
	}
	if timing.PixelRate <= 0 {
		return nil, errors.New("sampler: pixel rate must be > 0")
	}
	if timing.HBlank < 0 {
		return nil, errors.New("sampler: hblank must be >= 0")
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Camera{
		dev:    dev,
		timing: timing,
		log:    log,
		streak: newStreaks(log),
	}, nil
}

// Sample performs exactly one read cycle and returns the updated state.
// Fields whose inputs could not be read keep their previous value.
func (c *Camera) Sample() status.CameraState {
	next := c.state
	var errs []error

	// ---- geometry ----
	w, h, err := c.dev.QueryFormat()
	geometryOK := c.streak.observe("format", err)
	if geometryOK {
		next.Width, next.Height = w, h
	} else {
		errs = append(errs, err)
	}

	// ---- gain → ISO ----
	if gain, err := c.read(v4l2.CIDAnalogueGain); err != nil {
		errs = append(errs, err)
	} else if iso, ok := ISO(gain); ok {
		c.streak.observe("iso", nil)
		next.ISO = iso
	} else {
		err := fmt.Errorf("%w: %d", ErrGainOutOfRange, gain)
		c.streak.observe("iso", err)
		errs = append(errs, err)
	}

	// ---- blanking → fps → shutter ----
	// both depend on this cycle's geometry
	if geometryOK {
		errs = append(errs, c.sampleTiming(&next)...)
	}

	c.state = next
	c.lastErr = errors.Join(errs...)
	return next
}

// sampleTiming derives FPS and shutter angle into next.
// A field is only written when every input it depends on was read.
func (c *Camera) sampleTiming(next *status.CameraState) []error {
	vblank, err := c.read(v4l2.CIDVerticalBlank)
	if err != nil {
		return []error{err}
	}

	fps, ok := FrameRate(c.timing, next.Width, next.Height, vblank)
	if !ok {
		err := fmt.Errorf("%w: %dx%d vblank %d", ErrDegenerateTiming, next.Width, next.Height, vblank)
		c.streak.observe("fps", err)
		return []error{err}
	}
	c.streak.observe("fps", nil)
	next.FPS = uint32(math.Trunc(fps))

	lines, err := c.read(v4l2.CIDExposure)
	if err != nil {
		return []error{err}
	}
	angle, ok := ShutterAngle(c.timing, next.Width, fps, lines)
	if !ok {
		err := fmt.Errorf("%w: %d exposure lines at %.2f fps", ErrDegenerateTiming, lines, fps)
		c.streak.observe("shutter", err)
		return []error{err}
	}
	c.streak.observe("shutter", nil)
	next.ShutterAngle = angle
	return nil
}

// CheckTiming compares the configured timing with what the sensor reports.
// A mismatch is only logged: the configured values stay authoritative.
func CheckTiming(dev Device, t Timing, log hclog.Logger) {
	if log == nil {
		return
	}
	for _, c := range []struct {
		id         v4l2.ControlID
		configured float64
	}{
		{v4l2.CIDPixelRate, t.PixelRate},
		{v4l2.CIDHorizBlank, t.HBlank},
	} {
		v, err := dev.QueryControl(c.id)
		switch {
		case err != nil:
			log.Debug("sensor timing not readable", "control", c.id.String(), "error", err)
		case float64(v) != c.configured:
			log.Warn("sensor timing differs from configuration",
				"control", c.id.String(),
				"sensor", v,
				"configured", c.configured,
			)
		}
	}
}

// State returns the last sampled state without touching the device.
func (c *Camera) State() status.CameraState { return c.state }

// Err returns the joined errors of the last Sample, or nil.
func (c *Camera) Err() error { return c.lastErr }

func (c *Camera) read(id v4l2.ControlID) (int64, error) {
	v, err := c.dev.QueryControl(id)
	c.streak.observe(id.String(), err)
	return v, err
}

// ---- conversions (pure) ----

// ISO converts an analogue gain code to its ISO equivalent:
// round(1024 / (1024 - g) * 100).
// Codes outside [0, GainCodeMax) return ok=false.
func ISO(gainCode int64) (uint32, bool) {
	if gainCode < 0 || gainCode >= GainCodeMax {
		return 0, false
	}
	return uint32(math.Round(isoExact(gainCode))), true
}

func isoExact(gainCode int64) float64 {
	return GainCodeMax / (GainCodeMax - float64(gainCode)) * 100
}

// FrameRate returns pixelRate / ((width + hblank) * (height + vblank)).
// ok is false for an unknown (zero) geometry or a non-positive frame period.
func FrameRate(t Timing, width, height uint32, vblank int64) (float64, bool) {
	if width == 0 || height == 0 {
		return 0, false
	}
	period := (float64(width) + t.HBlank) * (float64(height) + float64(vblank))
	if period <= 0 || t.PixelRate <= 0 {
		return 0, false
	}
	return t.PixelRate / period, true
}

// ShutterAngle converts an exposure in lines to degrees:
// round(1 + 360 * fps / (1 / exposureTime)), with
// exposureTime = (width + hblank) / pixelRate * lines.
//
// TODO: the +1 offset and the doubled reciprocal look like a rounding
// workaround in the sensor tooling; drop them once the on-set readout is
// cross-checked against a light meter.
func ShutterAngle(t Timing, width uint32, fps float64, lines int64) (uint32, bool) {
	if t.PixelRate <= 0 || lines < 0 || fps < 0 {
		return 0, false
	}
	exposure := (float64(width) + t.HBlank) / t.PixelRate * float64(lines)
	angle := 1 + 360*fps/(1/exposure)
	if math.IsNaN(angle) || math.IsInf(angle, 0) || angle < 0 || angle > math.MaxUint32 {
		return 0, false
	}
	return uint32(math.Round(angle)), true
}
