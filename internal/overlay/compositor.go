// internal/overlay/compositor.go
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// Ink is the text colour (0.93 grey, opaque).
var Ink = color.RGBA{R: 237, G: 237, B: 237, A: 255}

// Config is the compositor geometry and typography.
type Config struct {
	Width, Height int // already 16-aligned

	TelemetrySize float64 // px
	VersionSize   float64 // px
	VersionText   string
	Layout        Layout
}

// Compositor owns the offscreen surface.
// The surface is premultiplied RGBA; pixels without glyph coverage stay
// fully transparent. Not safe for concurrent use.
type Compositor struct {
	surface *image.RGBA
	faces   [2]font.Face
	ink     *image.Uniform

	layout  Layout
	version string
}

// New allocates the surface and loads the faces.
// Failure is fatal for the caller.
func New(cfg Config) (*Compositor, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("overlay: invalid surface %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width%16 != 0 || cfg.Height%16 != 0 {
		return nil, fmt.Errorf("overlay: surface %dx%d not 16-aligned", cfg.Width, cfg.Height)
	}
	if cfg.TelemetrySize <= 0 || cfg.VersionSize <= 0 {
		return nil, errors.New("overlay: font sizes must be > 0")
	}

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("overlay: parse font: %w", err)
	}

	var faces [2]font.Face
	for i, size := range []float64{cfg.TelemetrySize, cfg.VersionSize} {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("overlay: face %.0fpx: %w", size, err)
		}
		faces[i] = face
	}

	return &Compositor{
		surface: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		faces:   faces,
		ink:     image.NewUniform(Ink),
		layout:  cfg.Layout,
		version: cfg.VersionText,
	}, nil
}

// Render clears the surface to transparent and paints the telemetry labels.
func (c *Compositor) Render(cam status.CameraState, health status.HealthState) {
	clear(c.surface.Pix)

	for _, l := range Labels(c.layout, cam, health, c.version) {
		d := font.Drawer{
			Dst:  c.surface,
			Src:  c.ink,
			Face: c.faces[l.Size],
			Dot:  fixed.P(l.At.X, l.At.Y),
		}
		d.DrawString(l.Text)
	}
}

// Surface exposes the raster for inspection.
func (c *Compositor) Surface() *image.RGBA { return c.surface }

// Bytes returns the raw surface memory: Stride * Height bytes.
func (c *Compositor) Bytes() []byte { return c.surface.Pix }

// Stride returns the row pitch in bytes.
func (c *Compositor) Stride() int { return c.surface.Stride }

// FrameSize returns the number of bytes one composited frame occupies.
func (c *Compositor) FrameSize() int {
	return c.surface.Stride * c.surface.Rect.Dy()
}

// Close releases the font faces.
func (c *Compositor) Close() error {
	var errs []error
	for _, f := range c.faces {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	return errors.Join(errs...)
}
