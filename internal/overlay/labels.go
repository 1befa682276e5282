// internal/overlay/labels.go
package overlay

import (
	"fmt"
	"image"

	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// Size selects the face a label is drawn with.
type Size int

const (
	SizeTelemetry Size = iota
	SizeVersion
)

// Label is one positioned string. At is the text baseline origin.
type Label struct {
	Text string
	At   image.Point
	Size Size
}

// Layout holds the baseline anchors of every label.
// Anchors are chosen so the text fits the logical canvas.
type Layout struct {
	Storage     image.Point
	ISO         image.Point
	Shutter     image.Point
	FPS         image.Point
	Resolution  image.Point
	Temperature image.Point
	CPU         image.Point
	Version     image.Point
}

// DefaultLayout is tuned for the 2048x1152 canvas.
var DefaultLayout = Layout{
	Storage:     image.Pt(50, 1100),
	ISO:         image.Pt(75, 52),
	Shutter:     image.Pt(325, 52),
	FPS:         image.Pt(725, 52),
	Resolution:  image.Pt(1000, 52),
	Temperature: image.Pt(1450, 52),
	CPU:         image.Pt(1750, 52),
	Version:     image.Pt(1860, 1100),
}

// Labels formats the telemetry into positioned strings.
// No IO. No side effects.
func Labels(l Layout, cam status.CameraState, health status.HealthState, version string) []Label {
	return []Label{
		{Text: fmt.Sprintf("%0.1f / %0.1f GB", health.UsedStorageGB, health.TotalStorageGB), At: l.Storage},
		{Text: fmt.Sprintf("ISO: %d", cam.ISO), At: l.ISO},
		{Text: fmt.Sprintf("SHUTTER: %d°", cam.ShutterAngle), At: l.Shutter},
		{Text: fmt.Sprintf("FPS: %d", cam.FPS), At: l.FPS},
		{Text: fmt.Sprintf("RES: %dx%d", cam.Width, cam.Height), At: l.Resolution},
		{Text: fmt.Sprintf("T: %0.2f°C", health.CPUTemperatureC), At: l.Temperature},
		{Text: fmt.Sprintf("CPU: %0.2f%%", health.CPUIdlePercent), At: l.CPU},
		{Text: version, At: l.Version, Size: SizeVersion},
	}
}
