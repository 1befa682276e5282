// internal/config/validate.go
package config

import (
	"fmt"
	"strconv"

	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// Zero values are accepted; Normalize fills them.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// OVERLAY GEOMETRY
	// ------------------------------------------------------------

	o := cfg.Overlay
	if o.CanvasWidth < 0 || o.CanvasHeight < 0 {
		return fmt.Errorf(
			"overlay: canvas %dx%d must not be negative",
			o.CanvasWidth,
			o.CanvasHeight,
		)
	}
	if o.TelemetryFontSize < 0 || o.VersionFontSize < 0 {
		return fmt.Errorf("overlay: font sizes must not be negative")
	}

	// ------------------------------------------------------------
	// SENSOR TIMING
	// ------------------------------------------------------------

	if cfg.Device.PixelRate < 0 {
		return fmt.Errorf("device: pixel_rate %v must not be negative", cfg.Device.PixelRate)
	}
	if cfg.Device.HBlank < 0 {
		return fmt.Errorf("device: hblank %v must not be negative", cfg.Device.HBlank)
	}

	// ------------------------------------------------------------
	// HEALTH
	// ------------------------------------------------------------

	if z := cfg.Health.ThermalZone; z != "" {
		if _, err := strconv.ParseUint(z, 10, 32); err != nil {
			return fmt.Errorf("health: thermal_zone %q must be a zone number", z)
		}
	}
	if cfg.Health.CPUIntervalMs < 0 {
		return fmt.Errorf("health: cpu_interval_ms must not be negative")
	}

	// ------------------------------------------------------------
	// LOOP TIMING
	// ------------------------------------------------------------

	if cfg.Loop.TickMs < 0 || cfg.Loop.RedrawIntervalMs < 0 {
		return fmt.Errorf("loop: tick_ms and redraw_interval_ms must not be negative")
	}
	if cfg.Loop.TickMs > 0 && cfg.Loop.RedrawIntervalMs > 0 &&
		cfg.Loop.TickMs > cfg.Loop.RedrawIntervalMs {
		return fmt.Errorf(
			"loop: tick_ms %d exceeds redraw_interval_ms %d",
			cfg.Loop.TickMs,
			cfg.Loop.RedrawIntervalMs,
		)
	}

	// ------------------------------------------------------------
	// PRESENTATION
	// ------------------------------------------------------------

	if cfg.Presentation.Buffers < 0 {
		return fmt.Errorf("presentation: buffers must not be negative")
	}

	// ------------------------------------------------------------
	// MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if m := cfg.Mirror; m != nil {
		switch m.Transport {
		case "", "modbus", "ingest":
		default:
			return fmt.Errorf("mirror: unknown transport %q", m.Transport)
		}

		if m.Endpoint == "" {
			return fmt.Errorf("mirror: endpoint required")
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(m.DeviceName); i++ {
			if m.DeviceName[i] > 0x7F {
				return fmt.Errorf("mirror: device_name must contain ASCII characters only")
			}
		}

		// the whole block must stay inside the 16-bit address space
		if uint32(m.BaseSlot)*status.SlotsPerDevice+status.SlotsPerDevice-1 > 0xFFFF {
			return fmt.Errorf("mirror: base_slot %d out of address range", m.BaseSlot)
		}

		if m.TimeoutMs < 0 {
			return fmt.Errorf("mirror: timeout_ms must not be negative")
		}
	}

	return nil
}
