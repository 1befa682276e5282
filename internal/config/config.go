// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Overlay      OverlayConfig      `yaml:"overlay"`
	Device       DeviceConfig       `yaml:"device"`
	Health       HealthConfig       `yaml:"health"`
	Loop         LoopConfig         `yaml:"loop"`
	Presentation PresentationConfig `yaml:"presentation"`
	Mirror       *MirrorConfig      `yaml:"mirror"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// ---- OVERLAY ----

type OverlayConfig struct {
	CanvasWidth       int     `yaml:"canvas_width"`
	CanvasHeight      int     `yaml:"canvas_height"`
	VersionText       string  `yaml:"version_text"`
	TelemetryFontSize float64 `yaml:"telemetry_font_size"`
	VersionFontSize   float64 `yaml:"version_font_size"`
}

// ---- CONTROL DEVICE ----

type DeviceConfig struct {
	Path string `yaml:"path"`

	// Sensor timing constants. Not discoverable at runtime.
	PixelRate float64 `yaml:"pixel_rate"`
	HBlank    float64 `yaml:"hblank"`
}

// ---- HEALTH ----

type HealthConfig struct {
	ProcRoot      string `yaml:"proc_root"`
	SysRoot       string `yaml:"sys_root"`
	ThermalZone   string `yaml:"thermal_zone"`
	StorageMount  string `yaml:"storage_mount"`
	RequireMount  bool   `yaml:"require_mount"`
	CPUIntervalMs int    `yaml:"cpu_interval_ms"`
}

// ---- LOOP ----

type LoopConfig struct {
	TickMs           int `yaml:"tick_ms"`
	RedrawIntervalMs int `yaml:"redraw_interval_ms"`
}

// ---- PRESENTATION ----

type PresentationConfig struct {
	Framebuffer string `yaml:"framebuffer"`

	// Buffers overrides the sink's recommended pool size (0 = recommended).
	Buffers int `yaml:"buffers"`
}

// ---- MIRROR (optional, opt-in) ----

type MirrorConfig struct {
	Transport  string `yaml:"transport"` // "modbus" | "ingest"
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- METRICS ----

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty = disabled
}

// Load reads a YAML config file.
// It does not validate or normalize; callers run Validate then Normalize.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
