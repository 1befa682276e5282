// internal/config/normalize.go
package config

// Defaults mirror the stock camera build.
const (
	DefaultCanvasWidth       = 2048
	DefaultCanvasHeight      = 1152
	DefaultVersionText       = "CINEPI V1.0.0"
	DefaultTelemetryFontSize = 36.0
	DefaultVersionFontSize   = 24.0

	DefaultDevicePath = "/dev/video0"
	DefaultPixelRate  = 840000000.0
	DefaultHBlank     = 10712.0

	DefaultProcRoot      = "/proc"
	DefaultSysRoot       = "/sys"
	DefaultThermalZone   = "0"
	DefaultStorageMount  = "/media/RAW"
	DefaultCPUIntervalMs = 1000

	DefaultTickMs           = 10
	DefaultRedrawIntervalMs = 1000

	DefaultFramebuffer = "/dev/fb0"

	DefaultMirrorTransport = "modbus"
	DefaultMirrorTimeoutMs = 500

	// MinBuffers is the smallest pool the presentation path accepts.
	MinBuffers = 2
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// OVERLAY
	// ------------------------------------------------------------

	o := &cfg.Overlay
	if o.CanvasWidth == 0 {
		o.CanvasWidth = DefaultCanvasWidth
	}
	if o.CanvasHeight == 0 {
		o.CanvasHeight = DefaultCanvasHeight
	}
	o.CanvasWidth = Align16(o.CanvasWidth)
	o.CanvasHeight = Align16(o.CanvasHeight)

	if o.VersionText == "" {
		o.VersionText = DefaultVersionText
	}
	if o.TelemetryFontSize == 0 {
		o.TelemetryFontSize = DefaultTelemetryFontSize
	}
	if o.VersionFontSize == 0 {
		o.VersionFontSize = DefaultVersionFontSize
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.Device.Path == "" {
		cfg.Device.Path = DefaultDevicePath
	}
	if cfg.Device.PixelRate == 0 {
		cfg.Device.PixelRate = DefaultPixelRate
	}
	if cfg.Device.HBlank == 0 {
		cfg.Device.HBlank = DefaultHBlank
	}

	// ------------------------------------------------------------
	// HEALTH
	// ------------------------------------------------------------

	h := &cfg.Health
	if h.ProcRoot == "" {
		h.ProcRoot = DefaultProcRoot
	}
	if h.SysRoot == "" {
		h.SysRoot = DefaultSysRoot
	}
	if h.ThermalZone == "" {
		h.ThermalZone = DefaultThermalZone
	}
	if h.StorageMount == "" {
		h.StorageMount = DefaultStorageMount
	}
	if h.CPUIntervalMs == 0 {
		h.CPUIntervalMs = DefaultCPUIntervalMs
	}

	// ------------------------------------------------------------
	// LOOP
	// ------------------------------------------------------------

	if cfg.Loop.TickMs == 0 {
		cfg.Loop.TickMs = DefaultTickMs
	}
	if cfg.Loop.RedrawIntervalMs == 0 {
		cfg.Loop.RedrawIntervalMs = DefaultRedrawIntervalMs
	}

	// ------------------------------------------------------------
	// PRESENTATION
	// ------------------------------------------------------------

	if cfg.Presentation.Framebuffer == "" {
		cfg.Presentation.Framebuffer = DefaultFramebuffer
	}
	// 0 means "use the sink's recommendation"; anything else is raised to the floor.
	if cfg.Presentation.Buffers != 0 && cfg.Presentation.Buffers < MinBuffers {
		cfg.Presentation.Buffers = MinBuffers
	}

	// ------------------------------------------------------------
	// MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if m := cfg.Mirror; m != nil {
		if m.Transport == "" {
			m.Transport = DefaultMirrorTransport
		}
		if m.TimeoutMs == 0 {
			m.TimeoutMs = DefaultMirrorTimeoutMs
		}
		// ASCII already validated; truncate to the register budget.
		if len(m.DeviceName) > 16 {
			m.DeviceName = m.DeviceName[:16]
		}
	}
}

// Align16 rounds n up to the next multiple of 16.
func Align16(n int) int {
	return ((n + 0xf) >> 4) << 4
}
