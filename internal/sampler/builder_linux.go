// internal/sampler/builder_linux.go
package sampler

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"

	cfg "github.com/tamzrod/telemetry-overlay/internal/config"
	"github.com/tamzrod/telemetry-overlay/internal/sampler/v4l2"
)

// BuildCamera opens the control device and wires a camera sampler.
// Failing to open the device is fatal for the caller: no retries.
func BuildCamera(d cfg.DeviceConfig, log hclog.Logger) (*Camera, func() error, error) {
	dev, err := v4l2.Open(d.Path)
	if err != nil {
		return nil, nil, err
	}

	timing := Timing{PixelRate: d.PixelRate, HBlank: d.HBlank}
	c, err := NewCamera(dev, timing, log)
	if err != nil {
		_ = dev.Close()
		return nil, nil, err
	}

	if log != nil {
		log.Info("camera opened", "device", dev.Path(), "pixel_rate", timing.PixelRate, "hblank", timing.HBlank)
	}
	CheckTiming(dev, timing, log)
	return c, dev.Close, nil
}

// BuildHealth wires a health sampler over procfs, sysfs and statfs.
func BuildHealth(h cfg.HealthConfig, log hclog.Logger) (*Health, error) {
	pfs, err := procfs.NewFS(h.ProcRoot)
	if err != nil {
		return nil, fmt.Errorf("sampler: procfs %s: %w", h.ProcRoot, err)
	}
	sfs, err := sysfs.NewFS(h.SysRoot)
	if err != nil {
		return nil, fmt.Errorf("sampler: sysfs %s: %w", h.SysRoot, err)
	}

	var mounts Mounts
	if h.RequireMount {
		mounts = ProcMounts(pfs)
	}

	return NewHealth(
		NewProcCPU(pfs),
		NewSysThermal(sfs, h.ThermalZone),
		NewStatfs(h.StorageMount, mounts),
		log,
		WithCPUInterval(time.Duration(h.CPUIntervalMs)*time.Millisecond),
	)
}
