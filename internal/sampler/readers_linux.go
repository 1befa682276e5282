// internal/sampler/readers_linux.go
package sampler

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"
	"golang.org/x/sys/unix"
)

// bytesPerGB matches the capacity unit shown on the camera display.
const bytesPerGB = 1024 * 1024 * 1000

// ---- /proc/stat ----

// ProcCPU reads the aggregate "cpu" line of /proc/stat.
type ProcCPU struct {
	fs procfs.FS
}

func NewProcCPU(fs procfs.FS) ProcCPU { return ProcCPU{fs: fs} }

func (p ProcCPU) ReadCPU() (CPUCounters, error) {
	st, err := p.fs.Stat()
	if err != nil {
		return CPUCounters{}, fmt.Errorf("cpu: %w", err)
	}
	c := st.CPUTotal
	return CPUCounters{
		Total: c.User + c.Nice + c.System + c.Idle + c.Iowait +
			c.IRQ + c.SoftIRQ + c.Steal + c.Guest + c.GuestNice,
		Idle: c.Idle,
	}, nil
}

// ---- /sys/class/thermal ----

// SysThermal reads one thermal zone (millidegrees) from sysfs.
type SysThermal struct {
	fs   sysfs.FS
	zone string
}

func NewSysThermal(fs sysfs.FS, zone string) SysThermal {
	return SysThermal{fs: fs, zone: zone}
}

func (s SysThermal) ReadTemperature() (float64, error) {
	zones, err := s.fs.ClassThermalZoneStats()
	if err != nil {
		return 0, fmt.Errorf("thermal: %w", err)
	}
	for _, z := range zones {
		if z.Name == s.zone {
			return float64(z.Temp) / 1000, nil
		}
	}
	return 0, fmt.Errorf("thermal: zone %s not found", s.zone)
}

// ---- statfs ----

// Mounts lists the current mount points.
type Mounts func() ([]string, error)

// ProcMounts lists mount points from the calling process's mountinfo.
func ProcMounts(fs procfs.FS) Mounts {
	return func() ([]string, error) {
		self, err := fs.Self()
		if err != nil {
			return nil, err
		}
		infos, err := self.MountInfo()
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(infos))
		for _, mi := range infos {
			out = append(out, mi.MountPoint)
		}
		return out, nil
	}
}

// Statfs reports capacity of a mount via statfs(2).
// When mounts is non-nil the path must be an active mount point.
type Statfs struct {
	path   string
	mounts Mounts
}

func NewStatfs(path string, mounts Mounts) Statfs {
	return Statfs{path: filepath.Clean(path), mounts: mounts}
}

func (s Statfs) ReadStorage() (usedGB, totalGB float64, err error) {
	if s.mounts != nil {
		points, err := s.mounts()
		if err != nil {
			return 0, 0, fmt.Errorf("storage: mountinfo: %w", err)
		}
		if !contains(points, s.path) {
			return 0, 0, nil
		}
	}

	var st unix.Statfs_t
	if err := unix.Statfs(s.path, &st); err != nil {
		if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ENOTDIR) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("storage: statfs %s: %w", s.path, err)
	}

	frsize := float64(st.Frsize)
	total := float64(st.Blocks) * frsize
	used := float64(st.Blocks-st.Bfree) * frsize
	return used / bytesPerGB, total / bytesPerGB, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
