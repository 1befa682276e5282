// internal/status/encode.go
package status

import (
	"encoding/binary"
	"math"
)

// Encode converts a Snapshot into the live slots of a telemetry block.
// Device name slots are left zero; the writer owns them.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.DeviceHealth
	regs[SlotLastErrorCode] = s.LastErrorCode

	regs[SlotISO] = clampU16(float64(s.Camera.ISO))
	regs[SlotShutterAngle] = clampU16(float64(s.Camera.ShutterAngle))
	regs[SlotFPS] = clampU16(float64(s.Camera.FPS))
	regs[SlotWidth] = clampU16(float64(s.Camera.Width))
	regs[SlotHeight] = clampU16(float64(s.Camera.Height))

	regs[SlotCPUTemperature] = clampU16(s.Health.CPUTemperatureC * 100)
	regs[SlotCPUIdle] = clampU16(s.Health.CPUIdlePercent * 100)
	regs[SlotUsedStorage] = clampU16(s.Health.UsedStorageGB * 10)
	regs[SlotTotalStorage] = clampU16(s.Health.TotalStorageGB * 10)

	regs[SlotRedraws] = uint16(s.Redraws)

	return regs
}

// clampU16 rounds v and saturates it into the register range.
// Negative temperatures saturate to zero.
func clampU16(v float64) uint16 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(math.Round(v))
}

// AppendRegisters appends regs to dst in register memory order (big-endian).
func AppendRegisters(dst []byte, regs []uint16) []byte {
	for _, r := range regs {
		dst = binary.BigEndian.AppendUint16(dst, r)
	}
	return dst
}
