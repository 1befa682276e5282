// internal/status/constants.go
package status

// Telemetry block layout constants.
// These values define the mirror protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per mirrored device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

const (
	SlotHealthCode    = 0
	SlotLastErrorCode = 1
	SlotISO           = 2
	SlotShutterAngle  = 3
	SlotFPS           = 4
	SlotWidth         = 5
	SlotHeight        = 6

	// Fixed-point: degrees C x100.
	SlotCPUTemperature = 7
	// Fixed-point: percent x100.
	SlotCPUIdle = 8
	// Fixed-point: GB x10.
	SlotUsedStorage  = 9
	SlotTotalStorage = 10
)

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// SlotRedraws holds the low 16 bits of the redraw counter.
const SlotRedraws = 19

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state (no camera sample yet).
const HealthUnknown uint16 = 0

// HealthOK means every control read of the last sample succeeded.
const HealthOK uint16 = 1

// HealthError means at least one control read of the last sample failed.
const HealthError uint16 = 2
