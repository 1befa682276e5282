// internal/status/snapshot.go
package status

import "time"

// CameraState is the derived camera telemetry.
// Written only by the device sampler. All fields are non-negative.
type CameraState struct {
	ISO          uint32
	ShutterAngle uint32 // degrees
	FPS          uint32
	Width        uint32
	Height       uint32
}

// HealthState is the derived system telemetry.
// Written only by the health sampler.
type HealthState struct {
	CPUTemperatureC float64
	CPUIdlePercent  float64
	UsedStorageGB   float64
	TotalStorageGB  float64
}

// LoopState is the single owned state of the overlay loop.
// It is passed by reference from the samplers through the scheduler to the
// compositor. Not safe for concurrent use; the loop is single-threaded.
type LoopState struct {
	Camera CameraState
	Health HealthState

	// DeviceHealth / LastErrorCode describe the last camera sample.
	DeviceHealth  uint16
	LastErrorCode uint16

	Redraws    uint64
	LastRedraw time.Time
}

// Snapshot represents exactly what the mirror writer is allowed to deliver.
// It is a copy; it shares nothing with the LoopState it was taken from.
type Snapshot struct {
	Camera CameraState
	Health HealthState

	DeviceHealth  uint16
	LastErrorCode uint16
	Redraws       uint64
}

// Snapshot copies the current loop state.
func (s *LoopState) Snapshot() Snapshot {
	return Snapshot{
		Camera:        s.Camera,
		Health:        s.Health,
		DeviceHealth:  s.DeviceHealth,
		LastErrorCode: s.LastErrorCode,
		Redraws:       s.Redraws,
	}
}
