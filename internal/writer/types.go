// internal/writer/types.go
package writer

import "github.com/tamzrod/telemetry-overlay/internal/status"

// Transports.
const (
	TransportModbus = "modbus"
	TransportIngest = "ingest"
)

// Plan is the fully-built mirror plan.
type Plan struct {
	Transport  string
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// TelemetryWriter is the delivery-only contract for the mirror.
// It receives a snapshot and writes it verbatim.
type TelemetryWriter interface {
	WriteTelemetry(s status.Snapshot) error
}

// endpointClient is the exact contract the writer uses.
// Registers are holding registers; addr is absolute.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
