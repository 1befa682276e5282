// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// telemetryWriter mirrors one telemetry block into a register endpoint.
type telemetryWriter struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     []uint16
	nameRegs []uint16
}

// NewTelemetryWriter builds the mirror writer for plan.
func NewTelemetryWriter(plan Plan, cli endpointClient) (TelemetryWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("telemetry writer: missing client for endpoint %s", plan.Endpoint)
	}
	if int(plan.BaseSlot)*status.SlotsPerDevice+status.SlotsPerDevice-1 > 0xFFFF {
		return nil, fmt.Errorf("telemetry writer: base slot %d out of range", plan.BaseSlot)
	}

	return &telemetryWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}, nil
}

// WriteTelemetry delivers a snapshot into the block.
// On any write failure, the next call re-asserts the full block.
func (tw *telemetryWriter) WriteTelemetry(s status.Snapshot) error {
	regs := tw.fullBlockRegs(s)
	baseAddr := tw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if tw.needFull {
		if err := tw.cli.WriteRegisters(tw.plan.UnitID, baseAddr, regs); err != nil {
			return fmt.Errorf("telemetry writer: full block write failed: %w", err)
		}
		tw.needFull = false
		tw.last = regs
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: one write per run of changed slots
	// ------------------------------------------------------------
	var errs []string

	for _, r := range changedRuns(tw.last, regs) {
		if err := tw.cli.WriteRegisters(
			tw.plan.UnitID,
			baseAddr+uint16(r.start),
			regs[r.start:r.end],
		); err != nil {
			errs = append(errs, fmt.Sprintf("slots %d..%d write failed: %v", r.start, r.end-1, err))
			continue
		}
		copy(tw.last[r.start:r.end], regs[r.start:r.end])
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next call.
		tw.needFull = true
		return errors.New("telemetry writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (tw *telemetryWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return tw.plan.BaseSlot * status.SlotsPerDevice
}

func (tw *telemetryWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], tw.nameRegs)
	return regs
}

type slotRun struct{ start, end int }

// changedRuns returns the half-open ranges where a and b differ.
func changedRuns(a, b []uint16) []slotRun {
	var runs []slotRun
	start := -1
	for i := range b {
		differ := i >= len(a) || a[i] != b[i]
		switch {
		case differ && start < 0:
			start = i
		case !differ && start >= 0:
			runs = append(runs, slotRun{start, i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, slotRun{start, len(b)})
	}
	return runs
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	for i := 0; i < len(b); i += 2 {
		hi := uint16(b[i])
		var lo uint16
		if i+1 < len(b) {
			lo = uint16(b[i+1])
		}
		out[i/2] = hi<<8 | lo
	}
	return out
}
