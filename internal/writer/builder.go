// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/tamzrod/telemetry-overlay/internal/config"
	"github.com/tamzrod/telemetry-overlay/internal/writer/ingest"
	wmodbus "github.com/tamzrod/telemetry-overlay/internal/writer/modbus"
)

// BuildPlan converts the mirror config into a Plan.
// Assumes config has already passed validation and normalization.
func BuildPlan(m cfg.MirrorConfig) (Plan, error) {
	if m.Endpoint == "" {
		return Plan{}, errors.New("writer: mirror.endpoint required")
	}
	return Plan{
		Transport:  m.Transport,
		Endpoint:   m.Endpoint,
		UnitID:     m.UnitID,
		BaseSlot:   m.BaseSlot,
		DeviceName: m.DeviceName,
	}, nil
}

// BuildEndpointClient creates the client for the plan's transport.
func BuildEndpointClient(p Plan, timeout time.Duration) (endpointClient, func() error, error) {
	switch p.Transport {
	case TransportModbus:
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: p.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case TransportIngest:
		c, err := ingest.NewEndpointClient(ingest.Config{
			Endpoint: p.Endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	default:
		return nil, nil, fmt.Errorf("writer: unknown transport %q", p.Transport)
	}
}

// Build wires plan, client and writer from config.
func Build(m cfg.MirrorConfig) (TelemetryWriter, func() error, error) {
	plan, err := BuildPlan(m)
	if err != nil {
		return nil, nil, err
	}
	cli, closeFn, err := BuildEndpointClient(plan, time.Duration(m.TimeoutMs)*time.Millisecond)
	if err != nil {
		return nil, nil, err
	}
	w, err := NewTelemetryWriter(plan, cli)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return w, closeFn, nil
}
