// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// EndpointClient is a single TCP connection to one register endpoint.
// It serializes requests because it mutates SlaveId per write.
// The connection is opened on first use and re-opened after a failure.
type EndpointClient struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	return &EndpointClient{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// WriteRegisters writes holding registers (FC 16).
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	qty := uint16(len(regs))
	payload := status.AppendRegisters(make([]byte, 0, 2*len(regs)), regs)

	if _, err := c.client.WriteMultipleRegisters(addr, qty, payload); err != nil {
		// drop the connection; the next write dials again
		_ = c.handler.Close()
		return fmt.Errorf("writer modbus: write %d@%d: %w", qty, addr, err)
	}
	return nil
}
