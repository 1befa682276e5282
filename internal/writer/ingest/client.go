// internal/writer/ingest/client.go
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/tamzrod/telemetry-overlay/internal/status"
)

// Raw Ingest v1 framing.
//
// Layout (10 bytes header):
// 0–1  Magic "RI"
// 2    Version (0x01)
// 3    Area (3 = holding registers)
// 4–5  UnitID
// 6–7  Address
// 8–9  Count
// 10+  Payload, registers big-endian
//
// The receiver answers every packet with one status byte.
const (
	headerLen = 10

	magic     uint16 = 0x5249 // "RI"
	versionV1 byte   = 0x01

	areaHoldingRegisters byte = 3

	respOK       byte = 0x00
	respRejected byte = 0x01
)

var ErrRejected = errors.New("writer ingest: rejected")

// EndpointClient mirrors telemetry blocks over Raw Ingest v1.
// The connection is kept between redraws; a reused connection that the
// receiver has dropped is re-dialled once per write.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
	dial     func(network, addr string, timeout time.Duration) (net.Conn, error)

	mu   sync.Mutex
	conn net.Conn
	buf  []byte
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		dial:     net.DialTimeout,
		buf:      make([]byte, 0, headerLen+2*status.SlotsPerDevice),
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked()
}

// WriteRegisters sends one holding-register packet and waits for the verdict.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) > 0xFFFF {
		return fmt.Errorf("writer ingest: %d registers exceed one packet", len(regs))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf = appendPacket(c.buf[:0], unitID, addr, regs)

	reused := c.conn != nil
	err := c.exchangeLocked(c.buf)
	if err != nil && reused && !errors.Is(err, ErrRejected) {
		// the receiver may close idle connections between redraws
		err = c.exchangeLocked(c.buf)
	}
	return err
}

// exchangeLocked writes pkt and reads the status byte.
// Any transport failure drops the connection.
func (c *EndpointClient) exchangeLocked(pkt []byte) error {
	if c.conn == nil {
		conn, err := c.dial("tcp", c.endpoint, c.timeout)
		if err != nil {
			return fmt.Errorf("writer ingest: dial: %w", err)
		}
		c.conn = conn
	}

	_ = c.conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := c.conn.Write(pkt); err != nil {
		_ = c.dropLocked()
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(c.conn, resp[:]); err != nil {
		_ = c.dropLocked()
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		_ = c.dropLocked()
		return fmt.Errorf("writer ingest: unknown status 0x%02x", resp[0])
	}
}

func (c *EndpointClient) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// appendPacket frames one holding-register write onto dst.
func appendPacket(dst []byte, unitID uint8, addr uint16, regs []uint16) []byte {
	dst = binary.BigEndian.AppendUint16(dst, magic)
	dst = append(dst, versionV1, areaHoldingRegisters)
	dst = binary.BigEndian.AppendUint16(dst, uint16(unitID))
	dst = binary.BigEndian.AppendUint16(dst, addr)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(regs)))
	return status.AppendRegisters(dst, regs)
}
