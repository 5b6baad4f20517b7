package i2c

import (
	"context"
	"fmt"
	"sync"

	gobotio "gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/cm1106"
)

var (
	_ cm1106.I2CBus         = &GobotBus{}
	_ cm1106.CountingReader = &GobotBus{}
)

// GobotBus drives an I2C bus exposed by a gobot adaptor (e.g. NanoPi NEO).
// One connection is opened lazily per device address.
type GobotBus struct {
	mx        sync.Mutex
	connector gobotio.Connector
	busNr     int
	conns     map[byte]gobotio.Connection
}

func NewGobotBus(connector gobotio.Connector, busNr int) *GobotBus {
	return &GobotBus{
		connector: connector,
		busNr:     busNr,
		conns:     make(map[byte]gobotio.Connection),
	}
}

func (b *GobotBus) conn(address byte) (gobotio.Connection, error) {
	if c, ok := b.conns[address]; ok {
		return c, nil
	}
	c, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not open connection to %x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = c
	return c, nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.conn(address)
	if err != nil {
		return err
	}
	n, err := c.Write(buffer)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	n, err := b.ReadCountFromAddr(ctx, address, buffer)
	if err != nil {
		return err
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) ReadCountFromAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	c, err := b.conn(address)
	if err != nil {
		return 0, err
	}
	n, err := c.Read(buffer)
	if err != nil {
		return n, fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return n, nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}

// Close closes all opened device connections.
func (b *GobotBus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var firstErr error
	for addr, c := range b.conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("could not close connection to %x: %w", addr, err)
		}
		delete(b.conns, addr)
	}
	return firstErr
}
