package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gobotio "gobot.io/x/gobot/v2/drivers/i2c"
)

type fakeConnection struct {
	gobotio.Connection
	reply   []byte
	written [][]byte
	closed  bool
}

func (c *fakeConnection) Read(b []byte) (int, error) {
	return copy(b, c.reply), nil
}

func (c *fakeConnection) Write(b []byte) (int, error) {
	c.written = append(c.written, append([]byte{}, b...))
	return len(b), nil
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeConnector struct {
	gobotio.Connector
	conns  map[int]*fakeConnection
	opened []int
	err    error
}

func (f *fakeConnector) GetI2cConnection(address int, busNr int) (gobotio.Connection, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.opened = append(f.opened, address)
	return f.conns[address], nil
}

func TestGobotBus_ReadWrite(t *testing.T) {
	conn := &fakeConnection{reply: []byte{0x01, 0x01, 0x90}}
	connector := &fakeConnector{conns: map[int]*fakeConnection{0x31: conn}}
	bus := NewGobotBus(connector, 0)
	ctx := context.Background()

	require.NoError(t, bus.WriteToAddr(ctx, 0x31, []byte{0x01}))
	buf := make([]byte, 5)
	n, err := bus.ReadCountFromAddr(ctx, 0x31, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "short replies are reported, not failed")
	assert.Equal(t, [][]byte{{0x01}}, conn.written)
	assert.Equal(t, []int{0x31}, connector.opened, "connection is reused per address")

	assert.Error(t, bus.ReadFromAddr(ctx, 0x31, buf), "plain read of a short reply fails")

	require.NoError(t, bus.Close())
	assert.True(t, conn.closed)
}

func TestGobotBus_ConnectionError(t *testing.T) {
	connErr := errors.New("no such bus")
	bus := NewGobotBus(&fakeConnector{err: connErr}, 3)
	err := bus.WriteToAddr(context.Background(), 0x31, []byte{0x01})
	assert.ErrorIs(t, err, connErr)
}
