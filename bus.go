package cm1106

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// CountingReader is implemented by buses able to tell how many bytes the
// device actually sent. Devices may answer with fewer bytes than requested.
type CountingReader interface {
	ReadCountFromAddr(ctx context.Context, address byte, buffer []byte) (int, error)
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// ReadCount reads into buffer and returns the number of bytes received.
// Buses that do not implement CountingReader are assumed to fill the buffer
// on success.
func ReadCount(ctx context.Context, bus AddressableReader, address byte, buffer []byte) (int, error) {
	if cr, ok := bus.(CountingReader); ok {
		return cr.ReadCountFromAddr(ctx, address, buffer)
	}
	if err := bus.ReadFromAddr(ctx, address, buffer); err != nil {
		return 0, err
	}
	return len(buffer), nil
}
