package cm1106

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fullReader struct {
	data []byte
	err  error
}

func (r *fullReader) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if r.err != nil {
		return r.err
	}
	copy(buffer, r.data)
	return nil
}

type countingReader struct {
	fullReader
}

func (r *countingReader) ReadCountFromAddr(ctx context.Context, address byte, buffer []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return copy(buffer, r.data), nil
}

func TestReadCount(t *testing.T) {
	ctx := context.Background()
	busErr := errors.New("nack")
	tests := []struct {
		name     string
		bus      AddressableReader
		expected int
		err      error
	}{
		{"full reader", &fullReader{data: []byte{1, 2}}, 4, nil},
		{"full reader error", &fullReader{err: busErr}, 0, busErr},
		{"counting reader short", &countingReader{fullReader{data: []byte{1, 2}}}, 2, nil},
		{"counting reader error", &countingReader{fullReader{err: busErr}}, 0, busErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ReadCount(ctx, tt.bus, 0x31, make([]byte, 4))
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.expected, n)
		})
	}
}
