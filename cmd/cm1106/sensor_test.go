package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/cm1106/air"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"short buffer", fmt.Errorf("%w: read reply to 0x1 failed: %w", air.ErrShortBuffer, errors.New("nack")), exitShortBuffer},
		{"header mismatch", fmt.Errorf("%w: expected 0x1, got 0x1f", air.ErrHeaderMismatch), exitHeaderMismatch},
		{"checksum mismatch", fmt.Errorf("%w: expected 0x6d, got 0xcc", air.ErrChecksumMismatch), exitChecksumMismatch},
		{"zero switch", fmt.Errorf("%w: got 1", air.ErrInvalidZeroSwitch), exitInvalidParameter},
		{"zero period", fmt.Errorf("%w: got 16", air.ErrInvalidZeroPeriod), exitInvalidParameter},
		{"zero concentration", fmt.Errorf("%w: got 1500", air.ErrInvalidZeroConcentration), exitInvalidParameter},
		{"calibration target", fmt.Errorf("%w: got 399", air.ErrInvalidCalibrationTarget), exitInvalidParameter},
		{"bare sentinel", air.ErrChecksumMismatch, exitChecksumMismatch},
		{"other", errors.New("adapter unplugged"), exitOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCode(tt.err))
		})
	}
}

func TestSensorExit(t *testing.T) {
	err := sensorExit("error measuring", fmt.Errorf("%w: expected 5 bytes, got 0", air.ErrShortBuffer))
	assert.Equal(t, exitShortBuffer, err.ExitCode())
	assert.Contains(t, err.Error(), "error measuring")
}
