package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/cm1106/air"
)

type collector struct {
	mx  sync.Mutex
	got []air.Measurement
	err error
}

func (c *collector) Handle(ctx context.Context, m air.Measurement) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.got = append(c.got, m)
	return c.err
}

func TestRun_DeliversReadings(t *testing.T) {
	readings := []air.Measurement{
		{CO2: 0, Status: air.StatusPreheating},
		{CO2: 450, Status: air.StatusNormal},
		{CO2: 470, Status: air.StatusNormal},
	}
	var i int
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sensor := air.NewMockCO2Sensor(func(ctx context.Context) (air.Measurement, error) {
		m := readings[i%len(readings)]
		i++
		if i == len(readings) {
			cancel()
		}
		return m, nil
	})
	sink := &collector{}

	stats, err := Run(ctx, sensor, sink, Options{Interval: time.Millisecond})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Stats{Samples: 3}, stats)
	assert.Equal(t, readings, sink.got)
}

func TestRun_SkipsPreheatingAndCountsFailures(t *testing.T) {
	replies := []func() (air.Measurement, error){
		func() (air.Measurement, error) { return air.Measurement{Status: air.StatusPreheating}, nil },
		func() (air.Measurement, error) { return air.Measurement{}, air.ErrChecksumMismatch },
		func() (air.Measurement, error) { return air.Measurement{CO2: 800, Status: air.StatusNormal}, nil },
	}
	var i int
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sensor := air.NewMockCO2Sensor(func(ctx context.Context) (air.Measurement, error) {
		reply := replies[i]
		i++
		if i == len(replies) {
			cancel()
		}
		return reply()
	})
	sink := &collector{}

	stats, err := Run(ctx, sensor, sink, Options{Interval: time.Millisecond, SkipPreheating: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Stats{Samples: 1, Failures: 1, Skipped: 1}, stats)
	require.Len(t, sink.got, 1)
	assert.Equal(t, air.PPM(800), sink.got[0].CO2)
}

func TestRun_SinkErrorsAreCounted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sensor := air.NewMockCO2Sensor(func(ctx context.Context) (air.Measurement, error) {
		cancel()
		return air.Measurement{CO2: 500, Status: air.StatusNormal}, nil
	})
	sink := &collector{err: errors.New("broker down")}

	stats, err := Run(ctx, sensor, sink, Options{Interval: time.Millisecond})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Stats{Failures: 1}, stats, "undelivered reading is not a sample")
}

func TestSinkFunc(t *testing.T) {
	var got air.PPM
	sink := SinkFunc(func(ctx context.Context, m air.Measurement) error {
		got = m.CO2
		return nil
	})
	require.NoError(t, sink.Handle(context.Background(), air.Measurement{CO2: 612}))
	assert.Equal(t, air.PPM(612), got)
}
