// Package monitor samples a CO2 sensor periodically and forwards readings
// to a sink.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/cm1106/air"
)

const DefaultInterval = 5 * time.Second

// Sensor is satisfied by air.CM1106 and air.MockCO2Sensor.
type Sensor interface {
	Measure(ctx context.Context) (air.Measurement, error)
}

// Sink receives successful measurements.
type Sink interface {
	Handle(ctx context.Context, m air.Measurement) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, m air.Measurement) error

func (f SinkFunc) Handle(ctx context.Context, m air.Measurement) error {
	return f(ctx, m)
}

type Options struct {
	Interval time.Duration
	// SkipPreheating drops readings taken while the sensor warms up.
	SkipPreheating bool
	Logger         *slog.Logger
}

// Stats summarizes a monitoring run. A reading lands in at most one counter.
type Stats struct {
	// Samples counts readings delivered to the sink.
	Samples  int
	Failures int
	Skipped  int
}

// Run measures once immediately and then every interval until ctx is done.
// Measurement and sink failures are logged and counted; the loop carries on.
// Run returns the statistics together with the context error that ended it.
func Run(ctx context.Context, sensor Sensor, sink Sink, opts Options) (Stats, error) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	var stats Stats
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for {
		sample(ctx, sensor, sink, opts, log, &stats)
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
	}
}

func sample(ctx context.Context, sensor Sensor, sink Sink, opts Options, log *slog.Logger, stats *Stats) {
	m, err := sensor.Measure(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		stats.Failures++
		log.Warn("measurement failed", "error", err)
		return
	}
	if m.Status.Preheating() {
		if opts.SkipPreheating {
			stats.Skipped++
			log.Debug("sensor preheating, reading skipped", "co2", uint16(m.CO2))
			return
		}
		log.Info("sensor preheating, reading may be inaccurate", "co2", uint16(m.CO2))
	}
	if err := sink.Handle(ctx, m); err != nil {
		stats.Failures++
		log.Warn("could not handle measurement", "error", fmt.Errorf("sink: %w", err))
		return
	}
	stats.Samples++
}
