package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/cm1106"
	"github.com/mklimuk/cm1106/adapter"
	"github.com/mklimuk/cm1106/air"
	"github.com/mklimuk/cm1106/cmd/cm1106/console"
	"github.com/mklimuk/cm1106/i2c"
	"github.com/mklimuk/cm1106/snsctx"
)

const (
	adapterMCP2221 = "mcp2221"
	adapterGeneric = "generic"
	adapterNanoPi  = "nanopi"
)

// sensorFlags are shared by every command talking to the sensor.
func sensorFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Value:   adapterMCP2221,
			Usage:   "bus adapter: mcp2221, generic or nanopi",
		},
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Value:   "/dev/i2c-1",
			Usage:   "i2c device for the generic adapter",
		},
		&cli.IntFlag{
			Name:  "bus",
			Value: 0,
			Usage: "i2c bus number for the nanopi adapter",
		},
		&cli.IntFlag{
			Name:  "speed",
			Value: 100,
			Usage: "bus clock in kHz for the generic adapter",
		},
		&cli.StringFlag{
			Name:  "variant",
			Value: "cm1106",
			Usage: "sensor family used to interpret status codes: cm1106 or cm1107",
		},
		&cli.DurationFlag{
			Name:  "delay",
			Value: air.DefaultAckDelay,
			Usage: "wait between command and reply",
		},
		&cli.UintFlag{
			Name:  "address",
			Value: air.CM1106Address,
			Usage: "sensor i2c address",
		},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}, extra...)
}

// openBus opens the adapter selected on the command line. The returned
// function releases the bus.
func openBus(c *cli.Context) (cm1106.I2CBus, func(), error) {
	switch c.String("adapter") {
	case adapterMCP2221:
		ad := adapter.NewMCP2221()
		if err := ad.Init(); err != nil {
			return nil, nil, err
		}
		return ad, func() {}, nil
	case adapterGeneric:
		bus, err := i2c.NewGenericBus(c.String("device"))
		if err != nil {
			return nil, nil, err
		}
		if err := bus.SetSpeed(physic.Frequency(c.Int("speed")) * physic.KiloHertz); err != nil {
			_ = bus.Close()
			return nil, nil, err
		}
		return bus, func() {
			if err := bus.Close(); err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
		}, nil
	case adapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		if err := npi.I2cBusAdaptor.Connect(); err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		bus := i2c.NewGobotBus(npi, c.Int("bus"))
		return bus, func() {
			if err := bus.Close(); err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
			if err := npi.I2cBusAdaptor.Finalize(); err != nil {
				console.Errorf("error finalizing adaptor: %s", console.Red(err))
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown adapter %q", c.String("adapter"))
}

// withSensor opens the bus, builds the driver and runs fn.
func withSensor(c *cli.Context, fn func(ctx context.Context, s *air.CM1106) error) error {
	applyVerbosity(c)
	ctx := snsctx.SetVerbose(c.Context, isVerbose(c))
	variant, err := air.ParseVariant(c.String("variant"))
	if err != nil {
		return console.Exit(1, "%s", console.Red(err))
	}
	if c.Uint("address") > 0x7F {
		return console.Exit(1, "invalid i2c address %#x", c.Uint("address"))
	}
	bus, release, err := openBus(c)
	if err != nil {
		return console.Exit(1, "adapter initialization error: %s", console.Red(err))
	}
	defer release()
	s := air.NewCM1106(bus,
		air.WithVariant(variant),
		air.WithAckDelay(c.Duration("delay")),
		air.WithAddress(byte(c.Uint("address"))),
		air.WithLogger(slog.Default()),
	)
	defer s.Close(ctx)
	return fn(ctx, s)
}
