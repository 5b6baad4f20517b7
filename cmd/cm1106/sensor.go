package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/cm1106/air"
	"github.com/mklimuk/cm1106/cmd/cm1106/console"
)

// Exit codes follow the result codes of the vendor reference driver.
const (
	exitShortBuffer      = 1
	exitHeaderMismatch   = 2
	exitChecksumMismatch = 3
	exitInvalidParameter = 4
	exitOther            = 10
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, air.ErrShortBuffer):
		return exitShortBuffer
	case errors.Is(err, air.ErrHeaderMismatch):
		return exitHeaderMismatch
	case errors.Is(err, air.ErrChecksumMismatch):
		return exitChecksumMismatch
	case errors.Is(err, air.ErrInvalidZeroSwitch),
		errors.Is(err, air.ErrInvalidZeroPeriod),
		errors.Is(err, air.ErrInvalidZeroConcentration),
		errors.Is(err, air.ErrInvalidCalibrationTarget):
		return exitInvalidParameter
	}
	return exitOther
}

func sensorExit(msg string, err error) cli.ExitCoder {
	return console.Exit(exitCode(err), "%s: %s", msg, console.Red(err))
}

// colorPPM highlights concentration by indoor air quality band.
func colorPPM(p air.PPM) string {
	switch {
	case p < 1000:
		return console.Green(p)
	case p < 2000:
		return console.Yellow(p)
	}
	return console.Red(p)
}

func clampByte(v uint) byte {
	return byte(min(v, 0xFF))
}

var measureCmd = cli.Command{
	Name:    "measure",
	Aliases: []string{"rd"},
	Usage:   "read CO2 concentration and sensor status",
	Flags:   sensorFlags(),
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *air.CM1106) error {
			m, err := s.Measure(ctx)
			if err != nil {
				return sensorExit("error measuring", err)
			}
			console.PInfof(console.PictoLeaf, "%s (%s)", colorPPM(m.CO2), m.Status.Describe(s.Variant()))
			if m.Status.Preheating() {
				console.Warnf("sensor is preheating, reading may be inaccurate")
			}
			return nil
		})
	},
}

var autoZeroCmd = cli.Command{
	Name:  "autozero",
	Usage: "configure automatic zero calibration",
	Flags: sensorFlags(
		&cli.UintFlag{
			Name:  "switch",
			Value: uint(air.ZeroSwitchOpen),
			Usage: "0 enables, 2 disables automatic zero calibration",
		},
		&cli.UintFlag{
			Name:  "period",
			Value: 7,
			Usage: "calibration period in days (1-15)",
		},
		&cli.UintFlag{
			Name:  "concentration",
			Value: 400,
			Usage: "zero reference concentration in ppm (400-1499)",
		},
	),
	Action: func(c *cli.Context) error {
		cfg := air.AutoZeroConfig{
			Switch:        clampByte(c.Uint("switch")),
			Period:        clampByte(c.Uint("period")),
			Concentration: uint16(min(c.Uint("concentration"), 0xFFFF)),
		}
		if err := cfg.Validate(); err != nil {
			return sensorExit("invalid auto zero setting", err)
		}
		return withSensor(c, func(ctx context.Context, s *air.CM1106) error {
			if err := s.SetAutoZero(ctx, cfg); err != nil {
				return sensorExit("error setting auto zero", err)
			}
			console.Printf("auto zero configured\n")
			return nil
		})
	},
}

var calibrateCmd = cli.Command{
	Name:  "calibrate",
	Usage: "calibrate the sensor against a known concentration",
	Flags: sensorFlags(
		&cli.UintFlag{
			Name:     "ppm",
			Usage:    "reference concentration (400-1500)",
			Required: true,
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "do not ask for confirmation",
		},
	),
	Action: func(c *cli.Context) error {
		target := uint16(min(c.Uint("ppm"), 0xFFFF))
		if target < air.MinCalibrationTarget || target > air.MaxCalibrationTarget {
			return sensorExit("invalid calibration target", fmt.Errorf("%w: got %d", air.ErrInvalidCalibrationTarget, c.Uint("ppm")))
		}
		if !c.Bool("yes") {
			answer, err := console.YesOrNo(fmt.Sprintf("%s calibrate sensor to %d ppm?", console.PictoPin, target))
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if answer != console.Yes {
				console.Printf("aborted\n")
				return nil
			}
		}
		return withSensor(c, func(ctx context.Context, s *air.CM1106) error {
			if err := s.Calibrate(ctx, target); err != nil {
				return sensorExit("error calibrating", err)
			}
			console.Printf("calibrated\n")
			return nil
		})
	},
}

var serialCmd = cli.Command{
	Name:  "serial",
	Usage: "read sensor serial number",
	Flags: sensorFlags(),
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *air.CM1106) error {
			sn, err := s.ReadSerialNumber(ctx)
			if err != nil {
				return sensorExit("error reading serial number", err)
			}
			console.PInfof(console.PictoKey, "%s", console.White(sn))
			return nil
		})
	},
}

var versionCmd = cli.Command{
	Name:    "version",
	Aliases: []string{"firmware"},
	Usage:   "read sensor firmware version",
	Flags:   sensorFlags(),
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *air.CM1106) error {
			v, err := s.ReadFirmwareVersion(ctx)
			if err != nil {
				return sensorExit("error reading firmware version", err)
			}
			console.Printf("%s\n", console.White(v))
			return nil
		})
	},
}

type sensorInfo struct {
	Variant     string           `yaml:"variant"`
	Serial      string           `yaml:"serial"`
	Firmware    string           `yaml:"firmware"`
	Measurement *infoMeasurement `yaml:"measurement,omitempty"`
}

type infoMeasurement struct {
	CO2    uint16 `yaml:"co2_ppm"`
	Status string `yaml:"status"`
}

var infoCmd = cli.Command{
	Name:  "info",
	Usage: "dump sensor identification and a measurement as yaml",
	Flags: sensorFlags(),
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *air.CM1106) error {
			sn, err := s.ReadSerialNumber(ctx)
			if err != nil {
				return sensorExit("error reading serial number", err)
			}
			v, err := s.ReadFirmwareVersion(ctx)
			if err != nil {
				return sensorExit("error reading firmware version", err)
			}
			info := sensorInfo{
				Variant:  s.Variant().String(),
				Serial:   sn.String(),
				Firmware: v,
			}
			if m, err := s.Measure(ctx); err != nil {
				console.Warnf("measurement failed: %s", err)
			} else {
				info.Measurement = &infoMeasurement{CO2: uint16(m.CO2), Status: m.Status.Describe(s.Variant())}
			}
			enc := yaml.NewEncoder(console.Writer())
			defer enc.Close()
			if err := enc.Encode(info); err != nil {
				return console.Exit(1, "encoding error: %s", console.Red(err))
			}
			return nil
		})
	},
}
