package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/cm1106/air"
	"github.com/mklimuk/cm1106/cmd/cm1106/console"
	"github.com/mklimuk/cm1106/monitor"
	"github.com/mklimuk/cm1106/publish"
)

const maxQoS = 2

func parseQoS(v uint) (byte, error) {
	if v > maxQoS {
		return 0, fmt.Errorf("invalid mqtt qos %d: must be 0, 1 or 2", v)
	}
	return byte(v), nil
}

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "measure periodically, optionally publishing readings over MQTT",
	Flags: sensorFlags(
		&cli.DurationFlag{
			Name:  "interval",
			Value: monitor.DefaultInterval,
		},
		&cli.BoolFlag{
			Name:  "skip-preheating",
			Usage: "drop readings taken while the sensor warms up",
		},
		&cli.StringFlag{
			Name:  "mqtt",
			Usage: "broker url, e.g. tcp://localhost:1883",
		},
		&cli.StringFlag{
			Name:  "topic",
			Value: publish.DefaultTopic,
		},
		&cli.StringFlag{
			Name:  "client-id",
			Usage: "mqtt client id (defaults to one derived from the machine id)",
		},
		&cli.StringFlag{
			Name:  "encoding",
			Value: string(publish.EncodingJSON),
			Usage: "payload encoding: json or cbor",
		},
		&cli.UintFlag{
			Name:  "qos",
			Value: 0,
		},
		&cli.BoolFlag{
			Name: "retain",
		},
	),
	Action: func(c *cli.Context) error {
		variant, err := air.ParseVariant(c.String("variant"))
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}
		var sink monitor.Sink = monitor.SinkFunc(func(ctx context.Context, m air.Measurement) error {
			console.PInfof(console.PictoLeaf, "%s %s (%s)", m.Time.Format(time.TimeOnly), colorPPM(m.CO2), m.Status.Describe(variant))
			return nil
		})
		if broker := c.String("mqtt"); broker != "" {
			qos, err := parseQoS(c.Uint("qos"))
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			enc, err := publish.ParseEncoding(c.String("encoding"))
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			pub, err := publish.NewMQTT(publish.Config{
				Broker:   broker,
				Topic:    c.String("topic"),
				ClientID: c.String("client-id"),
				Encoding: enc,
				QoS:      qos,
				Retain:   c.Bool("retain"),
				Variant:  variant,
			})
			if err != nil {
				return console.Exit(1, "mqtt error: %s", console.Red(err))
			}
			defer pub.Close()
			sink = pub
		}

		ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		c.Context = ctx
		return withSensor(c, func(ctx context.Context, s *air.CM1106) error {
			stats, err := monitor.Run(ctx, s, sink, monitor.Options{
				Interval:       c.Duration("interval"),
				SkipPreheating: c.Bool("skip-preheating"),
			})
			console.Printf("\n%d samples, %d failures, %d skipped\n", stats.Samples, stats.Failures, stats.Skipped)
			if err != nil && !errors.Is(err, context.Canceled) {
				return console.Exit(1, "watch stopped: %s", console.Red(err))
			}
			return nil
		})
	},
}
