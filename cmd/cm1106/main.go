package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"
)

var version string
var commit string
var date string

var logger *chlog.Logger

func newLogger(w io.Writer) *chlog.Logger {
	l := chlog.NewWithOptions(w, chlog.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	l.SetColorProfile(termenv.TrueColor)
	l.SetLevel(chlog.InfoLevel)
	return l
}

// isVerbose reports whether --verbose was given on the command or any of its
// parents.
func isVerbose(c *cli.Context) bool {
	for _, ctx := range c.Lineage() {
		if ctx.Bool("verbose") {
			return true
		}
	}
	return false
}

// applyVerbosity switches the logger to debug level for verbose runs.
func applyVerbosity(c *cli.Context) {
	if logger != nil && isVerbose(c) {
		logger.SetLevel(chlog.DebugLevel)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	app := cli.NewApp()
	app.Name = "cm1106"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", version, date, commit)
	app.Usage = "Cubic CM1106 CO2 sensor cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		logger = newLogger(os.Stderr)
		applyVerbosity(ctx)
		slog.SetDefault(slog.New(logger))
		return nil
	}
	app.Commands = cli.Commands{
		&measureCmd,
		&autoZeroCmd,
		&calibrateCmd,
		&serialCmd,
		&versionCmd,
		&infoCmd,
		&watchCmd,
		&usbCmd,
		&mcp2221Cmd,
	}
	err := app.Run(os.Args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			log.Printf("unexpected error: %v", err)
			return exerr.ExitCode()
		}
		return 1
	}
	return 0
}
