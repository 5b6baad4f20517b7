package main

import (
	"flag"
	"io"
	"testing"

	chlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func commandContext(t *testing.T, globalArgs, cmdArgs []string) *cli.Context {
	t.Helper()
	app := &cli.App{Name: "cm1106"}
	global := flag.NewFlagSet("cm1106", flag.ContinueOnError)
	global.Bool("verbose", false, "")
	require.NoError(t, global.Parse(globalArgs))
	cmd := flag.NewFlagSet("measure", flag.ContinueOnError)
	cmd.Bool("verbose", false, "")
	require.NoError(t, cmd.Parse(cmdArgs))
	return cli.NewContext(app, cmd, cli.NewContext(app, global, nil))
}

func TestIsVerbose(t *testing.T) {
	tests := []struct {
		name       string
		globalArgs []string
		cmdArgs    []string
		expected   bool
	}{
		{"none", nil, nil, false},
		{"global only", []string{"--verbose"}, nil, true},
		{"command only", nil, []string{"--verbose"}, true},
		{"both", []string{"--verbose"}, []string{"-verbose"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isVerbose(commandContext(t, tt.globalArgs, tt.cmdArgs)))
		})
	}
}

func TestApplyVerbosity_CommandFlagRaisesLevel(t *testing.T) {
	prev := logger
	t.Cleanup(func() { logger = prev })

	logger = newLogger(io.Discard)
	applyVerbosity(commandContext(t, nil, nil))
	assert.Equal(t, chlog.InfoLevel, logger.GetLevel())

	applyVerbosity(commandContext(t, nil, []string{"--verbose"}))
	assert.Equal(t, chlog.DebugLevel, logger.GetLevel())
}
