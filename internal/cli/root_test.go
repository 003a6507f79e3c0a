package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/roach88/multistore/internal/config"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "multistore", cmd.Use)
	assert.Contains(t, cmd.Long, "atomic rounds")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"compile", "validate", "run", "test", "trace"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	endpoint := cmd.PersistentFlags().Lookup("otel-endpoint")
	require.NotNil(t, endpoint)
	assert.Equal(t, "", endpoint.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	action := run.Flags().Lookup("action")
	require.NotNil(t, action)
	assert.Equal(t, "a", action.Shorthand)
	assert.NotNil(t, run.Flags().Lookup("journal"))
	assert.NotNil(t, run.Flags().Lookup("flow-tokens"))
	assert.Equal(t, "30s", run.Flags().Lookup("timeout").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := executeCommand(t, "validate", "x.cue", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidConfiguration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"validate", "x.cue"})
	t.Setenv("MULTISTORE_LOG_FORMAT", "xml")

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidOTelEndpoint(t *testing.T) {
	_, err := executeCommand(t, "validate", "x.cue", "--otel-endpoint", "collector:4318")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestVerboseLogsUpdaters(t *testing.T) {
	t.Run("run", func(t *testing.T) {
		_, stderr, err := executeCommandOutput(t, "run", writeCounterProgram(t), "--action", `{"type":"INC"}`, "-v")
		require.NoError(t, err)
		assert.Contains(t, stderr, "updater completed")
		assert.Contains(t, stderr, "store=counter")
	})

	t.Run("test", func(t *testing.T) {
		dir := scenarioDir(t, map[string]string{"inc_twice.yaml": incScenario})
		_, stderr, err := executeCommandOutput(t, "test", dir, "--verbose")
		require.NoError(t, err)
		assert.Contains(t, stderr, "updater completed")
		assert.Contains(t, stderr, "scenario=inc_twice")
	})

	t.Run("quiet by default", func(t *testing.T) {
		_, stderr, err := executeCommandOutput(t, "run", writeCounterProgram(t), "--action", `{"type":"INC"}`)
		require.NoError(t, err)
		assert.NotContains(t, stderr, "updater completed")
	})
}

func TestRootOptions_Middleware(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	quiet := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
	debug := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name string
		opts RootOptions
		want int
	}{
		{"none", RootOptions{Logger: quiet}, 0},
		{"debug logging", RootOptions{Logger: debug}, 1},
		{"tracing", RootOptions{Logger: quiet, Config: config.Config{OTelEndpoint: "http://192.0.2.1:4318"}}, 1},
		{"both", RootOptions{Logger: debug, Config: config.Config{OTelEndpoint: "http://192.0.2.1:4318"}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mws, shutdown, err := tt.opts.middleware(context.Background())
			require.NoError(t, err)
			assert.Len(t, mws, tt.want)
			assert.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))

	wrapped := WrapExitError(ExitFailure, "dispatch failed", errors.New("boom"))
	assert.Equal(t, "dispatch failed: boom", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "boom")
}
