package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/multistore/internal/config"
	"github.com/roach88/multistore/internal/middleware"
	"github.com/roach88/multistore/internal/store"
	"github.com/roach88/multistore/internal/telemetry"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose      bool
	Format       string // "json" | "text"
	OTelEndpoint string

	// Config is loaded from the environment before any command runs.
	Config config.Config

	// Logger is built from Config once flags are applied.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the multistore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "multistore",
		Short: "multistore - dispatch actions across independent stores",
		Long: `Run declarative store programs: every action reaches every store in
atomic rounds, updaters may pause on asynchronous work, and each round can
be journaled to SQLite for later inspection.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load()
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			if opts.Verbose {
				cfg.LogLevel = "debug"
			}
			if opts.OTelEndpoint != "" {
				cfg.OTelEndpoint = opts.OTelEndpoint
				if err := cfg.Validate(); err != nil {
					return WrapExitError(ExitCommandError, "invalid configuration", err)
				}
			}
			opts.Config = cfg
			opts.Logger = config.NewLogger(cmd.ErrOrStderr(), cfg)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.OTelEndpoint, "otel-endpoint", "", "export updater spans to this OTLP/HTTP URL (overrides MULTISTORE_OTEL_ENDPOINT)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns the configured logger, or the default before
// PersistentPreRunE has run.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// middleware returns the updater middleware selected by the logging and
// tracing settings. Updaters are logged at debug level; spans are exported
// when an OTLP endpoint is configured. The returned Shutdown flushes spans
// and must be called once dispatching is done.
func (o *RootOptions) middleware(ctx context.Context) ([]store.Middleware, telemetry.Shutdown, error) {
	shutdown, err := telemetry.Setup(ctx, o.Config.OTelEndpoint, telemetry.ServiceName)
	if err != nil {
		return nil, nil, fmt.Errorf("set up tracing: %w", err)
	}

	var mws []store.Middleware
	if o.Config.Tracing() {
		mws = append(mws, middleware.Tracing())
	}
	if logger := o.logger(); logger.Enabled(ctx, slog.LevelDebug) {
		mws = append(mws, middleware.Logging(logger))
	}
	return mws, shutdown, nil
}
