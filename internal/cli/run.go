package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/multistore/internal/compiler"
	"github.com/roach88/multistore/internal/config"
	"github.com/roach88/multistore/internal/engine"
	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/journal"
	"github.com/roach88/multistore/internal/testutil"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Actions    []string
	Journal    string
	FlowTokens string
	Timeout    time.Duration

	// FlowGenerator overrides the configured flow token mode (for testing).
	FlowGenerator engine.FlowTokenGenerator
}

// RunResult is the output of the run command.
type RunResult struct {
	Dispatched int             `json:"dispatched"`
	States     map[string]any  `json:"states"`
	Journal    string          `json:"journal,omitempty"`
	Failure    *DispatchFailed `json:"failure,omitempty"`
}

// DispatchFailed describes the dispatch that stopped a run.
type DispatchFailed struct {
	Index   int    `json:"index"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Dispatch actions against a store program",
		Long: `Build the stores of a CUE program, dispatch each --action in order, and
print the final state of every store.

Each dispatch waits for its rounds to finish, including pauses, before the
next one starts. The run stops at the first failed dispatch; the failed
round leaves every store unchanged.

Examples:
  multistore run counter.cue --action '{"type":"INC"}' --action '{"type":"INC"}'
  multistore run counter.cue --action '{"type":"ADD","amount":5}' --journal ./rounds.db
  MULTISTORE_FLOW_TOKENS=sequential multistore run counter.cue --action '{"type":"INC"}' --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Actions, "action", "a", nil, "action to dispatch as a JSON object (repeatable)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite round journal (overrides MULTISTORE_JOURNAL)")
	cmd.Flags().StringVar(&opts.FlowTokens, "flow-tokens", "", "flow token mode: uuidv7|sequential (overrides MULTISTORE_FLOW_TOKENS)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "maximum time to wait for all dispatches")

	return cmd
}

func runDispatch(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	actions, err := parseActions(opts.Actions)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidAction, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid action", err)
	}

	prog, err := LoadProgram(path)
	if err != nil {
		code, msg := loadErrorCode(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, msg))
	}
	if errs := compiler.Validate(prog); len(errs) > 0 {
		return outputValidationErrors(formatter, ValidationResult{Errors: errs})
	}
	specs, err := compiler.Build(prog)
	if err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to build program", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	gen, err := opts.flowGenerator()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid flow token mode", err)
	}
	mws, shutdown, err := opts.middleware(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid tracing configuration", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("flushing traces failed", "error", err)
		}
	}()

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithFlowGenerator(gen),
		engine.WithMiddleware(mws...),
	}

	journalPath := opts.Journal
	if journalPath == "" {
		journalPath = opts.Config.Journal
	}
	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()

		last, err := j.LastSeq(ctx)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		engineOpts = append(engineOpts, engine.WithJournal(j), engine.WithClock(engine.NewClockAt(last)))
		logger.Info("journal ready", "path", journalPath, "last_seq", last)
	}

	d, err := engine.New(specs, engineOpts...)
	if err != nil {
		_ = formatter.Error(engine.Code(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to create dispatcher", err)
	}

	result := RunResult{Journal: journalPath}
	for i, action := range actions {
		formatter.VerboseLog("Dispatching %s", ir.CanonicalString(action))
		if _, err := d.DispatchAndWait(ctx, action); err != nil {
			code := engine.Code(err)
			if code == "" {
				code = ErrCodeGeneric
			}
			result.Failure = &DispatchFailed{Index: i, Code: code, Message: err.Error()}
			logger.Warn("dispatch failed", "index", i, "error", err)
			break
		}
		result.Dispatched++
	}
	result.States = d.GetStateForAll()

	return outputRun(formatter, result)
}

// parseActions decodes each --action value as a JSON object.
func parseActions(raw []string) ([]ir.IRObject, error) {
	if len(raw) == 0 {
		return nil, errors.New("at least one --action is required")
	}
	actions := make([]ir.IRObject, len(raw))
	for i, s := range raw {
		var obj ir.IRObject
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return nil, fmt.Errorf("--action %d: %w", i, err)
		}
		actions[i] = obj
	}
	return actions, nil
}

func (o *RunOptions) flowGenerator() (engine.FlowTokenGenerator, error) {
	if o.FlowGenerator != nil {
		return o.FlowGenerator, nil
	}
	mode := o.FlowTokens
	if mode == "" {
		mode = o.Config.FlowTokens
	}
	switch strings.ToLower(mode) {
	case "", config.FlowTokensUUIDv7:
		return engine.UUIDv7Generator{}, nil
	case config.FlowTokensSequential:
		return testutil.NewSequentialFlowGenerator("flow"), nil
	default:
		return nil, fmt.Errorf("unknown flow token mode %q", mode)
	}
}

func outputRun(formatter *OutputFormatter, result RunResult) error {
	var failure error
	if result.Failure != nil {
		failure = NewExitError(ExitFailure, fmt.Sprintf("dispatch %d failed: %s", result.Failure.Index, result.Failure.Message))
	}

	if formatter.JSON() {
		if result.Failure != nil {
			if err := formatter.Failure(result, result.Failure.Code, result.Failure.Message); err != nil {
				return err
			}
			return failure
		}
		return formatter.Success(result, "")
	}

	w := formatter.Writer
	if result.Failure != nil {
		fmt.Fprintf(w, "✗ Dispatch %d failed [%s]: %s\n", result.Failure.Index, result.Failure.Code, result.Failure.Message)
	} else {
		fmt.Fprintf(w, "✓ Dispatched %d action(s)\n", result.Dispatched)
	}
	for _, name := range slices.Sorted(maps.Keys(result.States)) {
		fmt.Fprintf(w, "  %s = %s\n", name, ir.CanonicalString(result.States[name]))
	}
	return failure
}
