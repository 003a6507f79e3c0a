package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/multistore/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Stores  []string                   `json:"stores,omitempty"`
	Statics []string                   `json:"statics,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <program>",
		Short: "Validate a store program",
		Long: `Validate a CUE store program without running it.

Reports every semantic error (unknown ops, missing operands, operand and
state type mismatches, unknown merge strategies) with its code and line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	prog, err := LoadProgram(path)
	if err != nil {
		code, msg := loadErrorCode(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, msg))
	}

	result := ValidationResult{Valid: true}
	for _, s := range prog.Stores {
		formatter.VerboseLog("Validating store: %s (%d updaters)", s.Name, len(s.Updaters))
		result.Stores = append(result.Stores, s.Name)
	}
	for _, st := range prog.Statics {
		result.Statics = append(result.Statics, st.Name)
	}

	if errs := compiler.Validate(prog); len(errs) > 0 {
		result.Valid = false
		result.Errors = errs
		return outputValidationErrors(formatter, result)
	}

	return formatter.Success(result, fmt.Sprintf("✓ Program valid (%d stores, %d statics)", len(result.Stores), len(result.Statics)))
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		if err := formatter.Failure(result, errs[0].Code, errs[0].Message); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	return failure
}
