package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/multistore/internal/compiler"
	"github.com/roach88/multistore/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <program>",
		Short: "Compile a store program to canonical JSON",
		Long: `Compile a CUE store program, validate it, and print its canonical JSON
form: every store with its initial state, merge strategy and updaters, and
every static value. The output is byte-stable and suitable for diffing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	prog, err := LoadProgram(path)
	if err != nil {
		code, msg := loadErrorCode(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, msg))
	}
	if errs := compiler.Validate(prog); len(errs) > 0 {
		return outputValidationErrors(formatter, ValidationResult{Errors: errs})
	}

	data, err := ir.MarshalCanonical(programDocument(prog))
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to marshal program", err)
	}

	if opts.Output == "" {
		_, err := fmt.Fprintln(formatter.Writer, string(data))
		return err
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	formatter.VerboseLog("Wrote %d bytes to %s", len(data), opts.Output)
	return formatter.Success(map[string]any{"output": opts.Output, "stores": len(prog.Stores), "statics": len(prog.Statics)},
		fmt.Sprintf("✓ Compiled %d stores and %d statics to %s", len(prog.Stores), len(prog.Statics), opts.Output))
}

// programDocument renders p as plain values accepted by ir.MarshalCanonical.
func programDocument(p *compiler.Program) map[string]any {
	stores := make(map[string]any, len(p.Stores))
	for _, s := range p.Stores {
		updaters := make([]any, len(s.Updaters))
		for i, u := range s.Updaters {
			updaters[i] = updaterDocument(u)
		}
		merge := s.Merge
		if merge == "" {
			merge = compiler.MergeResumed
		}
		stores[s.Name] = map[string]any{
			"initial":  s.Initial,
			"merge":    merge,
			"updaters": updaters,
		}
	}

	statics := make(map[string]any, len(p.Statics))
	for _, st := range p.Statics {
		statics[st.Name] = st.Value
	}

	return map[string]any{"stores": stores, "statics": statics}
}

func updaterDocument(u compiler.UpdaterDef) map[string]any {
	doc := map[string]any{"op": u.Op}
	if u.On != "" {
		doc["on"] = u.On
	}
	if u.HasValue {
		doc["value"] = u.Value
	}
	if u.From != "" {
		doc["from"] = u.From
	}
	if u.Field != "" {
		doc["field"] = u.Field
	}
	if u.Pause > 0 {
		doc["pause"] = u.Pause.String()
	}
	if u.Emit != nil {
		doc["emit"] = u.Emit
	}
	if u.Message != "" {
		doc["message"] = u.Message
	}
	return doc
}
