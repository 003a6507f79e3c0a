package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a malformed program. Field is the dotted path inside
// the program ("stores.counter.updaters[0].op"), or "cue" for errors raised
// by CUE itself.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if !e.Pos.IsValid() {
		return e.Field + ": " + e.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
}

// formatCUEError turns the first of a CUE error list into a CompileError.
// Errors without a position are returned unchanged.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	list := errors.Errors(err)
	if len(list) == 0 {
		return err
	}
	positions := errors.Positions(list[0])
	if len(positions) == 0 {
		return err
	}
	return &CompileError{Field: "cue", Message: list[0].Error(), Pos: positions[0]}
}
