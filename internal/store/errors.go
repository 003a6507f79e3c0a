package store

import (
	"errors"
	"fmt"
)

// UpdaterErrorCode categorizes failures inside a store's pipeline.
type UpdaterErrorCode string

const (
	// ErrCodeUndefinedResult indicates an updater or middleware produced no state.
	ErrCodeUndefinedResult UpdaterErrorCode = "UNDEFINED_UPDATER_RESULT"

	// ErrCodeUpdaterFailure wraps whatever an updater or middleware returned
	// as an error.
	ErrCodeUpdaterFailure UpdaterErrorCode = "UPDATER_FAILURE"
)

// Sentinels matched by errors.Is against an *UpdaterError of the same code.
var (
	ErrUndefinedResult = errors.New("updater returned no state")
	ErrUpdaterFailure  = errors.New("updater failed")
	ErrInvalidSpec     = errors.New("invalid store spec")
)

// UpdaterError is a failure of one updater invocation.
type UpdaterError struct {
	// Code identifies the error category.
	Code UpdaterErrorCode

	// Store is the store name, when known.
	Store string

	// Index is the position of the failing updater.
	Index int

	// Err is the underlying cause (nil for undefined results).
	Err error
}

// Error implements the error interface.
func (e *UpdaterError) Error() string {
	where := fmt.Sprintf("updater %d", e.Index)
	if e.Store != "" {
		where = fmt.Sprintf("store %q updater %d", e.Store, e.Index)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, where, ErrUndefinedResult)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, where, e.Err)
}

// Unwrap exposes both the code sentinel and the cause.
func (e *UpdaterError) Unwrap() []error {
	sentinel := ErrUpdaterFailure
	if e.Code == ErrCodeUndefinedResult {
		sentinel = ErrUndefinedResult
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// IsUndefinedResult reports whether err is an undefined updater result.
func IsUndefinedResult(err error) bool {
	return errors.Is(err, ErrUndefinedResult)
}

// IsUpdaterFailure reports whether err is a wrapped updater failure.
func IsUpdaterFailure(err error) bool {
	return errors.Is(err, ErrUpdaterFailure)
}

// wrapUpdaterError attaches pipeline position to err. Errors that already
// carry a position keep it.
func wrapUpdaterError(err error, index int) error {
	var ue *UpdaterError
	if errors.As(err, &ue) {
		return err
	}
	return &UpdaterError{Code: ErrCodeUpdaterFailure, Index: index, Err: err}
}

func undefinedResult(p Plugins) error {
	name, _ := p.StoreName()
	return &UpdaterError{Code: ErrCodeUndefinedResult, Store: name, Index: p.UpdaterIndex()}
}
