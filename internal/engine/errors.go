package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/multistore/internal/store"
)

// Error represents a failure reported by the Dispatcher itself, as opposed to
// a failure inside a store's updaters (see store.UpdaterError).
//
// Error includes structured fields for diagnostics.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Store names the affected store, when there is one.
	Store string

	// FlowToken identifies the affected dispatch call, when there is one.
	FlowToken string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes dispatcher errors.
type ErrorCode string

const (
	// ErrCodeInvalidAction indicates a dispatched action is not an object.
	ErrCodeInvalidAction ErrorCode = "INVALID_ACTION"

	// ErrCodeInvalidArgument indicates a malformed call, such as an empty
	// store name or a nil subscriber.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeUnknownStore indicates a store name that is not registered.
	ErrCodeUnknownStore ErrorCode = "UNKNOWN_STORE"

	// ErrCodeAlreadyUnsubscribed indicates an unsubscribe function was
	// called a second time.
	ErrCodeAlreadyUnsubscribed ErrorCode = "ALREADY_UNSUBSCRIBED"
)

// Sentinels matched by errors.Is against an *Error of the same code.
var (
	ErrInvalidAction       = errors.New("invalid action")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnknownStore        = errors.New("unknown store")
	ErrAlreadyUnsubscribed = errors.New("already unsubscribed")
)

var sentinels = map[ErrorCode]error{
	ErrCodeInvalidAction:       ErrInvalidAction,
	ErrCodeInvalidArgument:     ErrInvalidArgument,
	ErrCodeUnknownStore:        ErrUnknownStore,
	ErrCodeAlreadyUnsubscribed: ErrAlreadyUnsubscribed,
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Store != "" {
		msg += fmt.Sprintf(" (store=%s)", e.Store)
	}
	if e.FlowToken != "" {
		msg += fmt.Sprintf(" (flow=%s)", e.FlowToken)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the code sentinel and the cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinels[e.Code]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsInvalidAction returns true if the error is an invalid action error.
// Uses errors.Is to handle wrapped errors.
func IsInvalidAction(err error) bool {
	return errors.Is(err, ErrInvalidAction)
}

// IsInvalidArgument returns true if the error is an invalid argument error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsUnknownStore returns true if the error names an unregistered store.
func IsUnknownStore(err error) bool {
	return errors.Is(err, ErrUnknownStore)
}

// IsAlreadyUnsubscribed returns true if an unsubscribe ran twice.
func IsAlreadyUnsubscribed(err error) bool {
	return errors.Is(err, ErrAlreadyUnsubscribed)
}

// Code returns the error code carried by err, or "" for errors without one.
// Both dispatcher errors and updater errors are recognised.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	var ue *store.UpdaterError
	if errors.As(err, &ue) {
		return string(ue.Code)
	}
	return ""
}

func invalidArgument(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

func unknownStore(name string) *Error {
	return &Error{Code: ErrCodeUnknownStore, Message: "store is not registered", Store: name}
}
