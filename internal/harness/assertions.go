package harness

import (
	"fmt"

	"github.com/roach88/multistore/internal/ir"
)

// AssertionError provides detailed context when an assertion fails.
type AssertionError struct {
	Type     string
	Expected any
	Actual   any
	Message  string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s (expected %v, actual %v)", e.Type, e.Message, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalState:
		return assertFinalState(result, a)
	case AssertNotifyCount:
		if got := result.Notifications[a.Store]; got != a.Count {
			return &AssertionError{Type: a.Type, Expected: a.Count, Actual: got, Message: "store " + a.Store + " notified a different number of times"}
		}
	case AssertRoundCount:
		if got := len(result.Trace); got != a.Count {
			return &AssertionError{Type: a.Type, Expected: a.Count, Actual: got, Message: "unexpected number of rounds"}
		}
	case AssertPausedRounds:
		got := 0
		for _, ev := range result.Trace {
			if len(ev.Paused) > 0 {
				got++
			}
		}
		if got != a.Count {
			return &AssertionError{Type: a.Type, Expected: a.Count, Actual: got, Message: "unexpected number of paused rounds"}
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertFinalState compares canonical renderings so YAML ints and int64
// state values compare equal.
func assertFinalState(result *Result, a Assertion) error {
	actual, ok := result.State[a.Store]
	if !ok {
		return &AssertionError{Type: a.Type, Expected: a.Expect, Actual: nil, Message: "store " + a.Store + " does not exist"}
	}

	want, err := ir.MarshalCanonical(a.Expect)
	if err != nil {
		return fmt.Errorf("final_state: expect is not canonical: %w", err)
	}
	got, err := ir.MarshalCanonical(actual)
	if err != nil {
		return fmt.Errorf("final_state: state of %s is not canonical: %w", a.Store, err)
	}
	if string(want) != string(got) {
		return &AssertionError{Type: a.Type, Expected: string(want), Actual: string(got), Message: "store " + a.Store + " has a different final state"}
	}
	return nil
}
