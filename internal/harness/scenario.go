package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a dispatch scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the path of the CUE store program.
	// Relative paths are resolved against the scenario file location.
	Program string `yaml:"program"`

	// FlowPrefix prefixes the sequential flow tokens. Defaults to "flow".
	FlowPrefix string `yaml:"flow_prefix,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is either a dispatch or a wait.
type Step struct {
	// Dispatch is the action to dispatch.
	Dispatch map[string]any `yaml:"dispatch,omitempty"`

	// Async leaves the dispatch running; a later wait step collects it.
	Async bool `yaml:"async,omitempty"`

	// ExpectError is the error code the dispatch must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Wait blocks until every outstanding async dispatch has finished.
	Wait bool `yaml:"wait,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type is one of final_state, notify_count, round_count, paused_rounds.
	Type string `yaml:"type"`

	// Store names the store (final_state, notify_count).
	Store string `yaml:"store,omitempty"`

	// Expect is the expected state (final_state).
	Expect any `yaml:"expect,omitempty"`

	// Count is the expected number (notify_count, round_count, paused_rounds).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState   = "final_state"
	AssertNotifyCount  = "notify_count"
	AssertRoundCount   = "round_count"
	AssertPausedRounds = "paused_rounds"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if s.Program != "" && !filepath.IsAbs(s.Program) {
		s.Program = filepath.Join(filepath.Dir(path), s.Program)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks required fields and step and assertion shapes.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, err := os.Stat(s.Program); err != nil {
		return fmt.Errorf("program not found: %s", s.Program)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	switch {
	case step.Wait && step.Dispatch != nil:
		return fmt.Errorf("steps[%d]: a step is either dispatch or wait", index)
	case step.Wait:
		if step.Async || step.ExpectError != "" {
			return fmt.Errorf("steps[%d]: wait takes no other fields", index)
		}
	case step.Dispatch == nil:
		return fmt.Errorf("steps[%d]: dispatch or wait is required", index)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalState:
		if a.Store == "" {
			return fmt.Errorf("assertions[%d]: store is required for final_state", index)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertNotifyCount:
		if a.Store == "" {
			return fmt.Errorf("assertions[%d]: store is required for notify_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertRoundCount, AssertPausedRounds:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
