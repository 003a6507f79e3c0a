// Package harness runs dispatch scenarios against compiled store programs.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: counter_basics
//	description: "What this scenario validates"
//	program: ../programs/counter.cue
//	steps:
//	  - dispatch: {type: INC}
//	  - dispatch: {type: SLOW}
//	    async: true
//	  - dispatch: {type: BOOM}
//	    expect_error: UPDATER_FAILURE
//	  - wait: true
//	assertions:
//	  - type: final_state
//	    store: counter
//	    expect: 3
//	  - type: notify_count
//	    store: counter
//	    count: 3
//	  - type: round_count
//	    count: 5
//	  - type: paused_rounds
//	    count: 1
//
// A dispatch step waits for its dispatch to finish unless async is set. A
// wait step waits for every outstanding async dispatch. expect_error names
// the error code (engine.Code) the dispatch must fail with.
//
// # Assertion Types
//
//   - final_state: the store's final state equals expect (canonical JSON)
//   - notify_count: the store's subscribers fired exactly count times
//   - round_count: exactly count rounds were journaled
//   - paused_rounds: exactly count rounds ended with paused stores
//
// # Deterministic Testing
//
// Every scenario runs with:
//   - Sequential flow tokens (testutil.SequentialFlowGenerator)
//   - Deterministic logical clock (testutil.DeterministicClock)
//   - In-memory SQLite journal (isolated per run)
//
// The journaled rounds form the trace compared against golden files.
package harness
