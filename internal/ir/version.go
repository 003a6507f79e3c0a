package ir

// Version constants for the action encoding and the engine.
const (
	// IRVersion is the action encoding version recorded in the journal.
	IRVersion = "1"

	// EngineVersion is the multistore engine version.
	EngineVersion = "0.1.0"
)
