package ir

// Version constants for plan encoding and the fusion engine.
const (
	// PlanVersion is the encoding version of serialized fusion plans.
	PlanVersion = "1"

	// EngineVersion is the listfuse engine version.
	EngineVersion = "0.1.0"
)
