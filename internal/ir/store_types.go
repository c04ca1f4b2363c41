package ir

// NOTE: store-layer records. They carry an auto-increment ID for the
// journal table and are not part of any content-addressed hash.

// FlushRecord is one fused collection flush in the journal.
type FlushRecord struct {
	ID          int64  `json:"id"`
	SessionID   string `json:"session_id"`
	Seq         int64  `json:"seq"` // Logical clock of the session at flush time
	Collection  string `json:"collection"`
	Owner       string `json:"owner"` // Canonical JSON of the owner id
	PlanID      string `json:"plan_id"`
	Strategy    string `json:"strategy"`
	RemoveCount int    `json:"remove_count"`
	AddCount    int    `json:"add_count"`
	UpdateCount int    `json:"update_count"`
	Statements  int    `json:"statements"`
	Plan        string `json:"plan"` // Canonical JSON of the plan document
}
