package harness

import (
	"github.com/roach88/listfuse/internal/fusion"
	"github.com/roach88/listfuse/internal/ir"
	"github.com/roach88/listfuse/internal/sqlgen"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every check matched.
	Pass bool `json:"pass"`

	// Errors contains check failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// ErrorCode is the code of the expected error, when one occurred.
	ErrorCode string `json:"error_code,omitempty"`

	// Plan is the fused plan. Nil when recording or fusion failed.
	Plan *fusion.Plan `json:"-"`

	// Final is the list produced by direct replay of the edits.
	Final []ir.IRValue `json:"-"`

	// Statements are the compiled SQL statements for the plan.
	Statements []sqlgen.Statement `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a check failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
