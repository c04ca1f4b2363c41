package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/listfuse/internal/ir"
)

// schemaSource constrains a collection mapping before it is read.
// position_base defaults to 0.
const schemaSource = `
#CollectionMapping: {
	table:           string
	owner_column:    string
	position_column: string
	element_column:  string
	position_base:   *0 | 1
	...
}
`

// CompileMapping parses a CUE value into a CollectionMapping.
// Uses the CUE Go API directly.
//
// The value should be the mapping struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`mapping: order_items: { table: "order_items", ... }`)
//	m, err := CompileMapping(v.LookupPath(cue.ParsePath("mapping.order_items")))
func CompileMapping(v cue.Value) (*ir.CollectionMapping, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.CollectionMapping{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		m.Name = labels[len(labels)-1].String()
	}

	for _, field := range []string{"table", "owner_column", "position_column", "element_column"} {
		if !v.LookupPath(cue.ParsePath(field)).Exists() {
			return nil, &CompileError{
				Field:   field,
				Message: field + " is required",
				Pos:     v.Pos(),
			}
		}
	}

	schema := v.Context().CompileString(schemaSource).LookupPath(cue.ParsePath("#CollectionMapping"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("mapping schema: %w", err)
	}
	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var err error
	if m.Table, err = lookupString(unified, "table"); err != nil {
		return nil, err
	}
	if m.OwnerColumn, err = lookupString(unified, "owner_column"); err != nil {
		return nil, err
	}
	if m.PositionColumn, err = lookupString(unified, "position_column"); err != nil {
		return nil, err
	}
	if m.ElementColumn, err = lookupString(unified, "element_column"); err != nil {
		return nil, err
	}

	base, err := unified.LookupPath(cue.ParsePath("position_base")).Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	m.PositionBase = int(base)

	return m, nil
}

func lookupString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a string", field),
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with position info wins.
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
