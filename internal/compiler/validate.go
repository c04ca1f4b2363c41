package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/listfuse/internal/ir"
)

// Validation error codes (E200-E209)
const (
	ErrMappingNameEmpty     = "E201" // mapping has no name
	ErrInvalidIdentifier    = "E202" // table or column is not a plain SQL identifier
	ErrDuplicateColumn      = "E203" // two roles share one column
	ErrInvalidPositionBase  = "E204" // position_base is not 0 or 1
	ErrDuplicateMappingName = "E205" // two mappings share a name
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"` // Source line, when known
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled mapping.
// Returns all errors found (does not fail-fast).
func Validate(m *ir.CollectionMapping) []ValidationError {
	var errs []ValidationError

	if m.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "mapping name is required",
			Code:    ErrMappingNameEmpty,
		})
	}

	idents := []struct {
		field string
		value string
	}{
		{"table", m.Table},
		{"owner_column", m.OwnerColumn},
		{"position_column", m.PositionColumn},
		{"element_column", m.ElementColumn},
	}
	for _, id := range idents {
		if !identifierPattern.MatchString(id.value) {
			errs = append(errs, ValidationError{
				Field:   id.field,
				Message: fmt.Sprintf("%q is not a valid identifier", id.value),
				Code:    ErrInvalidIdentifier,
			})
		}
	}

	// Columns must be distinct from each other.
	seen := map[string]string{}
	for _, id := range idents[1:] {
		if id.value == "" {
			continue
		}
		if prev, ok := seen[id.value]; ok {
			errs = append(errs, ValidationError{
				Field:   id.field,
				Message: fmt.Sprintf("column %q is already used by %s", id.value, prev),
				Code:    ErrDuplicateColumn,
			})
			continue
		}
		seen[id.value] = id.field
	}

	if !ir.ValidPositionBases[m.PositionBase] {
		errs = append(errs, ValidationError{
			Field:   "position_base",
			Message: fmt.Sprintf("position_base must be 0 or 1, got %d", m.PositionBase),
			Code:    ErrInvalidPositionBase,
		})
	}

	return errs
}

// ValidateAll validates every mapping and checks names are unique.
func ValidateAll(mappings []ir.CollectionMapping) []ValidationError {
	var errs []ValidationError
	names := map[string]bool{}
	for i := range mappings {
		m := &mappings[i]
		for _, e := range Validate(m) {
			e.Field = m.Name + "." + e.Field
			errs = append(errs, e)
		}
		if m.Name != "" && names[m.Name] {
			errs = append(errs, ValidationError{
				Field:   m.Name,
				Message: "duplicate mapping name",
				Code:    ErrDuplicateMappingName,
			})
		}
		names[m.Name] = true
	}
	return errs
}
