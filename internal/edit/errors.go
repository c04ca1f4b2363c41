package edit

import (
	"errors"
	"fmt"
)

// ProgrammingError reports misuse of a Log by its caller. These are contract
// violations: they are never retried and the log is left unchanged.
type ProgrammingError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed ("add", "add_all", "remove", "fuse").
	Op string

	// Index and Size describe the rejected index and the live size.
	Index int
	Size  int

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes programming errors.
type ErrorCode string

const (
	// ErrCodeIndexOutOfRange indicates an index invalid for the live size.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeLogAlreadyFused indicates a record or fuse after the log was sealed.
	ErrCodeLogAlreadyFused ErrorCode = "LOG_ALREADY_FUSED"

	// ErrCodeFlagMismatch indicates an append/trailing flag that disagrees
	// with the index (strict logs only).
	ErrCodeFlagMismatch ErrorCode = "FLAG_MISMATCH"
)

// Error implements the error interface.
func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewIndexOutOfRange creates a ProgrammingError for a bad index.
func NewIndexOutOfRange(op string, index, size int) *ProgrammingError {
	limit := fmt.Sprintf("[0,%d)", size)
	if op == "add" || op == "add_all" {
		limit = fmt.Sprintf("[0,%d]", size)
	}
	return &ProgrammingError{
		Code:    ErrCodeIndexOutOfRange,
		Op:      op,
		Index:   index,
		Size:    size,
		Message: fmt.Sprintf("%s index %d outside %s", op, index, limit),
	}
}

// NewLogAlreadyFused creates a ProgrammingError for use after Seal.
func NewLogAlreadyFused(op string) *ProgrammingError {
	return &ProgrammingError{
		Code:    ErrCodeLogAlreadyFused,
		Op:      op,
		Message: fmt.Sprintf("%s after the log was fused", op),
	}
}

func newFlagMismatch(op string, index, size int, name string, got bool) *ProgrammingError {
	return &ProgrammingError{
		Code:    ErrCodeFlagMismatch,
		Op:      op,
		Index:   index,
		Size:    size,
		Message: fmt.Sprintf("%s index %d with size %d has %s=%t", op, index, size, name, got),
	}
}

// IsIndexOutOfRange returns true if err is an INDEX_OUT_OF_RANGE error.
// Uses errors.As to handle wrapped errors.
func IsIndexOutOfRange(err error) bool {
	return hasCode(err, ErrCodeIndexOutOfRange)
}

// IsLogAlreadyFused returns true if err is a LOG_ALREADY_FUSED error.
func IsLogAlreadyFused(err error) bool {
	return hasCode(err, ErrCodeLogAlreadyFused)
}

// IsFlagMismatch returns true if err is a FLAG_MISMATCH error.
func IsFlagMismatch(err error) bool {
	return hasCode(err, ErrCodeFlagMismatch)
}

// CodeOf returns the ErrorCode of a ProgrammingError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var pe *ProgrammingError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	var pe *ProgrammingError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
