// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of a VectraError.
type ErrorType string

const (
	ValidationError ErrorType = "ValidationError"
	ShapeError      ErrorType = "ShapeError"
	IngestError     ErrorType = "IngestError"
	TransportError  ErrorType = "TransportError"
	ConfigError     ErrorType = "ConfigError"
)

// OperationLocation pinpoints where in a pipeline an error occurred: which
// column, which operation, and (for list columns) which row.
type OperationLocation struct {
	Column string
	Op     string
	Row    int // -1 when the error is not row-specific
}

// VectraError is the structured error every package-level entry point
// returns. It carries enough context to reconstruct what was being
// computed without needing to re-run the pipeline under a debugger.
type VectraError struct {
	Type      ErrorType
	Message   string
	Location  OperationLocation
	CallStack []StackFrame
	Detail    string // extra context: e.g. the offending raw value
}

// StackFrame represents one stage of a pipeline that was active when the
// error surfaced — mirroring a call stack, but over pipeline stages
// (ingest -> plan -> normalize -> execute -> serve) rather than function
// calls.
type StackFrame struct {
	Stage  string
	Column string
	Row    int
}

// Error implements the error interface.
func (e *VectraError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Type, e.Message))

	if e.Location.Column != "" {
		if e.Location.Row >= 0 {
			sb.WriteString(fmt.Sprintf("  at column %q, op %q, row %d\n", e.Location.Column, e.Location.Op, e.Location.Row))
		} else {
			sb.WriteString(fmt.Sprintf("  at column %q, op %q\n", e.Location.Column, e.Location.Op))
		}
		if e.Detail != "" {
			sb.WriteString(fmt.Sprintf("\n  %s\n", e.Detail))
		}
	}

	if len(e.CallStack) > 0 {
		sb.WriteString("\nPipeline stack:\n")
		for _, frame := range e.CallStack {
			if frame.Row >= 0 {
				sb.WriteString(fmt.Sprintf("  at %s (column %q, row %d)\n", frame.Stage, frame.Column, frame.Row))
			} else {
				sb.WriteString(fmt.Sprintf("  at %s (column %q)\n", frame.Stage, frame.Column))
			}
		}
	}

	return sb.String()
}

// NewValidationError creates a new validation error scoped to a column/op.
func NewValidationError(message, column, op string) *VectraError {
	return &VectraError{
		Type:    ValidationError,
		Message: message,
		Location: OperationLocation{
			Column: column,
			Op:     op,
			Row:    -1,
		},
	}
}

// NewShapeError creates a new shape-mismatch error scoped to a column/op.
func NewShapeError(message, column, op string) *VectraError {
	return &VectraError{
		Type:    ShapeError,
		Message: message,
		Location: OperationLocation{
			Column: column,
			Op:     op,
			Row:    -1,
		},
	}
}

// AtRow narrows the error's location to a specific row.
func (e *VectraError) AtRow(row int) *VectraError {
	e.Location.Row = row
	return e
}

// WithDetail attaches free-form context (e.g. the offending raw value).
func (e *VectraError) WithDetail(detail string) *VectraError {
	e.Detail = detail
	return e
}

// WithStack replaces the pipeline call stack wholesale.
func (e *VectraError) WithStack(stack []StackFrame) *VectraError {
	e.CallStack = stack
	return e
}

// PushStage appends a single pipeline stage frame.
func (e *VectraError) PushStage(stage, column string, row int) *VectraError {
	e.CallStack = append(e.CallStack, StackFrame{
		Stage:  stage,
		Column: column,
		Row:    row,
	})
	return e
}
