package errors

import (
	"fmt"
	"strings"
)

// SchemaError reports an invalid field definition list
type SchemaError struct {
	Field  string // offending field name (empty for list-level problems)
	Index  int    // position in the definition list (-1 if not applicable)
	Reason string
}

func (e *SchemaError) Error() string {
	var parts []string
	parts = append(parts, "schema error")
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field %q", e.Field))
	}
	if e.Index >= 0 {
		parts = append(parts, fmt.Sprintf("at position %d", e.Index))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, " - ")
}

func NewSchemaError(field string, index int, reason string) *SchemaError {
	return &SchemaError{Field: field, Index: index, Reason: reason}
}

// RangeError reports a record number outside [1, reccount]
type RangeError struct {
	Recno    int
	Reccount int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("record %d out of range [1, %d]", e.Recno, e.Reccount)
}

// CompileError reports a malformed condition, key or value expression
type CompileError struct {
	Expr   string
	Pos    int // byte offset in Expr, -1 if unknown
	Reason string
}

func (e *CompileError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("compile error in %q at %d: %s", e.Expr, e.Pos, e.Reason)
	}
	return fmt.Sprintf("compile error in %q: %s", e.Expr, e.Reason)
}

func NewCompileError(expr string, pos int, reason string) *CompileError {
	return &CompileError{Expr: expr, Pos: pos, Reason: reason}
}

// TypeMismatchError reports a value whose runtime kind differs from the field's
type TypeMismatchError struct {
	Field    string
	Value    interface{}
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for %s: expected %s, got %s (value=%v)",
		e.Field, e.Expected, e.Got, e.Value)
}

func NewTypeMismatch(field string, value interface{}, expected, got string) *TypeMismatchError {
	return &TypeMismatchError{Field: field, Value: value, Expected: expected, Got: got}
}

// IndexStateError reports an indexed operation requested without a usable index
type IndexStateError struct {
	Op       string
	CurOrder int
	Reason   string
}

func (e *IndexStateError) Error() string {
	return fmt.Sprintf("%s: %s (curorder=%d)", e.Op, e.Reason, e.CurOrder)
}

// EvaluationError wraps a fault raised while running a compiled expression
type EvaluationError struct {
	Expr   string
	Reason string
	Err    error
}

func (e *EvaluationError) Error() string {
	msg := fmt.Sprintf("evaluation of %q failed: %s", e.Expr, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EvaluationError) Unwrap() error { return e.Err }

func NewEvaluationError(expr, reason string) *EvaluationError {
	return &EvaluationError{Expr: expr, Reason: reason}
}

// InvariantError marks internal state the engine expected but did not find.
// The engine logs it and recovers instead of aborting.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated in %s: %s", e.Op, e.Reason)
}
