package localtable

import lterrors "github.com/leengari/localtable/internal/domain/errors"

// Error types reported by Table.Err and returned by New
type (
	SchemaError       = lterrors.SchemaError
	RangeError        = lterrors.RangeError
	CompileError      = lterrors.CompileError
	TypeMismatchError = lterrors.TypeMismatchError
	IndexStateError   = lterrors.IndexStateError
	EvaluationError   = lterrors.EvaluationError
	InvariantError    = lterrors.InvariantError
)
