package engine

import (
	stderrors "errors"

	"github.com/leengari/localtable/internal/domain/errors"
)

// fail records err as the table's last diagnostic, logs it and returns
// false so callers can write `return t.fail(...)`. Invariant violations
// log at error level, everything else at warn.
func (t *Table) fail(op string, err error) bool {
	t.err = err
	var ie *errors.InvariantError
	if stderrors.As(err, &ie) {
		t.logger.Error("invariant violated", "op", op, "error", err)
		return false
	}
	t.logger.Warn("operation failed", "op", op, "recno", t.recno, "error", err)
	return false
}

// invariant logs a recovered internal inconsistency without failing the operation
func (t *Table) invariant(op string, err error) {
	t.err = err
	t.logger.Error("invariant violated", "op", op, "recno", t.recno, "error", err)
}
