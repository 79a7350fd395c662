package engine

import (
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/indexing"
)

// Seek finds the first visible record whose key in the current index
// matches value. Numeric keys match exactly; text keys match
// case-insensitively on the first len(value) characters, so a partial
// value seeks a key prefix.
func (t *Table) Seek(value interface{}, flags ...Flag) bool {
	if !has(flags, NoCommit) {
		t.Commit()
	}
	if t.curOrder <= 0 {
		return t.fail("seek", &errors.IndexStateError{Op: "seek", CurOrder: t.curOrder, Reason: "no current index"})
	}
	if value == nil {
		return t.fail("seek", errors.NewTypeMismatch("seek value", value, "text or number", "undefined"))
	}
	if len(t.records) == 0 {
		t.bof = false
		return false
	}

	t.syncIndexes()
	ix := t.indexes[t.curOrder-1]
	pos, ok, err := ix.Search(value)
	if err != nil {
		t.forceBofEof()
		t.bof = false
		return t.fail("seek", err)
	}
	if ok {
		want := indexing.SeekValue(value)
		for p := pos; ix.Matches(p, want); p++ {
			if r := ix.At(p).Recno; t.visible(r) {
				t.load(r)
				return true
			}
		}
	}
	t.forceBofEof()
	t.bof = false
	return false
}

// SeekExp evaluates a value expression, typically built by BldValueExp over
// bound variables, and seeks its result
func (t *Table) SeekExp(expr string, flags ...Flag) bool {
	c, err := t.compile(expr)
	if err != nil {
		return t.fail("seek", err)
	}
	v, err := c.Eval(t.cur, t.vars)
	if err != nil {
		return t.fail("seek", err)
	}
	return t.Seek(v, flags...)
}
