package engine

import (
	"strings"

	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/indexing"
)

// order walks record numbers in physical order or in the order of one index
type order struct {
	n  int
	ix *indexing.Index
}

func (o order) len() int {
	if o.ix == nil {
		return o.n
	}
	return min(o.ix.Len(), o.n)
}

// recno returns the record number at 0-based position i
func (o order) recno(i int) int {
	if o.ix == nil {
		return i + 1
	}
	return o.ix.At(i).Recno
}

// pos returns the position of recno, -1 when the order does not hold it
func (o order) pos(recno int) int {
	if o.ix == nil {
		if recno < 1 {
			return -1
		}
		return min(recno-1, o.n)
	}
	return o.ix.Position(recno)
}

// traversal returns the current order, catching indexes up with records
// they have not seen yet
func (t *Table) traversal() order {
	o := order{n: len(t.records)}
	if t.curOrder > 0 {
		t.syncIndexes()
		o.ix = t.indexes[t.curOrder-1]
	}
	return o
}

// syncIndexes adds entries for records an index does not hold, typically
// blank records appended since the last commit
func (t *Table) syncIndexes() {
	n := len(t.records)
	for _, ix := range t.indexes {
		if ix.Covers(n) {
			continue
		}
		for _, r := range ix.Missing(n) {
			key, err := ix.Key(t.records[r-1], t.vars)
			if err != nil {
				t.invariant("index sync", err)
				key = ""
			}
			ix.Append(r, key)
		}
	}
}

// visible applies the setdeleted and filter screens to stored record r.
// A filter that fails to evaluate screens the record out.
func (t *Table) visible(r int) bool {
	if t.setDeleted && t.records[r-1].Deleted() {
		return false
	}
	return t.passesFilter(r)
}

func (t *Table) passesFilter(r int) bool {
	if t.filter == nil {
		return true
	}
	ok, err := t.filter.Test(t.records[r-1], t.vars)
	if err != nil {
		t.logger.Warn("filter evaluation failed", "recno", r, "filter", t.filter.Source, "error", err)
		return false
	}
	return ok
}

// forceBofEof moves past the last record and resets the cursor to the empty record
func (t *Table) forceBofEof() {
	t.recno = len(t.records) + 1
	t.bof = true
	t.eof = true
	t.cur = t.schema.EmptyRecord()
}

// GoTo moves to record n regardless of deleted marks and filter
func (t *Table) GoTo(n int, flags ...Flag) bool {
	if !has(flags, NoCommit) {
		t.Commit()
	}
	if n < 1 || n > len(t.records) {
		return t.fail("goto", &errors.RangeError{Recno: n, Reccount: len(t.records)})
	}
	t.load(n)
	return true
}

// GoTop moves to the first visible record in the current order
func (t *Table) GoTop(flags ...Flag) bool {
	if !has(flags, NoCommit) {
		t.Commit()
	}
	if len(t.records) == 0 {
		t.bof = true
		return false
	}

	o := t.traversal()
	for i := 0; i < o.len(); i++ {
		if r := o.recno(i); t.visible(r) {
			t.load(r)
			return true
		}
	}
	t.forceBofEof()
	t.bof = false
	return false
}

// GoBottom moves to the last visible record in the current order
func (t *Table) GoBottom(flags ...Flag) bool {
	if !has(flags, NoCommit) {
		t.Commit()
	}
	if len(t.records) == 0 {
		t.bof = true
		return false
	}

	o := t.traversal()
	for i := o.len() - 1; i >= 0; i-- {
		if r := o.recno(i); t.visible(r) {
			t.load(r)
			return true
		}
	}
	t.forceBofEof()
	return false
}

// Skip moves n positions in the current order and then on to the nearest
// visible record in that direction. Running off the end leaves the cursor
// at eof; running off the start lands on the top record with bof raised.
func (t *Table) Skip(n int, flags ...Flag) bool {
	if !has(flags, NoCommit) {
		t.Commit()
	}
	if n == 0 {
		return false
	}
	if len(t.records) == 0 {
		t.bof = true
		return false
	}

	o := t.traversal()
	start := o.pos(t.recno)
	if start < 0 {
		if !t.eof {
			t.fail("skip", &errors.InvariantError{Op: "skip", Reason: "current record has no entry in the current index"})
			t.GoBottom(NoCommit)
			return false
		}
		start = o.len()
	}

	if n > 0 {
		for i := start + n; i < o.len(); i++ {
			if r := o.recno(i); t.visible(r) {
				t.load(r)
				return true
			}
		}
		t.forceBofEof()
		t.bof = false
		return false
	}

	for i := start + n; i >= 0; i-- {
		if i >= o.len() {
			continue
		}
		if r := o.recno(i); t.visible(r) {
			t.load(r)
			return true
		}
	}
	if t.GoTop(NoCommit) {
		t.bof = true
		return false
	}
	t.forceBofEof()
	return false
}

// Locate moves to the first visible record, in the current order, for
// which expr is true
func (t *Table) Locate(expr string, flags ...Flag) bool {
	if !has(flags, NoCommit) {
		t.Commit()
	}
	if strings.TrimSpace(expr) == "" {
		return t.fail("locate", errors.NewCompileError(expr, -1, "locate condition is empty"))
	}
	if len(t.records) == 0 {
		t.bof = true
		return false
	}
	cond, err := t.compile(expr)
	if err != nil {
		return t.fail("locate", err)
	}

	o := t.traversal()
	for i := 0; i < o.len(); i++ {
		r := o.recno(i)
		if !t.visible(r) {
			continue
		}
		ok, err := cond.Test(t.records[r-1], t.vars)
		if err != nil {
			return t.fail("locate", err)
		}
		if ok {
			t.load(r)
			return true
		}
	}
	t.forceBofEof()
	t.bof = false
	return false
}

// IsSetDeleted reports whether traversals skip deleted records
func (t *Table) IsSetDeleted() bool { return t.setDeleted }

func (t *Table) SetDeletedOn() bool {
	t.setDeleted = true
	return true
}

func (t *Table) SetDeletedOff() bool {
	t.setDeleted = false
	return true
}

// Filter returns the active filter expression as given, "" when none
func (t *Table) Filter() string {
	if t.filter == nil {
		return ""
	}
	return t.filter.Source
}

// SetFilter installs a filter condition for every traversal except GoTo.
// The expression must yield a logical value on the empty record; anything
// else clears the filter. An empty expression clears it too.
func (t *Table) SetFilter(expr string) bool {
	if strings.TrimSpace(expr) == "" {
		return t.ClearFilter()
	}
	cond, err := t.compile(expr)
	if err != nil {
		t.filter = nil
		return t.fail("set filter", err)
	}
	v, err := cond.Eval(t.schema.EmptyRecord(), t.vars)
	if err != nil {
		t.filter = nil
		return t.fail("set filter", err)
	}
	if _, ok := v.(bool); !ok {
		t.filter = nil
		return t.fail("set filter", errors.NewTypeMismatch("filter", expr, data.KindLogical.String(), data.KindOf(v).String()))
	}
	t.filter = cond
	return true
}

func (t *Table) ClearFilter() bool {
	t.filter = nil
	return true
}
