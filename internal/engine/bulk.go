package engine

import (
	"strings"

	"github.com/leengari/localtable/internal/condition"
	"github.com/leengari/localtable/internal/domain/data"
)

// predicate compiles an optional bulk condition; "" matches every record
func (t *Table) predicate(cond string) (*condition.Compiled, error) {
	if strings.TrimSpace(cond) == "" {
		return nil, nil
	}
	return t.compile(cond)
}

func (t *Table) matches(pred *condition.Compiled, rec data.Record) (bool, error) {
	if pred == nil {
		return true, nil
	}
	return pred.Test(rec, t.vars)
}

// ReplaceAll applies "field with expression" clauses to every visible
// record satisfying cond. Every value is computed before any record is
// written, so a failing expression or type mismatch changes nothing.
func (t *Table) ReplaceAll(list, cond string) bool {
	return t.ReplaceAllSep(list, ",", cond)
}

// ReplaceAllSep is ReplaceAll with a custom clause separator
func (t *Table) ReplaceAllSep(list, sep, cond string) bool {
	if len(t.records) == 0 {
		t.bof = true
		return false
	}
	t.Commit()

	pred, err := t.predicate(cond)
	if err != nil {
		return t.fail("replace all", err)
	}
	clauses, err := t.parseClauses(list, sep)
	if err != nil {
		return t.fail("replace all", err)
	}

	updated := make(map[int]data.Record)
	for r := 1; r <= len(t.records); r++ {
		if !t.visible(r) {
			continue
		}
		rec := t.records[r-1]
		ok, err := t.matches(pred, rec)
		if err != nil {
			return t.fail("replace all", err)
		}
		if !ok {
			continue
		}
		vals, err := t.evalClauses(clauses, rec)
		if err != nil {
			return t.fail("replace all", err)
		}
		next := rec.Clone()
		if err := applyClauses(clauses, vals, next); err != nil {
			return t.fail("replace all", err)
		}
		updated[r] = next
	}

	saved := t.curOrder
	t.curOrder = -1
	defer func() { t.curOrder = saved }()

	for r, rec := range updated {
		t.records[r-1] = rec
	}
	t.rebuildIndexes()
	t.forceBofEof()
	t.bof = false

	t.logger.Debug("bulk update", "records", len(updated))
	t.notify(EventBulkUpdate, len(updated))
	return true
}

// DeleteAll marks every record satisfying cond deleted. Records are
// screened by the filter only, since deleted ones must stay reachable.
func (t *Table) DeleteAll(cond string) bool {
	return t.markAll("delete all", cond, true)
}

// RecallAll clears the deleted mark of every record satisfying cond
func (t *Table) RecallAll(cond string) bool {
	return t.markAll("recall all", cond, false)
}

func (t *Table) markAll(op, cond string, flag bool) bool {
	if len(t.records) == 0 {
		t.bof = true
		return false
	}
	t.Commit()

	pred, err := t.predicate(cond)
	if err != nil {
		return t.fail(op, err)
	}

	var hits []int
	for r := 1; r <= len(t.records); r++ {
		if !t.passesFilter(r) {
			continue
		}
		ok, err := t.matches(pred, t.records[r-1])
		if err != nil {
			return t.fail(op, err)
		}
		if ok {
			hits = append(hits, r)
		}
	}
	for _, r := range hits {
		t.records[r-1][data.DeletedField] = flag
	}

	t.forceBofEof()
	t.bof = false
	t.notify(EventBulkUpdate, len(hits))
	return true
}

// Pack removes deleted records for good, renumbering the survivors, and
// rebuilds every index
func (t *Table) Pack() bool {
	if len(t.records) == 0 {
		t.bof = true
		return true
	}
	t.Commit(NoIndexUpdate)

	kept := t.records[:0]
	for _, rec := range t.records {
		if !rec.Deleted() {
			kept = append(kept, rec)
		}
	}
	removed := len(t.records) - len(kept)
	clear(t.records[len(kept):])
	t.records = kept

	t.rebuildIndexes()
	t.notify(EventPack, removed)
	t.logger.Debug("table packed", "removed", removed, "reccount", len(t.records))

	if len(t.records) == 0 {
		t.forceBofEof()
		return true
	}
	t.GoTop(NoCommit)
	return true
}

// Zap removes every record and resets every index to its placeholder
func (t *Table) Zap() bool {
	if len(t.records) == 0 {
		t.bof = true
		return true
	}
	t.records = nil
	for _, ix := range t.indexes {
		ix.Reset()
	}
	t.forceBofEof()
	t.notify(EventZap, nil)
	return true
}

// conform fits a record of any shape to the current schema: fields the
// schema lacks are dropped, missing or mistyped values become empty values
func (t *Table) conform(src data.Record) data.Record {
	out := t.schema.EmptyRecord()
	for name, empty := range out {
		v, ok := src[name]
		if !ok || v == nil {
			continue
		}
		cv, err := t.schema.Coerce(name, v)
		if err != nil {
			continue
		}
		out[name] = shapeValue(empty, cv)
	}
	return out
}

// AppendFromTable copies every non-deleted record of src to the end of this
// table, rebuilds the indexes and moves to the last appended record
func (t *Table) AppendFromTable(src *Table) bool {
	t.Commit()
	if src != t {
		src.Commit()
	}

	var added []data.Record
	for _, rec := range src.records {
		if rec.Deleted() {
			continue
		}
		added = append(added, t.conform(rec))
	}
	t.records = append(t.records, added...)

	t.forceBofEof()
	t.rebuildIndexes()
	t.notify(EventAppend, len(added))
	if len(t.records) > 0 {
		t.GoTo(len(t.records), NoCommit)
	}
	return true
}
