package engine

import (
	"fmt"
	"strings"

	"github.com/leengari/localtable/internal/condition"
	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/domain/schema"
)

// onRecord reports whether the cursor addresses a stored record
func (t *Table) onRecord() bool {
	return t.recno > 0 && t.recno <= len(t.records) && !t.eof
}

// load copies stored record n into the cursor, falling back to the empty
// value of any field the stored record lacks
func (t *Table) load(n int) {
	t.recno = n
	t.bof = false
	t.eof = false

	stored := t.records[n-1]
	cur := t.schema.EmptyRecord()
	for name, empty := range cur {
		v, ok := stored[name]
		if !ok || v == nil {
			continue
		}
		cur[name] = shapeValue(empty, v)
	}
	t.cur = cur
}

// shapeValue fits v into the shape of an empty value: objects with a
// shaped template keep the template's keys, anything else is cloned as is
func shapeValue(empty, v interface{}) interface{} {
	tmpl, ok := empty.(map[string]interface{})
	if !ok || len(tmpl) == 0 {
		return data.Clone(v)
	}
	if !data.Merge(tmpl, v) {
		return data.Clone(v)
	}
	return tmpl
}

// snapshot builds the record to store from the cursor
func (t *Table) snapshot() data.Record {
	rec := t.schema.EmptyRecord()
	for name := range rec {
		if v, ok := t.cur[name]; ok {
			rec[name] = data.Clone(v)
		}
	}
	return rec
}

// Commit writes the cursor into the store at recno and maintains every
// index unless NoIndexUpdate is given or maintenance is suspended. It is a
// no-op returning false when the cursor is not on a record. All keys are
// computed before the store is touched.
func (t *Table) Commit(flags ...Flag) bool {
	if !t.onRecord() {
		return false
	}

	rec := t.snapshot()
	old := t.records[t.recno-1]

	type keyPair struct{ old, new interface{} }
	var keys []keyPair
	maintain := !has(flags, NoIndexUpdate) && t.curOrder != -1 && len(t.indexes) > 0
	if maintain {
		t.syncIndexes()
		keys = make([]keyPair, len(t.indexes))
		for i, ix := range t.indexes {
			nk, err := ix.Key(rec, t.vars)
			if err != nil {
				return t.fail("commit", err)
			}
			prev, err := ix.Key(old, t.vars)
			if err != nil {
				prev = nil
			}
			keys[i] = keyPair{old: prev, new: nk}
		}
	}

	t.records[t.recno-1] = rec
	for i, ix := range t.indexes {
		if !maintain {
			break
		}
		if err := ix.Update(t.recno, keys[i].old, keys[i].new); err != nil {
			t.invariant("commit", err)
		}
	}

	t.notify(EventCommit, t.recno)
	return true
}

// AppendBlank commits any pending edit, adds an empty record at the end and
// makes it current. The blank record is not indexed until it is committed
// with content or an indexed traversal catches the index up.
func (t *Table) AppendBlank() bool {
	t.Commit()
	t.records = append(t.records, t.schema.EmptyRecord())
	t.recno = len(t.records)
	t.bof = false
	t.eof = false
	t.cur = t.schema.EmptyRecord()
	t.Commit(NoIndexUpdate)
	t.notify(EventAppend, t.recno)
	return true
}

// Get reads a field or nested path of the current record. The value is a
// deep copy.
func (t *Table) Get(path string) (interface{}, bool) {
	v, ok := data.Get(t.cur, path)
	if !ok {
		return nil, false
	}
	return data.Clone(v), true
}

// Set assigns a field or nested path of the current record after checking
// it against the field type. The change is stored on the next commit.
func (t *Table) Set(path string, value interface{}) bool {
	v, err := t.schema.Coerce(path, value)
	if err != nil {
		return t.fail("set", err)
	}
	if !data.Set(t.cur, path, v) {
		return t.fail("set", errors.NewSchemaError(path, -1, "no such field or property"))
	}
	return true
}

// Current returns a deep copy of the cursor's field values
func (t *Table) Current() data.Record {
	return t.cur.Clone()
}

// Delete marks the current record deleted
func (t *Table) Delete() bool {
	return t.markDeleted("delete", true)
}

// Recall clears the deleted mark of the current record
func (t *Table) Recall() bool {
	return t.markDeleted("recall", false)
}

func (t *Table) markDeleted(op string, flag bool) bool {
	if !t.onRecord() {
		return t.fail(op, &errors.RangeError{Recno: t.recno, Reccount: len(t.records)})
	}
	t.cur[data.DeletedField] = flag
	return t.Commit()
}

// Deleted reports the deleted mark of the current record
func (t *Table) Deleted() bool {
	d, _ := t.cur[data.DeletedField].(bool)
	return d
}

// clause is one "path with expression" assignment
type clause struct {
	path string
	expr *condition.Compiled
}

// parseClauses splits "f1 with e1, f2 with e2" on sep and compiles each value expression
func (t *Table) parseClauses(list, sep string) ([]clause, error) {
	if strings.TrimSpace(list) == "" {
		return nil, errors.NewCompileError(list, -1, "replace list is empty")
	}
	if sep == "" {
		sep = ","
	}

	var out []clause
	for _, part := range strings.Split(list, sep) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		path, expr, ok := cutWith(part)
		if !ok {
			return nil, errors.NewCompileError(part, -1, `clause must have the form "field with expression"`)
		}
		if !t.schema.HasPath(path) {
			return nil, errors.NewSchemaError(path, -1, "no such field or property")
		}
		c, err := t.compile(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, clause{path: path, expr: c})
	}
	if len(out) == 0 {
		return nil, errors.NewCompileError(list, -1, "replace list is empty")
	}
	return out, nil
}

func cutWith(part string) (string, string, bool) {
	i := strings.Index(strings.ToLower(part), " with ")
	if i < 0 {
		return "", "", false
	}
	path := strings.TrimSpace(part[:i])
	expr := strings.TrimSpace(part[i+len(" with "):])
	return path, expr, path != "" && expr != ""
}

// evalClauses computes every clause value for rec, coerced to its field type
func (t *Table) evalClauses(clauses []clause, rec data.Record) ([]interface{}, error) {
	vals := make([]interface{}, len(clauses))
	for i, c := range clauses {
		v, err := c.expr.Eval(rec, t.vars)
		if err != nil {
			return nil, err
		}
		if v, err = t.schema.Coerce(c.path, v); err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// applyClauses writes computed values into rec
func applyClauses(clauses []clause, vals []interface{}, rec data.Record) error {
	for i, c := range clauses {
		if !data.Set(rec, c.path, vals[i]) {
			return fmt.Errorf("cannot assign %s", c.path)
		}
	}
	return nil
}

// ReplaceWith assigns "field with expression" clauses separated by commas
// to the current record. Expressions see the committed record.
func (t *Table) ReplaceWith(list string) bool {
	return t.ReplaceWithSep(list, ",")
}

// ReplaceWithSep is ReplaceWith with a custom clause separator, for
// expressions that contain commas themselves
func (t *Table) ReplaceWithSep(list, sep string) bool {
	if !t.onRecord() {
		return t.fail("replace with", &errors.RangeError{Recno: t.recno, Reccount: len(t.records)})
	}
	clauses, err := t.parseClauses(list, sep)
	if err != nil {
		return t.fail("replace with", err)
	}

	if !t.Commit() {
		return false
	}
	vals, err := t.evalClauses(clauses, t.records[t.recno-1])
	if err != nil {
		return t.fail("replace with", err)
	}
	if err := applyClauses(clauses, vals, t.cur); err != nil {
		return t.fail("replace with", err)
	}
	return true
}

// checkInto validates a field map before it is merged into the cursor
func (t *Table) checkInto(values map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(values))
	for name, v := range values {
		if _, ok := t.schema.Field(name); !ok && name != data.DeletedField {
			return nil, errors.NewSchemaError(name, -1, "no such field")
		}
		cv, err := t.schema.Coerce(name, v)
		if err != nil {
			return nil, err
		}
		out[name] = cv
	}
	return out, nil
}

func (t *Table) mergeInto(values map[string]interface{}) {
	for name, v := range values {
		if f, ok := t.schema.Field(name); ok && f.Type == schema.FieldTypeObject {
			if curObj, ok := t.cur[name].(map[string]interface{}); ok && len(curObj) > 0 {
				target := data.Clone(curObj).(map[string]interface{})
				if data.Merge(target, v) {
					t.cur[name] = target
					continue
				}
			}
		}
		t.cur[name] = data.Clone(v)
	}
}

// ReplaceInto merges a map of field values into the current record. Object
// fields keep their shape: only properties they already have are written.
func (t *Table) ReplaceInto(values map[string]interface{}) bool {
	checked, err := t.checkInto(values)
	if err != nil {
		return t.fail("replace into", err)
	}
	if !t.onRecord() {
		return t.fail("replace into", &errors.RangeError{Recno: t.recno, Reccount: len(t.records)})
	}
	t.mergeInto(checked)
	return true
}

// InsertInto appends a blank record and merges values into it
func (t *Table) InsertInto(values map[string]interface{}) bool {
	checked, err := t.checkInto(values)
	if err != nil {
		return t.fail("insert into", err)
	}
	t.AppendBlank()
	t.mergeInto(checked)
	return true
}
