package engine

import (
	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/domain/schema"
	"github.com/leengari/localtable/internal/indexing"
)

// Structdef returns a copy of the field definition list. Passing it to New
// yields a table with the same empty record.
func (t *Table) Structdef() []schema.Field {
	return t.schema.Definition()
}

// EmptyRecord returns a fresh copy of the empty record template
func (t *Table) EmptyRecord() data.Record {
	return t.schema.EmptyRecord()
}

// ModiStru replaces the table structure. Values of fields that keep their
// name and a compatible type survive; everything else takes the new empty
// value. Indexes whose key fields no longer exist are dropped, the others
// are rebuilt. The cursor moves to the top record.
func (t *Table) ModiStru(fields []schema.Field) bool {
	s, err := schema.Compile(fields, t.factory)
	if err != nil {
		return t.fail("modify structure", err)
	}
	t.Commit()

	t.schema = s
	for i, rec := range t.records {
		t.records[i] = t.conform(rec)
	}
	t.cur = s.EmptyRecord()

	current := t.IndexKeyList(t.curOrder)
	var kept []*indexing.Index
	for _, ix := range t.indexes {
		rebuilt, err := t.buildIndex(ix.KeyList())
		if err != nil {
			t.logger.Warn("index dropped by restructure", "keys", ix.KeyList(), "error", err)
			continue
		}
		kept = append(kept, rebuilt)
	}
	t.indexes = kept
	if t.curOrder > 0 {
		t.curOrder = 0
		t.SetCurIndex(current)
	}

	t.logger.Debug("table restructured", "fields", len(fields), "indexes", len(kept))
	t.notify(EventRestructure, len(fields))

	if len(t.records) == 0 {
		t.forceBofEof()
		return true
	}
	t.GoTop(NoCommit)
	return true
}

// SetObjectTemplate retypes a field as an Object shaped like template.
// Existing values keep the properties the template has.
func (t *Table) SetObjectTemplate(field string, template map[string]interface{}) bool {
	return t.retypeObject("set object template", field, func(f *schema.Field) {
		f.ObjectTemplate = map[string]interface{}{}
		if template != nil {
			f.ObjectTemplate = data.Clone(data.Normalize(template)).(map[string]interface{})
		}
		f.ObjectClass = ""
	})
}

// SetObjectClass retypes a field as an Object built by the table's object
// factory for classID
func (t *Table) SetObjectClass(field, classID string) bool {
	return t.retypeObject("set object class", field, func(f *schema.Field) {
		f.ObjectTemplate = nil
		f.ObjectClass = classID
	})
}

func (t *Table) retypeObject(op, field string, apply func(*schema.Field)) bool {
	defs := t.schema.Definition()
	for i := range defs {
		if defs[i].Name != field {
			continue
		}
		defs[i].Type = schema.FieldTypeObject
		defs[i].Length = 10
		defs[i].Decimals = 0
		apply(&defs[i])
		return t.ModiStru(defs)
	}
	return t.fail(op, errors.NewSchemaError(field, -1, "no such field"))
}
