package engine

import (
	stderrors "errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/domain/schema"
)

func TestNewTableState(t *testing.T) {
	tbl := newItems(t)

	assert.Equal(t, tbl.Recno(), 1)
	assert.Equal(t, tbl.Reccount(), 0)
	assert.Assert(t, !tbl.Bof())
	assert.Assert(t, tbl.Eof())
	assert.Assert(t, tbl.IsSetDeleted())
	assert.Equal(t, tbl.CurOrder(), 0)
	assert.Assert(t, !tbl.Commit(), "nothing to commit at eof")
}

func TestNewRejectsBadStructure(t *testing.T) {
	_, err := New(nil)
	var se *errors.SchemaError
	assert.Assert(t, stderrors.As(err, &se))

	_, err = New([]schema.Field{{Name: "deleted", Type: "L"}})
	assert.ErrorContains(t, err, "reserved")
}

func TestAppendBlankYieldsEmptyRecord(t *testing.T) {
	tbl := newItems(t, item{"a", 1})

	assert.Assert(t, tbl.AppendBlank())
	assert.Assert(t, tbl.Commit())

	assert.Equal(t, tbl.Recno(), tbl.Reccount())
	assert.Equal(t, tbl.Reccount(), 2)
	assert.DeepEqual(t, tbl.Current(), tbl.EmptyRecord())
	assertCursor(t, tbl)
}

func TestPendingEditIsCommittedOnMove(t *testing.T) {
	tbl := newItems(t, item{"a", 1}, item{"b", 2})

	tbl.GoTo(1)
	tbl.Set("qty", 40)
	tbl.GoTo(2)
	tbl.GoTo(1)
	assert.Equal(t, number(tbl, "qty"), float64(40))

	tbl.Set("qty", 50)
	tbl.GoTo(2, NoCommit)
	tbl.GoTo(1)
	assert.Equal(t, number(tbl, "qty"), float64(40))
}

func TestSetChecksTypes(t *testing.T) {
	fields := append(itemFields(),
		schema.Field{Name: "born", Type: schema.FieldTypeDate},
		schema.Field{Name: "ok", Type: schema.FieldTypeLogical},
		schema.Field{Name: "meta", Type: schema.FieldTypeObject, ObjectTemplate: map[string]interface{}{"city": ""}},
	)
	tbl := newTable(t, fields)
	tbl.AppendBlank()

	tests := []struct {
		path  string
		value interface{}
		ok    bool
		want  interface{}
	}{
		{"code", "x", true, "x"},
		{"qty", 7, true, float64(7)},
		{"qty", "7", false, nil},
		{"born", "March 7, 2021", true, "2021-03-07"},
		{"born", "not a date", false, nil},
		{"ok", true, true, true},
		{"meta.city", "Lyon", true, "Lyon"},
		{"meta.city", 3, false, nil},
		{"nosuch", 1, false, nil},
		{"deleted", "yes", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			ok := tbl.Set(tt.path, tt.value)
			assert.Equal(t, ok, tt.ok)
			if !tt.ok {
				assert.Assert(t, tbl.Err() != nil)
				return
			}
			got, _ := tbl.Get(tt.path)
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestGetReturnsCopies(t *testing.T) {
	fields := []schema.Field{{Name: "meta", Type: schema.FieldTypeObject}}
	tbl := newTable(t, fields)
	tbl.AppendBlank()
	tbl.Set("meta", map[string]interface{}{"tags": []interface{}{"x"}})

	v, _ := tbl.Get("meta")
	v.(map[string]interface{})["tags"] = nil

	got, ok := tbl.Get("meta.tags.0")
	assert.Assert(t, ok)
	assert.Equal(t, got, "x")
}

func TestDeleteRecallIdempotent(t *testing.T) {
	tbl := newItems(t, item{"a", 1})
	tbl.GoTop()

	assert.Assert(t, tbl.Delete())
	assert.Assert(t, tbl.Delete())
	assert.Assert(t, tbl.Deleted())

	assert.Assert(t, tbl.Recall())
	assert.Assert(t, tbl.Recall())
	assert.Assert(t, !tbl.Deleted())

	tbl.GoBottom()
	tbl.Skip(1)
	assert.Assert(t, !tbl.Delete(), "no current record")
}

func TestReplaceWith(t *testing.T) {
	tbl := newItems(t, item{"a", 1})
	tbl.GoTop()

	assert.Assert(t, tbl.ReplaceWith("qty with qty + 10, code with upper(code) + 'x'"))
	assert.Equal(t, number(tbl, "qty"), float64(11))
	assert.Equal(t, text(tbl, "code"), "Ax")

	assert.Assert(t, tbl.ReplaceWithSep("code with padr(code, 3, '-');qty with 2", ";"))
	assert.Equal(t, text(tbl, "code"), "Ax-")
	assert.Equal(t, number(tbl, "qty"), float64(2))

	// every clause is checked before any is applied
	assert.Assert(t, !tbl.ReplaceWith("code with 'z', qty with 'bad'"))
	var tm *errors.TypeMismatchError
	assert.Assert(t, stderrors.As(tbl.Err(), &tm))
	assert.Equal(t, text(tbl, "code"), "Ax-")

	assert.Assert(t, !tbl.ReplaceWith("ghost with 1"))
	assert.Assert(t, !tbl.ReplaceWith("qty = 1"))
}

func TestReplaceWithKeepsIndexCurrent(t *testing.T) {
	tbl := newItems(t, item{"A", 1}, item{"B", 2})
	assert.Assert(t, tbl.IndexOn("code"))
	assert.Assert(t, tbl.GoTo(1))

	assert.Assert(t, tbl.Set("code", "Z"))
	assert.Assert(t, tbl.ReplaceWith("qty with 7"))
	assert.Assert(t, tbl.Commit())

	assert.Assert(t, tbl.Seek("Z"))
	assert.Equal(t, tbl.Recno(), 1)
	assert.Equal(t, number(tbl, "qty"), float64(7))
	assert.Assert(t, !tbl.Seek("A"))
	assert.DeepEqual(t, walk(t, tbl), []string{"B", "Z"})
}

func TestLocateWithOutOfRangeIndex(t *testing.T) {
	tbl := newItems(t, item{"A", 1}, item{"B", 2})

	assert.Assert(t, !tbl.Locate("code[99999999999999999999] == 'A'"))
	assert.NilError(t, tbl.Err())
	assert.Assert(t, !tbl.Locate("code[-1] == 'A'"))
	assert.Assert(t, tbl.Locate("code[0] == 'B'"))
	assert.Equal(t, tbl.Recno(), 2)
}

func TestReplaceIntoKeepsObjectShape(t *testing.T) {
	fields := append(itemFields(), schema.Field{
		Name: "meta", Type: schema.FieldTypeObject,
		ObjectTemplate: map[string]interface{}{"city": "", "zip": ""},
	})
	tbl := newTable(t, fields)
	tbl.AppendBlank()

	ok := tbl.ReplaceInto(map[string]interface{}{
		"code": "p1",
		"meta": map[string]interface{}{"city": "Paris", "extra": 1},
	})
	assert.Assert(t, ok)
	v, _ := tbl.Get("meta")
	assert.DeepEqual(t, v, map[string]interface{}{"city": "Paris", "zip": ""})
	assert.Equal(t, text(tbl, "code"), "p1")

	assert.Assert(t, tbl.ReplaceInto(map[string]interface{}{"meta": `{"zip": "75001"}`}))
	assert.Equal(t, text(tbl, "meta.zip"), "75001")
	assert.Equal(t, text(tbl, "meta.city"), "Paris")

	assert.Assert(t, !tbl.ReplaceInto(map[string]interface{}{"nosuch": 1}))
	assert.Assert(t, !tbl.ReplaceInto(map[string]interface{}{"qty": "x"}))
}

func TestInsertInto(t *testing.T) {
	tbl := newItems(t, item{"a", 1})

	assert.Assert(t, tbl.InsertInto(map[string]interface{}{"code": "n", "qty": 4}))
	assert.Equal(t, tbl.Reccount(), 2)
	assert.Equal(t, tbl.Recno(), 2)
	tbl.GoTop()
	tbl.GoBottom()
	assert.Equal(t, text(tbl, "code"), "n")
	assert.Equal(t, number(tbl, "qty"), float64(4))

	assert.Assert(t, !tbl.InsertInto(map[string]interface{}{"qty": "four"}))
	assert.Equal(t, tbl.Reccount(), 2, "rejected insert appends nothing")
}

func TestBindMakesVariablesVisible(t *testing.T) {
	tbl := newItems(t, item{"a", 1}, item{"b", 5})
	tbl.Bind("m", map[string]interface{}{"min": 3})
	tbl.Bind("twice", func(args ...interface{}) (interface{}, error) {
		return args[0].(float64) * 2, nil
	})

	assert.Assert(t, tbl.Locate("qty > m.min"))
	assert.Equal(t, text(tbl, "code"), "b")

	assert.Assert(t, tbl.ReplaceWith("qty with twice(qty)"))
	assert.Equal(t, number(tbl, "qty"), float64(10))

	tbl.Bind("m", nil)
	assert.Assert(t, !tbl.Locate("qty > m.min"))
	var ee *errors.EvaluationError
	assert.Assert(t, stderrors.As(tbl.Err(), &ee))
}

func TestCommitStoresDeepCopy(t *testing.T) {
	fields := []schema.Field{{Name: "meta", Type: schema.FieldTypeObject}}
	tbl := newTable(t, fields)
	tbl.AppendBlank()
	tbl.Set("meta", map[string]interface{}{"n": 1})
	tbl.Commit()

	tbl.Set("meta.n", 2)
	stored := tbl.records[0]["meta"].(map[string]interface{})
	assert.Equal(t, stored["n"], float64(1))
	assert.Equal(t, tbl.records[0][data.DeletedField], false)
}

func TestEval(t *testing.T) {
	tbl := newItems(t, item{"b", 4})
	tbl.Bind("m", map[string]interface{}{"n": 2})

	v, ok := tbl.Eval("qty * m.n")
	assert.Assert(t, ok)
	assert.Equal(t, v, float64(8))

	v, ok = tbl.Eval("upper(code) + str(qty, 3, 0)")
	assert.Assert(t, ok)
	assert.Equal(t, v, "B004")

	_, ok = tbl.Eval("qty >")
	assert.Assert(t, !ok)
	_, ok = tbl.Eval("nosuch")
	assert.ErrorContains(t, tbl.Err(), "nosuch is not defined")
}
