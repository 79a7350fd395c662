package indexing

import (
	stderrors "errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/localtable/internal/condition"
	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/domain/schema"
)

func itemSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Compile([]schema.Field{
		{Name: "code", Type: schema.FieldTypeShortText, Length: 5},
		{Name: "qty", Type: schema.FieldTypeNumber, Length: 6, Decimals: 0},
		{Name: "born", Type: schema.FieldTypeDate},
		{Name: "ok", Type: schema.FieldTypeLogical},
		{Name: "meta", Type: schema.FieldTypeObject},
		{Name: "blob", Type: schema.FieldTypeGeneral},
	}, nil)
	assert.NilError(t, err)
	return s
}

func newIndex(t *testing.T, s *schema.Schema, keyList string) *Index {
	t.Helper()
	text, err := BuildKeyExpr(s, keyList, condition.DefaultScope)
	assert.NilError(t, err)
	expr, err := condition.Compile(text, s, condition.DefaultScope)
	assert.NilError(t, err)
	return New(keyList, expr)
}

func rec(code string, qty float64) data.Record {
	return data.Record{"code": code, "qty": qty, "born": "0000-00-00", "ok": false,
		"meta": map[string]interface{}{}, "blob": "", data.DeletedField: false}
}

func TestBuildKeyExpr(t *testing.T) {
	s := itemSchema(t)

	tests := []struct {
		keys  string
		scope string
		want  string
		err   string
	}{
		{"code", "thisrecord", "padr(upper(thisrecord.code), 5)", ""},
		{"qty", "", "qty", ""},
		{"code, qty", "t", "padr(upper(t.code), 5) + str(t.qty, 6, 0)", ""},
		{"born,ok,meta", "", "padr(upper(born), 10) + ltos(ok) + json(meta)", ""},
		{"blob", "", "", "cannot be part of a key"},
		{"ghost", "", "", "unknown key field"},
		{" ", "", "", "key list is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			got, err := BuildKeyExpr(s, tt.keys, tt.scope)
			if tt.err != "" {
				assert.ErrorContains(t, err, tt.err)
				var ce *errors.CompileError
				assert.Assert(t, stderrors.As(err, &ce))
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestBuildValueExpr(t *testing.T) {
	s := itemSchema(t)

	got, err := BuildValueExpr(s, "code,qty", "mcode,mqty", "m", false)
	assert.NilError(t, err)
	assert.Equal(t, got, "padr(upper(m.mcode), 5) + str(m.mqty, 6, 0)")

	got, err = BuildValueExpr(s, "code,qty", "mcode", "m", false)
	assert.NilError(t, err)
	assert.Equal(t, got, "padr(upper(m.mcode), 5)")

	got, err = BuildValueExpr(s, "qty", "n", "m", false)
	assert.NilError(t, err)
	assert.Equal(t, got, "m.n")

	got, err = BuildValueExpr(s, "qty", "n", "m", true)
	assert.NilError(t, err)
	assert.Equal(t, got, "str(m.n, 6, 0)")

	_, err = BuildValueExpr(s, "code", "a,b", "m", false)
	assert.ErrorContains(t, err, "more value fields")
}

func TestBuildSortsWithRecnoTieBreak(t *testing.T) {
	s := itemSchema(t)
	ix := newIndex(t, s, "code")

	assert.Assert(t, ix.HasPlaceholder())
	assert.DeepEqual(t, ix.Entries(), []Entry{{Key: "", Recno: 1}})

	err := ix.Build([]data.Record{rec("b", 1), rec("a", 2), rec("B", 3)}, nil)
	assert.NilError(t, err)
	assert.DeepEqual(t, ix.Entries(), []Entry{
		{Key: "A    ", Recno: 2},
		{Key: "B    ", Recno: 1},
		{Key: "B    ", Recno: 3},
	})

	assert.NilError(t, ix.Build(nil, nil))
	assert.Assert(t, ix.HasPlaceholder())
}

func TestNumericKeyStaysNumeric(t *testing.T) {
	s := itemSchema(t)
	ix := newIndex(t, s, "qty")
	assert.NilError(t, ix.Build([]data.Record{rec("a", 10), rec("b", 9), rec("c", 100)}, nil))

	var recnos []int
	for _, e := range ix.Entries() {
		recnos = append(recnos, e.Recno)
	}
	assert.DeepEqual(t, recnos, []int{2, 1, 3})
	assert.Equal(t, ix.KeyKind(), data.KindNumber)
}

func TestCompositeKeyOrder(t *testing.T) {
	s := itemSchema(t)
	ix := newIndex(t, s, "code,qty")
	assert.NilError(t, ix.Build([]data.Record{rec("a", 10), rec("a", 9), rec("A", 100)}, nil))

	entries := ix.Entries()
	assert.Equal(t, entries[0].Key, "A    000009")
	assert.Equal(t, entries[1].Key, "A    000010")
	assert.Equal(t, entries[2].Key, "A    000100")
}

func TestUpdate(t *testing.T) {
	s := itemSchema(t)
	ix := newIndex(t, s, "code")

	// first real key replaces the placeholder
	assert.NilError(t, ix.Update(1, "", "M    "))
	assert.DeepEqual(t, ix.Entries(), []Entry{{Key: "M    ", Recno: 1}})

	// unseen record appends
	assert.NilError(t, ix.Update(2, nil, "C    "))
	assert.DeepEqual(t, ix.Entries(), []Entry{{Key: "C    ", Recno: 2}, {Key: "M    ", Recno: 1}})

	// changed key is rewritten in place and re-sorted
	assert.NilError(t, ix.Update(1, "M    ", "A    "))
	assert.DeepEqual(t, ix.Entries(), []Entry{{Key: "A    ", Recno: 1}, {Key: "C    ", Recno: 2}})

	// unchanged key is left alone
	assert.NilError(t, ix.Update(2, "C    ", "C    "))
	assert.Equal(t, ix.Len(), 2)
}

func TestUpdateMissingEntryIsInvariantViolation(t *testing.T) {
	s := itemSchema(t)
	ix := newIndex(t, s, "code")
	assert.NilError(t, ix.Build([]data.Record{rec("a", 1), rec("b", 2)}, nil))

	ix.entries = ix.entries[:1] // lose record 2's entry
	ix.entries = append(ix.entries, Entry{Key: "Z    ", Recno: 7})

	err := ix.Update(2, "B    ", "Q    ")
	var ie *errors.InvariantError
	assert.Assert(t, stderrors.As(err, &ie))
	assert.Assert(t, ix.Position(2) >= 0)
}

func TestSearch(t *testing.T) {
	s := itemSchema(t)
	ix := newIndex(t, s, "code")
	assert.NilError(t, ix.Build([]data.Record{
		rec("beta", 1), rec("alpha", 2), rec("beta", 3), rec("bravo", 4),
	}, nil))

	tests := []struct {
		value interface{}
		found bool
		recno int
	}{
		{"beta", true, 1},
		{"BETA", true, 1},
		{"b", true, 1},
		{"br", true, 4},
		{"alpha", true, 2},
		{"c", false, 0},
		{"", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.value.(string), func(t *testing.T) {
			pos, ok, err := ix.Search(tt.value)
			assert.NilError(t, err)
			assert.Equal(t, ok, tt.found)
			if ok {
				assert.Equal(t, ix.At(pos).Recno, tt.recno)
			}
		})
	}

	_, _, err := ix.Search(float64(1))
	var tm *errors.TypeMismatchError
	assert.Assert(t, stderrors.As(err, &tm))
}

func TestSearchNumeric(t *testing.T) {
	s := itemSchema(t)
	ix := newIndex(t, s, "qty")
	assert.NilError(t, ix.Build([]data.Record{rec("a", 5), rec("b", 3), rec("c", 5)}, nil))

	pos, ok, err := ix.Search(5)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, ix.At(pos).Recno, 1)

	_, ok, err = ix.Search(4)
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestMissingAndCovers(t *testing.T) {
	s := itemSchema(t)
	ix := newIndex(t, s, "code")
	assert.Assert(t, ix.Covers(0))
	assert.Assert(t, !ix.Covers(1))
	assert.DeepEqual(t, ix.Missing(2), []int{1, 2})

	ix.Append(2, "X    ")
	assert.DeepEqual(t, ix.Missing(2), []int{1})
}
