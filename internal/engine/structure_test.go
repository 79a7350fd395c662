package engine

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/domain/schema"
)

func richFields() []schema.Field {
	return []schema.Field{
		{Name: "code", Type: "c", Length: 5},
		{Name: "memo", Type: schema.FieldTypeLongText},
		{Name: "blob", Type: schema.FieldTypeGeneral},
		{Name: "qty", Type: schema.FieldTypeNumber, Length: 8, Decimals: 2},
		{Name: "born", Type: schema.FieldTypeDate},
		{Name: "ok", Type: schema.FieldTypeLogical},
		{Name: "addr", Type: schema.FieldTypeObject, ObjectTemplate: map[string]interface{}{
			"city": "", "geo": map[string]interface{}{"lat": 0, "lng": 0},
		}},
	}
}

func TestStructdefRoundTrip(t *testing.T) {
	orig := newTable(t, richFields())
	copied := newTable(t, orig.Structdef())

	assert.DeepEqual(t, copied.EmptyRecord(), orig.EmptyRecord())
	assert.DeepEqual(t, orig.EmptyRecord()["addr"], map[string]interface{}{
		"city": "", "geo": map[string]interface{}{"lat": float64(0), "lng": float64(0)},
	})
	assert.Equal(t, orig.EmptyRecord()["born"], "0000-00-00")
}

func TestEmptyRecordIsDetached(t *testing.T) {
	tbl := newTable(t, richFields())

	rec := tbl.EmptyRecord()
	rec["addr"].(map[string]interface{})["city"] = "changed"

	assert.Equal(t, tbl.EmptyRecord()["addr"].(map[string]interface{})["city"], "")
}

func TestModiStru(t *testing.T) {
	tbl := newItems(t, item{"b", 1}, item{"a", 2})
	tbl.IndexOn("code")
	tbl.IndexOn("qty")

	ok := tbl.ModiStru([]schema.Field{
		{Name: "code", Type: schema.FieldTypeShortText, Length: 8},
		{Name: "note", Type: schema.FieldTypeShortText, Length: 10},
	})
	assert.Assert(t, ok)
	assert.Equal(t, tbl.Reccount(), 2)
	assert.Equal(t, tbl.IndexCount(), 1, "index on a removed field is dropped")
	assert.Equal(t, tbl.IndexKeyList(1), "code")
	assert.Equal(t, tbl.CurOrder(), 0)

	assert.Equal(t, tbl.Recno(), 1)
	assert.Equal(t, text(tbl, "code"), "b")
	assert.Equal(t, text(tbl, "note"), "")
	_, found := tbl.Get("qty")
	assert.Assert(t, !found)

	assert.Assert(t, tbl.Set("note", "hi"))
	tbl.SetOrder(1)
	assert.DeepEqual(t, walk(t, tbl), []string{"a", "b"})
}

func TestModiStruKeepsCurrentIndex(t *testing.T) {
	tbl := newItems(t, item{"b", 1}, item{"a", 2})
	tbl.IndexOn("qty")
	tbl.IndexOn("code")

	assert.Assert(t, tbl.ModiStru(append(itemFields(), schema.Field{Name: "ok", Type: "L"})))
	assert.Equal(t, tbl.CurOrder(), 2)
	assert.Equal(t, text(tbl, "code"), "a", "repositioned to the top in index order")
	v, _ := tbl.Get("ok")
	assert.Equal(t, v, false)
}

func TestModiStruTypeChangeResetsValues(t *testing.T) {
	tbl := newItems(t, item{"b", 1})

	assert.Assert(t, tbl.ModiStru([]schema.Field{
		{Name: "code", Type: schema.FieldTypeShortText, Length: 5},
		{Name: "qty", Type: schema.FieldTypeShortText, Length: 6},
	}))
	assert.Equal(t, text(tbl, "qty"), "")
	assert.Equal(t, text(tbl, "code"), "b")
}

func TestModiStruRejectsBadStructure(t *testing.T) {
	tbl := newItems(t, item{"b", 1})

	assert.Assert(t, !tbl.ModiStru(nil))
	assert.ErrorType(t, tbl.Err(), &errors.SchemaError{})
	assert.Assert(t, !tbl.ModiStru([]schema.Field{{Name: "x", Type: "Q"}}))
	assert.Equal(t, len(tbl.Structdef()), 2)
}

func TestSetObjectTemplate(t *testing.T) {
	tbl := newTable(t, []schema.Field{
		{Name: "code", Type: schema.FieldTypeShortText, Length: 5},
		{Name: "info", Type: schema.FieldTypeShortText, Length: 40},
	})
	tbl.InsertInto(map[string]interface{}{"code": "a", "info": `{"a": 1, "z": 9}`})
	tbl.InsertInto(map[string]interface{}{"code": "b", "info": "plain text"})

	assert.Assert(t, tbl.SetObjectTemplate("info", map[string]interface{}{"a": 0, "b": ""}))

	f := tbl.Structdef()[1]
	assert.Equal(t, f.Type, schema.FieldTypeObject)
	assert.Equal(t, f.Length, 10)

	tbl.GoTo(1)
	v, _ := tbl.Get("info")
	assert.DeepEqual(t, v, map[string]interface{}{"a": float64(1), "b": ""})

	tbl.GoTo(2)
	v, _ = tbl.Get("info")
	assert.DeepEqual(t, v, map[string]interface{}{"a": float64(0), "b": ""})

	assert.Assert(t, !tbl.SetObjectTemplate("ghost", nil))
}

func TestSetObjectClass(t *testing.T) {
	reg := schema.NewRegistry()
	reg.Register("point", func() map[string]interface{} {
		return map[string]interface{}{"x": 0, "y": 0}
	})

	tbl := newTable(t, []schema.Field{{Name: "pos", Type: schema.FieldTypeObject}}, WithObjectFactory(reg))
	tbl.InsertInto(map[string]interface{}{"pos": map[string]interface{}{"x": 3}})

	assert.Assert(t, tbl.SetObjectClass("pos", "point"))
	assert.Equal(t, tbl.Structdef()[0].ObjectClass, "point")
	v, _ := tbl.Get("pos")
	assert.DeepEqual(t, v, map[string]interface{}{"x": float64(3), "y": float64(0)})

	assert.Assert(t, !tbl.SetObjectClass("pos", "unknown"))

	bare := newTable(t, []schema.Field{{Name: "pos", Type: schema.FieldTypeObject}})
	assert.Assert(t, !bare.SetObjectClass("pos", "point"))
	assert.ErrorContains(t, bare.Err(), "needs an object factory")
}
