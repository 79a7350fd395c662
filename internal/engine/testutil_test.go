package engine

import (
	"io"
	"log/slog"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/localtable/internal/domain/schema"
)

type item struct {
	code string
	qty  float64
}

func itemFields() []schema.Field {
	return []schema.Field{
		{Name: "code", Type: schema.FieldTypeShortText, Length: 5},
		{Name: "qty", Type: schema.FieldTypeNumber, Length: 6, Decimals: 0},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTable(t *testing.T, fields []schema.Field, opts ...Option) *Table {
	t.Helper()
	tbl, err := New(fields, append([]Option{WithLogger(quietLogger())}, opts...)...)
	assert.NilError(t, err)
	return tbl
}

// newItems builds a code/qty table holding items in the given order
func newItems(t *testing.T, items ...item) *Table {
	t.Helper()
	tbl := newTable(t, itemFields())
	for _, it := range items {
		assert.Assert(t, tbl.AppendBlank())
		assert.Assert(t, tbl.Set("code", it.code))
		assert.Assert(t, tbl.Set("qty", it.qty))
		assert.Assert(t, tbl.Commit())
	}
	return tbl
}

func text(tbl *Table, path string) string {
	v, _ := tbl.Get(path)
	s, _ := v.(string)
	return s
}

func number(tbl *Table, path string) float64 {
	v, _ := tbl.Get(path)
	f, _ := v.(float64)
	return f
}

// walk visits the visible records from the top and returns their codes
func walk(t *testing.T, tbl *Table) []string {
	t.Helper()
	var out []string
	for ok := tbl.GoTop(); ok; ok = tbl.Skip(1) {
		assertCursor(t, tbl)
		out = append(out, text(tbl, "code"))
	}
	assertCursor(t, tbl)
	return out
}

// assertCursor checks the recno/bof/eof invariant
func assertCursor(t *testing.T, tbl *Table) {
	t.Helper()
	n := tbl.Reccount()
	assert.Assert(t, tbl.Recno() >= 0 && tbl.Recno() <= n+1, "recno %d reccount %d", tbl.Recno(), n)
	if tbl.Eof() {
		assert.Equal(t, tbl.Recno(), n+1)
	} else {
		assert.Assert(t, tbl.Recno() >= 1 && tbl.Recno() <= n)
	}
}

// recordingObserver collects table events
type recordingObserver struct {
	Events []Event
}

func (r *recordingObserver) OnEvent(event Event) {
	r.Events = append(r.Events, event)
}

func (r *recordingObserver) types() []EventType {
	out := make([]EventType, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}
