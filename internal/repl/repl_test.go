package repl

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/localtable/internal/domain/schema"
	"github.com/leengari/localtable/internal/engine"
)

func newShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	tbl, err := engine.New([]schema.Field{
		{Name: "code", Type: schema.FieldTypeShortText, Length: 5},
		{Name: "qty", Type: schema.FieldTypeNumber, Length: 6, Decimals: 1},
		{Name: "ok", Type: schema.FieldTypeLogical},
	}, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), engine.WithName("items"))
	assert.NilError(t, err)
	var buf bytes.Buffer
	return New(tbl, &buf, 10), &buf
}

// run executes lines and returns the output of the last one
func run(t *testing.T, sh *Shell, buf *bytes.Buffer, lines ...string) string {
	t.Helper()
	for _, l := range lines {
		buf.Reset()
		assert.Assert(t, !sh.Exec(l), l)
	}
	return buf.String()
}

func TestInsertAndList(t *testing.T) {
	sh, buf := newShell(t)

	out := run(t, sh, buf,
		"insert {code: b, qty: 2}",
		"insert {code: a, qty: 1.5, ok: true}",
		"list",
	)
	assert.Assert(t, strings.Contains(out, "code (C)"), out)
	assert.Assert(t, strings.Contains(out, "2.0"), out)
	assert.Assert(t, strings.Contains(out, "1.5"), out)
	assert.Assert(t, strings.Contains(out, ".T."), out)
	assert.Assert(t, strings.Contains(out, "(2 shown)"), out)
	assert.Equal(t, sh.tbl.Recno(), 2, "list puts the cursor back")

	out = run(t, sh, buf, "index on code", "list 1")
	assert.Assert(t, strings.Contains(out, "(1 shown)"), out)
	assert.Assert(t, strings.Contains(out, " a "), out)
	assert.Assert(t, !strings.Contains(out, " b "), out)
}

func TestNavigationCommands(t *testing.T) {
	sh, buf := newShell(t)
	run(t, sh, buf, "insert {code: a, qty: 1}", "insert {code: b, qty: 2}", "insert {code: c, qty: 3}")

	assert.Equal(t, run(t, sh, buf, "top"), "Record 1/3\n")
	assert.Equal(t, run(t, sh, buf, "skip 2"), "Record 3/3\n")
	assert.Equal(t, run(t, sh, buf, "skip"), "End of file (3 records)\n")
	assert.Equal(t, run(t, sh, buf, "goto 2"), "Record 2/3\n")
	assert.Equal(t, run(t, sh, buf, "locate qty > 2"), "Record 3/3\n")
	assert.Equal(t, run(t, sh, buf, "locate qty > 9"), "Not found\n")

	out := run(t, sh, buf, "goto 7")
	assert.Assert(t, strings.Contains(out, "Error:"), out)
}

func TestEditCommands(t *testing.T) {
	sh, buf := newShell(t)
	run(t, sh, buf,
		"append",
		"set code 'x y'",
		"set qty 4",
		"replace qty with qty * 2",
		"commit",
	)
	assert.Equal(t, run(t, sh, buf, "? code + '|' + qty"), "x y|8\n")

	out := run(t, sh, buf, "insert {code: z, qty: 1}", "replace all qty with 0 for code == 'z'")
	assert.Equal(t, out, "Replaced\n")
	run(t, sh, buf, "goto 2")
	assert.Equal(t, run(t, sh, buf, "? qty"), "0\n")
	run(t, sh, buf, "goto 1")
	assert.Equal(t, run(t, sh, buf, "? qty"), "8\n")

	out = run(t, sh, buf, "set qty text")
	assert.Assert(t, strings.Contains(out, "Error:"), out)
}

func TestDeleteFilterAndSeek(t *testing.T) {
	sh, buf := newShell(t)
	run(t, sh, buf, "insert {code: a, qty: 1}", "insert {code: b, qty: 2}", "insert {code: c, qty: 3}")

	run(t, sh, buf, "delete all qty < 3", "pack")
	assert.Equal(t, sh.tbl.Reccount(), 1)

	run(t, sh, buf, "insert {code: d, qty: 4}", "filter qty > 3")
	out := run(t, sh, buf, "status")
	assert.Assert(t, strings.Contains(out, "Filter: qty > 3"), out)
	assert.Assert(t, strings.Contains(run(t, sh, buf, "list"), "(1 shown)"))

	run(t, sh, buf, "filter", "index on qty")
	assert.Equal(t, run(t, sh, buf, "seek 3"), "Record 1/2\n")
	assert.Equal(t, run(t, sh, buf, "seek 9"), "Not found\n")

	out = run(t, sh, buf, "indexes")
	assert.Assert(t, strings.Contains(out, "1*"), out)
	assert.Assert(t, strings.Contains(out, "thisrecord.qty"), out)

	run(t, sh, buf, "order 0")
	assert.Equal(t, sh.tbl.CurOrder(), 0)
	run(t, sh, buf, "order qty")
	assert.Equal(t, sh.tbl.CurOrder(), 1)
}

func TestBadInput(t *testing.T) {
	sh, buf := newShell(t)

	tests := []struct {
		line string
		want string
	}{
		{"frobnicate", "unknown command"},
		{"goto x", "goto needs a record number"},
		{"insert [1, 2]", "insert needs a map"},
		{"setdeleted maybe", "usage: setdeleted"},
		{"index code", "usage: index on keys"},
		{"filter qty +", "Error:"},
		{"list 0", "positive count"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out := run(t, sh, buf, tt.line)
			assert.Assert(t, strings.Contains(out, tt.want), out)
		})
	}

	assert.Assert(t, sh.Exec("quit"))
	assert.Assert(t, sh.Exec("  EXIT  "))
}

func TestComplete(t *testing.T) {
	sh, _ := newShell(t)

	assert.DeepEqual(t, sh.complete("se"), []string{"seek", "set", "setdeleted"})
	assert.DeepEqual(t, sh.complete("replace q"), []string{"replace qty"})
	assert.DeepEqual(t, sh.complete("? upper(co"), []string{"? upper(code"})
}

func TestCutHelpers(t *testing.T) {
	rest, ok := cutWord("ALL qty with 1", "all")
	assert.Assert(t, ok)
	assert.Equal(t, rest, "qty with 1")

	list, cond := cutFor("code with 'for' for qty > 1")
	assert.Equal(t, list, "code with 'for'")
	assert.Equal(t, cond, "qty > 1")
}
