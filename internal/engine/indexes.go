package engine

import (
	"strings"

	"github.com/leengari/localtable/internal/condition"
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/indexing"
)

// IndexOn builds an index over a comma separated key field list, appends
// it to the index list and makes it the current order. The cursor does
// not move.
func (t *Table) IndexOn(keyList string) bool {
	if strings.TrimSpace(keyList) == "" {
		return t.fail("index on", errors.NewCompileError(keyList, -1, "key list is empty"))
	}
	t.Commit()

	ix, err := t.buildIndex(keyList)
	if err != nil {
		return t.fail("index on", err)
	}
	t.indexes = append(t.indexes, ix)
	t.curOrder = len(t.indexes)

	t.logger.Debug("index built", "keys", ix.KeyList(), "order", t.curOrder, "entries", ix.Len())
	t.notify(EventIndexBuilt, ix.KeyList())
	return true
}

func (t *Table) buildIndex(keyList string) (*indexing.Index, error) {
	text, err := indexing.BuildKeyExpr(t.schema, keyList, condition.DefaultScope)
	if err != nil {
		return nil, err
	}
	expr, err := t.compile(text)
	if err != nil {
		return nil, err
	}
	ix := indexing.New(keyList, expr)
	if err := ix.Build(t.records, t.vars); err != nil {
		return nil, err
	}
	return ix, nil
}

// BldIndexExp returns the key expression IndexOn would build for keyList,
// with field references prefixed by scope. It returns "" when the key list
// is invalid.
func (t *Table) BldIndexExp(keyList, scope string) string {
	text, err := indexing.BuildKeyExpr(t.schema, keyList, scope)
	if err != nil {
		t.fail("build index expression", err)
		return ""
	}
	return text
}

// BldValueExp returns an expression that formats the values at valueList
// paths in scope exactly like the keys of keyList, for use with SeekExp.
// partial forces the string form so a shorter value list seeks a prefix.
func (t *Table) BldValueExp(keyList, valueList, scope string, partial bool) string {
	text, err := indexing.BuildValueExpr(t.schema, keyList, valueList, scope, partial)
	if err != nil {
		t.fail("build value expression", err)
		return ""
	}
	return text
}

// CurOrder returns the current order: 0 physical, -1 maintenance suspended,
// n the nth index
func (t *Table) CurOrder() int { return t.curOrder }

// SetOrder selects the traversal order. -1 suspends index maintenance
// until the order is changed back and Reindex is called.
func (t *Table) SetOrder(n int) bool {
	if n < -1 || n > len(t.indexes) {
		return t.fail("set order", &errors.IndexStateError{Op: "set order", CurOrder: n, Reason: "no such index"})
	}
	t.curOrder = n
	return true
}

// IndexCount returns the number of indexes
func (t *Table) IndexCount() int { return len(t.indexes) }

func (t *Table) indexAt(n int) *indexing.Index {
	if n < 1 || n > len(t.indexes) {
		return nil
	}
	return t.indexes[n-1]
}

// IndexKeyList returns the normalized key list of index n, "" when there is none
func (t *Table) IndexKeyList(n int) string {
	if ix := t.indexAt(n); ix != nil {
		return ix.KeyList()
	}
	return ""
}

// IndexKeyExp returns the key expression of index n, "" when there is none
func (t *Table) IndexKeyExp(n int) string {
	if ix := t.indexAt(n); ix != nil {
		return ix.KeyExpr()
	}
	return ""
}

// SetCurIndex makes the index with keyList current, falling back to the
// first index whose key list starts with it. With no match the order
// becomes physical and false is returned.
func (t *Table) SetCurIndex(keyList string) bool {
	want := indexing.NormalizeKeyList(keyList)
	if want == "" {
		return false
	}
	for i, ix := range t.indexes {
		if ix.KeyList() == want {
			t.curOrder = i + 1
			return true
		}
	}
	for i, ix := range t.indexes {
		if strings.HasPrefix(ix.KeyList(), want+",") {
			t.curOrder = i + 1
			return true
		}
	}
	t.curOrder = 0
	return false
}

// Reindex rebuilds every index from the stored records
func (t *Table) Reindex() bool {
	t.Commit(NoIndexUpdate)
	t.rebuildIndexes()
	t.notify(EventReindex, len(t.indexes))
	return true
}

func (t *Table) rebuildIndexes() {
	for _, ix := range t.indexes {
		if err := ix.Build(t.records, t.vars); err != nil {
			t.invariant("reindex", err)
		}
	}
}

// DeleteIndexes drops every index and returns to physical order
func (t *Table) DeleteIndexes() bool {
	t.indexes = nil
	t.curOrder = 0
	return true
}
