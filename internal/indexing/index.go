package indexing

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/leengari/localtable/internal/condition"
	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
)

// Entry maps one key to the record number holding it
type Entry struct {
	Key   interface{}
	Recno int
}

// Index is a sorted array of entries, re-sorted after every change.
// It is not a balanced tree: bulk loads should suspend maintenance and
// rebuild once. An index always holds at least the placeholder {"", 1}.
type Index struct {
	keyList     string
	keyExpr     *condition.Compiled
	entries     []Entry
	placeholder bool // entries[0] is the placeholder, not a real key
}

// New creates an index holding only the placeholder entry
func New(keyList string, keyExpr *condition.Compiled) *Index {
	ix := &Index{keyList: NormalizeKeyList(keyList), keyExpr: keyExpr}
	ix.Reset()
	return ix
}

func (ix *Index) KeyList() string { return ix.keyList }

// KeyExpr returns the scoped key expression text
func (ix *Index) KeyExpr() string { return ix.keyExpr.String() }

// Len counts entries, the placeholder included
func (ix *Index) Len() int { return len(ix.entries) }

// At returns the entry at position i (0-based)
func (ix *Index) At(i int) Entry { return ix.entries[i] }

// Entries returns a copy of the index table
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// HasPlaceholder reports whether the only entry is the placeholder
func (ix *Index) HasPlaceholder() bool { return ix.placeholder }

// Reset drops every entry and restores the placeholder
func (ix *Index) Reset() {
	ix.entries = []Entry{{Key: "", Recno: 1}}
	ix.placeholder = true
}

// Key evaluates the key expression for one record. Text keys are upper-cased.
func (ix *Index) Key(rec data.Record, env condition.Env) (interface{}, error) {
	v, err := ix.keyExpr.Eval(rec, env)
	if err != nil {
		return nil, err
	}
	switch k := v.(type) {
	case string:
		return condition.ToUpper(k), nil
	case float64:
		return k, nil
	case bool:
		if k {
			return "T", nil
		}
		return "F", nil
	case nil:
		return "", nil
	}
	return condition.ToString(v), nil
}

// Build computes the key of every record and replaces the index table
func (ix *Index) Build(records []data.Record, env condition.Env) error {
	entries := make([]Entry, 0, max(1, len(records)))
	for i, rec := range records {
		key, err := ix.Key(rec, env)
		if err != nil {
			return fmt.Errorf("building index on %s at record %d: %w", ix.keyList, i+1, err)
		}
		entries = append(entries, Entry{Key: key, Recno: i + 1})
	}
	if len(entries) == 0 {
		ix.Reset()
		return nil
	}
	ix.entries = entries
	ix.placeholder = false
	ix.sort()
	return nil
}

// Update maintains the entry of one committed record. oldKey is the key of
// the record before the commit. A missing entry for an existing record is
// reported as an InvariantError after the entry has been appended.
func (ix *Index) Update(recno int, oldKey, newKey interface{}) error {
	defer ix.sort()

	if ix.placeholder {
		ix.dropPlaceholder()
	}
	if recno > len(ix.entries) {
		ix.entries = append(ix.entries, Entry{Key: newKey, Recno: recno})
		return nil
	}
	if KeyEqual(oldKey, newKey) {
		return nil
	}
	if pos := ix.Position(recno); pos >= 0 {
		ix.entries[pos].Key = newKey
		return nil
	}
	ix.entries = append(ix.entries, Entry{Key: newKey, Recno: recno})
	return &errors.InvariantError{
		Op:     "index update",
		Reason: fmt.Sprintf("no entry for record %d in index on %s", recno, ix.keyList),
	}
}

// Append adds an entry for a record the index has never seen
func (ix *Index) Append(recno int, key interface{}) {
	if ix.placeholder {
		ix.dropPlaceholder()
	}
	ix.entries = append(ix.entries, Entry{Key: key, Recno: recno})
	ix.sort()
}

func (ix *Index) dropPlaceholder() {
	ix.entries = ix.entries[:0]
	ix.placeholder = false
}

// Covers reports whether every record 1..reccount has an entry
func (ix *Index) Covers(reccount int) bool {
	if reccount == 0 {
		return true
	}
	if ix.placeholder {
		return false
	}
	return len(ix.entries) >= reccount
}

// Missing lists record numbers in 1..reccount without an entry
func (ix *Index) Missing(reccount int) []int {
	seen := make(map[int]bool, len(ix.entries))
	if !ix.placeholder {
		for _, e := range ix.entries {
			seen[e.Recno] = true
		}
	}
	var out []int
	for r := 1; r <= reccount; r++ {
		if !seen[r] {
			out = append(out, r)
		}
	}
	return out
}

// Position finds the entry of recno by linear scan, -1 when absent
func (ix *Index) Position(recno int) int {
	if ix.placeholder {
		return -1
	}
	for i, e := range ix.entries {
		if e.Recno == recno {
			return i
		}
	}
	return -1
}

func (ix *Index) sort() {
	slices.SortStableFunc(ix.entries, func(a, b Entry) int {
		if c := CompareKeys(a.Key, b.Key); c != 0 {
			return c
		}
		return cmp.Compare(a.Recno, b.Recno)
	})
}

// KeyKind is the kind of the keys held, KindUndefined for an empty index
func (ix *Index) KeyKind() data.Kind {
	if ix.placeholder {
		return data.KindUndefined
	}
	return data.KindOf(ix.entries[0].Key)
}

// Search returns the position of the first entry matching value: numeric
// keys need exact equality, text keys match case-insensitively on the
// first len(value) characters. The seek value must have the key kind.
func (ix *Index) Search(value interface{}) (int, bool, error) {
	value = SeekValue(value)
	if ix.placeholder {
		return 0, false, nil
	}

	want := ix.KeyKind()
	if data.KindOf(value) != want {
		return 0, false, errors.NewTypeMismatch("seek value", value, want.String(), data.KindOf(value).String())
	}

	pos, _ := slices.BinarySearchFunc(ix.entries, value, func(e Entry, v interface{}) int {
		return CompareKeys(prefix(e.Key, v), v)
	})
	if pos < len(ix.entries) && ix.Matches(pos, value) {
		return pos, true, nil
	}
	return pos, false, nil
}

// SeekValue normalizes a seek value the way keys are stored
func SeekValue(v interface{}) interface{} {
	v = data.Normalize(v)
	if s, ok := v.(string); ok {
		return condition.ToUpper(s)
	}
	return v
}

// Matches reports whether the entry at pos matches a SeekValue
func (ix *Index) Matches(pos int, value interface{}) bool {
	if pos < 0 || pos >= len(ix.entries) || ix.placeholder {
		return false
	}
	return CompareKeys(prefix(ix.entries[pos].Key, value), value) == 0
}

// prefix cuts a text key to the seek value's length
func prefix(key, value interface{}) interface{} {
	k, ok1 := key.(string)
	v, ok2 := value.(string)
	if !ok1 || !ok2 {
		return key
	}
	if len(k) > len(v) {
		return k[:len(v)]
	}
	return k
}

// CompareKeys orders numbers numerically and text by bytes.
// Mixed kinds order numbers first so a stray key never breaks the sort.
func CompareKeys(a, b interface{}) int {
	fa, aNum := a.(float64)
	fb, bNum := b.(float64)
	switch {
	case aNum && bNum:
		return cmp.Compare(fa, fb)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(condition.ToString(a), condition.ToString(b))
}

// KeyEqual compares two keys for maintenance decisions
func KeyEqual(a, b interface{}) bool {
	return data.KindOf(a) == data.KindOf(b) && CompareKeys(a, b) == 0
}
