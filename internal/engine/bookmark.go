package engine

// GetBookmark captures the cursor position: -1 at bof, 0 at eof, otherwise
// the record number
func (t *Table) GetBookmark() int {
	switch {
	case t.bof:
		return -1
	case t.eof:
		return 0
	}
	return t.recno
}

// GoToBookmark restores a position captured by GetBookmark. A record
// number that no longer exists moves to the top and returns false.
func (t *Table) GoToBookmark(mark int) bool {
	switch mark {
	case -1:
		t.GoTop()
		if !t.bof {
			t.Skip(-1, NoCommit)
			return true
		}
		fallthrough
	case 0:
		t.GoBottom()
		if !t.eof {
			t.Skip(1, NoCommit)
			return true
		}
		fallthrough
	default:
		if t.recno == mark {
			return true
		}
		if mark >= 1 && mark <= len(t.records) {
			return t.GoTo(mark)
		}
		t.GoTop()
		return false
	}
}
