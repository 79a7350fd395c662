package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestAddObserver(t *testing.T) {
	tbl := newItems(t)
	observer := &recordingObserver{}

	tbl.AddObserver(observer)

	assert.Equal(t, len(tbl.observers), 1)
}

func TestRemoveObserver(t *testing.T) {
	tbl := newItems(t)
	observer := &recordingObserver{}

	tbl.AddObserver(observer)
	tbl.RemoveObserver(observer)

	assert.Equal(t, len(tbl.observers), 0)
}

func TestNotifyWithNoObservers(t *testing.T) {
	tbl := newItems(t)

	// Should not panic
	tbl.notify(EventCommit, 1)
}

func TestEventsCarryTableIdentity(t *testing.T) {
	tbl := newItems(t)
	first := &recordingObserver{}
	second := &recordingObserver{}
	tbl.AddObserver(first)
	tbl.AddObserver(second)

	tbl.AppendBlank()
	tbl.Set("code", "a")
	tbl.IndexOn("code")

	assert.DeepEqual(t, first.types(), []EventType{EventCommit, EventAppend, EventCommit, EventIndexBuilt})
	assert.DeepEqual(t, second.types(), first.types())
	for _, e := range first.Events {
		assert.Equal(t, e.TableID, tbl.ID().String())
		assert.Assert(t, !e.Timestamp.IsZero())
	}
	assert.Equal(t, first.Events[3].Data, "code")
}

func TestLifecycleEvents(t *testing.T) {
	tbl := newItems(t, item{"a", 1}, item{"b", 2})
	obs := &recordingObserver{}
	tbl.AddObserver(obs)

	tbl.Reindex()
	tbl.ReplaceAll("qty with 0", "")
	tbl.GoTo(1)
	tbl.Delete()
	tbl.Pack()
	tbl.ModiStru(itemFields())
	tbl.Zap()

	types := obs.types()
	for _, want := range []EventType{EventReindex, EventBulkUpdate, EventPack, EventRestructure, EventZap} {
		assert.Assert(t, contains(types, want), "missing %s in %v", want, types)
	}
}

func contains(types []EventType, want EventType) bool {
	for _, e := range types {
		if e == want {
			return true
		}
	}
	return false
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tbl := newItems(t, item{"a", 1})
	tbl.AddObserver(NewLoggingObserver(logger))
	tbl.IndexOn("code")

	out := buf.String()
	assert.Assert(t, strings.Contains(out, `"msg":"table_event"`), out)
	assert.Assert(t, strings.Contains(out, `"event":"index_built"`), out)
	assert.Assert(t, strings.Contains(out, tbl.ID().String()), out)
}
