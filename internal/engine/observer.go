package engine

import "time"

// EventType names a state change of a table
type EventType string

const (
	EventCommit      EventType = "commit"
	EventAppend      EventType = "append"
	EventIndexBuilt  EventType = "index_built"
	EventReindex     EventType = "reindex"
	EventPack        EventType = "pack"
	EventZap         EventType = "zap"
	EventRestructure EventType = "restructure"
	EventBulkUpdate  EventType = "bulk_update"
)

// Event describes one state change of a table
type Event struct {
	Type      EventType   // Type of event
	TableID   string      // Identity of the table that emitted it
	Timestamp time.Time   // When the event occurred
	Data      interface{} // Event-specific data (recno, key list, affected count)
}

// Observer receives table events synchronously, in emission order
type Observer interface {
	OnEvent(event Event)
}

// AddObserver registers an observer for table events
func (t *Table) AddObserver(o Observer) {
	t.observers = append(t.observers, o)
}

// RemoveObserver unregisters an observer
func (t *Table) RemoveObserver(o Observer) {
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table) notify(eventType EventType, payload interface{}) {
	if len(t.observers) == 0 {
		return
	}
	event := Event{
		Type:      eventType,
		TableID:   t.id.String(),
		Timestamp: time.Now(),
		Data:      payload,
	}
	for _, o := range t.observers {
		o.OnEvent(event)
	}
}
