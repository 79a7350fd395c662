package schema

import (
	"fmt"
	"sync"

	"github.com/leengari/localtable/internal/domain/data"
)

// ObjectFactory produces the empty value of an Object field bound to a class identity
type ObjectFactory interface {
	New(classID string) (map[string]interface{}, error)
}

// Constructor builds a fresh value for one class identity
type Constructor func() map[string]interface{}

// Registry is an ObjectFactory backed by registered constructors.
// It is safe for concurrent use so one registry can serve many tables.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Constructor)}
}

// Register binds a class identity to its constructor, replacing any previous one
func (r *Registry) Register(classID string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[classID] = ctor
}

func (r *Registry) New(classID string) (map[string]interface{}, error) {
	r.mu.RLock()
	ctor, ok := r.byName[classID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("object class %q is not registered", classID)
	}
	v, ok := data.Normalize(ctor()).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("object class %q did not produce an object", classID)
	}
	return v, nil
}
