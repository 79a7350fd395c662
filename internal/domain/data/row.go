package data

import (
	"encoding/json"
)

// DeletedField is the implicit system field carried by every record
const DeletedField = "deleted"

// Record represents a single table record
// Key = field name, Value = field value (see Kind for the value shapes)
type Record map[string]interface{}

// Clone creates a deep copy of the record so callers never alias engine state
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = Clone(v)
	}
	return out
}

// Deleted reports the logical delete flag of the record
func (r Record) Deleted() bool {
	d, _ := r[DeletedField].(bool)
	return d
}

// ToJSON serializes the record with sorted keys
func (r Record) ToJSON() (json.RawMessage, error) {
	return json.Marshal(map[string]interface{}(r))
}

// FromJSON creates a Record from JSON, normalizing every value
func FromJSON(raw json.RawMessage) (Record, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return Record(Normalize(m).(map[string]interface{})), nil
}
