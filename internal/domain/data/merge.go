package data

import (
	"encoding/json"
	"strings"
)

// Merge copies values from source into target, keeping target's shape.
// Only keys already present in target are written. Nested objects are merged
// recursively; arrays and scalars replace the target value with a clone.
// A source given as JSON object text is decoded first.
func Merge(target map[string]interface{}, source interface{}) bool {
	src, ok := asObject(source)
	if !ok || target == nil {
		return false
	}
	for k, tv := range target {
		sv, present := src[k]
		if !present {
			continue
		}
		tObj, tIsObj := tv.(map[string]interface{})
		sObj, sIsObj := sv.(map[string]interface{})
		if tIsObj && sIsObj {
			Merge(tObj, sObj)
			continue
		}
		target[k] = Clone(Normalize(sv))
	}
	return true
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	switch x := v.(type) {
	case map[string]interface{}:
		return x, true
	case Record:
		return map[string]interface{}(x), true
	case string:
		if !strings.HasPrefix(strings.TrimSpace(x), "{") {
			return nil, false
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(x), &m); err != nil {
			return nil, false
		}
		return m, true
	}
	n, ok := Normalize(v).(map[string]interface{})
	return n, ok
}
