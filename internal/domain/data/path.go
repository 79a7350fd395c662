package data

import (
	"strconv"
	"strings"
)

// Get returns the value at a dot-separated path below root.
// Path segments address object keys; numeric segments also address array elements.
func Get(root interface{}, path string) (interface{}, bool) {
	if path == "" {
		return root, true
	}
	cur := root
	for _, seg := range strings.Split(path, ".") {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Has reports whether path exists below root
func Has(root interface{}, path string) bool {
	if path == "" {
		return false
	}
	_, ok := Get(root, path)
	return ok
}

// Set assigns value at path. Every parent segment must already exist;
// the final segment may be new only when its parent is an object.
func Set(root interface{}, path string, value interface{}) bool {
	if path == "" {
		return false
	}
	segs := strings.Split(path, ".")
	parent := root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := child(parent, seg)
		if !ok {
			return false
		}
		parent = next
	}

	last := segs[len(segs)-1]
	switch p := parent.(type) {
	case Record:
		p[last] = value
		return true
	case map[string]interface{}:
		p[last] = value
		return true
	case []interface{}:
		i, err := strconv.Atoi(last)
		if err != nil || i < 0 || i >= len(p) {
			return false
		}
		p[i] = value
		return true
	}
	return false
}

func child(v interface{}, seg string) (interface{}, bool) {
	switch x := v.(type) {
	case Record:
		e, ok := x[seg]
		return e, ok
	case map[string]interface{}:
		e, ok := x[seg]
		return e, ok
	case []interface{}:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(x) {
			return nil, false
		}
		return x[i], true
	}
	return nil, false
}
