package schema

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
)

const dateLayout = "2006-01-02"

// Coerce normalizes a value written to path and checks it against the
// field's declared type. D fields accept time.Time or any date text
// dateparse recognizes; O fields accept JSON object text. Nested paths
// below an object field are checked against the template value when
// the template has one.
func (s *Schema) Coerce(path string, v interface{}) (interface{}, error) {
	top, nested, _ := strings.Cut(path, ".")
	if top == data.DeletedField && nested == "" {
		b, ok := v.(bool)
		if !ok {
			return nil, errors.NewTypeMismatch(path, v, data.KindLogical.String(), data.KindOf(data.Normalize(v)).String())
		}
		return b, nil
	}

	f, ok := s.Field(top)
	if !ok {
		return nil, errors.NewSchemaError(top, -1, "unknown field")
	}

	if nested != "" {
		nv := data.Normalize(v)
		if cur, ok := data.Get(s.empty, path); ok && cur != nil && nv != nil && !data.SameKind(cur, nv) {
			return nil, errors.NewTypeMismatch(path, v, data.KindOf(cur).String(), data.KindOf(nv).String())
		}
		return nv, nil
	}

	switch f.Type {
	case FieldTypeDate:
		return coerceDate(f, v)
	case FieldTypeObject:
		if text, ok := v.(string); ok && strings.HasPrefix(strings.TrimSpace(text), "{") {
			var m map[string]interface{}
			if err := json.Unmarshal([]byte(text), &m); err != nil {
				return nil, errors.NewTypeMismatch(f.Name, v, data.KindObject.String(), "malformed json")
			}
			return data.Normalize(m), nil
		}
	}

	nv := data.Normalize(v)
	got := data.KindOf(nv)
	if got == data.KindArray {
		got = data.KindObject
	}
	if got != f.Type.Kind() {
		return nil, errors.NewTypeMismatch(f.Name, v, f.Type.Kind().String(), got.String())
	}
	return nv, nil
}

func coerceDate(f Field, v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case time.Time:
		return x.Format(dateLayout), nil
	case string:
		text := strings.TrimSpace(x)
		if text == "" || text == EmptyDate {
			return EmptyDate, nil
		}
		t, err := dateparse.ParseAny(text)
		if err != nil {
			return nil, errors.NewTypeMismatch(f.Name, v, "date", "unparseable text")
		}
		return t.Format(dateLayout), nil
	}
	return nil, errors.NewTypeMismatch(f.Name, v, "date", data.KindOf(data.Normalize(v)).String())
}
