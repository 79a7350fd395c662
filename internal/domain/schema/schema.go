package schema

import (
	"fmt"
	"strings"

	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
)

// Schema is the compiled, immutable form of a field definition list.
// A restructure builds a new Schema; an existing one is never edited.
type Schema struct {
	fields  []Field
	byName  map[string]int
	empty   data.Record
	factory ObjectFactory
}

// Compile validates a field list and builds the empty record template.
// factory may be nil when no field names an object class.
func Compile(fields []Field, factory ObjectFactory) (*Schema, error) {
	if len(fields) == 0 {
		return nil, errors.NewSchemaError("", -1, "field list is empty")
	}

	s := &Schema{
		fields:  make([]Field, 0, len(fields)),
		byName:  make(map[string]int, len(fields)),
		empty:   make(data.Record, len(fields)+1),
		factory: factory,
	}

	for i, raw := range fields {
		f := raw.Clone()
		f.Name = strings.TrimSpace(f.Name)
		f.ObjectClass = strings.TrimSpace(f.ObjectClass)

		if f.Name == "" {
			return nil, errors.NewSchemaError("", i, "field name is missing")
		}
		if !isIdentifier(f.Name) {
			return nil, errors.NewSchemaError(f.Name, i, "field name is not a valid identifier")
		}
		if f.Name == data.DeletedField {
			return nil, errors.NewSchemaError(f.Name, i, "field name is reserved")
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, errors.NewSchemaError(f.Name, i, "duplicate field name")
		}

		ft, ok := ParseFieldType(string(f.Type))
		if !ok {
			return nil, errors.NewSchemaError(f.Name, i, fmt.Sprintf("unknown type tag %q", raw.Type))
		}
		f.Type = ft
		if f.Length < 0 || f.Decimals < 0 {
			return nil, errors.NewSchemaError(f.Name, i, "length and decimals must not be negative")
		}

		empty, err := s.emptyValue(f)
		if err != nil {
			return nil, errors.NewSchemaError(f.Name, i, err.Error())
		}

		s.byName[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
		s.empty[f.Name] = empty
	}
	s.empty[data.DeletedField] = false

	return s, nil
}

func (s *Schema) emptyValue(f Field) (interface{}, error) {
	switch f.Type {
	case FieldTypeNumber:
		return float64(0), nil
	case FieldTypeDate:
		return EmptyDate, nil
	case FieldTypeLogical:
		return false, nil
	case FieldTypeObject:
		if f.ObjectClass != "" {
			if s.factory == nil {
				return nil, fmt.Errorf("object class %q needs an object factory", f.ObjectClass)
			}
			return s.factory.New(f.ObjectClass)
		}
		if f.ObjectTemplate != nil {
			return data.Clone(data.Normalize(f.ObjectTemplate)), nil
		}
		return map[string]interface{}{}, nil
	}
	return "", nil
}

func isIdentifier(name string) bool {
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return name != ""
}

// Definition returns a deep copy of the canonical field list
func (s *Schema) Definition() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Clone()
	}
	return out
}

// Fields returns the field list; callers must not modify it
func (s *Schema) Fields() []Field {
	return s.fields
}

// Factory returns the object factory the schema was compiled with
func (s *Schema) Factory() ObjectFactory {
	return s.factory
}

// EmptyRecord returns a deep clone of the empty record template
func (s *Schema) EmptyRecord() data.Record {
	return s.empty.Clone()
}

// EmptyValue returns a deep clone of the empty value of one field
func (s *Schema) EmptyValue(name string) (interface{}, bool) {
	v, ok := s.empty[name]
	if !ok {
		return nil, false
	}
	return data.Clone(v), true
}

// Field looks a field up by name
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// HasPath reports whether path names a field, the deleted flag,
// or a nested property of an object field's empty value
func (s *Schema) HasPath(path string) bool {
	return data.Has(s.empty, path)
}

// Names returns field names in definition order
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}
