package schema

import (
	"strings"

	"github.com/leengari/localtable/internal/domain/data"
)

type FieldType string

const (
	FieldTypeShortText FieldType = "C"
	FieldTypeLongText  FieldType = "M"
	FieldTypeGeneral   FieldType = "G"
	FieldTypeNumber    FieldType = "N"
	FieldTypeDate      FieldType = "D"
	FieldTypeLogical   FieldType = "L"
	FieldTypeObject    FieldType = "O"
)

// DateLength is the fixed key width of a D field ("YYYY-MM-DD")
const DateLength = 10

// EmptyDate is the zero value of a D field
const EmptyDate = "0000-00-00"

// ParseFieldType trims and upper-cases a type tag and reports whether it is known
func ParseFieldType(tag string) (FieldType, bool) {
	ft := FieldType(strings.ToUpper(strings.TrimSpace(tag)))
	switch ft {
	case FieldTypeShortText, FieldTypeLongText, FieldTypeGeneral, FieldTypeNumber,
		FieldTypeDate, FieldTypeLogical, FieldTypeObject:
		return ft, true
	}
	return ft, false
}

// IsText reports whether values of this type are stored as strings
func (t FieldType) IsText() bool {
	switch t {
	case FieldTypeShortText, FieldTypeLongText, FieldTypeGeneral, FieldTypeDate:
		return true
	}
	return false
}

// Kind returns the runtime value kind expected for the type
func (t FieldType) Kind() data.Kind {
	switch t {
	case FieldTypeNumber:
		return data.KindNumber
	case FieldTypeLogical:
		return data.KindLogical
	case FieldTypeObject:
		return data.KindObject
	}
	return data.KindText
}

// Field describes one column of a table
type Field struct {
	Name           string                 `json:"name" yaml:"name"`
	Type           FieldType              `json:"type" yaml:"type"`
	Length         int                    `json:"length" yaml:"length"`
	Decimals       int                    `json:"decimals" yaml:"decimals"`
	ObjectTemplate map[string]interface{} `json:"objectTemplate,omitempty" yaml:"object_template,omitempty"`
	ObjectClass    string                 `json:"objectClassId,omitempty" yaml:"object_class,omitempty"`
}

// Clone returns a copy of the field with its own template
func (f Field) Clone() Field {
	out := f
	if f.ObjectTemplate != nil {
		out.ObjectTemplate = data.Clone(f.ObjectTemplate).(map[string]interface{})
	}
	return out
}

// KeyLength returns the width the field occupies in a composite index key
func (f Field) KeyLength() int {
	if f.Type == FieldTypeDate {
		return DateLength
	}
	return f.Length
}
