package indexing

import (
	"fmt"
	"strings"

	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/domain/schema"
)

// FieldLookup resolves key field names to their descriptors
type FieldLookup interface {
	Field(name string) (schema.Field, bool)
}

// NormalizeKeyList strips all whitespace from a comma separated key list
func NormalizeKeyList(keyList string) string {
	return strings.Join(strings.Fields(keyList), "")
}

// SplitKeyList returns the normalized names of a key list
func SplitKeyList(keyList string) []string {
	norm := NormalizeKeyList(keyList)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, ",")
}

func qualify(scope, name string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// fragment renders one key component. composite selects the fixed-width
// string form for numbers so concatenated keys sort field by field.
func fragment(f schema.Field, ref string, composite bool) (string, error) {
	switch f.Type {
	case schema.FieldTypeShortText, schema.FieldTypeLongText, schema.FieldTypeDate:
		return fmt.Sprintf("padr(upper(%s), %d)", ref, f.KeyLength()), nil
	case schema.FieldTypeNumber:
		if !composite {
			return ref, nil
		}
		return fmt.Sprintf("str(%s, %d, %d)", ref, f.Length, f.Decimals), nil
	case schema.FieldTypeLogical:
		return fmt.Sprintf("ltos(%s)", ref), nil
	case schema.FieldTypeObject:
		return fmt.Sprintf("json(%s)", ref), nil
	}
	return "", fmt.Errorf("field %s of type %s cannot be part of a key", f.Name, f.Type)
}

// BuildKeyExpr builds the key expression for a key list, e.g.
// "code,qty" -> "padr(upper(thisrecord.code), 5) + str(thisrecord.qty, 6, 0)"
func BuildKeyExpr(fields FieldLookup, keyList, scope string) (string, error) {
	names := SplitKeyList(keyList)
	if len(names) == 0 {
		return "", errors.NewCompileError(keyList, -1, "key list is empty")
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		f, ok := fields.Field(name)
		if !ok {
			return "", errors.NewCompileError(keyList, -1, fmt.Sprintf("unknown key field %q", name))
		}
		frag, err := fragment(f, qualify(scope, name), len(names) > 1)
		if err != nil {
			return "", errors.NewCompileError(keyList, -1, err.Error())
		}
		parts = append(parts, frag)
	}
	return strings.Join(parts, " + "), nil
}

// BuildValueExpr builds an expression producing a seek value comparable to
// the keys of keyList, taking the component values from valueList paths in
// scope. A value list shorter than the key list yields a partial key. A
// single numeric key stays numeric unless partial is set.
func BuildValueExpr(fields FieldLookup, keyList, valueList, scope string, partial bool) (string, error) {
	keys := SplitKeyList(keyList)
	if len(keys) == 0 {
		return "", errors.NewCompileError(keyList, -1, "key list is empty")
	}
	values := SplitKeyList(valueList)
	if len(values) == 0 {
		return "", errors.NewCompileError(valueList, -1, "value field list is empty")
	}
	if len(values) > len(keys) {
		return "", errors.NewCompileError(valueList, -1, "more value fields than key fields")
	}

	composite := len(keys) > 1 || partial
	parts := make([]string, 0, len(values))
	for i, v := range values {
		f, ok := fields.Field(keys[i])
		if !ok {
			return "", errors.NewCompileError(keyList, -1, fmt.Sprintf("unknown key field %q", keys[i]))
		}
		frag, err := fragment(f, qualify(scope, v), composite)
		if err != nil {
			return "", errors.NewCompileError(keyList, -1, err.Error())
		}
		parts = append(parts, frag)
	}
	return strings.Join(parts, " + "), nil
}
