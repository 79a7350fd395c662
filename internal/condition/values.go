package condition

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leengari/localtable/internal/domain/data"
)

// Truthy applies loose boolean conversion: undefined, false, 0, NaN and "" are false
func Truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	}
	return true
}

// ToNumber converts a value the way arithmetic operators do
func ToNumber(v interface{}) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// ToString converts a value the way string concatenation does.
// Objects and arrays render as canonical JSON.
func ToString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case string:
		return x
	case float64:
		return data.FormatNumber(x)
	case bool:
		return strconv.FormatBool(x)
	}
	s, err := data.CanonicalJSON(v)
	if err != nil {
		return ""
	}
	return s
}

// ToUpper upper-cases text for key comparison
func ToUpper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// ToLower lower-cases text
func ToLower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// StrictEqual compares kind and value; objects compare structurally
func StrictEqual(a, b interface{}) bool {
	ka, kb := data.KindOf(a), data.KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case data.KindNumber:
		return a.(float64) == b.(float64)
	case data.KindObject, data.KindArray:
		return reflect.DeepEqual(a, b)
	case data.KindFunction:
		return false
	}
	return a == b
}

// LooseEqual compares after converting mixed scalar kinds to numbers
func LooseEqual(a, b interface{}) bool {
	ka, kb := data.KindOf(a), data.KindOf(b)
	if ka == kb {
		return StrictEqual(a, b)
	}
	if ka == data.KindUndefined || kb == data.KindUndefined {
		return false
	}
	scalar := func(k data.Kind) bool {
		return k == data.KindText || k == data.KindNumber || k == data.KindLogical
	}
	if !scalar(ka) || !scalar(kb) {
		return false
	}
	return ToNumber(a) == ToNumber(b)
}

// Compare orders two values for relational operators.
// ok is false when the values are not comparable (NaN involved).
func Compare(a, b interface{}) (int, bool) {
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(sa, sb), true
	}
	na, nb := ToNumber(a), ToNumber(b)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return 0, false
	}
	switch {
	case na < nb:
		return -1, true
	case na > nb:
		return 1, true
	}
	return 0, true
}
