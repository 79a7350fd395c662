package condition

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/leengari/localtable/internal/domain/data"
)

type builtin struct {
	minArgs int
	maxArgs int // -1 for variadic
	fn      func(args []interface{}) (interface{}, error)
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"upper":   {1, 1, func(a []interface{}) (interface{}, error) { return ToUpper(ToString(a[0])), nil }},
		"lower":   {1, 1, func(a []interface{}) (interface{}, error) { return ToLower(ToString(a[0])), nil }},
		"trim":    {1, 1, func(a []interface{}) (interface{}, error) { return strings.TrimSpace(ToString(a[0])), nil }},
		"ltrim":   {1, 1, func(a []interface{}) (interface{}, error) { return strings.TrimLeft(ToString(a[0]), " \t\r\n"), nil }},
		"rtrim":   {1, 1, func(a []interface{}) (interface{}, error) { return strings.TrimRight(ToString(a[0]), " \t\r\n"), nil }},
		"padr":    {2, 3, padRight},
		"padl":    {2, 3, padLeft},
		"str":     {1, 3, str},
		"ltos":    {1, 1, ltos},
		"json":    {1, 1, jsonText},
		"len":     {1, 1, length},
		"substr":  {2, 3, substr},
		"left":    {2, 2, left},
		"right":   {2, 2, right},
		"val":     {1, 1, func(a []interface{}) (interface{}, error) { return Val(ToString(a[0])), nil }},
		"empty":   {1, 1, func(a []interface{}) (interface{}, error) { return Empty(a[0]), nil }},
		"between": {3, 3, between},
		"inlist":  {2, -1, inlist},
		"abs":     {1, 1, func(a []interface{}) (interface{}, error) { return math.Abs(ToNumber(a[0])), nil }},
		"round":   {1, 2, round},
		"int":     {1, 1, func(a []interface{}) (interface{}, error) { return math.Trunc(ToNumber(a[0])), nil }},
		"min":     {1, -1, extreme(-1)},
		"max":     {1, -1, extreme(1)},
	}
}

// Builtins lists the names of the built-in functions
func Builtins() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	return out
}

// MaxWidth bounds the widths and decimal counts the formatting functions accept
const MaxWidth = 65535

func intArg(v interface{}, name string) (int, error) {
	n := ToNumber(v)
	if math.IsNaN(n) {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	n = math.Max(math.Min(n, math.MaxInt32), math.MinInt32)
	return int(n), nil
}

func widthArg(v interface{}, name string) (int, error) {
	w, err := intArg(v, name)
	if err != nil {
		return 0, err
	}
	if w < 0 || w > MaxWidth {
		return 0, fmt.Errorf("%s must be between 0 and %d", name, MaxWidth)
	}
	return w, nil
}

func padChar(a []interface{}) string {
	if len(a) > 2 {
		if s := ToString(a[2]); s != "" {
			return s
		}
	}
	return " "
}

func padding(s string, width int, fill string) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return ""
	}
	p := strings.Repeat(fill, n/utf8.RuneCountInString(fill)+1)
	return string([]rune(p)[:n])
}

// padRight pads to width without truncating longer text
func padRight(a []interface{}) (interface{}, error) {
	s := ToString(a[0])
	w, err := widthArg(a[1], "width")
	if err != nil {
		return nil, err
	}
	return s + padding(s, w, padChar(a)), nil
}

func padLeft(a []interface{}) (interface{}, error) {
	s := ToString(a[0])
	w, err := widthArg(a[1], "width")
	if err != nil {
		return nil, err
	}
	return padding(s, w, padChar(a)) + s, nil
}

// FormatKeyNumber renders n with dec decimals, left-zero-padded to width.
// Negative values keep their sign in front, so they do not sort by value
// when compared as text.
func FormatKeyNumber(n float64, width, dec int) string {
	return fmt.Sprintf("%0*.*f", width, dec, n)
}

func str(a []interface{}) (interface{}, error) {
	n := ToNumber(a[0])
	if math.IsNaN(n) {
		return nil, fmt.Errorf("value is not a number")
	}
	width, dec := 10, 0
	var err error
	if len(a) > 1 {
		if width, err = widthArg(a[1], "width"); err != nil {
			return nil, err
		}
	}
	if len(a) > 2 {
		if dec, err = widthArg(a[2], "decimals"); err != nil {
			return nil, err
		}
	}
	return FormatKeyNumber(n, width, dec), nil
}

func ltos(a []interface{}) (interface{}, error) {
	b, ok := a[0].(bool)
	if !ok {
		return nil, fmt.Errorf("value is not logical")
	}
	if b {
		return "T", nil
	}
	return "F", nil
}

func jsonText(a []interface{}) (interface{}, error) {
	return data.CanonicalJSON(a[0])
}

func length(a []interface{}) (interface{}, error) {
	switch x := a[0].(type) {
	case string:
		return float64(utf8.RuneCountInString(x)), nil
	case []interface{}:
		return float64(len(x)), nil
	case map[string]interface{}:
		return float64(len(x)), nil
	}
	return float64(utf8.RuneCountInString(ToString(a[0]))), nil
}

// substr is 1-based: substr("ABCDE", 2, 3) == "BCD"
func substr(a []interface{}) (interface{}, error) {
	r := []rune(ToString(a[0]))
	start, err := intArg(a[1], "start")
	if err != nil {
		return nil, err
	}
	if start < 1 {
		start = 1
	}
	if start > len(r) {
		return "", nil
	}
	end := len(r)
	if len(a) > 2 {
		n, err := intArg(a[2], "length")
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if start-1+n < end {
			end = start - 1 + n
		}
	}
	return string(r[start-1 : end]), nil
}

func left(a []interface{}) (interface{}, error) {
	r := []rune(ToString(a[0]))
	n, err := intArg(a[1], "length")
	if err != nil {
		return nil, err
	}
	n = max(0, min(n, len(r)))
	return string(r[:n]), nil
}

func right(a []interface{}) (interface{}, error) {
	r := []rune(ToString(a[0]))
	n, err := intArg(a[1], "length")
	if err != nil {
		return nil, err
	}
	n = max(0, min(n, len(r)))
	return string(r[len(r)-n:]), nil
}

// Val reads the leading number of s; text without one yields 0
func Val(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case (r == '-' || r == '+') && i == 0:
		case r == '.' && !seenDot:
			seenDot = true
		default:
			break scan
		}
		end = i + 1
	}
	n := ToNumber(s[:end])
	if math.IsNaN(n) {
		return 0
	}
	return n
}

// Empty reports xBase emptiness: blank text, zero, false, the empty date,
// undefined, or an object or array without members
func Empty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		t := strings.TrimSpace(x)
		return t == "" || t == "0000-00-00"
	case float64:
		return x == 0
	case bool:
		return !x
	case map[string]interface{}:
		return len(x) == 0
	case []interface{}:
		return len(x) == 0
	}
	return false
}

func between(a []interface{}) (interface{}, error) {
	lo, ok1 := Compare(a[0], a[1])
	hi, ok2 := Compare(a[0], a[2])
	return ok1 && ok2 && lo >= 0 && hi <= 0, nil
}

// inlist(v, a, b, ...) or inlist(v, [a, b, ...])
func inlist(a []interface{}) (interface{}, error) {
	candidates := a[1:]
	if len(a) == 2 {
		if list, ok := a[1].([]interface{}); ok {
			candidates = list
		}
	}
	for _, c := range candidates {
		if LooseEqual(a[0], c) {
			return true, nil
		}
	}
	return false, nil
}

func round(a []interface{}) (interface{}, error) {
	n := ToNumber(a[0])
	dec := 0
	if len(a) > 1 {
		var err error
		if dec, err = intArg(a[1], "decimals"); err != nil {
			return nil, err
		}
	}
	p := math.Pow(10, float64(dec))
	return math.Round(n*p) / p, nil
}

func extreme(sign int) func(a []interface{}) (interface{}, error) {
	return func(a []interface{}) (interface{}, error) {
		vals := a
		if len(a) == 1 {
			if list, ok := a[0].([]interface{}); ok {
				vals = list
			}
		}
		if len(vals) == 0 {
			return nil, nil
		}
		best := vals[0]
		for _, v := range vals[1:] {
			cmp, ok := Compare(v, best)
			if ok && cmp*sign > 0 {
				best = v
			}
		}
		return best, nil
	}
}
