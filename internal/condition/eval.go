package condition

import (
	"fmt"
	"math"
	"strings"

	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/parser/ast"
)

type evaluator struct {
	c   *Compiled
	rec data.Record
	env Env
}

func (ev *evaluator) fail(format string, args ...interface{}) error {
	return errors.NewEvaluationError(ev.c.Source, fmt.Sprintf(format, args...))
}

func (ev *evaluator) eval(node ast.Expression) (interface{}, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return n.Value, nil

	case *ast.FieldRef:
		v, _ := data.Get(ev.rec, n.Path)
		return v, nil

	case *ast.Identifier:
		return ev.resolve(n.Value)

	case *ast.PrefixExpression:
		right, err := ev.eval(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "!":
			return !Truthy(right), nil
		case "-":
			return -ToNumber(right), nil
		case "+":
			return ToNumber(right), nil
		}
		return nil, ev.fail("unknown prefix operator %s", n.Operator)

	case *ast.BinaryExpression:
		left, err := ev.eval(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return ev.binary(n.Operator, left, right)

	case *ast.LogicalExpression:
		left, err := ev.eval(n.Left)
		if err != nil {
			return nil, err
		}
		if n.Operator == "&&" {
			if !Truthy(left) {
				return left, nil
			}
		} else if Truthy(left) {
			return left, nil
		}
		return ev.eval(n.Right)

	case *ast.ConditionalExpression:
		cond, err := ev.eval(n.Condition)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return ev.eval(n.Consequence)
		}
		return ev.eval(n.Alternative)

	case *ast.CallExpression:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			v, err := ev.eval(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return ev.call(n.Function, args)

	case *ast.IndexExpression:
		left, err := ev.eval(n.Left)
		if err != nil {
			return nil, err
		}
		idx, err := ev.eval(n.Index)
		if err != nil {
			return nil, err
		}
		return index(left, idx), nil

	case *ast.ArrayLiteral:
		out := make([]interface{}, len(n.Elements))
		for i, e := range n.Elements {
			v, err := ev.eval(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *ast.SequenceExpression:
		var last interface{}
		for _, e := range n.Expressions {
			v, err := ev.eval(e)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	}
	return nil, ev.fail("unsupported expression %T", node)
}

// resolve looks an unbound name up: the scope name is the record itself,
// anything else is a variable from env, optionally followed by a path
func (ev *evaluator) resolve(name string) (interface{}, error) {
	head, rest, nested := strings.Cut(name, ".")

	var root interface{}
	if head == ev.c.Scope {
		if ev.rec == nil {
			return nil, ev.fail("%s is not available here", head)
		}
		root = map[string]interface{}(ev.rec)
	} else {
		v, ok := ev.env[head]
		if !ok {
			return nil, ev.fail("%s is not defined", head)
		}
		root = v
	}
	if !nested {
		return root, nil
	}
	v, ok := data.Get(root, rest)
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (ev *evaluator) binary(op string, left, right interface{}) (interface{}, error) {
	switch op {
	case "+":
		_, ls := left.(string)
		_, rs := right.(string)
		if ls || rs || isComposite(left) || isComposite(right) {
			return ToString(left) + ToString(right), nil
		}
		return ToNumber(left) + ToNumber(right), nil
	case "-":
		return ToNumber(left) - ToNumber(right), nil
	case "*":
		return ToNumber(left) * ToNumber(right), nil
	case "/":
		return ToNumber(left) / ToNumber(right), nil
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right)), nil
	case "==":
		return LooseEqual(left, right), nil
	case "!=":
		return !LooseEqual(left, right), nil
	case "===":
		return StrictEqual(left, right), nil
	case "!==":
		return !StrictEqual(left, right), nil
	case "<", "<=", ">", ">=":
		cmp, ok := Compare(left, right)
		if !ok {
			return false, nil
		}
		switch op {
		case "<":
			return cmp < 0, nil
		case "<=":
			return cmp <= 0, nil
		case ">":
			return cmp > 0, nil
		}
		return cmp >= 0, nil
	}
	return nil, ev.fail("unknown operator %s", op)
}

func (ev *evaluator) call(name string, args []interface{}) (interface{}, error) {
	if v, ok := ev.env[name]; ok {
		fn, ok := v.(Func)
		if !ok {
			if f2, ok2 := v.(func(...interface{}) (interface{}, error)); ok2 {
				fn = f2
			} else {
				return nil, ev.fail("%s is not a function", name)
			}
		}
		out, err := fn(args...)
		if err != nil {
			return nil, &errors.EvaluationError{Expr: ev.c.Source, Reason: "call to " + name + " failed", Err: err}
		}
		return data.Normalize(out), nil
	}

	b, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, ev.fail("%s is not defined", name)
	}
	if len(args) < b.minArgs || (b.maxArgs >= 0 && len(args) > b.maxArgs) {
		return nil, ev.fail("%s: wrong number of arguments (%d)", name, len(args))
	}
	out, err := b.fn(args)
	if err != nil {
		return nil, ev.fail("%s: %v", name, err)
	}
	return out, nil
}

func isComposite(v interface{}) bool {
	k := data.KindOf(v)
	return k == data.KindObject || k == data.KindArray
}

// position converts an index value to a slot in 0..n-1
func position(idx interface{}, n int) (int, bool) {
	i := ToNumber(idx)
	if math.IsNaN(i) || i < 0 || i >= float64(n) || i != math.Trunc(i) {
		return 0, false
	}
	return int(i), true
}

func index(left, idx interface{}) interface{} {
	switch x := left.(type) {
	case []interface{}:
		if i, ok := position(idx, len(x)); ok {
			return x[i]
		}
		return nil
	case map[string]interface{}:
		return x[ToString(idx)]
	case data.Record:
		return x[ToString(idx)]
	case string:
		r := []rune(x)
		if i, ok := position(idx, len(r)); ok {
			return string(r[i])
		}
		return nil
	}
	return nil
}
