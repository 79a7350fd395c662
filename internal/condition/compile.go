package condition

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/errors"
	"github.com/leengari/localtable/internal/parser"
	"github.com/leengari/localtable/internal/parser/ast"
	"github.com/leengari/localtable/internal/parser/lexer"
)

// DefaultScope is the name a compiled expression uses for the record it runs against
const DefaultScope = "thisrecord"

// FieldSet answers whether a dotted path names a record field
type FieldSet interface {
	HasPath(path string) bool
}

// Env holds the variables and functions visible to an expression besides the record.
// Values of type Func are callable by name.
type Env map[string]interface{}

// Func is a caller-supplied function usable inside expressions
type Func func(args ...interface{}) (interface{}, error)

// Compiled is a parsed expression bound to a scope name
type Compiled struct {
	Source string // text as written by the caller
	Scope  string
	text   string // source with field references prefixed by the scope
	root   ast.Expression
	fields []string
}

// Compile tokenizes expr, binds every identifier naming a field of fields to
// scope, and parses the result. fields may be nil when nothing should bind.
func Compile(expr string, fields FieldSet, scope string) (*Compiled, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = DefaultScope
	}

	tokens, err := lexer.Tokenize(expr)
	if err != nil {
		var le *lexer.Error
		if stderrors.As(err, &le) {
			return nil, errors.NewCompileError(expr, le.Pos, le.Reason)
		}
		return nil, errors.NewCompileError(expr, -1, err.Error())
	}

	c := &Compiled{Source: expr, Scope: scope}
	var sb strings.Builder
	last := 0
	for i, tok := range tokens {
		switch {
		case tok.Type == lexer.ASSIGN:
			return nil, errors.NewCompileError(expr, tok.Pos, "assignment operator must not be used in an expression")
		case parser.IsForbidden(tok.Type):
			return nil, errors.NewCompileError(expr, tok.Pos, "increment and decrement operators are not supported")
		case tok.Type == lexer.IDENTIFIER && c.isField(tok.Literal, fields, next(tokens, i)):
			sb.WriteString(expr[last:tok.Pos])
			sb.WriteString(scope + "." + tok.Literal)
			last = tok.Pos + tok.Len
			c.fields = append(c.fields, tok.Literal)
		}
	}
	sb.WriteString(expr[last:])
	c.text = sb.String()

	root, err := parser.New(tokens).Parse()
	if err != nil {
		var pe *parser.Error
		if stderrors.As(err, &pe) {
			return nil, errors.NewCompileError(expr, pe.Pos, pe.Reason)
		}
		return nil, errors.NewCompileError(expr, -1, err.Error())
	}
	c.root = c.bind(root, fields)
	return c, nil
}

func next(tokens []lexer.Token, i int) lexer.TokenType {
	if i+1 < len(tokens) {
		return tokens[i+1].Type
	}
	return lexer.EOF
}

// isField: a name directly followed by "(" is a function call, never a field
func (c *Compiled) isField(name string, fields FieldSet, following lexer.TokenType) bool {
	if fields == nil || following == lexer.PAREN_OPEN || lexer.IsNumeric(name) {
		return false
	}
	return fields.HasPath(name)
}

// bind replaces identifiers naming fields with scoped field references
func (c *Compiled) bind(node ast.Expression, fields FieldSet) ast.Expression {
	switch n := node.(type) {
	case *ast.Identifier:
		if c.isField(n.Value, fields, lexer.EOF) {
			return &ast.FieldRef{Scope: c.Scope, Path: n.Value}
		}
		return n
	case *ast.PrefixExpression:
		n.Right = c.bind(n.Right, fields)
	case *ast.BinaryExpression:
		n.Left = c.bind(n.Left, fields)
		n.Right = c.bind(n.Right, fields)
	case *ast.LogicalExpression:
		n.Left = c.bind(n.Left, fields)
		n.Right = c.bind(n.Right, fields)
	case *ast.ConditionalExpression:
		n.Condition = c.bind(n.Condition, fields)
		n.Consequence = c.bind(n.Consequence, fields)
		n.Alternative = c.bind(n.Alternative, fields)
	case *ast.CallExpression:
		for i := range n.Arguments {
			n.Arguments[i] = c.bind(n.Arguments[i], fields)
		}
	case *ast.IndexExpression:
		n.Left = c.bind(n.Left, fields)
		n.Index = c.bind(n.Index, fields)
	case *ast.ArrayLiteral:
		for i := range n.Elements {
			n.Elements[i] = c.bind(n.Elements[i], fields)
		}
	case *ast.SequenceExpression:
		for i := range n.Expressions {
			n.Expressions[i] = c.bind(n.Expressions[i], fields)
		}
	}
	return node
}

// String returns the rewritten expression text, e.g. "thisrecord.qty > 5"
func (c *Compiled) String() string {
	return c.text
}

// Fields lists the field paths the expression references, in source order
func (c *Compiled) Fields() []string {
	out := make([]string, len(c.fields))
	copy(out, c.fields)
	return out
}

// Tree returns the bound expression tree
func (c *Compiled) Tree() ast.Expression {
	return c.root
}

// Eval runs the expression against rec. A runtime panic inside the
// expression or a bound function is returned as an EvaluationError.
func (c *Compiled) Eval(rec data.Record, env Env) (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = errors.NewEvaluationError(c.Source, fmt.Sprintf("runtime failure: %v", r))
		}
	}()
	ev := &evaluator{c: c, rec: rec, env: env}
	return ev.eval(c.root)
}

// Test runs the expression as a predicate using truthiness of the result
func (c *Compiled) Test(rec data.Record, env Env) (bool, error) {
	v, err := c.Eval(rec, env)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}
