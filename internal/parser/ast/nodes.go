package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/leengari/localtable/internal/domain/data"
)

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Expression represents a value or operation
type Expression interface {
	Node
	expressionNode()
}

// Identifier is a name the compiler did not bind to a record field:
// a memory variable, the scope name itself, or a function name
type Identifier struct {
	TokenLiteralValue string
	Value             string // full dotted path, e.g. "m.code"
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.TokenLiteralValue }
func (i *Identifier) String() string       { return i.Value }

// FieldRef is a record field (or nested path) bound to a scope name
type FieldRef struct {
	Scope string
	Path  string
}

func (f *FieldRef) expressionNode()      {}
func (f *FieldRef) TokenLiteral() string { return f.Path }
func (f *FieldRef) String() string       { return f.Scope + "." + f.Path }

// Literal represents a fixed value.
// Value holds a normalized engine value: string, float64, bool or nil.
type Literal struct {
	TokenLiteralValue string
	Value             interface{}
	Undefined         bool // distinguishes undefined from null
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.TokenLiteralValue }
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return data.FormatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	}
	if l.Undefined {
		return "undefined"
	}
	return "null"
}

// PrefixExpression: !x, -x, +x
type PrefixExpression struct {
	Operator string
	Right    Expression
}

func (e *PrefixExpression) expressionNode()      {}
func (e *PrefixExpression) TokenLiteral() string { return e.Operator }
func (e *PrefixExpression) String() string {
	return fmt.Sprintf("(%s%s)", e.Operator, e.Right.String())
}

// BinaryExpression: Left Operator Right (e.g. qty > 1)
type BinaryExpression struct {
	Left     Expression
	Operator string
	Right    Expression
}

func (e *BinaryExpression) expressionNode()      {}
func (e *BinaryExpression) TokenLiteral() string { return e.Operator }
func (e *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Operator, e.Right.String())
}

// LogicalExpression: && and ||, evaluated with short circuit
type LogicalExpression struct {
	Left     Expression
	Operator string
	Right    Expression
}

func (e *LogicalExpression) expressionNode()      {}
func (e *LogicalExpression) TokenLiteral() string { return e.Operator }
func (e *LogicalExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Operator, e.Right.String())
}

// ConditionalExpression: Condition ? Consequence : Alternative
type ConditionalExpression struct {
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (e *ConditionalExpression) expressionNode()      {}
func (e *ConditionalExpression) TokenLiteral() string { return "?" }
func (e *ConditionalExpression) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", e.Condition.String(), e.Consequence.String(), e.Alternative.String())
}

// CallExpression: Function(Arguments...)
type CallExpression struct {
	Function  string
	Arguments []Expression
}

func (e *CallExpression) expressionNode()      {}
func (e *CallExpression) TokenLiteral() string { return e.Function }
func (e *CallExpression) String() string {
	var out bytes.Buffer
	out.WriteString(e.Function)
	out.WriteString("(")
	out.WriteString(joinExpressions(e.Arguments))
	out.WriteString(")")
	return out.String()
}

// IndexExpression: Left[Index]
type IndexExpression struct {
	Left  Expression
	Index Expression
}

func (e *IndexExpression) expressionNode()      {}
func (e *IndexExpression) TokenLiteral() string { return "[" }
func (e *IndexExpression) String() string {
	return fmt.Sprintf("(%s[%s])", e.Left.String(), e.Index.String())
}

// ArrayLiteral: [a, b, c]
type ArrayLiteral struct {
	Elements []Expression
}

func (e *ArrayLiteral) expressionNode()      {}
func (e *ArrayLiteral) TokenLiteral() string { return "[" }
func (e *ArrayLiteral) String() string {
	return "[" + joinExpressions(e.Elements) + "]"
}

// SequenceExpression: a, b, c evaluates every element and yields the last
type SequenceExpression struct {
	Expressions []Expression
}

func (e *SequenceExpression) expressionNode()      {}
func (e *SequenceExpression) TokenLiteral() string { return "," }
func (e *SequenceExpression) String() string {
	return "(" + joinExpressions(e.Expressions) + ")"
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Walk visits every node depth-first, stopping a branch when fn returns false
func Walk(node Expression, fn func(Expression) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *PrefixExpression:
		Walk(n.Right, fn)
	case *BinaryExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *LogicalExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *ConditionalExpression:
		Walk(n.Condition, fn)
		Walk(n.Consequence, fn)
		Walk(n.Alternative, fn)
	case *CallExpression:
		for _, a := range n.Arguments {
			Walk(a, fn)
		}
	case *IndexExpression:
		Walk(n.Left, fn)
		Walk(n.Index, fn)
	case *ArrayLiteral:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	case *SequenceExpression:
		for _, e := range n.Expressions {
			Walk(e, fn)
		}
	}
}
