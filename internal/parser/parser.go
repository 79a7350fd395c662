package parser

import (
	"fmt"
	"strconv"

	"github.com/leengari/localtable/internal/parser/ast"
	"github.com/leengari/localtable/internal/parser/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	SEQUENCE    // ,
	TERNARY     // ?:
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == != === !==
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X or !X
	CALL        // fn(X), list[X]
)

var precedences = map[lexer.TokenType]int{
	lexer.COMMA:         SEQUENCE,
	lexer.QUESTION:      TERNARY,
	lexer.OR:            LOGIC_OR,
	lexer.AND:           LOGIC_AND,
	lexer.EQ:            EQUALS,
	lexer.NOT_EQ:        EQUALS,
	lexer.STRICT_EQ:     EQUALS,
	lexer.STRICT_NOT_EQ: EQUALS,
	lexer.LT:            LESSGREATER,
	lexer.LTE:           LESSGREATER,
	lexer.GT:            LESSGREATER,
	lexer.GTE:           LESSGREATER,
	lexer.PLUS:          SUM,
	lexer.MINUS:         SUM,
	lexer.ASTERISK:      PRODUCT,
	lexer.SLASH:         PRODUCT,
	lexer.PERCENT:       PRODUCT,
	lexer.PAREN_OPEN:    CALL,
	lexer.BRACKET_OPEN:  CALL,
}

// Error reports a syntax error at a byte offset of the input
type Error struct {
	Pos    int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Reason)
}

type Parser struct {
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
}

func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens, curPos: 0}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF, Pos: p.curTok.Pos + p.curTok.Len}
	}
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...interface{}) error {
	return &Error{Pos: tok.Pos, Reason: fmt.Sprintf(format, args...)}
}

// Parse reads one complete expression and requires the input to end after it
func (p *Parser) Parse() (ast.Expression, error) {
	if p.curTok.Type == lexer.EOF {
		return nil, p.errorf(p.curTok, "empty expression")
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.curTok.Type != lexer.EOF {
		return nil, p.errorf(p.curTok, "unexpected %s after expression", describe(p.curTok))
	}
	return expr, nil
}

// ParseExpression tokenizes and parses input in one step
func ParseExpression(input string) (ast.Expression, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	return New(tokens).Parse()
}

// parseExpression leaves curTok on the first token after the expression
func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.curPrecedence() {
		switch p.curTok.Type {
		case lexer.COMMA:
			left, err = p.parseSequence(left)
		case lexer.QUESTION:
			left, err = p.parseConditional(left)
		case lexer.AND, lexer.OR:
			left, err = p.parseLogical(left)
		case lexer.PAREN_OPEN:
			left, err = p.parseCall(left)
		case lexer.BRACKET_OPEN:
			left, err = p.parseIndex(left)
		default:
			left, err = p.parseBinary(left)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curTok.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parsePrefix() (ast.Expression, error) {
	tok := p.curTok
	switch tok.Type {
	case lexer.IDENTIFIER:
		p.nextToken()
		return &ast.Identifier{TokenLiteralValue: tok.Literal, Value: tok.Literal}, nil
	case lexer.STRING:
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: tok.Literal, Value: tok.Literal}, nil
	case lexer.NUMBER:
		p.nextToken()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %s", tok.Literal)
		}
		return &ast.Literal{TokenLiteralValue: tok.Literal, Value: f}, nil
	case lexer.TRUE, lexer.FALSE:
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: tok.Literal, Value: tok.Type == lexer.TRUE}, nil
	case lexer.NULL:
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: tok.Literal}, nil
	case lexer.UNDEFINED:
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: tok.Literal, Undefined: true}, nil
	case lexer.BANG, lexer.MINUS, lexer.PLUS:
		p.nextToken()
		right, err := p.parseExpression(PREFIX)
		if err != nil {
			return nil, err
		}
		return &ast.PrefixExpression{Operator: tok.Literal, Right: right}, nil
	case lexer.PAREN_OPEN:
		p.nextToken()
		inner, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.PAREN_CLOSE); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.BRACKET_OPEN:
		p.nextToken()
		elems, err := p.parseList(lexer.BRACKET_CLOSE)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Elements: elems}, nil
	case lexer.ASSIGN:
		return nil, p.errorf(tok, "assignment operator must not be used in an expression")
	case lexer.EOF:
		return nil, p.errorf(tok, "unexpected end of expression")
	}
	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

func (p *Parser) parseBinary(left ast.Expression) (ast.Expression, error) {
	tok := p.curTok
	prec := p.curPrecedence()
	p.nextToken()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpression{Left: left, Operator: tok.Literal, Right: right}, nil
}

func (p *Parser) parseLogical(left ast.Expression) (ast.Expression, error) {
	tok := p.curTok
	prec := p.curPrecedence()
	p.nextToken()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.LogicalExpression{Left: left, Operator: tok.Literal, Right: right}, nil
}

// parseConditional is right-associative: a ? b : c ? d : e
func (p *Parser) parseConditional(cond ast.Expression) (ast.Expression, error) {
	p.nextToken()
	then, err := p.parseExpression(SEQUENCE)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	alt, err := p.parseExpression(SEQUENCE)
	if err != nil {
		return nil, err
	}
	return &ast.ConditionalExpression{Condition: cond, Consequence: then, Alternative: alt}, nil
}

func (p *Parser) parseSequence(first ast.Expression) (ast.Expression, error) {
	seq := &ast.SequenceExpression{Expressions: []ast.Expression{first}}
	for p.curTok.Type == lexer.COMMA {
		p.nextToken()
		next, err := p.parseExpression(SEQUENCE)
		if err != nil {
			return nil, err
		}
		seq.Expressions = append(seq.Expressions, next)
	}
	return seq, nil
}

func (p *Parser) parseCall(fn ast.Expression) (ast.Expression, error) {
	ident, ok := fn.(*ast.Identifier)
	if !ok {
		return nil, p.errorf(p.curTok, "%s is not callable", fn.String())
	}
	p.nextToken()
	args, err := p.parseList(lexer.PAREN_CLOSE)
	if err != nil {
		return nil, err
	}
	return &ast.CallExpression{Function: ident.Value, Arguments: args}, nil
}

func (p *Parser) parseIndex(left ast.Expression) (ast.Expression, error) {
	p.nextToken()
	idx, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expect(lexer.BRACKET_CLOSE); err != nil {
		return nil, err
	}
	return &ast.IndexExpression{Left: left, Index: idx}, nil
}

// parseList reads comma separated elements up to and including the closing token
func (p *Parser) parseList(end lexer.TokenType) ([]ast.Expression, error) {
	var list []ast.Expression
	if p.curTok.Type == end {
		p.nextToken()
		return list, nil
	}
	for {
		elem, err := p.parseExpression(SEQUENCE)
		if err != nil {
			return nil, err
		}
		list = append(list, elem)
		if p.curTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
	}
	if err := p.expect(end); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *Parser) expect(tt lexer.TokenType) error {
	if p.curTok.Type != tt {
		return p.errorf(p.curTok, "expected %s, got %s", tt, describe(p.curTok))
	}
	p.nextToken()
	return nil
}
