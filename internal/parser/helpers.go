package parser

import (
	"fmt"

	"github.com/leengari/localtable/internal/parser/lexer"
)

// describe renders a token for error messages
func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of expression"
	case lexer.IDENTIFIER, lexer.NUMBER:
		return fmt.Sprintf("%q", tok.Literal)
	case lexer.STRING:
		return fmt.Sprintf("string %q", tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Type.String())
}

// IsForbidden reports tokens that may be lexed but never appear in an expression
func IsForbidden(t lexer.TokenType) bool {
	return t == lexer.ASSIGN || t == lexer.INCREMENT || t == lexer.DECREMENT
}
