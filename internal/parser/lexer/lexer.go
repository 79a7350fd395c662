package lexer

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER // qty, addr.city, m.code
	STRING     // 'value', "value", `value`
	NUMBER     // 123, 1.23

	// Keywords
	TRUE
	FALSE
	NULL
	UNDEFINED

	// Operators
	PLUS          // +
	MINUS         // -
	ASTERISK      // *
	SLASH         // /
	PERCENT       // %
	BANG          // !
	EQ            // ==
	NOT_EQ        // !=
	STRICT_EQ     // ===
	STRICT_NOT_EQ // !==
	LT            // <
	LTE           // <=
	GT            // >
	GTE           // >=
	AND           // &&
	OR            // ||
	QUESTION      // ?
	COLON         // :

	// Punctuation
	COMMA         // ,
	PAREN_OPEN    // (
	PAREN_CLOSE   // )
	BRACKET_OPEN  // [
	BRACKET_CLOSE // ]

	// Recognized so the compiler can reject them
	ASSIGN    // =
	INCREMENT // ++
	DECREMENT // --
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", IDENTIFIER: "IDENTIFIER", STRING: "STRING", NUMBER: "NUMBER",
	TRUE: "true", FALSE: "false", NULL: "null", UNDEFINED: "undefined",
	PLUS: "+", MINUS: "-", ASTERISK: "*", SLASH: "/", PERCENT: "%", BANG: "!",
	EQ: "==", NOT_EQ: "!=", STRICT_EQ: "===", STRICT_NOT_EQ: "!==",
	LT: "<", LTE: "<=", GT: ">", GTE: ">=", AND: "&&", OR: "||",
	QUESTION: "?", COLON: ":", COMMA: ",",
	PAREN_OPEN: "(", PAREN_CLOSE: ")", BRACKET_OPEN: "[", BRACKET_CLOSE: "]",
	ASSIGN: "=", INCREMENT: "++", DECREMENT: "--",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// keywords are case-sensitive, like the operators around them
var keywords = map[string]TokenType{
	"true":      TRUE,
	"false":     FALSE,
	"null":      NULL,
	"undefined": UNDEFINED,
}

type Token struct {
	Type    TokenType
	Literal string // for STRING: the unquoted, unescaped text
	Pos     int    // byte offset of the first character in the input
	Len     int    // byte length of the token in the input
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%s, %q)", t.Type, t.Literal)
}

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
	err          string
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekCharAt(offset int) byte {
	i := l.position + offset
	if i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start, line, col := l.position, l.line, l.column
	tok := Token{Pos: start, Line: line, Column: col}

	// longest operator first
	switch {
	case l.matches("==="):
		return l.operator(tok, STRICT_EQ, 3)
	case l.matches("!=="):
		return l.operator(tok, STRICT_NOT_EQ, 3)
	case l.matches("=="):
		return l.operator(tok, EQ, 2)
	case l.matches("!="):
		return l.operator(tok, NOT_EQ, 2)
	case l.matches("<="):
		return l.operator(tok, LTE, 2)
	case l.matches(">="):
		return l.operator(tok, GTE, 2)
	case l.matches("&&"):
		return l.operator(tok, AND, 2)
	case l.matches("||"):
		return l.operator(tok, OR, 2)
	case l.matches("++"):
		return l.operator(tok, INCREMENT, 2)
	case l.matches("--"):
		return l.operator(tok, DECREMENT, 2)
	}

	switch l.ch {
	case '+':
		return l.operator(tok, PLUS, 1)
	case '-':
		return l.operator(tok, MINUS, 1)
	case '*':
		return l.operator(tok, ASTERISK, 1)
	case '/':
		return l.operator(tok, SLASH, 1)
	case '%':
		return l.operator(tok, PERCENT, 1)
	case '!':
		return l.operator(tok, BANG, 1)
	case '<':
		return l.operator(tok, LT, 1)
	case '>':
		return l.operator(tok, GT, 1)
	case '?':
		return l.operator(tok, QUESTION, 1)
	case ':':
		return l.operator(tok, COLON, 1)
	case ',':
		return l.operator(tok, COMMA, 1)
	case '(':
		return l.operator(tok, PAREN_OPEN, 1)
	case ')':
		return l.operator(tok, PAREN_CLOSE, 1)
	case '[':
		return l.operator(tok, BRACKET_OPEN, 1)
	case ']':
		return l.operator(tok, BRACKET_CLOSE, 1)
	case '=':
		return l.operator(tok, ASSIGN, 1)
	case '\'', '"', '`':
		lit, ok := l.readString(l.ch)
		tok.Literal = lit
		tok.Type = STRING
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = l.input[start:l.position]
			l.err = "unterminated string"
		}
		tok.Len = l.position - start
		return tok
	case 0:
		tok.Type = EOF
		return tok
	}

	if isLetter(l.ch) {
		tok.Literal = l.readIdentifier()
		tok.Type = LookupIdent(tok.Literal)
		tok.Len = len(tok.Literal)
		return tok
	}
	if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
		tok.Type = NUMBER
		tok.Literal = l.readNumber()
		tok.Len = len(tok.Literal)
		return tok
	}

	tok.Type = ILLEGAL
	tok.Literal = string(l.ch)
	tok.Len = 1
	l.err = "unexpected character"
	l.readChar()
	return tok
}

func (l *Lexer) matches(op string) bool {
	for i := 0; i < len(op); i++ {
		if l.peekCharAt(i) != op[i] {
			return false
		}
	}
	return true
}

func (l *Lexer) operator(tok Token, tt TokenType, n int) Token {
	tok.Type = tt
	tok.Literal = l.input[l.position : l.position+n]
	tok.Len = n
	for i := 0; i < n; i++ {
		l.readChar()
	}
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

// readIdentifier reads a dotted path such as addr.geo.lat or tags.0
func (l *Lexer) readIdentifier() string {
	position := l.position
	for {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '.' && (isLetter(l.peekChar()) || isDigit(l.peekChar())) {
			l.readChar()
			continue
		}
		break
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '-' || l.peekChar() == '+') {
		l.readChar()
		if l.ch == '-' || l.ch == '+' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

// readString consumes a quoted literal and resolves backslash escapes.
// Reports false when the closing quote is missing.
func (l *Lexer) readString(quote byte) (string, bool) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return sb.String(), false
		case quote:
			l.readChar()
			return sb.String(), true
		case '\\':
			l.readChar()
			switch l.ch {
			case 0:
				return sb.String(), false
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(l.ch)
			}
		case '\n':
			l.line++
			l.column = 0
			sb.WriteByte(l.ch)
		default:
			sb.WriteByte(l.ch)
		}
	}
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENTIFIER
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// IsNumeric reports whether s consists of digits only
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// Tokenize scans the entire input. The returned slice ends with an EOF token.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			return nil, &Error{Pos: tok.Pos, Line: tok.Line, Column: tok.Column, Literal: tok.Literal, Reason: l.err}
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens, nil
}

// Error describes an illegal token
type Error struct {
	Pos     int
	Line    int
	Column  int
	Literal string
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("illegal token at line %d, col %d: %s (%s)", e.Line, e.Column, e.Literal, e.Reason)
}
