package lexer

import (
	"fmt"
	"strconv"
)

// Error is a scan failure. Scanning continues past it.
type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Lex error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

type Lexer struct {
	input  []rune
	pos    int
	line   int
	col    int
	errors []*Error
}

func New(input string) *Lexer {
	return &Lexer{
		input: []rune(input),
		line:  1,
		col:   1,
	}
}

// Scan tokenizes src in one pass. The token slice always ends with exactly
// one EOF token; errors are collected rather than stopping the scan.
func Scan(src string) ([]Token, []*Error) {
	l := New(src)
	toks := []Token{}
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks, l.Errors()
}

// Errors returns the scan errors recorded so far.
func (l *Lexer) Errors() []*Error { return l.errors }

func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.input) }

func (l *Lexer) advance() rune {
	if l.atEnd() {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) errorf(line, col int, format string, args ...any) {
	l.errors = append(l.errors, &Error{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)})
}

// NextToken returns the next token, skipping whitespace, comments and any
// character that produced an error.
func (l *Lexer) NextToken() Token {
	for {
		l.skipTrivia()

		startPos := l.pos
		startLine := l.line
		startCol := l.col

		if l.atEnd() {
			return Token{Type: EOF, Line: startLine, Col: startCol}
		}

		ch := l.advance()
		tok := func(tt TokenType) Token {
			return Token{Type: tt, Lexeme: string(l.input[startPos:l.pos]), Line: startLine, Col: startCol}
		}

		// identifiers/keywords
		if isAlpha(ch) {
			for isAlphaNum(l.peek()) {
				l.advance()
			}
			return tok(LookupIdent(string(l.input[startPos:l.pos])))
		}

		// numbers: digits with an optional fractional part. A '.' not
		// followed by a digit is left for the DOT token.
		if isDigit(ch) {
			for isDigit(l.peek()) {
				l.advance()
			}
			if l.peek() == '.' && isDigit(l.peekNext()) {
				l.advance()
				for isDigit(l.peek()) {
					l.advance()
				}
			}
			t := tok(NUMBER)
			n, err := strconv.ParseFloat(t.Lexeme, 64)
			if err != nil {
				l.errorf(startLine, startCol, "Invalid number %q", t.Lexeme)
				continue
			}
			t.Literal = n
			return t
		}

		// strings "..." may span lines
		if ch == '"' {
			for l.peek() != '"' && !l.atEnd() {
				l.advance()
			}
			if l.atEnd() {
				l.errorf(startLine, startCol, "Unterminated string")
				continue
			}
			l.advance()
			t := tok(STRING)
			t.Literal = string(l.input[startPos+1 : l.pos-1])
			return t
		}

		// two-char operators
		switch ch {
		case '=':
			if l.match('=') {
				return tok(EQ)
			}
			return tok(ASSIGN)
		case '!':
			if l.match('=') {
				return tok(NEQ)
			}
			return tok(BANG)
		case '<':
			if l.match('=') {
				return tok(LTE)
			}
			return tok(LT)
		case '>':
			if l.match('=') {
				return tok(GTE)
			}
			return tok(GT)
		}

		// single-char tokens
		switch ch {
		case '+':
			return tok(PLUS)
		case '-':
			return tok(MINUS)
		case '*':
			return tok(STAR)
		case '/':
			return tok(SLASH)
		case '(':
			return tok(LPAREN)
		case ')':
			return tok(RPAREN)
		case '{':
			return tok(LBRACE)
		case '}':
			return tok(RBRACE)
		case ',':
			return tok(COMMA)
		case '.':
			return tok(DOT)
		case ';':
			return tok(SEMICOLON)
		}

		l.errorf(startLine, startCol, "Unexpected character %q", ch)
	}
}

// skipTrivia consumes whitespace, newlines and // comments.
func (l *Lexer) skipTrivia() {
	for {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekNext() == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) match(want rune) bool {
	if l.atEnd() || l.peek() != want {
		return false
	}
	l.advance()
	return true
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlphaNum(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
