package lexer

import "fmt"

type TokenType string

const (
	EOF TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING"

	AND    TokenType = "AND"
	CLASS  TokenType = "CLASS"
	ELSE   TokenType = "ELSE"
	FALSE  TokenType = "FALSE"
	FOR    TokenType = "FOR"
	FUN    TokenType = "FUN"
	IF     TokenType = "IF"
	NIL    TokenType = "NIL"
	OR     TokenType = "OR"
	PRINT  TokenType = "PRINT"
	RETURN TokenType = "RETURN"
	SUPER  TokenType = "SUPER"
	THIS   TokenType = "THIS"
	TRUE   TokenType = "TRUE"
	VAR    TokenType = "VAR"
	WHILE  TokenType = "WHILE"

	PLUS  TokenType = "PLUS"
	MINUS TokenType = "MINUS"
	STAR  TokenType = "STAR"
	SLASH TokenType = "SLASH"

	BANG   TokenType = "BANG"
	ASSIGN TokenType = "ASSIGN"

	LPAREN TokenType = "LPAREN"
	RPAREN TokenType = "RPAREN"
	LBRACE TokenType = "LBRACE"
	RBRACE TokenType = "RBRACE"

	COMMA     TokenType = "COMMA"
	DOT       TokenType = "DOT"
	SEMICOLON TokenType = "SEMICOLON"

	EQ  TokenType = "EQ"
	NEQ TokenType = "NEQ"
	LT  TokenType = "LT"
	GT  TokenType = "GT"
	LTE TokenType = "LTE"
	GTE TokenType = "GTE"
)

// Token is produced once by Scan and only read afterwards.
// Literal holds the decoded value for STRING (string) and NUMBER (float64)
// tokens and is nil for everything else.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
	Col     int
}

func (t Token) String() string {
	switch t.Type {
	case STRING:
		return fmt.Sprintf("%s(%q) @ %d:%d", t.Type, t.Literal, t.Line, t.Col)
	case IDENT, NUMBER:
		return fmt.Sprintf("%s(%s) @ %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
	default:
		return fmt.Sprintf("%s @ %d:%d", t.Type, t.Line, t.Col)
	}
}

var keywords = map[string]TokenType{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

// LookupIdent classifies an identifier. Keywords are case-sensitive.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}
