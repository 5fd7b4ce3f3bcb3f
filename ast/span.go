package ast

import "golox/lexer"

type Span struct {
	Line int
	Col  int
}

// Node is implemented by every expression and statement.
type Node interface {
	NodeKind() string
}

type HasSpan interface {
	GetSpan() Span
}

func SpanOf(n any) (Span, bool) {
	if n == nil {
		return Span{}, false
	}
	hs, ok := n.(HasSpan)
	if !ok {
		return Span{}, false
	}
	return hs.GetSpan(), true
}

// TokenSpan is the source position a token was scanned at.
func TokenSpan(tok lexer.Token) Span { return Span{Line: tok.Line, Col: tok.Col} }
