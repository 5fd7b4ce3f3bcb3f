package ast

import (
	"fmt"
	"strings"

	"golox/lexer"
)

// Expr is the closed set of expression nodes. Evaluation switches on the
// concrete type; nodes never change after parsing.
type Expr interface {
	Node
	exprNode()
	String() string
	GetSpan() Span
}

// Literal wraps a NUMBER, STRING, TRUE, FALSE or NIL token.
type Literal struct {
	Token lexer.Token
}

func (l *Literal) NodeKind() string { return "Literal" }
func (l *Literal) exprNode()        {}
func (l *Literal) GetSpan() Span    { return TokenSpan(l.Token) }
func (l *Literal) String() string {
	switch l.Token.Type {
	case lexer.STRING:
		return fmt.Sprintf("String(%q)", l.Token.Literal)
	case lexer.NUMBER:
		return fmt.Sprintf("Number(%s)", l.Token.Lexeme)
	default:
		return l.Token.Lexeme
	}
}

type Variable struct {
	Name lexer.Token
}

func (v *Variable) NodeKind() string { return "Variable" }
func (v *Variable) exprNode()        {}
func (v *Variable) GetSpan() Span    { return TokenSpan(v.Name) }
func (v *Variable) String() string   { return fmt.Sprintf("Var(%s)", v.Name.Lexeme) }

type Assign struct {
	Name  lexer.Token
	Value Expr
}

func (a *Assign) NodeKind() string { return "Assign" }
func (a *Assign) exprNode()        {}
func (a *Assign) GetSpan() Span    { return TokenSpan(a.Name) }
func (a *Assign) String() string {
	return fmt.Sprintf("Assign(%s = %s)", a.Name.Lexeme, a.Value.String())
}

type Unary struct {
	Op    lexer.Token
	Right Expr
}

func (u *Unary) NodeKind() string { return "Unary" }
func (u *Unary) exprNode()        {}
func (u *Unary) GetSpan() Span    { return TokenSpan(u.Op) }
func (u *Unary) String() string {
	return fmt.Sprintf("Unary(%s %s)", u.Op.Lexeme, u.Right.String())
}

type Binary struct {
	Left  Expr
	Op    lexer.Token
	Right Expr
}

func (b *Binary) NodeKind() string { return "Binary" }
func (b *Binary) exprNode()        {}
func (b *Binary) GetSpan() Span    { return TokenSpan(b.Op) }
func (b *Binary) String() string {
	return fmt.Sprintf("Binary(%s %s %s)", b.Left.String(), b.Op.Lexeme, b.Right.String())
}

// Logical is `and` / `or`; kept apart from Binary because it short-circuits.
type Logical struct {
	Left  Expr
	Op    lexer.Token
	Right Expr
}

func (l *Logical) NodeKind() string { return "Logical" }
func (l *Logical) exprNode()        {}
func (l *Logical) GetSpan() Span    { return TokenSpan(l.Op) }
func (l *Logical) String() string {
	return fmt.Sprintf("Logical(%s %s %s)", l.Left.String(), l.Op.Lexeme, l.Right.String())
}

type Grouping struct {
	Inner Expr
}

func (g *Grouping) NodeKind() string { return "Grouping" }
func (g *Grouping) exprNode()        {}
func (g *Grouping) GetSpan() Span    { return g.Inner.GetSpan() }
func (g *Grouping) String() string   { return fmt.Sprintf("Group(%s)", g.Inner.String()) }

type Call struct {
	Callee Expr
	Paren  lexer.Token // closing paren, used for error lines
	Args   []Expr
}

func (c *Call) NodeKind() string { return "Call" }
func (c *Call) exprNode()        {}
func (c *Call) GetSpan() Span    { return TokenSpan(c.Paren) }
func (c *Call) String() string {
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("Call(%s, [%s])", c.Callee.String(), strings.Join(parts, ", "))
}

// Get is a property read: object.name
type Get struct {
	Object Expr
	Name   lexer.Token
}

func (g *Get) NodeKind() string { return "Get" }
func (g *Get) exprNode()        {}
func (g *Get) GetSpan() Span    { return TokenSpan(g.Name) }
func (g *Get) String() string {
	return fmt.Sprintf("Get(%s.%s)", g.Object.String(), g.Name.Lexeme)
}

// Set is a property write: object.name = value
type Set struct {
	Object Expr
	Name   lexer.Token
	Value  Expr
}

func (s *Set) NodeKind() string { return "Set" }
func (s *Set) exprNode()        {}
func (s *Set) GetSpan() Span    { return TokenSpan(s.Name) }
func (s *Set) String() string {
	return fmt.Sprintf("Set(%s.%s = %s)", s.Object.String(), s.Name.Lexeme, s.Value.String())
}

type This struct {
	Keyword lexer.Token
}

func (t *This) NodeKind() string { return "This" }
func (t *This) exprNode()        {}
func (t *This) GetSpan() Span    { return TokenSpan(t.Keyword) }
func (t *This) String() string   { return "This" }

// Super is super.method inside a subclass method.
type Super struct {
	Keyword lexer.Token
	Method  lexer.Token
}

func (s *Super) NodeKind() string { return "Super" }
func (s *Super) exprNode()        {}
func (s *Super) GetSpan() Span    { return TokenSpan(s.Keyword) }
func (s *Super) String() string   { return fmt.Sprintf("Super(%s)", s.Method.Lexeme) }
