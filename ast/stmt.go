package ast

import (
	"fmt"

	"golox/lexer"
)

type Stmt interface {
	Node
	stmtNode()
	String() string
	GetSpan() Span
}

type PrintStmt struct {
	S     Span
	Value Expr
}

func (p *PrintStmt) NodeKind() string { return "PrintStmt" }
func (p *PrintStmt) stmtNode()        {}
func (p *PrintStmt) GetSpan() Span    { return p.S }
func (p *PrintStmt) String() string   { return fmt.Sprintf("PrintStmt(%s)", p.Value.String()) }

// --- Expression statements ---
// e.g. counter();
type ExprStmt struct {
	S    Span
	Expr Expr
}

func (e *ExprStmt) NodeKind() string { return "ExprStmt" }
func (e *ExprStmt) stmtNode()        {}
func (e *ExprStmt) GetSpan() Span    { return e.S }
func (e *ExprStmt) String() string   { return fmt.Sprintf("ExprStmt(%s)", e.Expr.String()) }

// VarStmt declares Name in the innermost scope. Init may be nil.
type VarStmt struct {
	Name lexer.Token
	Init Expr
}

func (v *VarStmt) NodeKind() string { return "VarStmt" }
func (v *VarStmt) stmtNode()        {}
func (v *VarStmt) GetSpan() Span    { return TokenSpan(v.Name) }
func (v *VarStmt) String() string {
	if v.Init == nil {
		return fmt.Sprintf("VarStmt(%s)", v.Name.Lexeme)
	}
	return fmt.Sprintf("VarStmt(%s = %s)", v.Name.Lexeme, v.Init.String())
}

type BlockStmt struct {
	S     Span
	Stmts []Stmt
}

func (b *BlockStmt) NodeKind() string { return "BlockStmt" }
func (b *BlockStmt) stmtNode()        {}
func (b *BlockStmt) GetSpan() Span    { return b.S }
func (b *BlockStmt) String() string   { return fmt.Sprintf("Block(%d)", len(b.Stmts)) }

type IfStmt struct {
	S         Span
	Condition Expr
	Then      Stmt
	Else      Stmt // optional
}

func (i *IfStmt) NodeKind() string { return "IfStmt" }
func (i *IfStmt) stmtNode()        {}
func (i *IfStmt) GetSpan() Span    { return i.S }
func (i *IfStmt) String() string {
	if i.Else == nil {
		return fmt.Sprintf("IfStmt(%s, then=%s)", i.Condition.String(), i.Then.String())
	}
	return fmt.Sprintf("IfStmt(%s, then=%s, else=%s)", i.Condition.String(), i.Then.String(), i.Else.String())
}

// WhileStmt is also what `for` loops become after parsing.
type WhileStmt struct {
	S         Span
	Condition Expr
	Body      Stmt
}

func (w *WhileStmt) NodeKind() string { return "WhileStmt" }
func (w *WhileStmt) stmtNode()        {}
func (w *WhileStmt) GetSpan() Span    { return w.S }
func (w *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(%s, body=%s)", w.Condition.String(), w.Body.String())
}

type FunctionDecl struct {
	Name   lexer.Token
	Params []lexer.Token
	Body   []Stmt
}

func (f *FunctionDecl) NodeKind() string { return "FunctionDecl" }
func (f *FunctionDecl) stmtNode()        {}
func (f *FunctionDecl) GetSpan() Span    { return TokenSpan(f.Name) }
func (f *FunctionDecl) String() string {
	return fmt.Sprintf("Function(%s, params=%d, body=%d)", f.Name.Lexeme, len(f.Params), len(f.Body))
}

// ReturnStmt.Value is nil for a bare `return;`.
type ReturnStmt struct {
	Keyword lexer.Token
	Value   Expr
}

func (r *ReturnStmt) NodeKind() string { return "ReturnStmt" }
func (r *ReturnStmt) stmtNode()        {}
func (r *ReturnStmt) GetSpan() Span    { return TokenSpan(r.Keyword) }
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "Return(nil)"
	}
	return fmt.Sprintf("Return(%s)", r.Value.String())
}

type ClassDecl struct {
	Name       lexer.Token
	Superclass *Variable // optional
	Methods    []*FunctionDecl
}

func (c *ClassDecl) NodeKind() string { return "ClassDecl" }
func (c *ClassDecl) stmtNode()        {}
func (c *ClassDecl) GetSpan() Span    { return TokenSpan(c.Name) }
func (c *ClassDecl) String() string {
	if c.Superclass != nil {
		return fmt.Sprintf("Class(%s < %s, methods=%d)", c.Name.Lexeme, c.Superclass.Name.Lexeme, len(c.Methods))
	}
	return fmt.Sprintf("Class(%s, methods=%d)", c.Name.Lexeme, len(c.Methods))
}
