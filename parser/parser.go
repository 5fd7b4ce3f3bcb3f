package parser

import (
	"fmt"

	"golox/ast"
	"golox/lexer"
)

// maxArgs caps both call arguments and function parameters.
const maxArgs = 255

// Error is a syntax error. The parser collects them and keeps going.
type Error struct {
	Line  int
	Col   int
	Where string // offending lexeme, empty at end of file
	Msg   string
}

func (e *Error) Error() string {
	if e.Where == "" {
		return fmt.Sprintf("Parse error at end of file: %s", e.Msg)
	}
	return fmt.Sprintf("Parse error at %d:%d near '%s': %s", e.Line, e.Col, e.Where, e.Msg)
}

type Parser struct {
	toks   []lexer.Token
	pos    int
	prev   lexer.Token
	cur    lexer.Token
	errors []*Error
}

func New(toks []lexer.Token) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Type != lexer.EOF {
		line := 1
		if len(toks) > 0 {
			line = toks[len(toks)-1].Line
		}
		toks = append(toks, lexer.Token{Type: lexer.EOF, Line: line})
	}
	return &Parser{toks: toks, cur: toks[0]}
}

// Parse builds the program from toks. Statements that failed to parse are
// left out and reported in the error slice.
func Parse(toks []lexer.Token) ([]ast.Stmt, []*Error) {
	return New(toks).ParseProgram()
}

func (p *Parser) next() {
	p.prev = p.cur
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.cur = p.toks[p.pos]
}

func (p *Parser) expect(tt lexer.TokenType, msg string) (lexer.Token, error) {
	if p.cur.Type != tt {
		return lexer.Token{}, p.errAt(p.cur, msg)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func (p *Parser) ParseProgram() ([]ast.Stmt, []*Error) {
	stmts := []ast.Stmt{}
	for p.cur.Type != lexer.EOF {
		if stmt := p.parseDeclaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.errors
}

// parseDeclaration is the recovery point: a failed declaration is recorded
// and the parser skips to the next statement boundary.
func (p *Parser) parseDeclaration() ast.Stmt {
	var (
		stmt ast.Stmt
		err  error
	)
	switch p.cur.Type {
	case lexer.CLASS:
		stmt, err = p.parseClassDecl()
	case lexer.FUN:
		p.next()
		stmt, err = p.parseFunction("function")
	case lexer.VAR:
		stmt, err = p.parseVarDecl()
	default:
		stmt, err = p.parseStmt()
	}
	if err != nil {
		p.record(err)
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) record(err error) {
	if pe, ok := err.(*Error); ok {
		p.errors = append(p.errors, pe)
		return
	}
	p.errors = append(p.errors, &Error{Line: p.cur.Line, Col: p.cur.Col, Where: p.cur.Lexeme, Msg: err.Error()})
}

// synchronize discards tokens through the next ';' or up to the next token
// that starts a statement.
func (p *Parser) synchronize() {
	p.next()
	for p.cur.Type != lexer.EOF {
		if p.prev.Type == lexer.SEMICOLON {
			return
		}
		switch p.cur.Type {
		case lexer.CLASS, lexer.FUN, lexer.VAR, lexer.FOR, lexer.IF, lexer.WHILE, lexer.PRINT, lexer.RETURN:
			return
		}
		p.next()
	}
}

// classDecl = "class" IDENT ( "<" IDENT )? "{" function* "}"
func (p *Parser) parseClassDecl() (ast.Stmt, error) {
	p.next()
	nameTok, err := p.expect(lexer.IDENT, "Expect class name")
	if err != nil {
		return nil, err
	}

	var super *ast.Variable
	if p.cur.Type == lexer.LT {
		p.next()
		superTok, err := p.expect(lexer.IDENT, "Expect superclass name")
		if err != nil {
			return nil, err
		}
		super = &ast.Variable{Name: superTok}
	}

	if _, err := p.expect(lexer.LBRACE, "Expect '{' before class body"); err != nil {
		return nil, err
	}

	methods := []*ast.FunctionDecl{}
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		m, err := p.parseFunction("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}

	if _, err := p.expect(lexer.RBRACE, "Expect '}' after class body"); err != nil {
		return nil, err
	}
	return &ast.ClassDecl{Name: nameTok, Superclass: super, Methods: methods}, nil
}

// function = IDENT "(" params? ")" block
func (p *Parser) parseFunction(kind string) (*ast.FunctionDecl, error) {
	nameTok, err := p.expect(lexer.IDENT, fmt.Sprintf("Expect %s name", kind))
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, fmt.Sprintf("Expect '(' after %s name", kind)); err != nil {
		return nil, err
	}

	params := []lexer.Token{}
	if p.cur.Type != lexer.RPAREN {
		for {
			if len(params) >= maxArgs {
				p.record(p.errAt(p.cur, fmt.Sprintf("Can't have more than %d parameters", maxArgs)))
			}
			param, err := p.expect(lexer.IDENT, "Expect parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param)

			if p.cur.Type == lexer.COMMA {
				p.next()
				continue
			}
			break
		}
	}

	if _, err := p.expect(lexer.RPAREN, "Expect ')' after parameters"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, fmt.Sprintf("Expect '{' before %s body", kind)); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Name: nameTok, Params: params, Body: body}, nil
}

// varDecl = "var" IDENT ( "=" expr )? ";"
func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	p.next()
	nameTok, err := p.expect(lexer.IDENT, "Expect variable name")
	if err != nil {
		return nil, err
	}

	var init ast.Expr
	if p.cur.Type == lexer.ASSIGN {
		p.next()
		init, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after variable declaration"); err != nil {
		return nil, err
	}
	return &ast.VarStmt{Name: nameTok, Init: init}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur.Type {
	case lexer.FOR:
		return p.parseFor()
	case lexer.IF:
		return p.parseIf()
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.LBRACE:
		lbTok := p.cur
		p.next()
		stmts, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{S: ast.TokenSpan(lbTok), Stmts: stmts}, nil
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	printTok := p.cur
	p.next()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after value"); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{S: ast.TokenSpan(printTok), Value: expr}, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	startTok := p.cur
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after expression"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{S: ast.TokenSpan(startTok), Expr: expr}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	retTok := p.cur
	p.next()
	var value ast.Expr
	if p.cur.Type != lexer.SEMICOLON {
		var err error
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after return value"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Keyword: retTok, Value: value}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	ifTok := p.cur
	p.next()
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}

	thenStmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	var elseStmt ast.Stmt
	if p.cur.Type == lexer.ELSE {
		p.next()
		elseStmt, err = p.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{S: ast.TokenSpan(ifTok), Condition: cond, Then: thenStmt, Else: elseStmt}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	wTok := p.cur
	p.next()
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{S: ast.TokenSpan(wTok), Condition: cond, Body: body}, nil
}

// parseCondition reads "(" expr ")".
func (p *Parser) parseCondition(keyword string) (ast.Expr, error) {
	if _, err := p.expect(lexer.LPAREN, fmt.Sprintf("Expect '(' after '%s'", keyword)); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, fmt.Sprintf("Expect ')' after %s condition", keyword)); err != nil {
		return nil, err
	}
	return cond, nil
}

// forStmt = "for" "(" ( varDecl | exprStmt | ";" ) expr? ";" expr? ")" stmt
//
// There is no for node: the loop becomes
//
//	{ init; while (cond) { body; incr; } }
func (p *Parser) parseFor() (ast.Stmt, error) {
	forTok := p.cur
	p.next()
	if _, err := p.expect(lexer.LPAREN, "Expect '(' after 'for'"); err != nil {
		return nil, err
	}

	var (
		init ast.Stmt
		err  error
	)
	switch p.cur.Type {
	case lexer.SEMICOLON:
		p.next()
	case lexer.VAR:
		init, err = p.parseVarDecl()
	default:
		init, err = p.parseExprStmt()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if p.cur.Type != lexer.SEMICOLON {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.SEMICOLON, "Expect ';' after loop condition"); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if p.cur.Type != lexer.RPAREN {
		incr, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.RPAREN, "Expect ')' after for clauses"); err != nil {
		return nil, err
	}

	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	span := ast.TokenSpan(forTok)
	if incr != nil {
		body = &ast.BlockStmt{S: span, Stmts: []ast.Stmt{
			body,
			&ast.ExprStmt{S: incr.GetSpan(), Expr: incr},
		}}
	}
	if cond == nil {
		cond = &ast.Literal{Token: lexer.Token{Type: lexer.TRUE, Lexeme: "true", Line: forTok.Line, Col: forTok.Col}}
	}
	var loop ast.Stmt = &ast.WhileStmt{S: span, Condition: cond, Body: body}
	if init != nil {
		loop = &ast.BlockStmt{S: span, Stmts: []ast.Stmt{init, loop}}
	}
	return loop, nil
}

// block = "{" declaration* "}" with the "{" already consumed.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	block := []ast.Stmt{}
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		if stmt := p.parseDeclaration(); stmt != nil {
			block = append(block, stmt)
		}
	}
	if _, err := p.expect(lexer.RBRACE, "Expect '}' after block"); err != nil {
		return nil, err
	}
	return block, nil
}

// expr = assignment
func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseAssignment() }

// assignment = ( call "." )? IDENT "=" assignment | or
func (p *Parser) parseAssignment() (ast.Expr, error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.ASSIGN {
		return expr, nil
	}

	eqTok := p.cur
	p.next()
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}

	switch target := expr.(type) {
	case *ast.Variable:
		return &ast.Assign{Name: target.Name, Value: value}, nil
	case *ast.Get:
		return &ast.Set{Object: target.Object, Name: target.Name, Value: value}, nil
	}
	// Reported, but the statement still parses.
	p.record(p.errAt(eqTok, "Invalid assignment target"))
	return expr, nil
}

// or = and ( "or" and )*
func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.OR {
		opTok := p.cur
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Op: opTok, Right: right}
	}
	return left, nil
}

// and = equality ( "and" equality )*
func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.AND {
		opTok := p.cur
		p.next()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Op: opTok, Right: right}
	}
	return left, nil
}

// binaryLevel parses operand ( op operand )* for one precedence level.
func (p *Parser) binaryLevel(operand func() (ast.Expr, error), ops ...lexer.TokenType) (ast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.isOneOf(p.cur.Type, ops...) {
		opTok := p.cur
		p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: opTok, Right: right}
	}
	return left, nil
}

func (p *Parser) isOneOf(t lexer.TokenType, list ...lexer.TokenType) bool {
	for _, x := range list {
		if t == x {
			return true
		}
	}
	return false
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.binaryLevel(p.parseComparison, lexer.EQ, lexer.NEQ)
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.binaryLevel(p.parseTerm, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE)
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	return p.binaryLevel(p.parseFactor, lexer.PLUS, lexer.MINUS)
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	return p.binaryLevel(p.parseUnary, lexer.STAR, lexer.SLASH)
}

// unary = ( "!" | "-" ) unary | call
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.cur.Type == lexer.BANG || p.cur.Type == lexer.MINUS {
		opTok := p.cur
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: opTok, Right: right}, nil
	}
	return p.parseCall()
}

// call = primary ( "(" args? ")" | "." IDENT )*
func (p *Parser) parseCall() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Type {
		case lexer.LPAREN:
			p.next()
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case lexer.DOT:
			p.next()
			nameTok, err := p.expect(lexer.IDENT, "Expect property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.Get{Object: expr, Name: nameTok}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	args := []ast.Expr{}
	if p.cur.Type != lexer.RPAREN {
		for {
			if len(args) >= maxArgs {
				p.record(p.errAt(p.cur, fmt.Sprintf("Can't have more than %d arguments", maxArgs)))
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.cur.Type == lexer.COMMA {
				p.next()
				continue
			}
			break
		}
	}
	paren, err := p.expect(lexer.RPAREN, "Expect ')' after arguments")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.cur.Type {
	case lexer.NUMBER, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.NIL:
		tok := p.cur
		p.next()
		return &ast.Literal{Token: tok}, nil

	case lexer.THIS:
		tok := p.cur
		p.next()
		return &ast.This{Keyword: tok}, nil

	case lexer.SUPER:
		kwTok := p.cur
		p.next()
		if _, err := p.expect(lexer.DOT, "Expect '.' after 'super'"); err != nil {
			return nil, err
		}
		method, err := p.expect(lexer.IDENT, "Expect superclass method name")
		if err != nil {
			return nil, err
		}
		return &ast.Super{Keyword: kwTok, Method: method}, nil

	case lexer.IDENT:
		tok := p.cur
		p.next()
		return &ast.Variable{Name: tok}, nil

	case lexer.LPAREN:
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "Expect ')' after expression"); err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: expr}, nil

	default:
		return nil, p.errAt(p.cur, "Expect expression")
	}
}

func (p *Parser) errAt(tok lexer.Token, msg string) *Error {
	if tok.Type == lexer.EOF {
		return &Error{Line: tok.Line, Col: tok.Col, Msg: msg}
	}
	return &Error{Line: tok.Line, Col: tok.Col, Where: tok.Lexeme, Msg: msg}
}
