// interpreter/interpreter.go
package interpreter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golox/ast"
	"golox/lexer"
)

// signal is the control outcome of executing a statement: either carry on
// with the next one, or unwind to the nearest function call with value.
type signal struct {
	returning bool
	value     Value
}

var proceed = signal{}

type Interpreter struct {
	globals *Environment
	env     *Environment

	out io.Writer
	log *slog.Logger

	filename string
	lines    []string

	callStack []string
}

func NewWithSource(filename string, source string) *Interpreter {
	globals := NewEnvironment(nil)
	i := &Interpreter{
		globals:   globals,
		env:       globals,
		out:       os.Stdout,
		log:       slog.Default(),
		filename:  filename,
		lines:     splitLinesPreserve(source),
		callStack: []string{},
	}
	i.defineNatives()
	return i
}

func New() *Interpreter { return NewWithSource("", "") }

func (i *Interpreter) defineNatives() {
	i.globals.Define("clock", NativeValue(NewNativeFunction("clock", 0,
		func(_ *Interpreter, _ []Value) (Value, error) {
			return NumberValue(float64(time.Now().UnixMilli())), nil
		})))
}

func splitLinesPreserve(src string) []string {
	if src == "" {
		return []string{}
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return strings.Split(src, "\n")
}

// Interpret executes stmts in order and stops at the first runtime error.
// Output already printed is not undone.
func (i *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if _, err := i.execStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) pushFrame(name string) {
	i.callStack = append(i.callStack, name)
	if i.log.Enabled(context.Background(), slog.LevelDebug) {
		i.log.Debug("call", slog.String("fn", name), slog.Int("depth", len(i.callStack)))
	}
}

func (i *Interpreter) popFrame() {
	i.callStack = i.callStack[:len(i.callStack)-1]
}

// executeBlock runs stmts with env active and restores the previous scope
// on every exit path, including errors.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) (signal, error) {
	prev := i.env
	i.env = env
	defer func() { i.env = prev }()

	for _, s := range stmts {
		sig, err := i.execStmt(s)
		if err != nil || sig.returning {
			return sig, err
		}
	}
	return proceed, nil
}

func (i *Interpreter) execStmt(s ast.Stmt) (signal, error) {
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(stmt.Expr)
		return proceed, err

	case *ast.PrintStmt:
		val, err := i.evalExpr(stmt.Value)
		if err != nil {
			return proceed, err
		}
		fmt.Fprintln(i.out, val.ToString())
		return proceed, nil

	case *ast.VarStmt:
		val := NilValue()
		if stmt.Init != nil {
			v, err := i.evalExpr(stmt.Init)
			if err != nil {
				return proceed, err
			}
			val = v
		}
		i.env.Define(stmt.Name.Lexeme, val)
		return proceed, nil

	case *ast.BlockStmt:
		return i.executeBlock(stmt.Stmts, NewEnvironment(i.env))

	case *ast.IfStmt:
		cond, err := i.evalExpr(stmt.Condition)
		if err != nil {
			return proceed, err
		}
		if cond.Truthy() {
			return i.execStmt(stmt.Then)
		}
		if stmt.Else != nil {
			return i.execStmt(stmt.Else)
		}
		return proceed, nil

	case *ast.WhileStmt:
		for {
			cond, err := i.evalExpr(stmt.Condition)
			if err != nil {
				return proceed, err
			}
			if !cond.Truthy() {
				return proceed, nil
			}
			sig, err := i.execStmt(stmt.Body)
			if err != nil || sig.returning {
				return sig, err
			}
		}

	case *ast.FunctionDecl:
		i.env.Define(stmt.Name.Lexeme, FunctionValue(NewFunction(stmt, i.env)))
		return proceed, nil

	case *ast.ReturnStmt:
		if len(i.callStack) == 0 {
			return proceed, i.runtimeErr(stmt.GetSpan(), "Can't return from top-level code")
		}
		val := NilValue()
		if stmt.Value != nil {
			v, err := i.evalExpr(stmt.Value)
			if err != nil {
				return proceed, err
			}
			val = v
		}
		return signal{returning: true, value: val}, nil

	case *ast.ClassDecl:
		return proceed, i.execClass(stmt)

	default:
		span, ok := ast.SpanOf(s)
		if !ok {
			span = ast.Span{}
		}
		return proceed, i.runtimeErrf(span, "Unsupported statement %s", s.NodeKind())
	}
}

// execClass declares the name first so methods can refer to the class,
// then fills in the class and publishes it under the same name.
func (i *Interpreter) execClass(stmt *ast.ClassDecl) error {
	name := stmt.Name.Lexeme
	i.env.Define(name, NilValue())

	var super *Class
	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == name {
			return i.runtimeErr(stmt.Superclass.GetSpan(), "A class can't inherit from itself")
		}
		sv, err := i.evalExpr(stmt.Superclass)
		if err != nil {
			return err
		}
		if sv.Kind != ValClass {
			return i.runtimeErr(stmt.Superclass.GetSpan(), "Superclass must be a class")
		}
		super = sv.Class
	}

	// Without a superclass, super is bound to nil to shadow any outer binding.
	methodEnv := NewEnvironment(i.env)
	if super != nil {
		methodEnv.Define("super", ClassValue(super))
	} else {
		methodEnv.Define("super", NilValue())
	}

	methods := make(map[string]*Function, len(stmt.Methods))
	for _, m := range stmt.Methods {
		methods[m.Name.Lexeme] = NewFunction(m, methodEnv)
	}

	cls := &Class{Name: name, Superclass: super, Methods: methods}
	i.env.Define(name, ClassValue(cls))
	i.log.Debug("class declared", slog.String("name", name), slog.Int("methods", len(methods)))
	return nil
}

// ---------- Expressions ----------

func (i *Interpreter) evalExpr(e ast.Expr) (Value, error) {
	switch expr := e.(type) {
	case *ast.Literal:
		return i.evalLiteral(expr)

	case *ast.Grouping:
		return i.evalExpr(expr.Inner)

	case *ast.Variable:
		v, err := i.env.Get(expr.Name)
		if err != nil {
			return Value{}, i.withContext(err)
		}
		return v, nil

	case *ast.Assign:
		val, err := i.evalExpr(expr.Value)
		if err != nil {
			return Value{}, err
		}
		if err := i.env.Assign(expr.Name, val); err != nil {
			return Value{}, i.withContext(err)
		}
		return val, nil

	case *ast.Logical:
		left, err := i.evalExpr(expr.Left)
		if err != nil {
			return Value{}, err
		}
		if expr.Op.Type == lexer.OR {
			if left.Truthy() {
				return left, nil
			}
		} else if !left.Truthy() {
			return left, nil
		}
		return i.evalExpr(expr.Right)

	case *ast.Unary:
		right, err := i.evalExpr(expr.Right)
		if err != nil {
			return Value{}, err
		}
		switch expr.Op.Type {
		case lexer.BANG:
			return BoolValue(!right.Truthy()), nil
		case lexer.MINUS:
			if right.Kind != ValNumber {
				return Value{}, i.runtimeErrf(expr.GetSpan(), "Operand of '-' must be a number, got %s", right.Kind)
			}
			return NumberValue(-right.Number), nil
		default:
			return Value{}, i.runtimeErrf(expr.GetSpan(), "Unknown unary operator %q", expr.Op.Lexeme)
		}

	case *ast.Binary:
		return i.evalBinary(expr)

	case *ast.Call:
		return i.evalCall(expr)

	case *ast.Get:
		obj, err := i.evalExpr(expr.Object)
		if err != nil {
			return Value{}, err
		}
		if obj.Kind != ValInstance {
			return Value{}, i.runtimeErr(expr.GetSpan(), "Only instances have properties")
		}
		v, ok := obj.Inst.Get(expr.Name.Lexeme)
		if !ok {
			return Value{}, i.runtimeErrf(expr.GetSpan(), "Property %q does not exist", expr.Name.Lexeme)
		}
		return v, nil

	case *ast.Set:
		obj, err := i.evalExpr(expr.Object)
		if err != nil {
			return Value{}, err
		}
		if obj.Kind != ValInstance {
			return Value{}, i.runtimeErr(expr.GetSpan(), "Only instances have fields")
		}
		val, err := i.evalExpr(expr.Value)
		if err != nil {
			return Value{}, err
		}
		obj.Inst.Set(expr.Name.Lexeme, val)
		return val, nil

	case *ast.This:
		v, err := i.env.Get(expr.Keyword)
		if err != nil {
			return Value{}, i.runtimeErr(expr.GetSpan(), "Can't use 'this' outside of a method")
		}
		return v, nil

	case *ast.Super:
		return i.evalSuper(expr)

	default:
		span, ok := ast.SpanOf(e)
		if !ok {
			span = ast.Span{}
		}
		return Value{}, i.runtimeErrf(span, "Unsupported expression %s", e.NodeKind())
	}
}

func (i *Interpreter) evalLiteral(expr *ast.Literal) (Value, error) {
	tok := expr.Token
	switch tok.Type {
	case lexer.NUMBER:
		n, ok := tok.Literal.(float64)
		if !ok {
			return Value{}, i.runtimeErrf(expr.GetSpan(), "Invalid number %q", tok.Lexeme)
		}
		return NumberValue(n), nil
	case lexer.STRING:
		s, ok := tok.Literal.(string)
		if !ok {
			return Value{}, i.runtimeErrf(expr.GetSpan(), "Invalid string %s", tok.Lexeme)
		}
		return StringValue(s), nil
	case lexer.TRUE:
		return BoolValue(true), nil
	case lexer.FALSE:
		return BoolValue(false), nil
	case lexer.NIL:
		return NilValue(), nil
	default:
		return Value{}, i.runtimeErrf(expr.GetSpan(), "Unexpected literal %s", tok.Type)
	}
}

func (i *Interpreter) evalBinary(expr *ast.Binary) (Value, error) {
	left, err := i.evalExpr(expr.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := i.evalExpr(expr.Right)
	if err != nil {
		return Value{}, err
	}

	switch expr.Op.Type {
	case lexer.EQ:
		return BoolValue(valuesEqual(left, right)), nil
	case lexer.NEQ:
		return BoolValue(!valuesEqual(left, right)), nil

	case lexer.PLUS:
		if left.Kind == ValNumber && right.Kind == ValNumber {
			return NumberValue(left.Number + right.Number), nil
		}
		// A number on only one side is rejected; anything else concatenates.
		if left.Kind == ValNumber || right.Kind == ValNumber {
			return Value{}, i.runtimeErrf(expr.GetSpan(), "Operator '+' can't combine %s and %s", left.Kind, right.Kind)
		}
		return StringValue(left.ToString() + right.ToString()), nil
	}

	if left.Kind != ValNumber || right.Kind != ValNumber {
		return Value{}, i.runtimeErrf(expr.GetSpan(), "Operator %q requires numbers, got %s and %s", expr.Op.Lexeme, left.Kind, right.Kind)
	}

	switch expr.Op.Type {
	case lexer.MINUS:
		return NumberValue(left.Number - right.Number), nil
	case lexer.STAR:
		return NumberValue(left.Number * right.Number), nil
	case lexer.SLASH:
		if right.Number == 0 {
			return Value{}, i.runtimeErr(expr.GetSpan(), "Division by Zero")
		}
		return NumberValue(left.Number / right.Number), nil
	case lexer.LT:
		return BoolValue(left.Number < right.Number), nil
	case lexer.GT:
		return BoolValue(left.Number > right.Number), nil
	case lexer.LTE:
		return BoolValue(left.Number <= right.Number), nil
	case lexer.GTE:
		return BoolValue(left.Number >= right.Number), nil
	}
	return Value{}, i.runtimeErrf(expr.GetSpan(), "Unknown operator %q", expr.Op.Lexeme)
}

func (i *Interpreter) evalCall(call *ast.Call) (Value, error) {
	callee, err := i.evalExpr(call.Callee)
	if err != nil {
		return Value{}, err
	}

	args := make([]Value, 0, len(call.Args))
	for _, a := range call.Args {
		v, err := i.evalExpr(a)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v)
	}

	fn, ok := callee.Callable()
	if !ok {
		return Value{}, i.runtimeErr(call.GetSpan(), "Not a function")
	}
	if len(args) != fn.Arity() {
		return Value{}, i.runtimeErrf(call.GetSpan(), "Expected %d arguments but got %d", fn.Arity(), len(args))
	}
	return fn.Call(i, args)
}

// evalSuper resolves a method starting at the superclass of the class whose
// method is running, bound to the current receiver.
func (i *Interpreter) evalSuper(expr *ast.Super) (Value, error) {
	sv, err := i.env.Get(expr.Keyword)
	if err != nil || sv.Kind != ValClass {
		return Value{}, i.runtimeErr(expr.GetSpan(), "Can't use 'super' in a class with no superclass")
	}
	this, err := i.env.Get(lexer.Token{Type: lexer.THIS, Lexeme: "this", Line: expr.Keyword.Line, Col: expr.Keyword.Col})
	if err != nil || this.Kind != ValInstance {
		return Value{}, i.runtimeErr(expr.GetSpan(), "Can't use 'super' outside of a method")
	}
	method, ok := sv.Class.FindMethod(expr.Method.Lexeme)
	if !ok {
		return Value{}, i.runtimeErrf(ast.TokenSpan(expr.Method), "Property %q does not exist", expr.Method.Lexeme)
	}
	return FunctionValue(method.bind(this.Inst)), nil
}
