package interpreter

import (
	"fmt"

	"golox/ast"
	"golox/lexer"
)

// Environment is one lexical scope. The enclosing link is fixed at
// construction and only ever points outward, so chains never form cycles.
// Closures keep their defining Environment alive by holding a pointer to it.
type Environment struct {
	values    map[string]Value
	enclosing *Environment
}

func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{values: map[string]Value{}, enclosing: enclosing}
}

// Define binds name in this scope, replacing any existing binding here.
func (e *Environment) Define(name string, v Value) {
	e.values[name] = v
}

// Get resolves name from this scope outward.
func (e *Environment) Get(name lexer.Token) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name.Lexeme]; ok {
			return v, nil
		}
	}
	return Value{}, undefinedVar(name)
}

// Assign updates the nearest scope that defines name. It never declares.
func (e *Environment) Assign(name lexer.Token, v Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = v
			return nil
		}
	}
	return undefinedVar(name)
}

func (e *Environment) Enclosing() *Environment { return e.enclosing }

func undefinedVar(name lexer.Token) error {
	return RuntimeError{Span: ast.TokenSpan(name), Msg: fmt.Sprintf("Undefined variable %q", name.Lexeme)}
}
