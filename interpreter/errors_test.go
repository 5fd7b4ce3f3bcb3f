package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golox/ast"
)

func TestRuntimeErrorCaretAndStack(t *testing.T) {
	err := RuntimeError{
		File:  "main.lox",
		Span:  ast.Span{Line: 3, Col: 9},
		Msg:   "Division by Zero",
		Line:  "print 1 / 0;",
		Stack: []string{"inner", "outer"},
	}
	want := "Runtime error at main.lox:3:9\n" +
		"  Division by Zero\n" +
		"  3 | print 1 / 0;\n" +
		"              ^\n" +
		"Stack:\n" +
		"  at inner()\n" +
		"  at outer()"
	assert.Equal(t, want, err.Error())
}

func TestRuntimeErrorWithoutSource(t *testing.T) {
	err := RuntimeError{Span: ast.Span{Line: 4, Col: 2}, Msg: "Not a function"}
	assert.Equal(t, "Runtime error at line 4\n  Not a function", err.Error())
}
