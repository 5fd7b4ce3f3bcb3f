package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"golox/ast"
)

// RuntimeError aborts interpretation. File, Line and Stack are filled in by
// the interpreter that raised it.
type RuntimeError struct {
	File  string
	Span  ast.Span
	Msg   string
	Line  string
	Stack []string
}

func (e RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Runtime error at %s\n  %s", e.location(), e.Msg)
	e.writeSnippet(&b)
	for idx, fn := range e.Stack {
		if idx == 0 {
			b.WriteString("\nStack:")
		}
		fmt.Fprintf(&b, "\n  at %s()", fn)
	}
	return b.String()
}

// location is file:line:col when the position is known, else "line N".
func (e RuntimeError) location() string {
	if e.File == "" || e.Span.Line <= 0 || e.Span.Col <= 0 {
		return fmt.Sprintf("line %d", e.Span.Line)
	}
	return fmt.Sprintf("%s:%d:%d", e.File, e.Span.Line, e.Span.Col)
}

// writeSnippet appends the offending source line and a caret under Col.
func (e RuntimeError) writeSnippet(b *strings.Builder) {
	if e.Line == "" || e.Span.Line <= 0 {
		return
	}
	gutter := fmt.Sprintf("  %d | ", e.Span.Line)
	fmt.Fprintf(b, "\n%s%s\n%*s^", gutter, e.Line, len(gutter)+max(e.Span.Col-1, 0), "")
}

func (i *Interpreter) runtimeErr(span ast.Span, msg string) error {
	lineText := ""
	if span.Line > 0 && span.Line-1 < len(i.lines) {
		lineText = i.lines[span.Line-1]
	}

	stack := make([]string, 0, len(i.callStack))
	for idx := len(i.callStack) - 1; idx >= 0; idx-- {
		stack = append(stack, i.callStack[idx])
	}

	return RuntimeError{
		File:  i.filename,
		Span:  span,
		Msg:   msg,
		Line:  lineText,
		Stack: stack,
	}
}

func (i *Interpreter) runtimeErrf(span ast.Span, format string, args ...any) error {
	return i.runtimeErr(span, fmt.Sprintf(format, args...))
}

// withContext attaches source and stack context to a bare RuntimeError
// coming from an Environment.
func (i *Interpreter) withContext(err error) error {
	var re RuntimeError
	if errors.As(err, &re) && re.File == "" && re.Line == "" && re.Stack == nil {
		return i.runtimeErr(re.Span, re.Msg)
	}
	return err
}
