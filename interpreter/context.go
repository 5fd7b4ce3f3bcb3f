package interpreter

import (
	"io"
	"log/slog"
)

// SetSource replaces the source used for error context.
// The REPL calls it per entry so carets point into the right text.
func (i *Interpreter) SetSource(filename string, source string) {
	i.filename = filename
	i.lines = splitLinesPreserve(source)
}

// SetOutput redirects print statements.
func (i *Interpreter) SetOutput(w io.Writer) { i.out = w }

func (i *Interpreter) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	i.log = l
}
