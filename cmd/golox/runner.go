package main

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"golox/interpreter"
	"golox/lexer"
	"golox/parser"
)

// sysexits codes used by the CLI.
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitNoInput  = 66
	exitSoftware = 70
	exitConfig   = 78
)

// compileError carries every lex and parse error of one source chunk.
// Nothing runs when a chunk has any of them.
type compileError struct {
	errs []error
}

func newCompileError(lexErrs []*lexer.Error, parseErrs []*parser.Error) *compileError {
	ce := &compileError{errs: make([]error, 0, len(lexErrs)+len(parseErrs))}
	for _, e := range lexErrs {
		ce.errs = append(ce.errs, e)
	}
	for _, e := range parseErrs {
		ce.errs = append(ce.errs, e)
	}
	return ce
}

func (e *compileError) Error() string   { return errors.Join(e.errs...).Error() }
func (e *compileError) Unwrap() []error { return e.errs }

// compileAndRun is used for script execution (fresh interpreter each time).
func compileAndRun(log *slog.Logger, out io.Writer, filename, src string) error {
	in := interpreter.NewWithSource(filename, src)
	in.SetLogger(log)
	in.SetOutput(out)
	return compileAndRunWith(log, in, filename, src)
}

// compileAndRunWith runs code using an existing interpreter instance.
// This is what makes the REPL stateful across inputs.
func compileAndRunWith(log *slog.Logger, in *interpreter.Interpreter, filename, src string) error {
	start := time.Now()
	toks, lexErrs := lexer.Scan(src)
	stmts, parseErrs := parser.Parse(toks)
	log.Debug("compiled",
		slog.String("file", filename),
		slog.Int("tokens", len(toks)),
		slog.Int("stmts", len(stmts)),
		slog.Duration("elapsed", time.Since(start)))

	if len(lexErrs) > 0 || len(parseErrs) > 0 {
		return newCompileError(lexErrs, parseErrs)
	}

	in.SetSource(filename, src)

	start = time.Now()
	err := in.Interpret(stmts)
	log.Debug("interpreted",
		slog.String("file", filename),
		slog.Bool("ok", err == nil),
		slog.Duration("elapsed", time.Since(start)))
	return err
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *compileError
	if errors.As(err, &ce) {
		return exitDataErr
	}
	return exitSoftware
}
