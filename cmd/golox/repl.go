package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"golox/internal/config"
	"golox/interpreter"
)

type repl struct {
	cfg     config.Config
	log     *slog.Logger
	out     io.Writer
	errOut  io.Writer
	session *interpreter.Interpreter

	buf   strings.Builder
	chunk int

	pasteMode bool
	pasteBuf  strings.Builder
}

func newREPL(cfg config.Config, log *slog.Logger, out, errOut io.Writer) *repl {
	session := interpreter.New()
	session.SetLogger(log)
	session.SetOutput(out)
	return &repl{cfg: cfg, log: log, out: out, errOut: errOut, session: session}
}

func runREPL(cfg config.Config, log *slog.Logger, out, errOut io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cfg.Prompt,
		HistoryFile:       cfg.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            out,
		Stderr:            errOut,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	r := newREPL(cfg, log, out, errOut)
	if cfg.Banner {
		fmt.Fprintln(out, "golox REPL. :help for commands, :quit to exit.")
		fmt.Fprintln(out, "Input continues while a { or ( is left open.")
		fmt.Fprintln(out)
	}

	for {
		rl.SetPrompt(r.prompt())

		line, err := rl.Readline()

		// Ctrl+C
		if err == readline.ErrInterrupt {
			r.interrupt()
			continue
		}
		// Ctrl+D
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		if quit := r.feed(line); quit {
			return nil
		}
	}
}

func (r *repl) prompt() string {
	switch {
	case r.pasteMode:
		return "paste> "
	case r.buf.Len() > 0:
		return r.cfg.ContinuationPrompt
	default:
		return r.cfg.Prompt
	}
}

func (r *repl) interrupt() {
	if r.pasteMode {
		r.pasteMode = false
		r.pasteBuf.Reset()
		fmt.Fprintln(r.out, "^C (paste cancelled)")
		return
	}
	if r.buf.Len() > 0 {
		r.buf.Reset()
		fmt.Fprintln(r.out, "^C (buffer cleared)")
	}
}

// feed handles one line of input and reports whether the session should end.
func (r *repl) feed(line string) bool {
	trim := strings.TrimSpace(line)

	if r.pasteMode {
		switch trim {
		case ".", ":endpaste":
			src := r.pasteBuf.String()
			r.pasteBuf.Reset()
			r.pasteMode = false
			if strings.TrimSpace(src) == "" {
				fmt.Fprintln(r.out, "(paste buffer empty)")
				return false
			}
			r.eval(src)
		case ":cancel":
			r.pasteBuf.Reset()
			r.pasteMode = false
			fmt.Fprintln(r.out, "(paste cancelled)")
		default:
			r.pasteBuf.WriteString(line)
			r.pasteBuf.WriteString("\n")
		}
		return false
	}

	// Commands only when not buffering a block.
	if r.buf.Len() == 0 && strings.HasPrefix(trim, ":") {
		quit, err := r.command(trim)
		if err != nil {
			fmt.Fprintln(r.errOut, err)
		}
		return quit
	}

	r.buf.WriteString(line)
	r.buf.WriteString("\n")

	src := r.buf.String()
	if incomplete(src) {
		return false
	}
	r.buf.Reset()
	if strings.TrimSpace(src) == "" {
		return false
	}
	r.eval(src)
	return false
}

// eval runs one chunk in the session. Errors are printed and the session
// carries on.
func (r *repl) eval(src string) {
	r.chunk++
	name := fmt.Sprintf("<repl:%d>", r.chunk)
	if err := compileAndRunWith(r.log, r.session, name, src); err != nil {
		fmt.Fprintln(r.errOut, err)
	}
}

func (r *repl) command(cmd string) (bool, error) {
	switch {
	case cmd == ":q" || cmd == ":quit" || cmd == ":exit":
		return true, nil

	case cmd == ":h" || cmd == ":help":
		fmt.Fprintln(r.out, "Commands:")
		fmt.Fprintln(r.out, "  :help              Show this help")
		fmt.Fprintln(r.out, "  :quit              Exit the REPL")
		fmt.Fprintln(r.out, "  :pwd               Print current directory")
		fmt.Fprintln(r.out, "  :cd <dir>          Change directory")
		fmt.Fprintln(r.out, "  :load <file>       Run a script in this session")
		fmt.Fprintln(r.out, "  :reset             Clear buffered multi-line input")
		fmt.Fprintln(r.out, "  :clear             Clear the screen")
		fmt.Fprintln(r.out, "  :paste             Start paste mode (end with '.' or :endpaste)")
		fmt.Fprintln(r.out, "  :vars              Show global variables")
		fmt.Fprintln(r.out, "  :funcs             Show global functions")
		fmt.Fprintln(r.out, "  :classes           Show global classes")
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, "Paste mode controls:")
		fmt.Fprintln(r.out, "  .                  End + run pasted program")
		fmt.Fprintln(r.out, "  :endpaste          End + run pasted program")
		fmt.Fprintln(r.out, "  :cancel            Cancel paste without running")
		return false, nil

	case cmd == ":pwd":
		cwd, err := os.Getwd()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, cwd)
		return false, nil

	case cmd == ":cd" || strings.HasPrefix(cmd, ":cd "):
		dir := strings.TrimSpace(strings.TrimPrefix(cmd, ":cd"))
		if dir == "" {
			return false, errors.New("usage: :cd <dir>")
		}
		return false, errors.Wrapf(os.Chdir(dir), "cd %s", dir)

	case cmd == ":load" || strings.HasPrefix(cmd, ":load "):
		path := strings.TrimSpace(strings.TrimPrefix(cmd, ":load"))
		if path == "" {
			return false, errors.New("usage: :load <file>")
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return false, errors.Wrapf(err, "failed to read %s", path)
		}
		return false, compileAndRunWith(r.log, r.session, filepath.Base(path), string(b))

	case cmd == ":reset":
		r.buf.Reset()
		fmt.Fprintln(r.out, "(buffer cleared)")
		return false, nil

	case cmd == ":clear":
		fmt.Fprint(r.out, "\033[2J\033[H")
		return false, nil

	case cmd == ":paste":
		r.buf.Reset()
		r.pasteBuf.Reset()
		r.pasteMode = true
		fmt.Fprintln(r.out, "(paste mode: end with '.' or :endpaste, cancel with :cancel)")
		return false, nil

	case cmd == ":vars":
		globs := r.session.GlobalsSnapshot()
		keys := make([]string, 0, len(globs))
		for k := range globs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(r.out, "%s = %s\n", k, globs[k].ToString())
		}
		return false, nil

	case cmd == ":funcs":
		r.list(r.session.FuncNames(), "(no functions)")
		return false, nil

	case cmd == ":classes":
		r.list(r.session.ClassNames(), "(no classes)")
		return false, nil

	default:
		fmt.Fprintln(r.out, "Unknown command. Try :help")
		return false, nil
	}
}

func (r *repl) list(names []string, empty string) {
	if len(names) == 0 {
		fmt.Fprintln(r.out, empty)
		return
	}
	for _, n := range names {
		fmt.Fprintln(r.out, n)
	}
}

// incomplete reports whether src leaves a brace, a paren or a string open.
// Braces inside strings and // comments don't count. A surplus of closers
// is left for the parser to report.
func incomplete(src string) bool {
	depth := 0
	inString := false
	runes := []rune(src)
	for idx := 0; idx < len(runes); idx++ {
		c := runes[idx]
		if inString {
			if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '/':
			if idx+1 < len(runes) && runes[idx+1] == '/' {
				for idx < len(runes) && runes[idx] != '\n' {
					idx++
				}
			}
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		}
	}
	return inString || depth > 0
}
