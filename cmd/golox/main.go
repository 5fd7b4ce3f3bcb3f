package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"golox/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(fs *flag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintln(w, "Usage:")
		fmt.Fprintln(w, "  golox [flags]            start the REPL (or run stdin when piped)")
		fmt.Fprintln(w, "  golox [flags] <script>   run a script")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fs.PrintDefaults()
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("golox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file (default $HOME/"+config.DefaultFileName+")")
	verbose := fs.Bool("v", false, "log debug output to stderr")
	fs.Usage = usage(fs, stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}

	explicit := *configPath != ""
	path := *configPath
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	log := newLogger(stderr, cfg.LogLevel, *verbose)
	log.Debug("config loaded", slog.String("path", path), slog.Bool("explicit", explicit))

	if fs.NArg() == 1 {
		script := fs.Arg(0)
		src, err := os.ReadFile(script)
		if err != nil {
			fmt.Fprintln(stderr, errors.Wrapf(err, "read %s", script))
			return exitNoInput
		}
		return report(stderr, compileAndRun(log, stdout, filepath.Base(script), string(src)))
	}

	if !isTerminal(stdin) {
		src, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintln(stderr, errors.Wrap(err, "read stdin"))
			return exitNoInput
		}
		return report(stderr, compileAndRun(log, stdout, "<stdin>", string(src)))
	}

	if err := runREPL(cfg, log, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		return exitSoftware
	}
	return exitOK
}

func report(stderr io.Writer, err error) int {
	if err != nil {
		fmt.Fprintln(stderr, err)
	}
	return exitCode(err)
}

func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
