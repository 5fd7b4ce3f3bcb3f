// Package config loads REPL and logging settings from a YAML file.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultFileName = ".golox.yaml"

type Config struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	HistoryFile        string `yaml:"history_file"`
	Banner             bool   `yaml:"banner"`
	LogLevel           string `yaml:"log_level"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	cfg := Config{
		Prompt:             "lox> ",
		ContinuationPrompt: "...> ",
		Banner:             true,
		LogLevel:           "warn",
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		cfg.HistoryFile = filepath.Join(home, ".golox_history")
	}
	return cfg
}

// DefaultPath is $HOME/.golox.yaml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, DefaultFileName)
}

// ValidationError lists every invalid setting in a file.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config ")
	b.WriteString(e.Path)
	b.WriteString(" is invalid:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads path over the defaults. When explicit is false a missing file
// is not an error, so the default location can be probed unconditionally.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		if explicit {
			return cfg, errors.New("config: empty path")
		}
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "config: open %s", path)
	}
	defer f.Close()

	return decode(f, path, cfg)
}

func decode(r io.Reader, path string, cfg Config) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// An empty file keeps every default.
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	cfg.HistoryFile = expandHome(cfg.HistoryFile)
	if err := cfg.validate(path); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate(path string) error {
	verr := &ValidationError{Path: path}
	if c.Prompt == "" {
		verr.Issues = append(verr.Issues, "prompt must not be empty")
	}
	if c.ContinuationPrompt == "" {
		verr.Issues = append(verr.Issues, "continuation_prompt must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		verr.Issues = append(verr.Issues, err.Error())
	}
	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}

// ParseLevel maps a log_level setting to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, errors.Errorf("log_level %q must be one of debug, info, warn, error", s)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
