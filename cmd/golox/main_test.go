package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.lox")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"-config", emptyConfig(t)}, args...)
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunScript(t *testing.T) {
	code, out, errOut := runCLI(t, "", script(t, "print 1 + 2;\nprint \"done\";"))
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "3\ndone\n", out)
	assert.Empty(t, errOut)
}

func TestCompileErrorsExit65AndRunNothing(t *testing.T) {
	code, out, errOut := runCLI(t, "", script(t, "print \"start\";\nprint ;\nvar @ = 1;"))
	assert.Equal(t, exitDataErr, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Lex error at 3:5")
	assert.Contains(t, errOut, "Expect expression")
}

func TestRuntimeErrorExit70(t *testing.T) {
	code, out, errOut := runCLI(t, "", script(t, "print \"before\";\nprint missing;"))
	assert.Equal(t, exitSoftware, code)
	assert.Equal(t, "before\n", out)
	assert.Contains(t, errOut, "prog.lox:2:7")
	assert.Contains(t, errOut, "Undefined variable")
}

func TestUnreadableScriptExit66(t *testing.T) {
	code, _, errOut := runCLI(t, "", filepath.Join(t.TempDir(), "nope.lox"))
	assert.Equal(t, exitNoInput, code)
	assert.Contains(t, errOut, "nope.lox")
}

func TestUsageErrors(t *testing.T) {
	code, _, _ := runCLI(t, "", "a.lox", "b.lox")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "", "-bogus")
	assert.Equal(t, exitUsage, code)
}

func TestBadConfigExit78(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, strings.NewReader(""), &out, &errOut)
	assert.Equal(t, exitConfig, code)
}

func TestPipedStdinRunsAsScript(t *testing.T) {
	code, out, _ := runCLI(t, "var a = \"piped\";\nprint a;\n")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "piped\n", out)
}

func TestVerboseLogsPhases(t *testing.T) {
	code, _, errOut := runCLI(t, "print 1;", "-v")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "msg=compiled")
	assert.Contains(t, errOut, "msg=interpreted")
}
