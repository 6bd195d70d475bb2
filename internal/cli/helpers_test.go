package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is an isolated beacon with its own config and data directory.
type testEnv struct {
	t         *testing.T
	ConfigDir string
	DataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		t:         t,
		ConfigDir: filepath.Join(dir, "config"),
		DataDir:   filepath.Join(dir, "data"),
	}
}

// cmdResult holds the outcome of one command.
type cmdResult struct {
	Stdout   string
	Stderr   string
	Err      error
	ExitCode int
}

// run executes the root command in-process against the env's directories.
func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(stdin string, args ...string) cmdResult {
	e.t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", e.ConfigDir, "--data-dir", e.DataDir}, args...))

	err := root.Execute()
	return cmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
		ExitCode: exitCode(err),
	}
}

// mustRun executes a command and fails the test on a non-zero exit code.
func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	res := e.run(args...)
	require.NoError(e.t, res.Err, "reffo %v\nstdout: %s", args, res.Stdout)
	return res
}

// mustRunJSON executes a command with --json and decodes its output.
func mustRunJSON[T any](e *testEnv, args ...string) T {
	e.t.Helper()
	res := e.mustRun(append([]string{"--json"}, args...)...)
	return parseJSON[T](e.t, res.Stdout)
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), "output: %s", s)
	return v
}

// writeTemp writes content to a file in a fresh temp dir and returns its
// path.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
