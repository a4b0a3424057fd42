package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/twill/internal/testutil"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCmd(strings.NewReader(stdin), out, errOut)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return -1
}

func TestRunPassingDirectory(t *testing.T) {
	srv := testutil.NewServer(t)
	dir := t.TempDir()
	writeScript(t, dir, "a.twill", "code 200\nfind \"Hello, world\"\necho done-a\n")
	writeScript(t, dir, "b.twill", "title Hello\necho done-b\n")
	writeScript(t, dir, "notes.txt", "this is not a script\n")

	out, errOut, err := execRoot(t, "", "--url", srv.URL, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "done-a")
	assert.Contains(t, out, "done-b")
	assert.Empty(t, errOut)
}

func TestRunReportsFailures(t *testing.T) {
	srv := testutil.NewServer(t)
	dir := t.TempDir()
	bad := writeScript(t, dir, "bad.twill", "code 404\necho unreachable\n")
	good := writeScript(t, dir, "good.twill", "code 200\n")

	out, errOut, err := execRoot(t, "", "-u", srv.URL, bad, good)
	assert.Equal(t, 1, exitCode(err))
	assert.NotContains(t, out, "unreachable")
	assert.Contains(t, errOut, "EXCEPTION raised at "+bad)
	assert.Contains(t, errOut, "There were 1 failures:")
	assert.NotContains(t, errOut, good)
}

func TestRunNeverFail(t *testing.T) {
	srv := testutil.NewServer(t)
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.twill", "code 404\necho still-running\n")

	out, errOut, err := execRoot(t, "", "--never-fail", "-u", srv.URL, path)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, out, "still-running")
	assert.Contains(t, errOut, "There were 1 failures:")
}

func TestRunExitCode(t *testing.T) {
	dir := t.TempDir()
	ok := writeScript(t, dir, "ok.twill", "exit 0\necho unreachable\n")
	out, _, err := execRoot(t, "", ok)
	require.NoError(t, err)
	assert.NotContains(t, out, "unreachable")

	failing := writeScript(t, dir, "fail.twill", "exit 3\n")
	_, errOut, err := execRoot(t, "", failing)
	assert.Equal(t, 3, exitCode(err))
	assert.Contains(t, errOut, failing)
}

func TestRunStdin(t *testing.T) {
	out, _, err := execRoot(t, "setglobal greeting hi\necho ${greeting} there\n", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "hi there")
}

func TestRunMetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "echo.twill", "echo hello\n")
	metrics := filepath.Join(dir, "twill.prom")

	_, _, err := execRoot(t, "", "--metrics-file", metrics, path)
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "twill_")
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeScript(t, dir, "twill.yaml", "script:\n  extension: .tw\n")
	writeScript(t, dir, "one.tw", "echo picked-up\n")
	writeScript(t, dir, "two.twill", "echo skipped\n")

	out, _, err := execRoot(t, "", "-c", cfg, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "picked-up")
	assert.NotContains(t, out, "skipped")
}

func TestRunErrors(t *testing.T) {
	_, _, err := execRoot(t, "")
	require.Error(t, err)

	_, _, err = execRoot(t, "", filepath.Join(t.TempDir(), "*.twill"))
	require.Error(t, err)
	assert.Equal(t, -1, exitCode(err))

	_, _, err = execRoot(t, "", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "-")
	require.Error(t, err)
}
