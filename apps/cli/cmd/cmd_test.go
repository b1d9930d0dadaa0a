package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/gqltester/packages/core/suite"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		dirFlag = ""
		configFlag = ""
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTests(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func pongServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"ping":"pong"}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitTestFailure, exitCode(errors.New("boom")))
	assert.Equal(t, ExitConfigError, exitCode(withExitCode(ExitConfigError, errors.New("bad"))))

	wrapped := errors.Join(errors.New("context"), withExitCode(ExitParseError, errors.New("missing")))
	assert.Equal(t, ExitParseError, exitCode(wrapped))
}

func TestRunCommand_Passes(t *testing.T) {
	server := pongServer(t)
	root := writeTests(t, map[string]string{
		"ping/ping.test": "{ ping }<===>{\"data\": {\"ping\": \"pong\"}}",
	})

	stdout, _, err := execute(t, "run", server.URL, "--dir", root, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Running ping test suite")
	assert.Contains(t, stdout, "✓ Ping")
	assert.Contains(t, stdout, "Total tests run: 1. Failed tests: 0")
}

func TestRunCommand_Fails(t *testing.T) {
	server := pongServer(t)
	root := writeTests(t, map[string]string{
		"ping/ping.test": "{ ping }<===>{\"data\": {\"ping\": \"pung\"}}",
		"ping/ok.test":   "{ ping }<===>{\"data\": {\"ping\": \"pong\"}}",
	})

	stdout, _, err := execute(t, "run", server.URL, "ping", "--dir", root, "--no-color")
	require.Error(t, err)
	assert.Equal(t, ExitTestFailure, exitCode(err))
	assert.Contains(t, stdout, "Total tests run: 2. Failed tests: 1")
}

func TestRunCommand_UnknownSuite(t *testing.T) {
	server := pongServer(t)
	root := writeTests(t, map[string]string{
		"ping/ping.test": "{ ping }<===>{}",
	})

	stdout, _, err := execute(t, "run", server.URL, "ping", "nope", "--dir", root, "--no-color")
	require.Error(t, err)
	assert.Equal(t, ExitParseError, exitCode(err))
	assert.ErrorIs(t, err, suite.ErrSuiteNotFound)
	assert.NotContains(t, stdout, "Running ping test suite", "nothing runs when a suite is missing")
}

func TestRunCommand_BadURL(t *testing.T) {
	_, _, err := execute(t, "run", "not a url", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestRunCommand_MissingURL(t *testing.T) {
	_, _, err := execute(t, "run")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestValidateCommand(t *testing.T) {
	root := writeTests(t, map[string]string{
		"good/ping.test":       "{ ping }<===>{\"data\": {\"ping\": \"pong\"}}",
		"good/regression.test": "{ ping }<===>{}<===>URL",
		"bad/query.test":       "{ ping <===>{}",
		"bad/vars.test":        "{ ping }<===>{oops<===>{}",
		"bad/expect.test":      "{ ping }<===>{}<===>nope",
		"bad/sections.test":    "{ ping }",
	})

	stdout, _, err := execute(t, "validate", "good", "--dir", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Valid: good/ping.test")
	assert.Contains(t, stdout, "Valid: good/regression.test")

	stdout, stderr, err := execute(t, "validate", "bad", "--dir", root)
	require.Error(t, err)
	assert.Equal(t, ExitParseError, exitCode(err))
	assert.Contains(t, err.Error(), "4 of 4")
	assert.Empty(t, stdout)
	for _, f := range []string{"query", "vars", "expect", "sections"} {
		assert.Contains(t, stderr, "Error in bad/"+f+".test")
	}
}

func TestListCommand(t *testing.T) {
	root := writeTests(t, map[string]string{
		"users/profile_byId.test": "{ me }<===>{}",
		"users/.hidden.test":      "{ me }<===>{}",
		"orders/total.test":       "{ total }<===>{}",
	})

	stdout, _, err := execute(t, "list", "--dir", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "orders:\n  - Total (total.test)")
	assert.Contains(t, stdout, "  - Profile By Id (profile_byId.test)")
	assert.NotContains(t, stdout, "hidden")
	assert.Contains(t, stdout, "2 fixtures in 2 suites")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	stdout, _, err := execute(t, "init", "--url", "http://localhost:4000/graphql")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created:")

	data, err := os.ReadFile(filepath.Join(dir, ".gqltester.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "url: http://localhost:4000/graphql")

	_, err = os.Stat(filepath.Join(dir, "gqltests", "example", "ping.test"))
	require.NoError(t, err)

	stdout, _, err = execute(t, "validate")
	require.NoError(t, err, "the scaffolded fixture must validate")
	assert.Contains(t, stdout, "Valid: example/ping.test")

	_, _, err = execute(t, "init")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gqltester version")
}

func TestIsFixtureEvent(t *testing.T) {
	assert.True(t, isFixtureEvent(fsnotify.Event{Name: "gqltests/a/b.test", Op: fsnotify.Write}))
	assert.True(t, isFixtureEvent(fsnotify.Event{Name: "gqltests/a/b.test", Op: fsnotify.Create}))
	assert.False(t, isFixtureEvent(fsnotify.Event{Name: "gqltests/a/b.test", Op: fsnotify.Chmod}))
	assert.False(t, isFixtureEvent(fsnotify.Event{Name: "gqltests/a/notes.md", Op: fsnotify.Write}))
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("warn", 0)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	logger, err = newLogger("warn", 2)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0), "-vv lowers the level to info")

	_, err = newLogger("loud", 0)
	assert.Equal(t, ExitConfigError, exitCode(err))
}
