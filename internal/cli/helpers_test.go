package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const counterProgram = `stores: counter: {
	initial: 0
	updaters: [
		{on: "INC", op: "add", value: 1},
		{on: "BOOM", op: "fail", message: "boom"},
	]
}

statics: greeting: "hello"
`

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeCommandOutput(t, args...)
	return stdout, err
}

// executeCommandOutput runs the root command with args and returns stdout
// and stderr separately.
func executeCommandOutput(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("MULTISTORE_LOG_LEVEL", "error")
	t.Setenv("MULTISTORE_JOURNAL", "")
	t.Setenv("MULTISTORE_FLOW_TOKENS", "sequential")
	t.Setenv("MULTISTORE_OTEL_ENDPOINT", "")

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeCounterProgram(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "counter.cue", counterProgram)
}
