package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterCanonical = `{"statics":{"greeting":"hello"},"stores":{"counter":{"initial":0,"merge":"resumed","updaters":[{"on":"INC","op":"add","value":1},{"message":"boom","on":"BOOM","op":"fail"}]}}}`

func TestCompile_Stdout(t *testing.T) {
	out, err := executeCommand(t, "compile", writeCounterProgram(t))
	require.NoError(t, err)
	assert.Equal(t, counterCanonical+"\n", out)
}

func TestCompile_OutputFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "counter.json")

	out, err := executeCommand(t, "compile", writeCounterProgram(t), "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 1 stores and 1 statics")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, counterCanonical, string(data))
}

func TestCompile_AllFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "todos.cue", `stores: todos: {
	initial: {}
	updaters: [
		{on: "ADD", op: "assign", field: "last", from: "title", pause: "1s"},
		{on: "ADD", op: "dispatch", emit: {type: "ADDED"}},
	]
}
`)

	out, err := executeCommand(t, "compile", path)
	require.NoError(t, err)
	assert.Equal(t, `{"statics":{},"stores":{"todos":{"initial":{},"merge":"resumed","updaters":[{"field":"last","from":"title","on":"ADD","op":"assign","pause":"1s"},{"emit":{"type":"ADDED"},"on":"ADD","op":"dispatch"}]}}}`+"\n", out)
}

func TestCompile_InvalidProgram(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", `stores: counter: {initial: "zero", updaters: [{op: "add", value: 1}]}`)

	out, err := executeCommand(t, "compile", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E110")
}
