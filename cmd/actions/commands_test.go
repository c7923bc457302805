package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestJSON = `[
  {
    "name": "get_weather",
    "description": "Gets current weather for a location",
    "parameters": {
      "type": "object",
      "properties": {"location": {"type": "string"}},
      "required": ["location"]
    }
  },
  {"name": "ping"}
]`

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(defaultConfig())
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestLint_Clean(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", manifestJSON)

	out, err := run(t, "lint", path)
	require.NoError(t, err)
	assert.Contains(t, out, "actions[1].description: warning: [VALIDATION_ERROR]")
	assert.Contains(t, out, "2 action(s), 0 error(s), 1 warning(s)")
}

func TestLint_InvalidSchema(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.yaml", `
- name: broken
  description: Broken schema
  parameters:
    type: object
    required: location
`)

	out, err := run(t, "lint", path)
	require.Error(t, err)
	assert.Contains(t, out, "actions[0].parameters: error: [INVALID_SCHEMA]")
	assert.Contains(t, out, "1 error(s)")
}

func TestLint_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeManifest(t, dir, "a.json", `[{"name": "ping", "description": "Health check"}]`)
	second := writeManifest(t, dir, "b.json", `[{"name": "ping", "description": "Again"}]`)

	out, err := run(t, "lint", first, second)
	require.Error(t, err)
	assert.Contains(t, out, "b.json: actions[0].name: error: [CONFLICT]")
	assert.Contains(t, out, "already defined in an earlier manifest")
}

func TestLint_Strict(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", `[{"name": "", "description": "nameless"}]`)

	_, err := run(t, "lint", path)
	require.NoError(t, err)

	out, err := run(t, "lint", "--strict", path)
	require.Error(t, err)
	assert.Contains(t, out, "actions[0].name: error:")
}

func TestLint_UnreadableManifest(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", `{`)

	out, err := run(t, "lint", path)
	require.Error(t, err)
	assert.Contains(t, out, "error: [DECODE_ERROR]")
}

func TestRender_Function(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", manifestJSON)

	out, err := run(t, "render", path)
	require.NoError(t, err)

	var tools []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tools))
	require.Len(t, tools, 2)
	assert.Equal(t, "function", tools[0]["type"])

	fn := tools[1]["function"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "ping"}, fn)
}

func TestRender_MCP(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", manifestJSON)

	out, err := run(t, "render", "--format", "mcp", path)
	require.NoError(t, err)

	var tools []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tools))
	require.Len(t, tools, 2)
	assert.Equal(t, "get_weather", tools[0]["name"])

	schema := tools[0]["inputSchema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"location"}, schema["required"])
}

func TestRender_Where(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", manifestJSON)

	out, err := run(t, "render", "--format", "actions", "--where", `name == "ping"`, path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name": "ping"}]`, out)
}

func TestRender_BadFilter(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", manifestJSON)

	_, err := run(t, "render", "--where", "name", path)
	assert.Error(t, err)
}

func TestRender_UnknownFormat(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", manifestJSON)

	_, err := run(t, "render", "--format", "xml", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestRender_DuplicateFails(t *testing.T) {
	dir := t.TempDir()
	first := writeManifest(t, dir, "a.json", `[{"name": "ping"}]`)
	second := writeManifest(t, dir, "b.json", `[{"name": "ping"}]`)

	_, err := run(t, "render", first, second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.json")
}

func TestList_Sorted(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", manifestJSON)

	out, err := run(t, "list", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "get_weather\tGets current weather for a location", lines[0])
	assert.Equal(t, "ping\t", lines[1])
}

func TestPrompts(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, filepath.Join("default", "actions.json"), manifestJSON)
	writeManifest(t, dir, filepath.Join("search", "actions.yml"), "- name: search\n  description: Search documents\n")

	out, err := run(t, "prompts", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "default\tget_weather\tGets current weather for a location", lines[0])
	assert.Equal(t, "default\tping\t", lines[1])
	assert.Equal(t, "search\tsearch\tSearch documents", lines[2])
}

func TestLint_TrailingDataFails(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json", `[{"name": "a", "description": "A"}] [{"name": "b"}]`)

	out, err := run(t, "lint", path)
	require.Error(t, err)
	assert.Contains(t, out, "error: [DECODE_ERROR]")
	assert.Contains(t, out, "0 action(s), 1 error(s)")
}

func TestRender_ActionsKeepsLargeIntegers(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "actions.json",
		`[{"name": "page", "parameters": {"type": "object", "properties": {"n": {"type": "integer", "maximum": 9007199254740993}}}}]`)

	out, err := run(t, "render", "--format", "actions", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"maximum": 9007199254740993`)
}

func TestPrompts_DebugLogsCarryRunID(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, filepath.Join("default", "actions.json"), manifestJSON)

	var stdout, stderr bytes.Buffer
	root := newRootCmd(defaultConfig())
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--log-level", "debug", "prompts", dir})
	require.NoError(t, root.Execute())

	logs := stderr.String()
	assert.Contains(t, logs, "msg=\"prompt actions\"")
	assert.Contains(t, logs, "prompt=default")
	assert.Contains(t, logs, "run_id=")
	assert.Contains(t, logs, "msg=\"loaded prompt actions\"")
}
