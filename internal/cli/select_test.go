package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storeplex/pkg/ir"
)

var (
	stateJSONFile = filepath.Join("testdata", "state", "app.json")
	stateYAMLFile = filepath.Join("testdata", "state", "app.yaml")
)

func executeSelect(t *testing.T, format string, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewSelectCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSelectText(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "nested string", args: []string{"session.user.name", stateJSONFile}, want: `"Ann"`},
		{name: "object", args: []string{"session.user", stateJSONFile}, want: `{"admin":false,"name":"Ann"}`},
		{name: "array index", args: []string{"todos.items.1", stateJSONFile}, want: `"eggs"`},
		{name: "yaml file", args: []string{"todos.count", stateYAMLFile}, want: `2`},
		{name: "missing key", args: []string{"cart.items", stateJSONFile}, want: `<absent>`},
		{name: "falsy value is missing", args: []string{"session.logins", stateJSONFile}, want: `<absent>`},
		{name: "falsy value with absent policy", args: []string{"session.logins", stateJSONFile, "--absent"}, want: `0`},
		{name: "default string", args: []string{"cart.items", stateJSONFile, "--default", "none"}, want: `"none"`},
		{name: "default collection", args: []string{"cart.items", stateJSONFile, "--default", "[]"}, want: `[]`},
		{name: "default replaces falsy", args: []string{"session.user.admin", stateYAMLFile, "--default", "true"}, want: `true`},
		{name: "empty default", args: []string{"cart", stateJSONFile, "--default", ""}, want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeSelect(t, "text", "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestSelectJSON(t *testing.T) {
	out, err := executeSelect(t, "json", "", "todos.items", stateJSONFile)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   SelectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "todos.items", resp.Data.Path)
	assert.Equal(t, []any{"milk", "eggs"}, resp.Data.Value)
	assert.False(t, resp.Data.Missing)
}

func TestSelectJSONMissingWithDefault(t *testing.T) {
	out, err := executeSelect(t, "json", "", "cart.total", stateJSONFile, "--default", "0")
	require.NoError(t, err)

	var resp struct {
		Data SelectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Missing)
	assert.EqualValues(t, 0, resp.Data.Value)
}

func TestSelectStdin(t *testing.T) {
	out, err := executeSelect(t, "text", `{"a": {"b": [10, 20]}}`, "a.b.0", "-")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

func TestSelectRequiredMissing(t *testing.T) {
	out, err := executeSelect(t, "json", "", "cart.items", stateJSONFile, "--required")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "LOOKUP_FAILURE", resp.Error.Code)
	assert.Equal(t, `"cart" state must exist in key chain`, resp.Error.Message)
	assert.Equal(t, map[string]any{
		"chain": "[cart.items]",
		"hint":  `did you forget to mount the "cart" reducer?`,
	}, resp.Error.Details)
}

func TestSelectRequiredWithDefault(t *testing.T) {
	out, err := executeSelect(t, "text", "", "cart.items", stateJSONFile, "--required", "--default", "0")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestSelectErrors(t *testing.T) {
	dir := t.TempDir()
	floatFile := filepath.Join(dir, "float.json")
	require.NoError(t, os.WriteFile(floatFile, []byte(`{"ratio": 0.5}`), 0o644))
	nullFile := filepath.Join(dir, "null.json")
	require.NoError(t, os.WriteFile(nullFile, []byte(`null`), 0o644))
	badFile := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badFile, []byte(`{"a":`), 0o644))

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{name: "empty path", args: []string{"", stateJSONFile}, wantCode: ExitCommandError, wantOut: "INVALID_ARGUMENT"},
		{name: "empty segment", args: []string{"a..b", stateJSONFile}, wantCode: ExitCommandError, wantOut: "empty segment"},
		{name: "missing file", args: []string{"a", filepath.Join(dir, "missing.json")}, wantCode: ExitCommandError, wantOut: ErrCodeBadState},
		{name: "malformed json", args: []string{"a", badFile}, wantCode: ExitCommandError, wantOut: "decode state file"},
		{name: "float state", args: []string{"ratio", floatFile}, wantCode: ExitCommandError, wantOut: ErrCodeBadState},
		{name: "null state", args: []string{"a", nullFile}, wantCode: ExitCommandError, wantOut: "state must exist"},
		{name: "bad default", args: []string{"a", stateJSONFile, "--default", "1.5"}, wantCode: ExitCommandError, wantOut: "parse default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeSelect(t, "text", "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestReadState(t *testing.T) {
	fromJSON, err := readState(stateJSONFile, nil)
	require.NoError(t, err)
	fromYAML, err := readState(stateYAMLFile, nil)
	require.NoError(t, err)

	assert.True(t, ir.Equal(fromJSON, fromYAML))
	count, ok := ir.LookupPath(fromJSON, ir.Keys("todos", "count"))
	require.True(t, ok)
	assert.Equal(t, ir.IRInt(2), count)
}

func TestParseDefault(t *testing.T) {
	tests := []struct {
		in   string
		want ir.IRValue
	}{
		{in: "0", want: ir.IRInt(0)},
		{in: "false", want: ir.IRBool(false)},
		{in: "null", want: ir.IRNull{}},
		{in: "anonymous", want: ir.IRString("anonymous")},
		{in: "{a: 1}", want: ir.IRObject{"a": ir.IRInt(1)}},
		{in: "", want: ir.IRString("")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDefault(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
