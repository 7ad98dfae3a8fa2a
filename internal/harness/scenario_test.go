package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "one dispatch"
specs: [stores.cue]
mapping:
  - name: todos
steps:
  - dispatch: {type: ADD_TODO, payload: {title: x}}
`

func TestLoadScenario_TestdataFiles(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			s, err := LoadScenario(f)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Name)
			for _, spec := range s.Specs {
				assert.FileExists(t, spec)
			}
		})
	}
}

func TestLoadScenario_ResolvesSpecPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stores.cue"), []byte(`store: todos: {}`), 0o644))
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "stores.cue")}, s.Specs)
}

func TestLoadScenario_MissingSpecFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec file not found")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, StepDispatch, s.Steps[0].Kind())
	assert.Equal(t, "ADD_TODO", s.Steps[0].Dispatch.Type)
	assert.Equal(t, "todos", s.Mapping[0].SpecName())
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	base := "name: n\ndescription: d\nspecs: [a.cue]\n"

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "missing name", yaml: "description: d\nspecs: [a]\nmapping: []\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "name is required"},
		{name: "missing description", yaml: "name: n\nspecs: [a]\nmapping: []\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "description is required"},
		{name: "missing specs", yaml: "name: n\ndescription: d\nmapping: []\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "specs list is required"},
		{name: "missing mapping", yaml: base + "steps: [{select: {names: [], want: []}}]\n", wantErr: "mapping is required"},
		{name: "missing steps", yaml: base + "mapping: []\n", wantErr: "steps list is required"},
		{name: "empty mapping name", yaml: base + "mapping: [{store: x}]\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "mapping[0]: name is required"},
		{name: "duplicate mapping", yaml: base + "mapping: [{name: a}, {name: a}]\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "duplicate name"},
		{name: "view name clash", yaml: base + "mapping: [{name: a}]\nviews: [{name: a, path: x}]\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "already used"},
		{name: "view bad target", yaml: base + "mapping: [{name: a}]\nviews: [{name: v, target: z, path: x}]\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "not a mapping name"},
		{name: "view bad path", yaml: base + "mapping: [{name: a}]\nviews: [{name: v, path: \"\"}]\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "empty path"},
		{name: "view bad policy", yaml: base + "mapping: [{name: a}]\nviews: [{name: v, path: x, policy: strict}]\nsteps: [{select: {names: [], want: []}}]\n", wantErr: "unknown policy"},
		{name: "two kinds in step", yaml: base + "mapping: []\nsteps: [{select: {names: [], want: []}, expect: {equals: 1}}]\n", wantErr: "exactly one of"},
		{name: "empty step", yaml: base + "mapping: []\nsteps: [{}]\n", wantErr: "exactly one of"},
		{name: "dispatch no type", yaml: base + "mapping: []\nsteps: [{dispatch: {}}]\n", wantErr: "type is required"},
		{name: "dispatch unknown target", yaml: base + "mapping: []\nsteps: [{dispatch: {type: X, to: nope}}]\n", wantErr: "unknown target"},
		{name: "dispatch bad error kind", yaml: base + "mapping: []\nsteps: [{dispatch: {type: X, expect_error: boom}}]\n", wantErr: "unknown expect_error"},
		{name: "select_first no want", yaml: base + "mapping: []\nsteps: [{select_first: {names: [a]}}]\n", wantErr: "want or expect_error"},
		{name: "select no want", yaml: base + "mapping: []\nsteps: [{select: {names: [a]}}]\n", wantErr: "want is required"},
		{name: "unknown assertion", yaml: base + "mapping: []\nsteps: [{select: {names: [], want: []}}]\nassertions: [{type: final_state}]\n", wantErr: "unknown assertion type"},
		{name: "count without action", yaml: base + "mapping: []\nsteps: [{select: {names: [], want: []}}]\nassertions: [{type: dispatch_count, count: 1}]\n", wantErr: "action is required"},
		{name: "order without actions", yaml: base + "mapping: []\nsteps: [{select: {names: [], want: []}}]\nassertions: [{type: dispatch_order}]\n", wantErr: "actions list is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_AllowDuplicates(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: dup
description: d
specs: [a.cue]
allow_duplicates: true
mapping: [{name: a}, {name: a, store: b}]
steps: [{select: {names: [a], want: [a]}}]
`))
	require.NoError(t, err)
	assert.Equal(t, "b", s.Mapping[1].SpecName())
}
