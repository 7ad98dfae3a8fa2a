package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/storeplex/pkg/ir"
	"github.com/roach88/storeplex/pkg/selector"
	"github.com/roach88/storeplex/pkg/store"
)

// stateJSON decodes state files. Numbers stay exact so integers survive
// and floats can be rejected.
var stateJSON = jsoniter.Config{UseNumber: true}.Froze()

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Default  string // YAML scalar or flow value
	Absent   bool   // only null and missing keys count as missing
	Required bool   // fail when the path is missing
}

// SelectResult is the JSON payload of the select command.
type SelectResult struct {
	Path    string `json:"path"`
	Value   any    `json:"value"`
	Missing bool   `json:"missing,omitempty"`
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <path> <state-file>",
		Short: "Select a value from a state file by key path",
		Long: `Select a value from a JSON or YAML state file.

<path> is dot-separated; numeric segments index arrays ("todos.items.0").
Files ending in .yaml or .yml are read as YAML, anything else as JSON.
Use "-" to read JSON from stdin.

By default null, false, 0, "" and empty collections count as missing
and yield the --default value. --absent counts only null and missing
keys.

Exit codes:
  0 - Selection succeeded
  1 - --required and the path is missing
  2 - Command error (bad path, unreadable state, etc.)

Examples:
  storeplex select session.user state.json
  storeplex select todos.count state.yaml --default 0 --absent
  cat state.json | storeplex select session.user - --required`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Default, "default", "", "value returned when the path is missing (YAML)")
	cmd.Flags().BoolVar(&opts.Absent, "absent", false, "treat only null and missing keys as missing")
	cmd.Flags().BoolVar(&opts.Required, "required", false, "fail when the path is missing")

	return cmd
}

func runSelect(opts *SelectOptions, rawPath, stateFile string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	path, err := ir.ParsePath(rawPath)
	if err != nil {
		_ = formatter.Error(string(store.ErrCodeInvalidArgument), err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid path", err)
	}

	state, err := readState(stateFile, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodeBadState, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read state", err)
	}

	selOpts := []selector.Option{}
	if opts.Absent {
		selOpts = append(selOpts, selector.WithPolicy(selector.Absent))
	}
	if opts.Required {
		selOpts = append(selOpts, selector.Required())
	}
	if cmd.Flags().Changed("default") {
		def, err := parseDefault(opts.Default)
		if err != nil {
			_ = formatter.Error(string(store.ErrCodeInvalidArgument), err.Error(), nil)
			return WrapExitError(ExitCommandError, "invalid default", err)
		}
		selOpts = append(selOpts, selector.WithDefault(def))
	}

	logger.Debug("selecting", "path", path.String(), "file", stateFile, "options", len(selOpts))

	value, err := selector.New(path...).Select(state, selOpts...)
	if err != nil {
		var se *store.Error
		if errors.As(err, &se) {
			_ = formatter.Error(string(se.Code), se.Message, se.Details)
		} else {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		}
		if store.IsLookupFailure(err) {
			return WrapExitError(ExitFailure, "selection failed", err)
		}
		return WrapExitError(ExitCommandError, "selection failed", err)
	}

	policy := selector.Falsy
	if opts.Absent {
		policy = selector.Absent
	}
	raw, found := ir.LookupPath(state, path)
	result := SelectResult{
		Path:    path.String(),
		Value:   ir.ToGo(value),
		Missing: !found || policy.Missing(raw),
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	if value == nil {
		fmt.Fprintln(formatter.Writer, "<absent>")
		return nil
	}
	out, err := ir.MarshalCanonical(value)
	if err != nil {
		return WrapExitError(ExitCommandError, "encode value", err)
	}
	fmt.Fprintln(formatter.Writer, string(out))
	return nil
}

// readState decodes a JSON or YAML state file into a state tree.
func readState(name string, stdin io.Reader) (ir.IRValue, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var decoded any
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &decoded)
	default:
		err = stateJSON.Unmarshal(data, &decoded)
	}
	if err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", name, err)
	}

	state, err := ir.FromGo(decoded)
	if err != nil {
		return nil, fmt.Errorf("state file %s: %w", name, err)
	}
	return state, nil
}

// parseDefault reads a --default value as YAML so numbers, booleans,
// null and flow collections keep their type.
func parseDefault(s string) (ir.IRValue, error) {
	var decoded any
	if err := yaml.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, fmt.Errorf("parse default: %w", err)
	}
	if decoded == nil && strings.TrimSpace(s) == "" {
		return ir.IRString(""), nil
	}
	v, err := ir.FromGo(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse default: %w", err)
	}
	return v, nil
}
