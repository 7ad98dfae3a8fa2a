package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storeplex/pkg/ir"
	"github.com/roach88/storeplex/pkg/selector"
)

// Scenario defines a store composition test.
// It compiles store specs, wires them into a multiplexer (plus optional
// bisected views), runs steps against them and asserts on the resulting
// trace and state.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE files declaring stores under the top-level "store" field.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs"`

	// Mapping orders the multiplexer members.
	Mapping []MappingEntry `yaml:"mapping"`

	// AllowDuplicates lets Mapping repeat names (later entries win).
	AllowDuplicates bool `yaml:"allow_duplicates,omitempty"`

	// Views declares bisected stores built on mapping members or the
	// multiplexer itself.
	Views []View `yaml:"views,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: state_equals, dispatch_count, dispatch_order
	Assertions []Assertion `yaml:"assertions"`

	// RunToken is an optional fixed token for deterministic runs.
	// If empty, a UUIDv7 token is generated per run.
	RunToken string `yaml:"run_token,omitempty"`
}

// MappingEntry names one multiplexer member.
type MappingEntry struct {
	// Name is the member name inside the multiplexer.
	Name string `yaml:"name"`

	// Store is the compiled store spec to instantiate. Defaults to Name.
	Store string `yaml:"store,omitempty"`
}

// SpecName returns the store spec backing the entry.
func (e MappingEntry) SpecName() string {
	if e.Store != "" {
		return e.Store
	}
	return e.Name
}

// View is a bisected store.
type View struct {
	Name string `yaml:"name"`

	// Target is a mapping name. Empty targets the multiplexer.
	Target string `yaml:"target,omitempty"`

	// Path is the dot-separated selection path.
	Path string `yaml:"path"`

	// Default is returned when the selected value is missing.
	Default any `yaml:"default,omitempty"`

	// Policy is "falsy" (default) or "absent".
	Policy string `yaml:"policy,omitempty"`
}

// Step is a single scenario step. Exactly one field must be set.
type Step struct {
	Dispatch    *DispatchStep    `yaml:"dispatch,omitempty"`
	SelectFirst *SelectFirstStep `yaml:"select_first,omitempty"`
	Select      *SelectStep      `yaml:"select,omitempty"`
	Expect      *ExpectStep      `yaml:"expect,omitempty"`
}

// Kind returns the step type name.
func (s Step) Kind() string {
	switch {
	case s.Dispatch != nil:
		return StepDispatch
	case s.SelectFirst != nil:
		return StepSelectFirst
	case s.Select != nil:
		return StepSelect
	case s.Expect != nil:
		return StepExpect
	}
	return ""
}

// DispatchStep sends an action.
type DispatchStep struct {
	Type    string `yaml:"type"`
	Payload any    `yaml:"payload,omitempty"`

	// To is a mapping or view name. Empty dispatches to the multiplexer.
	To string `yaml:"to,omitempty"`

	// ExpectError, when set, requires the dispatch to fail with that
	// error kind.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// SelectFirstStep calls SelectFirst on the multiplexer.
type SelectFirstStep struct {
	Names []string `yaml:"names"`

	// Want is the mapping name expected back.
	Want string `yaml:"want,omitempty"`

	ExpectError string `yaml:"expect_error,omitempty"`
}

// SelectStep calls Select on the multiplexer.
type SelectStep struct {
	Names []string `yaml:"names"`
	Want  []string `yaml:"want"`
}

// ExpectStep checks state mid-scenario.
type ExpectStep struct {
	// Target is a mapping or view name. Empty reads the multiplexer.
	Target string `yaml:"target,omitempty"`

	// Path is optional; empty compares the target's whole state.
	Path string `yaml:"path,omitempty"`

	Equals any `yaml:"equals"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "state_equals": State at target/path equals Equals
	// - "dispatch_count": Action dispatched exactly Count times
	// - "dispatch_order": Actions dispatched in the given order
	Type string `yaml:"type"`

	// Target and Path locate state (used by state_equals).
	Target string `yaml:"target,omitempty"`
	Path   string `yaml:"path,omitempty"`

	// Equals is the expected value (used by state_equals).
	Equals any `yaml:"equals,omitempty"`

	// Action is the action type (used by dispatch_count).
	Action string `yaml:"action,omitempty"`

	// Count is the expected number of dispatches (used by dispatch_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected dispatch order (used by dispatch_order).
	Actions []string `yaml:"actions,omitempty"`
}

// Step kinds.
const (
	StepDispatch    = "dispatch"
	StepSelectFirst = "select_first"
	StepSelect      = "select"
	StepExpect      = "expect"
)

// Assertion type constants.
const (
	AssertStateEquals   = "state_equals"
	AssertDispatchCount = "dispatch_count"
	AssertDispatchOrder = "dispatch_order"
)

// Expected error kinds.
const (
	ErrKindAny             = "any"
	ErrKindInvalidArgument = "invalid_argument"
	ErrKindLookupFailure   = "lookup_failure"
)

// LoadScenario reads and parses a scenario YAML file.
// Spec paths are resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve spec paths relative to base path BEFORE validation
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	for _, specPath := range scenario.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: spec file not found: %s", specPath)
		}
	}

	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
// Spec paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}
	if s.Mapping == nil {
		return fmt.Errorf("mapping is required (use [] for an empty multiplexer)")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	names := make(map[string]string)
	for i, e := range s.Mapping {
		if e.Name == "" {
			return fmt.Errorf("mapping[%d]: name is required", i)
		}
		if _, dup := names[e.Name]; dup && !s.AllowDuplicates {
			return fmt.Errorf("mapping[%d]: duplicate name %q (set allow_duplicates to permit)", i, e.Name)
		}
		names[e.Name] = "mapping"
	}

	for i, v := range s.Views {
		if v.Name == "" {
			return fmt.Errorf("views[%d]: name is required", i)
		}
		if _, dup := names[v.Name]; dup {
			return fmt.Errorf("views[%d]: name %q already used", i, v.Name)
		}
		if v.Target != "" && names[v.Target] != "mapping" {
			return fmt.Errorf("views[%d]: target %q is not a mapping name", i, v.Target)
		}
		if _, err := ir.ParsePath(v.Path); err != nil {
			return fmt.Errorf("views[%d]: %w", i, err)
		}
		if _, err := parsePolicy(v.Policy); err != nil {
			return fmt.Errorf("views[%d]: %w", i, err)
		}
		names[v.Name] = "view"
	}

	for i, step := range s.Steps {
		if err := validateStep(step, names); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, names); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(step Step, names map[string]string) error {
	set := 0
	for _, present := range []bool{step.Dispatch != nil, step.SelectFirst != nil, step.Select != nil, step.Expect != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of dispatch, select_first, select, expect is required")
	}

	switch {
	case step.Dispatch != nil:
		if step.Dispatch.Type == "" && step.Dispatch.ExpectError == "" {
			return fmt.Errorf("dispatch: type is required")
		}
		if err := checkTarget(step.Dispatch.To, names); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
		return checkErrorKind(step.Dispatch.ExpectError)

	case step.SelectFirst != nil:
		if step.SelectFirst.Want == "" && step.SelectFirst.ExpectError == "" {
			return fmt.Errorf("select_first: want or expect_error is required")
		}
		return checkErrorKind(step.SelectFirst.ExpectError)

	case step.Select != nil:
		if step.Select.Want == nil {
			return fmt.Errorf("select: want is required (use [] for no stores)")
		}

	case step.Expect != nil:
		if err := checkTarget(step.Expect.Target, names); err != nil {
			return fmt.Errorf("expect: %w", err)
		}
		if step.Expect.Path != "" {
			if _, err := ir.ParsePath(step.Expect.Path); err != nil {
				return fmt.Errorf("expect: %w", err)
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, names map[string]string) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStateEquals:
		if err := checkTarget(a.Target, names); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Path != "" {
			if _, err := ir.ParsePath(a.Path); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertDispatchCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for dispatch_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for dispatch_count", index)
		}
	case AssertDispatchOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for dispatch_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func checkTarget(target string, names map[string]string) error {
	if target == "" {
		return nil
	}
	if _, ok := names[target]; !ok {
		return fmt.Errorf("unknown target %q", target)
	}
	return nil
}

func checkErrorKind(kind string) error {
	switch kind {
	case "", ErrKindAny, ErrKindInvalidArgument, ErrKindLookupFailure:
		return nil
	}
	return fmt.Errorf("unknown expect_error %q", kind)
}

func parsePolicy(s string) (selector.Policy, error) {
	switch s {
	case "", "falsy":
		return selector.Falsy, nil
	case "absent":
		return selector.Absent, nil
	}
	return selector.Falsy, fmt.Errorf("unknown policy %q (want falsy or absent)", s)
}
