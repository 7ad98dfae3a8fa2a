package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/storeplex/internal/compiler"
	"github.com/roach88/storeplex/internal/reducer"
	"github.com/roach88/storeplex/internal/testutil"
	"github.com/roach88/storeplex/pkg/bisect"
	"github.com/roach88/storeplex/pkg/ir"
	"github.com/roach88/storeplex/pkg/multiplex"
	"github.com/roach88/storeplex/pkg/selector"
	"github.com/roach88/storeplex/pkg/store"
)

// Harness holds the stores built for one scenario run.
type Harness struct {
	mux     *multiplex.Multiplexer
	members map[string]store.Store
	views   map[string]*bisect.Store
	names   map[store.Store]string
	clock   *testutil.DeterministicClock
	logger  *slog.Logger
	token   string
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
	tokens TokenGenerator
}

// WithLogger sets the logger for the run and the stores it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTokenGenerator sets the run token source used when the scenario
// pins no run_token.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(c *runConfig) {
		if g != nil {
			c.tokens = g
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each run compiles the scenario's specs into fresh stores, so runs are
// isolated. Step mismatches and failed assertions are reported in the
// Result; an error means the scenario could not be set up.
//
// Execution flow:
// 1. Compile store specs
// 2. Build mapping members, the multiplexer and views
// 3. Execute steps, recording the trace
// 4. Evaluate assertions
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	token := scenario.RunToken
	if token == "" {
		token = cfg.tokens.Generate()
	}

	h, err := build(scenario, cfg.logger.With("run", token))
	if err != nil {
		return nil, err
	}
	h.token = token

	result := NewResult()
	result.RunToken = token

	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Kind(), err)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h) {
		result.AddError(msg)
	}

	result.State = ir.ToGo(h.mux.GetState())

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass)

	return result, nil
}

// build compiles specs and wires stores for a scenario.
func build(scenario *Scenario, logger *slog.Logger) (*Harness, error) {
	specs := make(map[string]*reducer.Spec)
	for _, path := range scenario.Specs {
		compiled, err := compiler.CompileFile(path)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		for i := range compiled {
			name := compiled[i].Name
			if _, dup := specs[name]; dup {
				return nil, fmt.Errorf("store %q declared more than once", name)
			}
			specs[name] = &compiled[i]
		}
	}

	h := &Harness{
		members: make(map[string]store.Store),
		views:   make(map[string]*bisect.Store),
		names:   make(map[store.Store]string),
		clock:   testutil.NewDeterministicClock(),
		logger:  logger,
	}

	entries := make([]multiplex.Entry, 0, len(scenario.Mapping))
	for _, e := range scenario.Mapping {
		spec, ok := specs[e.SpecName()]
		if !ok {
			return nil, fmt.Errorf("mapping %q: unknown store spec %q", e.Name, e.SpecName())
		}
		s, err := spec.NewStore(store.WithName(e.Name), store.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", e.Name, err)
		}
		entries = append(entries, multiplex.Entry{Name: e.Name, Store: s})
		h.members[e.Name] = s
		h.names[s] = e.Name
	}

	muxOpts := []multiplex.Option{multiplex.WithLogger(logger)}
	if scenario.AllowDuplicates {
		muxOpts = append(muxOpts, multiplex.AllowDuplicates())
	}
	mux, err := multiplex.New(entries, muxOpts...)
	if err != nil {
		return nil, fmt.Errorf("build multiplexer: %w", err)
	}
	h.mux = mux

	for _, v := range scenario.Views {
		view, err := h.buildView(v)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", v.Name, err)
		}
		h.views[v.Name] = view
	}

	return h, nil
}

func (h *Harness) buildView(v View) (*bisect.Store, error) {
	path, err := ir.ParsePath(v.Path)
	if err != nil {
		return nil, err
	}
	policy, err := parsePolicy(v.Policy)
	if err != nil {
		return nil, err
	}

	opts := []selector.Option{selector.WithPolicy(policy)}
	if v.Default != nil {
		def, err := ir.FromGo(v.Default)
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		opts = append(opts, selector.WithDefault(def))
	}

	target, err := h.resolve(v.Target)
	if err != nil {
		return nil, err
	}
	return bisect.Keys(path...).Bisect(target, opts...)
}

// resolve maps a target name to a store. Empty names the multiplexer.
func (h *Harness) resolve(name string) (store.Store, error) {
	if name == "" {
		return h.mux, nil
	}
	if s, ok := h.members[name]; ok {
		// Mapping lookups go through the multiplexer so duplicate names
		// resolve to the winning entry.
		if winner, ok := h.mux.Store(name); ok {
			return winner, nil
		}
		return s, nil
	}
	if v, ok := h.views[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unknown target %q", name)
}

// StateAt returns the state of target at path (dot-separated, empty for
// the whole state). Missing values are nil.
func (h *Harness) StateAt(target, path string) (ir.IRValue, error) {
	s, err := h.resolve(target)
	if err != nil {
		return nil, err
	}
	state := s.GetState()
	if path == "" {
		return state, nil
	}
	p, err := ir.ParsePath(path)
	if err != nil {
		return nil, err
	}
	return selector.Select(p, state, selector.WithPolicy(selector.Absent), selector.WithAssertions(false))
}

func (h *Harness) stateHash() (string, error) {
	return ir.StateHash(h.mux.GetState())
}

func (h *Harness) executeStep(i int, step Step, result *Result) error {
	switch {
	case step.Dispatch != nil:
		return h.executeDispatch(i, step.Dispatch, result)
	case step.SelectFirst != nil:
		return h.executeSelectFirst(i, step.SelectFirst, result)
	case step.Select != nil:
		return h.executeSelect(i, step.Select, result)
	case step.Expect != nil:
		return h.executeExpect(i, step.Expect, result)
	}
	return fmt.Errorf("empty step")
}

func (h *Harness) executeDispatch(i int, step *DispatchStep, result *Result) error {
	target, err := h.resolve(step.To)
	if err != nil {
		return err
	}

	action := store.Action{Type: step.Type}
	if step.Payload != nil {
		action.Payload, err = ir.FromGo(step.Payload)
		if err != nil {
			return fmt.Errorf("payload: %w", err)
		}
	}

	actionHash, err := ir.ActionHash(action.Type, action.Payload)
	if err != nil {
		return err
	}

	ret, dispatchErr := target.Dispatch(action)

	hash, err := h.stateHash()
	if err != nil {
		return err
	}
	event := TraceEvent{
		Type:       StepDispatch,
		Seq:        h.clock.Next(),
		Target:     step.To,
		Action:     action.Type,
		Payload:    ir.ToGo(action.Payload),
		ActionHash: actionHash,
		Results:    describeReturn(ret),
		StateHash:  hash,
	}

	if msg := checkExpectedError(step.ExpectError, dispatchErr); msg != "" {
		result.AddError(fmt.Sprintf("step %d: dispatch %s: %s", i, action.Type, msg))
	}
	if dispatchErr != nil {
		event.Error = dispatchErr.Error()
	}
	result.AddTrace(event)

	h.logger.Info("dispatch step completed",
		"step", i,
		"target", step.To,
		"action", action.Type,
		"state_hash", hash,
		"error", dispatchErr)
	return nil
}

func (h *Harness) executeSelectFirst(i int, step *SelectFirstStep, result *Result) error {
	s, err := h.mux.SelectFirst(step.Names...)

	event := TraceEvent{
		Type: StepSelectFirst,
		Seq:  h.clock.Next(),
	}
	if err == nil {
		event.Selected = []string{h.names[s]}
		if step.Want != "" && h.names[s] != step.Want {
			result.AddError(fmt.Sprintf("step %d: select_first %v: expected %q, got %q", i, step.Names, step.Want, h.names[s]))
		}
	} else {
		event.Error = err.Error()
	}
	if msg := checkExpectedError(step.ExpectError, err); msg != "" {
		result.AddError(fmt.Sprintf("step %d: select_first %v: %s", i, step.Names, msg))
	}
	result.AddTrace(event)

	h.logger.Info("select_first step completed", "step", i, "names", step.Names, "error", err)
	return nil
}

func (h *Harness) executeSelect(i int, step *SelectStep, result *Result) error {
	stores := h.mux.Select(step.Names...)
	got := make([]string, len(stores))
	for j, s := range stores {
		got[j] = h.names[s]
	}

	if diff := cmp.Diff(step.Want, got); diff != "" {
		result.AddError(fmt.Sprintf("step %d: select %v mismatch (-want +got):\n%s", i, step.Names, diff))
	}
	result.AddTrace(TraceEvent{
		Type:     StepSelect,
		Seq:      h.clock.Next(),
		Selected: got,
	})

	h.logger.Info("select step completed", "step", i, "names", step.Names, "selected", got)
	return nil
}

func (h *Harness) executeExpect(i int, step *ExpectStep, result *Result) error {
	actual, err := h.StateAt(step.Target, step.Path)
	if err != nil {
		return err
	}

	event := TraceEvent{
		Type:   StepExpect,
		Seq:    h.clock.Next(),
		Target: step.Target,
	}
	diff, err := diffState(step.Equals, actual)
	if err != nil {
		return err
	}
	if diff != "" {
		msg := fmt.Sprintf("step %d: expect %s mismatch (-want +got):\n%s", i, describeLocation(step.Target, step.Path), diff)
		result.AddError(msg)
		event.Error = "mismatch"
	}
	result.AddTrace(event)
	return nil
}

// diffState compares an expected YAML value with state.
func diffState(expected any, actual ir.IRValue) (string, error) {
	want, err := ir.FromGo(expected)
	if err != nil {
		return "", fmt.Errorf("expected value: %w", err)
	}
	return cmp.Diff(ir.ToGo(want), ir.ToGo(actual)), nil
}

// checkExpectedError compares an error against an expected error kind and
// returns a mismatch description, or "" when they agree.
func checkExpectedError(kind string, err error) string {
	if kind == "" {
		if err != nil {
			return fmt.Sprintf("unexpected error: %v", err)
		}
		return ""
	}
	if err == nil {
		return fmt.Sprintf("expected %s error, got none", kind)
	}
	switch kind {
	case ErrKindInvalidArgument:
		if !store.IsInvalidArgument(err) {
			return fmt.Sprintf("expected invalid_argument error, got: %v", err)
		}
	case ErrKindLookupFailure:
		if !store.IsLookupFailure(err) {
			return fmt.Sprintf("expected lookup_failure error, got: %v", err)
		}
	}
	return ""
}

// describeReturn turns a Dispatch return value into trace data.
func describeReturn(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case store.Action:
		out := map[string]any{"type": val.Type}
		if val.Payload != nil {
			out["payload"] = ir.ToGo(val.Payload)
		}
		return out
	case multiplex.Results:
		out := make(map[string]any, len(val))
		for name, r := range val {
			out[name] = describeReturn(r)
		}
		return out
	case ir.IRValue:
		return ir.ToGo(val)
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}

func describeLocation(target, path string) string {
	if target == "" {
		target = "<multiplexer>"
	}
	if path == "" {
		return target
	}
	return target + "." + path
}
