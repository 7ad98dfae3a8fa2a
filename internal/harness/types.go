package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Type string `json:"type"` // "dispatch", "select_first", "select" or "expect"
	Seq  int64  `json:"seq"`

	// Target is the mapping or view name the step addressed.
	Target string `json:"target,omitempty"`

	// Action and Payload describe a dispatch. ActionHash fingerprints both.
	Action     string `json:"action,omitempty"`
	Payload    any    `json:"payload,omitempty"`
	ActionHash string `json:"action_hash,omitempty"`

	// Results holds what the dispatch returned.
	Results any `json:"results,omitempty"`

	// Selected lists the mapping names a selection returned.
	Selected []string `json:"selected,omitempty"`

	// StateHash fingerprints the multiplexer state after the step.
	StateHash string `json:"state_hash,omitempty"`

	// Error is the step's error message, if it failed as expected.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step and assertion matched.
	Pass bool `json:"pass"`

	// RunToken identifies the run in logs.
	RunToken string `json:"run_token"`

	// Trace contains executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final multiplexer state.
	State any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
