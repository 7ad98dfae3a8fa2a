package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/storeplex/pkg/ir"
)

// TraceSnapshot captures the trace of a scenario execution.
// It is serialized with canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunToken     string       `json:"run_token,omitempty"`
	Trace        []TraceEvent `json:"trace"`
	State        any          `json:"state,omitempty"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization, which only accepts IR values and plain Go values.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		if event.Target != "" {
			eventMap["target"] = event.Target
		}
		if event.Action != "" {
			eventMap["action"] = event.Action
		}
		if event.Payload != nil {
			eventMap["payload"] = event.Payload
		}
		if event.ActionHash != "" {
			eventMap["action_hash"] = event.ActionHash
		}
		if event.Results != nil {
			eventMap["results"] = event.Results
		}
		if event.Selected != nil {
			selected := make([]any, len(event.Selected))
			for j, name := range event.Selected {
				selected[j] = name
			}
			eventMap["selected"] = selected
		}
		if event.StateHash != "" {
			eventMap["state_hash"] = event.StateHash
		}
		if event.Error != "" {
			eventMap["error"] = event.Error
		}
		traceList[i] = eventMap
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
	if s.RunToken != "" {
		result["run_token"] = s.RunToken
	}
	if s.State != nil {
		result["state"] = s.State
	}
	return result
}

// MarshalCanonical serializes the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// Snapshot builds the trace snapshot for a result. The run token is only
// included when the scenario pins one, so generated tokens never leak
// into golden files.
func Snapshot(scenario *Scenario, result *Result) *TraceSnapshot {
	return &TraceSnapshot{
		ScenarioName: scenario.Name,
		RunToken:     scenario.RunToken,
		Trace:        result.Trace,
		State:        result.State,
	}
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}

	traceJSON, err := Snapshot(scenario, result).MarshalCanonical()
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
