package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/storeplex/pkg/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nDispatches:\n")
	for _, event := range e.Trace {
		if event.Type == StepDispatch {
			target := event.Target
			if target == "" {
				target = "*"
			}
			fmt.Fprintf(&buf, "  [%d] %s -> %s\n", event.Seq, event.Action, target)
		}
	}

	return buf.String()
}

// StateReader reads state for state assertions. *Harness implements it.
type StateReader interface {
	StateAt(target, path string) (ir.IRValue, error)
}

// EvaluateAssertions runs every assertion and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, states StateReader) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertStateEquals:
			err = assertStateEquals(result.Trace, a, states)
		case AssertDispatchCount:
			err = assertDispatchCount(result.Trace, a)
		case AssertDispatchOrder:
			err = assertDispatchOrder(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return failures
}

// assertStateEquals compares the final state at target/path with Equals.
func assertStateEquals(trace []TraceEvent, a Assertion, states StateReader) error {
	actual, err := states.StateAt(a.Target, a.Path)
	if err != nil {
		return err
	}
	diff, err := diffState(a.Equals, actual)
	if err != nil {
		return err
	}
	if diff == "" {
		return nil
	}
	return &AssertionError{
		Type:     AssertStateEquals,
		Expected: fmt.Sprintf("%s equals %v", describeLocation(a.Target, a.Path), a.Equals),
		Actual:   fmt.Sprintf("diff (-want +got):\n%s", diff),
		Trace:    trace,
	}
}

// assertDispatchCount checks that the action was dispatched exactly Count times.
func assertDispatchCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == StepDispatch && event.Action == a.Action {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertDispatchCount,
			Expected: fmt.Sprintf("%d dispatches of %s", a.Count, a.Action),
			Actual:   fmt.Sprintf("%d dispatches", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertDispatchOrder checks that actions were first dispatched in the
// given order. Other dispatches may occur in between.
func assertDispatchOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if event.Type != StepDispatch {
			continue
		}
		if _, seen := positions[event.Action]; !seen {
			positions[event.Action] = i + 1 // 1-indexed for readability
		}
	}

	for _, action := range a.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertDispatchOrder,
				Expected: fmt.Sprintf("all actions dispatched: %v", a.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Actions); i++ {
		prev, curr := a.Actions[i-1], a.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertDispatchOrder,
				Expected: fmt.Sprintf("actions in order: %v", a.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}
