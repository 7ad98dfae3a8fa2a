package reducer

import (
	"fmt"

	"github.com/roach88/storeplex/pkg/ir"
	"github.com/roach88/storeplex/pkg/store"
)

// RuleError reports a rule that could not be applied.
type RuleError struct {
	Action string
	Index  int
	Op     Op
	Path   ir.Path
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("action %s rule %d (%s %q): %v", e.Action, e.Index, e.Op, e.Path.String(), e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Build returns a reducer that applies spec's rules.
//
// The init action (and any action reaching an absent state) starts from
// spec.Initial.
func Build(spec *Spec) store.Reducer {
	return func(state ir.IRValue, action store.Action) (ir.IRValue, error) {
		if state == nil {
			state = spec.Initial
		}

		rules, ok := spec.On[action.Type]
		if !ok {
			return state, nil
		}

		next := state
		for i, rule := range rules {
			var err error
			next, err = apply(spec, next, rule, action)
			if err != nil {
				return nil, &RuleError{Action: action.Type, Index: i, Op: rule.Op, Path: rule.Path, Err: err}
			}
		}
		return next, nil
	}
}

func apply(spec *Spec, state ir.IRValue, rule Rule, action store.Action) (ir.IRValue, error) {
	switch rule.Op {
	case OpReset:
		return spec.Initial, nil
	case OpDelete:
		return ir.DeleteIn(state, rule.Path)
	}

	operand, err := operand(rule, action)
	if err != nil {
		return nil, err
	}
	current, _ := ir.LookupPath(state, rule.Path)

	var updated ir.IRValue
	switch rule.Op {
	case OpSet:
		updated = operand

	case OpAdd:
		delta, ok := operand.(ir.IRInt)
		if !ok {
			return nil, fmt.Errorf("add operand must be an integer, got %T", operand)
		}
		var base ir.IRInt
		switch cur := current.(type) {
		case nil, ir.IRNull:
		case ir.IRInt:
			base = cur
		default:
			return nil, fmt.Errorf("add target must be an integer, got %T", current)
		}
		updated = base + delta

	case OpAppend:
		var arr ir.IRArray
		switch cur := current.(type) {
		case nil, ir.IRNull:
		case ir.IRArray:
			arr = cur
		default:
			return nil, fmt.Errorf("append target must be an array, got %T", current)
		}
		out := make(ir.IRArray, 0, len(arr)+1)
		out = append(out, arr...)
		updated = append(out, operand)

	case OpMerge:
		patch, ok := operand.(ir.IRObject)
		if !ok {
			return nil, fmt.Errorf("merge operand must be an object, got %T", operand)
		}
		out := make(ir.IRObject)
		switch cur := current.(type) {
		case nil, ir.IRNull:
		case ir.IRObject:
			for k, v := range cur {
				out[k] = v
			}
		default:
			return nil, fmt.Errorf("merge target must be an object, got %T", current)
		}
		for k, v := range patch {
			out[k] = v
		}
		updated = out

	default:
		return nil, fmt.Errorf("unknown op %q", rule.Op)
	}

	if len(rule.Path) == 0 {
		return updated, nil
	}
	return ir.SetIn(state, rule.Path, updated)
}

func operand(rule Rule, action store.Action) (ir.IRValue, error) {
	if !rule.FromSet {
		if rule.Value == nil {
			return ir.IRNull{}, nil
		}
		return rule.Value, nil
	}
	if len(rule.From) == 0 {
		if action.Payload == nil {
			return nil, fmt.Errorf("action %s has no payload", action.Type)
		}
		return action.Payload, nil
	}
	v, ok := ir.LookupPath(action.Payload, rule.From)
	if !ok {
		return nil, fmt.Errorf("payload has no value at %q", rule.From.String())
	}
	return v, nil
}
