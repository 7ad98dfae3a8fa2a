package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/storeplex/internal/reducer"
	"github.com/roach88/storeplex/pkg/ir"
)

// CompileStore parses a CUE store declaration into a reducer.Spec.
//
// The CUE value should be the store struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`store: counter: { initial: {count: 0}, on: INCREMENT: [{op: "add", path: "count", value: 1}] }`)
//	spec, err := CompileStore(v.LookupPath(cue.ParsePath("store.counter")))
func CompileStore(v cue.Value) (*reducer.Spec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &reducer.Spec{On: make(map[string][]reducer.Rule)}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	// initial is optional; a store without one starts absent.
	initialVal := v.LookupPath(cue.ParsePath("initial"))
	if initialVal.Exists() {
		initial, err := concreteValue(initialVal, "initial")
		if err != nil {
			return nil, err
		}
		spec.Initial = initial
	}

	onVal := v.LookupPath(cue.ParsePath("on"))
	if !onVal.Exists() {
		return spec, nil
	}

	iter, err := onVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		actionType := iter.Label()
		rules, err := parseRules(actionType, iter.Value())
		if err != nil {
			return nil, err
		}
		spec.On[actionType] = rules
	}

	return spec, nil
}

// parseRules parses the rule list for one action type.
func parseRules(actionType string, v cue.Value) ([]reducer.Rule, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   fmt.Sprintf("on.%s", actionType),
			Message: "rules must be a list",
			Pos:     v.Pos(),
		}
	}

	var rules []reducer.Rule
	for i := 0; list.Next(); i++ {
		rule, err := parseRule(fmt.Sprintf("on.%s[%d]", actionType, i), list.Value())
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func parseRule(field string, v cue.Value) (reducer.Rule, error) {
	var rule reducer.Rule

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return rule, &CompileError{Field: field + ".op", Message: "op is required", Pos: v.Pos()}
	}
	op, err := opVal.String()
	if err != nil {
		return rule, formatCUEError(err)
	}
	rule.Op = reducer.Op(op)

	pathVal := v.LookupPath(cue.ParsePath("path"))
	if pathVal.Exists() {
		rule.Path, err = parsePathField(pathVal, field+".path")
		if err != nil {
			return rule, err
		}
	}

	valueVal := v.LookupPath(cue.ParsePath("value"))
	if valueVal.Exists() {
		rule.Value, err = concreteValue(valueVal, field+".value")
		if err != nil {
			return rule, err
		}
	}

	fromVal := v.LookupPath(cue.ParsePath("from"))
	if fromVal.Exists() {
		if valueVal.Exists() {
			return rule, &CompileError{
				Field:   field,
				Message: "value and from are mutually exclusive",
				Pos:     fromVal.Pos(),
			}
		}
		rule.From, err = parsePathField(fromVal, field+".from")
		if err != nil {
			return rule, err
		}
		rule.FromSet = true
	}

	return rule, nil
}

// parsePathField reads a dot-separated path. The empty string is the root.
func parsePathField(v cue.Value, field string) (ir.Path, error) {
	s, err := v.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if s == "" {
		return nil, nil
	}
	p, err := ir.ParsePath(s)
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return p, nil
}

// concreteValue converts a concrete CUE value into state.
// Floats are forbidden.
func concreteValue(v cue.Value, field string) (ir.IRValue, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("value must be concrete: %v", err),
			Pos:     v.Pos(),
		}
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	val, err := ir.UnmarshalIRValue(data)
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: err.Error() + " - use int instead",
			Pos:     v.Pos(),
		}
	}
	return val, nil
}
