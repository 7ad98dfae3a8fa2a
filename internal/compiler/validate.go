package compiler

import (
	"fmt"

	"github.com/roach88/storeplex/internal/reducer"
	"github.com/roach88/storeplex/pkg/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedType = "E100" // unsupported value passed to Validate

	// Store spec errors (E101-E109)
	ErrStoreNameEmpty   = "E101" // store name is required
	ErrUnknownOp        = "E102" // op is not one of reducer.Ops
	ErrMissingOperand   = "E103" // op needs value or from
	ErrInvalidOperand   = "E104" // literal operand has the wrong kind
	ErrDuplicateName    = "E105" // duplicate store name
	ErrMissingPath      = "E106" // op needs a non-empty path
	ErrUnexpectedField  = "E107" // field has no effect for op
	ErrEmptyActionType  = "E108" // action type is empty
	ErrInitialConflicts = "E109" // rule target conflicts with initial state
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled store specs against schema rules.
// Returns all errors found (does not fail-fast).
// Accepts a single *reducer.Spec or a slice of specs; the slice form also
// checks that store names are unique.
func Validate(v any) []ValidationError {
	switch val := v.(type) {
	case *reducer.Spec:
		return validateStoreSpec(val)
	case reducer.Spec:
		return validateStoreSpec(&val)
	case []reducer.Spec:
		return validateStoreSpecs(val)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

func validateStoreSpecs(specs []reducer.Spec) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for i := range specs {
		if name := specs[i].Name; name != "" {
			if seen[name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("store.%s", name),
					Message: fmt.Sprintf("duplicate store name: %q", name),
					Code:    ErrDuplicateName,
				})
			}
			seen[name] = true
		}
		errs = append(errs, validateStoreSpec(&specs[i])...)
	}
	return errs
}

func validateStoreSpec(spec *reducer.Spec) []ValidationError {
	var errs []ValidationError

	// E101: name is required
	if spec.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "store name is required and must be non-empty",
			Code:    ErrStoreNameEmpty,
		})
	}

	for _, actionType := range spec.ActionTypes() {
		if actionType == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("store.%s.on", spec.Name),
				Message: "action type must be non-empty",
				Code:    ErrEmptyActionType,
			})
		}
		for i, rule := range spec.On[actionType] {
			field := fmt.Sprintf("store.%s.on.%s[%d]", spec.Name, actionType, i)
			errs = append(errs, validateRule(spec, rule, field)...)
		}
	}

	return errs
}

func validateRule(spec *reducer.Spec, rule reducer.Rule, field string) []ValidationError {
	var errs []ValidationError

	// E102: op must be known
	if !rule.Op.Valid() {
		return []ValidationError{{
			Field:   field + ".op",
			Message: fmt.Sprintf("unknown op %q, must be one of %v", rule.Op, reducer.Ops),
			Code:    ErrUnknownOp,
		}}
	}

	switch rule.Op {
	case reducer.OpReset:
		// E107: reset ignores path and operands
		if len(rule.Path) > 0 || rule.Value != nil || rule.FromSet {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "reset takes no path, value or from",
				Code:    ErrUnexpectedField,
			})
		}
		return errs

	case reducer.OpDelete:
		// E106: delete needs a path
		if len(rule.Path) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".path",
				Message: "delete requires a non-empty path",
				Code:    ErrMissingPath,
			})
		}
		if rule.Value != nil || rule.FromSet {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "delete takes no value or from",
				Code:    ErrUnexpectedField,
			})
		}
		return errs
	}

	// E103: remaining ops need an operand
	if rule.Value == nil && !rule.FromSet {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s requires value or from", rule.Op),
			Code:    ErrMissingOperand,
		})
	}

	// E104: literal operands must have the right kind
	if rule.Value != nil {
		switch rule.Op {
		case reducer.OpAdd:
			if _, ok := rule.Value.(ir.IRInt); !ok {
				errs = append(errs, ValidationError{
					Field:   field + ".value",
					Message: "add value must be an integer",
					Code:    ErrInvalidOperand,
				})
			}
		case reducer.OpMerge:
			if _, ok := rule.Value.(ir.IRObject); !ok {
				errs = append(errs, ValidationError{
					Field:   field + ".value",
					Message: "merge value must be an object",
					Code:    ErrInvalidOperand,
				})
			}
		}
	}

	// E109: the target must fit the initial state
	if msg := initialConflict(spec.Initial, rule); msg != "" {
		errs = append(errs, ValidationError{
			Field:   field + ".path",
			Message: msg,
			Code:    ErrInitialConflicts,
		})
	}

	return errs
}

// initialConflict reports when the rule's target already holds a value of
// the wrong kind in the initial state.
func initialConflict(initial ir.IRValue, rule reducer.Rule) string {
	target, ok := ir.LookupPath(initial, rule.Path)
	if !ok || ir.IsAbsent(target) {
		return ""
	}
	switch rule.Op {
	case reducer.OpAdd:
		if _, isInt := target.(ir.IRInt); !isInt {
			return fmt.Sprintf("add target %q is not an integer in initial state", rule.Path.String())
		}
	case reducer.OpAppend:
		if _, isArr := target.(ir.IRArray); !isArr {
			return fmt.Sprintf("append target %q is not an array in initial state", rule.Path.String())
		}
	case reducer.OpMerge:
		if _, isObj := target.(ir.IRObject); !isObj {
			return fmt.Sprintf("merge target %q is not an object in initial state", rule.Path.String())
		}
	}
	return ""
}
