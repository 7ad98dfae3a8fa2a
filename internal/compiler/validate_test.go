package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storeplex/internal/reducer"
	"github.com/roach88/storeplex/pkg/ir"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateStoreSpecValid(t *testing.T) {
	spec := &reducer.Spec{
		Name:    "todos",
		Initial: ir.IRObject{"items": ir.IRArray{}, "count": ir.IRInt(0)},
		On: map[string][]reducer.Rule{
			"ADD": {
				{Op: reducer.OpAppend, Path: ir.Keys("items"), FromSet: true},
				{Op: reducer.OpAdd, Path: ir.Keys("count"), Value: ir.IRInt(1)},
			},
			"REMOVE": {{Op: reducer.OpDelete, Path: ir.Keys("items", "0")}},
			"CLEAR":  {{Op: reducer.OpReset}},
		},
	}

	assert.Empty(t, Validate(spec))
	assert.Empty(t, Validate(*spec))
}

func TestValidateStoreSpecErrors(t *testing.T) {
	tests := []struct {
		name string
		rule reducer.Rule
		want string
	}{
		{name: "unknown op", rule: reducer.Rule{Op: "multiply"}, want: ErrUnknownOp},
		{name: "set without operand", rule: reducer.Rule{Op: reducer.OpSet, Path: ir.Keys("x")}, want: ErrMissingOperand},
		{name: "add string", rule: reducer.Rule{Op: reducer.OpAdd, Path: ir.Keys("x"), Value: ir.IRString("1")}, want: ErrInvalidOperand},
		{name: "merge scalar", rule: reducer.Rule{Op: reducer.OpMerge, Path: ir.Keys("x"), Value: ir.IRInt(1)}, want: ErrInvalidOperand},
		{name: "delete root", rule: reducer.Rule{Op: reducer.OpDelete}, want: ErrMissingPath},
		{name: "reset with path", rule: reducer.Rule{Op: reducer.OpReset, Path: ir.Keys("x")}, want: ErrUnexpectedField},
		{name: "add to string field", rule: reducer.Rule{Op: reducer.OpAdd, Path: ir.Keys("label"), Value: ir.IRInt(1)}, want: ErrInitialConflicts},
		{name: "append to object", rule: reducer.Rule{Op: reducer.OpAppend, Path: ir.Keys("meta"), Value: ir.IRInt(1)}, want: ErrInitialConflicts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := &reducer.Spec{
				Name:    "s",
				Initial: ir.IRObject{"label": ir.IRString("x"), "meta": ir.IRObject{}},
				On:      map[string][]reducer.Rule{"GO": {tt.rule}},
			}
			errs := Validate(spec)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.want, errs[0].Code)
			assert.Contains(t, errs[0].Field, "store.s.on.GO[0]")
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	spec := &reducer.Spec{
		On: map[string][]reducer.Rule{
			"A": {{Op: "bogus"}, {Op: reducer.OpSet}},
			"":  {{Op: reducer.OpReset}},
		},
	}

	errs := Validate(spec)
	assert.Equal(t, []string{ErrStoreNameEmpty, ErrEmptyActionType, ErrUnknownOp, ErrMissingOperand}, codes(errs))
}

func TestValidateDuplicateNames(t *testing.T) {
	specs := []reducer.Spec{{Name: "a"}, {Name: "b"}, {Name: "a"}}
	errs := Validate(specs)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateName, errs[0].Code)
	assert.Contains(t, errs[0].Message, `"a"`)
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("nope")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedType, errs[0].Code)
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "f", Message: "m", Code: "E101"}
	assert.Equal(t, "[E101] f: m", e.Error())
	e.Line = 4
	assert.Equal(t, "[E101] line 4: f: m", e.Error())
}
