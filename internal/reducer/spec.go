package reducer

import (
	"fmt"
	"sort"

	"github.com/roach88/storeplex/pkg/ir"
	"github.com/roach88/storeplex/pkg/store"
)

// Op identifies a rule operation.
type Op string

const (
	// OpSet stores a value (or part of the payload) at Path.
	OpSet Op = "set"

	// OpAdd adds an integer to the integer at Path. Absent counts as 0.
	OpAdd Op = "add"

	// OpAppend appends a value to the array at Path. Absent counts as [].
	OpAppend Op = "append"

	// OpMerge shallow-merges an object into the object at Path.
	OpMerge Op = "merge"

	// OpDelete removes the value at Path.
	OpDelete Op = "delete"

	// OpReset restores the spec's initial state.
	OpReset Op = "reset"
)

// Ops lists every supported operation.
var Ops = []Op{OpSet, OpAdd, OpAppend, OpMerge, OpDelete, OpReset}

// Valid reports whether op is a supported operation.
func (op Op) Valid() bool {
	for _, o := range Ops {
		if o == op {
			return true
		}
	}
	return false
}

// Rule is one state update triggered by an action.
type Rule struct {
	Op Op

	// Path locates the target. An empty path targets the whole state.
	Path ir.Path

	// Value is the literal operand.
	Value ir.IRValue

	// With FromSet the operand is read from the action payload at From
	// instead of Value. An empty From uses the whole payload.
	From    ir.Path
	FromSet bool
}

// Spec is a compiled store declaration.
type Spec struct {
	Name    string
	Initial ir.IRValue
	On      map[string][]Rule
}

// ActionTypes returns the action types the spec reacts to, sorted.
func (s *Spec) ActionTypes() []string {
	types := make([]string, 0, len(s.On))
	for t := range s.On {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// NewStore builds a store.Basic running the spec's reducer.
func (s *Spec) NewStore(opts ...store.Option) (*store.Basic, error) {
	if s == nil {
		return nil, store.NewInvalidArgument("reducer.NewStore", "spec must exist")
	}
	opts = append([]store.Option{store.WithName(s.Name)}, opts...)
	b, err := store.New(Build(s), s.Initial, opts...)
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", s.Name, err)
	}
	return b, nil
}
