package selector

import "github.com/roach88/storeplex/pkg/ir"

// Selector is a selection path captured once and applied to many states.
type Selector struct {
	path ir.Path
	opts []Option
}

// New captures keys as a selection path. opts apply to every Select call
// and can be overridden per call.
func New(keys ...ir.Key) Selector {
	return Selector{path: ir.Path(keys).Append()}
}

// WithOptions returns a copy of sel with opts applied to every selection.
func (sel Selector) WithOptions(opts ...Option) Selector {
	merged := make([]Option, 0, len(sel.opts)+len(opts))
	merged = append(merged, sel.opts...)
	merged = append(merged, opts...)
	return Selector{path: sel.path, opts: merged}
}

// Path returns a copy of the captured path.
func (sel Selector) Path() ir.Path {
	return sel.path.Append()
}

// Select applies the captured path to state.
func (sel Selector) Select(state ir.IRValue, opts ...Option) (ir.IRValue, error) {
	all := make([]Option, 0, len(sel.opts)+len(opts))
	all = append(all, sel.opts...)
	all = append(all, opts...)
	return Select(sel.path, state, all...)
}

// NewStateBisector returns a factory of selectors rooted at keys. Each call
// with an id selects keys followed by id, for carving per-entity slices
// out of a collection:
//
//	byID := selector.NewStateBisector(ir.F("entities"), ir.F("users"))
//	name, err := byID(ir.F("u1")).Select(state)
func NewStateBisector(keys ...ir.Key) func(id ir.Key) Selector {
	prefix := ir.Path(keys).Append()
	return func(id ir.Key) Selector {
		return New(prefix.Append(id)...)
	}
}
