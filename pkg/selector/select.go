package selector

import (
	"fmt"

	"github.com/roach88/storeplex/pkg/ir"
	"github.com/roach88/storeplex/pkg/store"
)

// Select walks path through state and returns the value it reaches.
//
// The walk stops at the first key whose value is missing under the
// configured Policy. A missing result yields the default from WithDefault,
// or nil when none was given. With Required and no default, a missing key
// is reported as a lookup failure naming the key chain.
//
// Select never mutates state; the returned value shares structure with it.
func Select(path ir.Path, state ir.IRValue, opts ...Option) (ir.IRValue, error) {
	return selectWith(path, state, Apply(opts...))
}

func selectWith(path ir.Path, state ir.IRValue, s Settings) (ir.IRValue, error) {
	if s.Assertions {
		if len(path) == 0 {
			return nil, store.NewInvalidArgument("selector.Select", "selection path must contain at least one key")
		}
		if ir.IsAbsent(state) {
			return nil, store.NewInvalidArgument("selector.Select", "state must exist")
		}
	}

	if len(path) == 0 {
		if s.Policy.Missing(state) {
			return s.fallback(), nil
		}
		return state, nil
	}

	current := state
	for i, key := range path {
		next, ok := ir.Lookup(current, key)
		if !ok || s.Policy.Missing(next) {
			if s.Required && !s.HasDefault {
				return nil, missingKey(path, i)
			}
			return s.fallback(), nil
		}
		current = next
	}
	return current, nil
}

func missingKey(path ir.Path, at int) error {
	key := path[at].String()
	return store.NewLookupFailure("selector.Select",
		fmt.Sprintf("%q state must exist in key chain", key),
		map[string]string{
			"chain": "[" + path.String() + "]",
			"hint":  fmt.Sprintf("did you forget to mount the %q reducer?", path[0].String()),
		})
}
