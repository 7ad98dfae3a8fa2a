// Package bisect narrows a store's visible state to a sub-tree.
//
// A bisected store forwards Dispatch and Subscribe to the store it wraps,
// while GetState applies a selector to the wrapped store's live state:
//
//	todos, err := bisect.Keys(ir.F("todos")).Bisect(app,
//	    selector.WithDefault(ir.IRArray{}))
package bisect

import (
	"github.com/roach88/storeplex/pkg/ir"
	"github.com/roach88/storeplex/pkg/selector"
	"github.com/roach88/storeplex/pkg/store"
)

// Bisector captures a selection path to apply to stores.
type Bisector struct {
	path ir.Path
}

// Keys returns a Bisector for the path formed by keys.
func Keys(keys ...ir.Key) Bisector {
	return Bisector{path: ir.Path(keys).Append()}
}

// Path returns a copy of the captured path.
func (b Bisector) Path() ir.Path {
	return b.path.Append()
}

// Bisect wraps s so that GetState returns the sub-tree at the captured
// path. opts configure the selection (default value, policy). Required is
// rejected because GetState has no way to report a missing key. With
// assertions disabled an empty path exposes the whole state; s is
// checked either way.
func (b Bisector) Bisect(s store.Store, opts ...selector.Option) (*Store, error) {
	settings := selector.Apply(opts...)
	if settings.Assertions && len(b.path) == 0 {
		return nil, store.NewInvalidArgument("bisect.Bisect", "bisect keys must contain at least one key")
	}
	if err := store.Check("bisect.Bisect", s); err != nil {
		return nil, err
	}
	if settings.Required {
		return nil, store.NewInvalidArgument("bisect.Bisect", "required selection is not supported by bisected stores")
	}

	// Read-time validation would only fail on absent state, which the
	// selection turns into the default.
	opts = append(opts[:len(opts):len(opts)], selector.WithAssertions(false))

	return &Store{
		inner: s,
		sel:   selector.New(b.path...).WithOptions(opts...),
	}, nil
}

// Store is a bisected view over another store.
// It implements store.Observable.
type Store struct {
	inner store.Store
	sel   selector.Selector
}

// Dispatch forwards action to the wrapped store.
func (s *Store) Dispatch(action store.Action) (any, error) {
	return s.inner.Dispatch(action)
}

// GetState selects the sub-tree from the wrapped store's current state.
func (s *Store) GetState() ir.IRValue {
	// Assertions are disabled, so selection cannot fail.
	v, _ := s.sel.Select(s.inner.GetState())
	return v
}

// Subscribe forwards to the wrapped store, or returns a no-op
// Unsubscribe when it does not support subscriptions.
func (s *Store) Subscribe(listener store.Listener) store.Unsubscribe {
	return store.SubscribeTo(s.inner, listener)
}

// Unwrap returns the wrapped store.
func (s *Store) Unwrap() store.Store {
	return s.inner
}
