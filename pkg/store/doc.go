// Package store defines the minimal store contract shared by every helper in
// this module, plus a reference reducer-backed implementation.
//
// A Store accepts actions through Dispatch and exposes its current state
// through GetState. Stores that can notify observers also implement
// Subscriber. Anything with these methods qualifies; Funcs adapts plain
// closures so callers never need a named type:
//
//	s := store.Funcs{
//	    DispatchFunc: func(a store.Action) (any, error) { return a, nil },
//	    GetStateFunc: func() ir.IRValue { return ir.IRObject{} },
//	}
//
// The reference implementation mirrors the usual reducer store:
//
//	counter, err := store.New(func(state ir.IRValue, a store.Action) (ir.IRValue, error) {
//	    if a.Type == "INCREMENT" {
//	        n, _ := state.(ir.IRInt)
//	        return n + 1, nil
//	    }
//	    return state, nil
//	}, ir.IRInt(0))
//
// # Concurrency
//
// Everything here is synchronous. Basic is not safe for concurrent use;
// callers serialize access to it the same way they would to any single
// state container.
package store
