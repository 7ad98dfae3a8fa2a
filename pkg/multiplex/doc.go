// Package multiplex combines independent stores behind one store facade.
//
// A Multiplexer is built from an ordered name→store mapping. Dispatch
// broadcasts an action to every member in mapping order, GetState returns
// an object keyed by member name, and Select/SelectFirst hand back the
// underlying members:
//
//	mux, err := multiplex.New([]multiplex.Entry{
//	    {Name: "session", Store: session},
//	    {Name: "cart", Store: cart},
//	})
//	results, err := mux.Dispatch(store.Action{Type: "RESET"})
//	cart, err := mux.SelectFirst("cart", "session")
//
// The mapping is fixed at construction. A member whose GetState returns
// absent state (nil) appears as null in the combined state.
package multiplex
