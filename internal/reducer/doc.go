// Package reducer interprets declarative store specs.
//
// A Spec names a store, its initial state and, per action type, an ordered
// list of rules. Build turns a Spec into a store.Reducer; rules run in
// order against the state produced by the previous rule. Actions with no
// rules leave state untouched.
//
// Rules never mutate the incoming state. Updates go through ir.SetIn and
// ir.DeleteIn, which copy the objects along the changed path.
package reducer
