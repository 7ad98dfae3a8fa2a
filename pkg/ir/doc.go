// Package ir defines the state values that stores hold and selectors read.
//
// State is a sealed tree of IRValue nodes: IRNull, IRString, IRInt, IRBool,
// IRArray and IRObject. The package imports nothing else from this module,
// so every other package can depend on it.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - Values are read-only by contract; SetIn and friends return new trees
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing
//
// A Path addresses a location inside a tree:
//
//	state := ir.IRObject{"user": ir.IRObject{"name": ir.IRString("Ann")}}
//	name, ok := ir.Lookup(state, ir.Path{ir.F("user"), ir.F("name")})
package ir
