// Package selector reads nested values out of a state tree by key path.
//
//	name, err := selector.Select(ir.Keys("user", "name"), state,
//	    selector.WithDefault(ir.IRString("anonymous")))
//
// By default a lookup stops at the first falsy value (absent, null, false,
// 0, "" or an empty collection) and the default is returned in its place.
// WithPolicy(Absent) narrows that to absent and null values only.
package selector
