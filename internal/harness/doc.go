// Package harness runs store composition scenarios.
//
// A scenario compiles CUE store specs, wires the resulting stores into a
// multiplexer and optional bisected views, executes steps against them
// and validates the final trace and state.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: todo_app
//	description: "Dispatch reaches every store in mapping order"
//	specs:
//	  - stores.cue
//	mapping:
//	  - name: session
//	  - name: todos
//	views:
//	  - name: items
//	    target: todos
//	    path: items
//	    default: []
//	steps:
//	  - dispatch: { type: ADD_TODO, payload: { title: milk } }
//	  - select_first: { names: [cart, todos], want: todos }
//	  - select: { names: [todos, nope, session], want: [todos, session] }
//	  - expect: { target: items, equals: [milk] }
//	assertions:
//	  - type: state_equals
//	    target: todos
//	    path: count
//	    equals: 1
//	  - type: dispatch_count
//	    action: ADD_TODO
//	    count: 1
//
// # Assertion Types
//
//   - state_equals: Compares final state at a target and path
//   - dispatch_count: Verifies an action was dispatched exactly N times
//   - dispatch_order: Verifies actions were dispatched in the given order
//
// # Deterministic Testing
//
// Steps are stamped by testutil.DeterministicClock and every dispatch
// records the canonical hash of the multiplexer state, so traces are
// byte-identical across runs and can be compared against golden files.
// Run tokens only appear in traces when the scenario pins run_token.
package harness
