// Package harness runs selector scenarios.
//
// A scenario builds a snapshot, optionally feeds write-path signals through
// a journal, then evaluates selections and checks their output.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	fixture:
//	  resources:
//	    - { id: 1, title: lol }
//	  requestsByName:
//	    test: { cacheID: test/, page: 1 }
//	  requestsByQuery:
//	    test/:
//	      1: { status: resolved, operation: get, requestAt: 1500000000000, error: false, data: [0] }
//	signals:
//	  - kind: request_issued
//	    payload: { uid: posts/, page: 1 }
//	    meta: { name: posts, requestAt: 1500000000001, operation: get }
//	selections:
//	  - name: test
//	    expect:
//	      status: resolved
//	  - cacheID: posts/
//	    page: 1
//	    raw: true
//
// Scenario files are checked against an embedded CUE schema before they are
// decoded, and decoded strictly: unknown keys are errors.
//
// # Expectations
//
// expect is a subset match against the selection's JSON form: every key
// listed must be present with an equal value, other keys are ignored.
// Lists must match in length, element by element.
//
// Every selection is also evaluated twice against the same snapshot, and the
// two outputs must be the same value.
//
// # Deterministic Execution
//
// Signals are appended to an in-memory journal with a deterministic clock
// and id generator and replayed from there, so a scenario produces the same
// output on every run and can be compared against a golden file.
package harness
