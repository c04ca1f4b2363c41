// Package harness runs edit-log scenarios against the fusion pipeline.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: remove_then_append
//	description: "Remove in the middle, then append"
//	base: [o1, o2, o3, o4]
//	edits:
//	  - op: remove
//	    index: 1
//	  - op: add
//	    index: 3
//	    append: true
//	    value: o5
//	expect:
//	  remove: 1
//	  add: 1
//	  update: 1
//	  final: [o1, o3, o4, o5]
//
// base_size replaces base for a log that only knows the collection size.
// A scenario either has an expect block or an error code, never both.
//
// # Checks
//
// Every run verifies, in addition to the expect block:
//   - Plan.Apply(base) equals direct replay of the edits
//   - the compiled SQL, applied to a fresh in-memory SQLite table,
//     leaves the same list
//
// # Golden Files
//
// RunWithGolden snapshots the plan document as canonical JSON. Regenerate
// with:
//
//	go test ./internal/harness -update
package harness
