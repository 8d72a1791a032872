// Package engine holds the pure progression rules: budget arithmetic,
// prerequisite gating, the step state machine, mutation-packet application,
// and snapshot diffing. Nothing in this package touches storage; the
// progression orchestrator wires these pieces to repositories and the
// event bus.
package engine
