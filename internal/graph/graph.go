// Package graph turns a semantically valid script into an immutable
// dependency graph: one node per top-level action, edges from referenced
// assets to the actions that consume them, cycle detection, and a
// topological execution order.
package graph

import "github.com/vk/scriptforge/internal/action"

// Status describes a node's lifecycle state. Build assigns pending or
// ready; the execution engine tracks the later transitions in its own
// per-run state, keeping the graph itself read-only after construction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReady     Status = "ready"
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Node wraps one top-level action together with its dependency links.
// Fields are read-only once Build returns.
type Node struct {
	ID           string
	Action       action.Action
	Dependencies []string
	Dependents   []string
	Status       Status
}

// Graph is the compiled form of a script. It is built once by Build and
// never mutated afterwards, so it can be shared and read concurrently
// without synchronization.
type Graph struct {
	// Nodes maps every node ID, synthetic IDs included, to its node.
	Nodes map[string]*Node
	// ExecutionOrder is a topological ordering covering every node exactly
	// once: a dependency always precedes its dependents.
	ExecutionOrder []string
	// AssetActions and GameActions partition the node IDs in execution
	// order. Annotation-only reason actions belong to neither.
	AssetActions []string
	GameActions  []string
}
