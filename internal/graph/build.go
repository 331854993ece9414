package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/scriptforge/internal/action"
	"github.com/vk/scriptforge/internal/ctxlog"
)

// Build constructs the dependency graph for a document that already passed
// schema and semantic validation. It returns the graph, or the list of
// circular_dependency errors when the reference structure contains cycles.
func Build(ctx context.Context, doc *action.Document) (*Graph, []action.ValidationError) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "actions", len(doc.Actions))

	// First pass: assign node IDs (synthetic for anonymous actions) and map
	// every declared ID, nested ones included, to its owning node.
	nodeIDs := make([]string, len(doc.Actions))
	owner := make(map[string]string)
	for i := range doc.Actions {
		a := &doc.Actions[i]
		id := a.ID
		if id == "" {
			id = fmt.Sprintf("%s_%d", a.Type, i)
		}
		nodeIDs[i] = id
		a.Walk(func(n *action.Action) {
			if n.ID != "" {
				owner[n.ID] = id
			}
		})
		owner[id] = id
	}

	// Second pass: dependency edges. A reference to a nested ID depends on
	// the top-level action that owns it.
	deps := make(map[string]map[string]bool, len(nodeIDs))
	for i := range doc.Actions {
		id := nodeIDs[i]
		deps[id] = make(map[string]bool)
		for _, ref := range doc.Actions[i].AllReferences() {
			target, ok := owner[ref]
			if !ok || target == id {
				continue
			}
			deps[id][target] = true
		}
	}
	logger.Debug("Build: dependency edges linked.")

	if errs := detectCycles(nodeIDs, deps); len(errs) > 0 {
		logger.Debug("Build: cycle detection failed.", "cycles", len(errs))
		return nil, errs
	}
	logger.Debug("Build: cycle detection passed.")

	order := topoSort(nodeIDs, deps)

	g := &Graph{
		Nodes:          make(map[string]*Node, len(nodeIDs)),
		ExecutionOrder: order,
	}
	for i := range doc.Actions {
		id := nodeIDs[i]
		a := doc.Actions[i]
		a.ID = id // anonymous actions stay attributable in results
		node := &Node{
			ID:           id,
			Action:       a,
			Dependencies: sortedSet(deps[id]),
			Status:       StatusPending,
		}
		if len(node.Dependencies) == 0 {
			node.Status = StatusReady
		}
		g.Nodes[id] = node
	}

	// Dependents are the inverse of the dependency map.
	for _, id := range order {
		for _, dep := range g.Nodes[id].Dependencies {
			g.Nodes[dep].Dependents = append(g.Nodes[dep].Dependents, id)
		}
	}
	for _, n := range g.Nodes {
		sort.Strings(n.Dependents)
	}

	for _, id := range order {
		switch t := g.Nodes[id].Action.Type; {
		case t == action.TypeReason:
			// annotation only, never scheduled into a partition
		case t.IsAsset():
			g.AssetActions = append(g.AssetActions, id)
		default:
			g.GameActions = append(g.GameActions, id)
		}
	}

	logger.Debug("Build: graph construction successful.",
		"node_count", len(g.Nodes),
		"asset_actions", len(g.AssetActions),
		"game_actions", len(g.GameActions))
	return g, nil
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
