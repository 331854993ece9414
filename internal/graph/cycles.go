package graph

import (
	"sort"
	"strings"

	"github.com/vk/scriptforge/internal/action"
)

// detectCycles runs a depth-first search over the dependency edges tracking
// the active recursion stack. Revisiting a node already on the stack means
// a cycle; the error carries the full cycle path, not just the repeated
// node. Every strongly connected component is scanned, so independent
// cycles each produce their own error.
func detectCycles(nodeIDs []string, deps map[string]map[string]bool) []action.ValidationError {
	var errs []action.ValidationError
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, dep := range sortedSet(deps[id]) {
			if onStack[dep] {
				errs = append(errs, cycleError(path, dep))
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		path = path[:len(path)-1]
		onStack[id] = false
	}

	for _, id := range nodeIDs {
		if !visited[id] {
			visit(id)
		}
	}
	return errs
}

// cycleError formats the portion of the recursion path from the repeated
// node onward, closing the loop for readability: a -> b -> c -> a.
func cycleError(path []string, repeated string) action.ValidationError {
	start := 0
	for i, id := range path {
		if id == repeated {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, path[start:]...), repeated)
	sorted := append([]string{}, path[start:]...)
	sort.Strings(sorted)
	return action.ValidationError{
		Kind:     action.ErrCircularDependency,
		Message:  "circular dependency detected: " + strings.Join(cycle, " -> "),
		Index:    -1,
		ActionID: sorted[0],
	}
}
