package graph

// topoSort computes the execution order with Kahn's algorithm: dequeue
// zero-in-degree nodes, decrement the in-degree of their dependents, and
// requeue the newly free ones. The caller guarantees the graph is acyclic.
//
// Ties between independent nodes are broken by document order, which makes
// the result reproducible for a fixed input.
func topoSort(nodeIDs []string, deps map[string]map[string]bool) []string {
	inDegree := make(map[string]int, len(nodeIDs))
	dependents := make(map[string][]string, len(nodeIDs))
	for _, id := range nodeIDs {
		inDegree[id] = len(deps[id])
	}
	// Dependent lists follow document order so the queue stays stable.
	for _, id := range nodeIDs {
		for dep := range deps[id] {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	queue := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(nodeIDs))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}
	return order
}
