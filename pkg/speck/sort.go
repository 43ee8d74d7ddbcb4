package speck

// SortChildren orders sibling module paths so that dependents come first
// and the modules they depend on come last. Layout places children
// left-to-right in this order, which puts the most foundational modules
// on the far side of the diagram.
//
// The algorithm is a Kahn-style topological traversal over the sibling
// set only. Dependency names are unqualified child names; names that do
// not match any sibling are ignored. When several siblings have zero
// in-degree at the same time, first-discovered (declaration) order breaks
// the tie.
//
// Siblings caught in a dependency cycle can never reach zero in-degree;
// they are appended after the cleanly sorted nodes, in declaration order.
// The result is always a permutation of children: no sibling is ever
// dropped or duplicated, and the sort never deadlocks.
func SortChildren(children []string, childDeps map[string][]string) []string {
	nameToPath := make(map[string]string, len(children))
	for _, cp := range children {
		nameToPath[lastSegment(cp)] = cp
	}

	inDeg := make(map[string]int, len(children))
	adj := make(map[string][]string, len(children))
	for _, cp := range children {
		inDeg[cp] = 0
	}
	for _, cp := range children {
		for _, depName := range childDeps[lastSegment(cp)] {
			depPath, ok := nameToPath[depName]
			if !ok {
				continue
			}
			adj[cp] = append(adj[cp], depPath)
			inDeg[depPath]++
		}
	}

	var queue []string
	for _, cp := range children {
		if inDeg[cp] == 0 {
			queue = append(queue, cp)
		}
	}

	result := make([]string, 0, len(children))
	emitted := make(map[string]struct{}, len(children))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)
		emitted[node] = struct{}{}
		for _, dep := range adj[node] {
			inDeg[dep]--
			if inDeg[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	// Cycle fallback: whatever never sorted cleanly goes last, in
	// declaration order.
	for _, cp := range children {
		if _, ok := emitted[cp]; !ok {
			result = append(result, cp)
		}
	}

	return result
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
