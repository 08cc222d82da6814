package graph

// SCC is one strongly connected component: the indices of its member
// nodes in the original graph, in the order Kosaraju's second pass
// discovered them.
type SCC struct {
	Members []int
}

// StronglyConnectedComponents partitions the graph into its strongly
// connected components using Kosaraju's algorithm (two depth-first
// passes: a forward pass over the graph to compute a finishing-order
// stack, then a pass over the transpose graph popping that stack),
// and returns a new Graph whose nodes are the SCCs themselves, with a
// meta-edge from SCC a to SCC b whenever some member of a has an
// original edge to some member of b and a != b.
//
// Postcondition (spec.md section 8 "SCC correctness"): the node counts
// of the returned SCCs sum to g.Size(), and every meta-edge points
// from an earlier SCC to a later one in the returned graph's node
// order (Kosaraju's reverse pass yields components in a topological
// order of the condensation).
func (g *Graph[T]) StronglyConnectedComponents() *Graph[SCC] {
	n := g.Size()

	// Forward pass: postorder finishing stack over the original graph.
	seen := make([]bool, n)
	order := make([]int, 0, n)
	var visit func(i int)
	visit = func(i int) {
		if seen[i] {
			return
		}
		seen[i] = true
		for _, j := range g.succ[i] {
			visit(j)
		}
		order = append(order, i)
	}
	for i := 0; i < n; i++ {
		visit(i)
	}

	// Reverse pass over the transpose graph (g.pred), popping the
	// finishing stack, assigning each unseen node to a fresh component.
	compOf := make([]int, n)
	for i := range compOf {
		compOf[i] = -1
	}
	var sccs []SCC
	seen = make([]bool, n)
	var rvisit func(i, comp int, members *[]int)
	rvisit = func(i, comp int, members *[]int) {
		if seen[i] {
			return
		}
		seen[i] = true
		compOf[i] = comp
		*members = append(*members, i)
		for _, j := range g.pred[i] {
			rvisit(j, comp, members)
		}
	}
	for k := len(order) - 1; k >= 0; k-- {
		top := order[k]
		if seen[top] {
			continue
		}
		comp := len(sccs)
		var members []int
		rvisit(top, comp, &members)
		sccs = append(sccs, SCC{Members: members})
	}

	// Build the meta-graph: an edge comp(a) -> comp(b) for every
	// original edge a -> b crossing components.
	metaSet := make([]map[int]bool, len(sccs))
	for i := range metaSet {
		metaSet[i] = map[int]bool{}
	}
	for a := 0; a < n; a++ {
		for _, b := range g.succ[a] {
			ca, cb := compOf[a], compOf[b]
			if ca != cb {
				metaSet[ca][cb] = true
			}
		}
	}
	metaSucc := make([][]int, len(sccs))
	for i, set := range metaSet {
		for j := range set {
			metaSucc[i] = append(metaSucc[i], j)
		}
	}
	return NewFromSuccessors(sccs, metaSucc)
}
