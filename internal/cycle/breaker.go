// Package cycle implements spec.md section 4.2: given a graph's
// successor lists and a function that picks a breaker node out of a
// detected cycle, repeatedly remove zero in/out-degree nodes, then
// walk forward to find and break one remaining cycle at a time, until
// every node has been removed.
package cycle

import "github.com/shyptr/typegraph/internalerr"

// Break is one (breaker, info) pair: breaker is the node index chosen
// to cut, and info is whatever the chooser wanted to carry forward
// (e.g. which outgoing edge of breaker was actually cut).
type Break[Info any] struct {
	Node int
	Info Info
}

// Chooser, given a cycle as a sequence of node indices (in the order
// the forward walk encountered them, ending back at the first
// repeated node), picks one member to break plus arbitrary info.
type Chooser[Info any] func(cycle []int) (breaker int, info Info)

// BreakCycles removes nodes from a graph described by succ (successor
// index lists, one per node) until none remain, returning the
// sequence of breaks in removal order. Nodes with in-degree or
// out-degree 0 are removed for free, in increasing index order among
// the candidates at each pass, before the chooser is ever consulted;
// only once no such free node remains does it walk forward from the
// lowest-indexed undone node until a cycle is found.
func BreakCycles[Info any](succ [][]int, choose Chooser[Info]) []Break[Info] {
	n := len(succ)
	removed := make([]bool, n)
	outDeg := make([]int, n)
	inDeg := make([]int, n)
	for i, tos := range succ {
		outDeg[i] = len(tos)
		for _, j := range tos {
			inDeg[j]++
		}
	}

	var result []Break[Info]
	remaining := n

	removeNode := func(i int) {
		if removed[i] {
			return
		}
		removed[i] = true
		remaining--
		for _, j := range succ[i] {
			if !removed[j] {
				inDeg[j]--
			}
		}
		// out-edges of i no longer count against anyone's in-degree
		// bookkeeping beyond what was already decremented above; we
		// also need to decrement the out-degree of every predecessor
		// of i, but since we don't track predecessors here we instead
		// recompute affected out-degrees lazily below.
	}

	// Recompute out-degree of i as the count of its successors not yet
	// removed; this avoids needing a predecessor list.
	liveOutDeg := func(i int) int {
		c := 0
		for _, j := range succ[i] {
			if !removed[j] {
				c++
			}
		}
		return c
	}

	for remaining > 0 {
		progress := true
		for progress {
			progress = false
			for i := 0; i < n; i++ {
				if removed[i] {
					continue
				}
				if inDeg[i] == 0 || liveOutDeg(i) == 0 {
					removeNode(i)
					progress = true
				}
			}
		}
		if remaining == 0 {
			break
		}

		// No free node remains; walk forward from the lowest-indexed
		// undone node until a node is revisited.
		start := -1
		for i := 0; i < n; i++ {
			if !removed[i] {
				start = i
				break
			}
		}
		internalerr.Assert(start >= 0, "cycle.BreakCycles: remaining>0 but no undone node found")

		visited := map[int]int{} // node -> position in path
		path := []int{start}
		visited[start] = 0
		cur := start
		var cyc []int
		for {
			next := -1
			for _, j := range succ[cur] {
				if !removed[j] {
					next = j
					break
				}
			}
			internalerr.Assert(next >= 0, "cycle.BreakCycles: node %d has no live successor but was not removed as a free node", cur)
			if pos, ok := visited[next]; ok {
				cyc = append(append([]int{}, path[pos:]...), next)
				break
			}
			visited[next] = len(path)
			path = append(path, next)
			cur = next
		}

		breaker, info := choose(cyc)
		internalerr.Assert(!removed[breaker], "cycle.BreakCycles: chooser returned an already-removed node")
		found := false
		for _, c := range cyc {
			if c == breaker {
				found = true
				break
			}
		}
		internalerr.Assert(found, "cycle.BreakCycles: chooser returned a node not in the reported cycle")

		result = append(result, Break[Info]{Node: breaker, Info: info})
		removeNode(breaker)
	}

	return result
}
