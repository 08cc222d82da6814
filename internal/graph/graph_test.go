package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRootsInsertionOrder(t *testing.T) {
	succ := [][]int{
		0: {2},
		1: {2},
		2: {3},
		3: {},
	}
	g := NewFromSuccessors([]string{"a", "b", "c", "d"}, succ)
	assert.Equal(t, []int{0, 1}, g.FindRoots())
}

func TestStronglyConnectedComponentsCountMatchesSize(t *testing.T) {
	// a -> b -> c -> a (cycle), c -> d (bridge to a singleton).
	succ := [][]int{
		0: {1},
		1: {2},
		2: {0, 3},
		3: {},
	}
	g := NewFromSuccessors([]string{"a", "b", "c", "d"}, succ)
	sccs := g.StronglyConnectedComponents()

	total := 0
	for _, s := range sccs.Nodes() {
		total += len(s.Members)
	}
	require.Equal(t, g.Size(), total)

	// exactly one non-trivial component of size 3, one singleton.
	var sizes []int
	for _, s := range sccs.Nodes() {
		sizes = append(sizes, len(s.Members))
	}
	assert.ElementsMatch(t, []int{3, 1}, sizes)
}

func TestStronglyConnectedComponentsMetaEdgesAreTopological(t *testing.T) {
	succ := [][]int{
		0: {1},
		1: {2},
		2: {0, 3},
		3: {},
	}
	g := NewFromSuccessors([]string{"a", "b", "c", "d"}, succ)
	sccs := g.StronglyConnectedComponents()

	// every meta-edge must point from an earlier index to a later one.
	for i := 0; i < sccs.Size(); i++ {
		for _, j := range sccs.Successors(i) {
			assert.Less(t, i, j, "meta-edge %d->%d is not forward", i, j)
		}
	}
}

func TestDFSTraversalOrder(t *testing.T) {
	succ := [][]int{
		0: {1, 2},
		1: {3},
		2: {3},
		3: {},
	}
	g := NewFromSuccessors([]int{0, 1, 2, 3}, succ)

	var pre []int
	g.DFSTraversal(0, PreOrder, func(i int) { pre = append(pre, i) })
	assert.Equal(t, []int{0, 1, 3, 2}, pre)

	var post []int
	g.DFSTraversal(0, PostOrder, func(i int) { post = append(post, i) })
	assert.Equal(t, []int{3, 1, 2, 0}, post)
}
