package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakCyclesRemovesAcyclicGraphForFree(t *testing.T) {
	succ := [][]int{
		0: {1},
		1: {2},
		2: {},
	}
	breaks := BreakCycles[struct{}](succ, func(cyc []int) (int, struct{}) {
		t.Fatalf("chooser should not be called for an acyclic graph, got cycle %v", cyc)
		return 0, struct{}{}
	})
	assert.Empty(t, breaks)
}

func TestBreakCyclesSimpleCycle(t *testing.T) {
	// a -> b -> c -> a
	succ := [][]int{
		0: {1},
		1: {2},
		2: {0},
	}
	var sawCycle []int
	breaks := BreakCycles[string](succ, func(cyc []int) (int, string) {
		sawCycle = cyc
		return cyc[0], "broke-it"
	})
	require.Len(t, breaks, 1)
	assert.Equal(t, "broke-it", breaks[0].Info)
	assert.Contains(t, sawCycle, breaks[0].Node)
}

func TestBreakCyclesMultipleDisjointCycles(t *testing.T) {
	// 0<->1 and 2<->3, no connection between them.
	succ := [][]int{
		0: {1},
		1: {0},
		2: {3},
		3: {2},
	}
	breaks := BreakCycles[struct{}](succ, func(cyc []int) (int, struct{}) {
		return cyc[0], struct{}{}
	})
	assert.Len(t, breaks, 2)
}
