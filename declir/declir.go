// Package declir implements spec.md section 4.10's Declaration IR:
// scheduling every named type (class/map/enum/union) into an ordered
// list of forward and define declarations a target-language renderer
// can emit in sequence without ever referencing a type before some
// declaration for it has appeared.
//
// Grounded on internal/graph's generic Graph[T] and its
// StronglyConnectedComponents (itself adapted from golang-tools'
// gopls SCC helper, per internal/graph/graph.go's header) plus
// internal/cycle's BreakCycles: declir treats named types as nodes in
// a dependency graph, computes SCCs to get a topological processing
// order, and for any non-trivial SCC (a cycle of mutually referencing
// types) hands its internal edges to internal/cycle's generic breaker,
// whose chooser picks a forward-declarable member of each cycle.
// CycleBreakerTypes is a separate companion that Build does not call.
package declir

import (
	"sort"

	"github.com/shyptr/typegraph/direrr"
	"github.com/shyptr/typegraph/internal/cycle"
	"github.com/shyptr/typegraph/internal/graph"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tgraph"
)

// Kind distinguishes a forward declaration (a name/shape stub a later
// declaration completes) from a full definition.
type Kind int

const (
	Forward Kind = iota
	Define
)

// Declaration is one scheduled step: emit a forward stub or a full
// definition for Ref.
type Declaration struct {
	Ref  ref.Ref
	Kind Kind
}

// CanForwardDeclare reports whether a target language can forward-
// declare r (e.g. C-like languages can forward-declare a class/struct
// pointer but not an enum or a type alias). Callers supply this since
// it is target-language-specific; spec.md section 4.10 leaves it as
// an external parameter.
type CanForwardDeclare func(t model.Type) bool

// IR is the Declaration IR's output: the ordered declaration list plus
// the subset of refs that received a Forward declaration, mirroring
// spec.md section 6's `{declarations, forwardedTypes}` output pair.
type IR struct {
	Declarations   []Declaration
	ForwardedTypes map[ref.Ref]bool
}

// Build schedules every named type reachable from g's top levels into
// declaration order, dependencies before their dependents. An edge runs
// from a named type to every named type reachable through its children
// (structural and attribute-reported, via tgraph.Graph.Children);
// unnamed types in between, such as arrays and intersections, are
// transparent: their named descendants are the real dependency.
func Build(g *tgraph.Graph, canForwardDeclare CanForwardDeclare) (IR, error) {
	named := g.AllNamedTypesSeparated()
	var nodes []ref.Ref
	nodes = append(nodes, named.Objects...)
	nodes = append(nodes, named.Enums...)
	nodes = append(nodes, named.Unions...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Index < nodes[j].Index })

	index := make(map[ref.Ref]int, len(nodes))
	for i, r := range nodes {
		index[r] = i
	}

	gg := graph.New(nodes, func(i int, r ref.Ref) []int {
		return namedSuccessors(g, r, index)
	}, false)

	sccs := gg.StronglyConnectedComponents()

	ir := IR{ForwardedTypes: map[ref.Ref]bool{}}
	// The SCCs come out in topological order of the dependency edges
	// (dependents first), so walk them backwards to declare every
	// dependency before the types that refer to it.
	components := sccs.Nodes()
	for k := len(components) - 1; k >= 0; k-- {
		scc := components[k]
		if len(scc.Members) == 1 {
			node := nodes[scc.Members[0]]
			if !selfReferential(g, node, index, scc.Members[0]) {
				ir.Declarations = append(ir.Declarations, Declaration{Ref: node, Kind: Define})
				continue
			}
			// A single-member SCC with a self-loop is still a cycle of
			// size one; fall through to the general cycle handling.
		}
		decls, err := scheduleCycle(g, nodes, scc.Members, canForwardDeclare)
		if err != nil {
			return IR{}, err
		}
		for _, d := range decls {
			if d.Kind == Forward {
				ir.ForwardedTypes[d.Ref] = true
			}
		}
		ir.Declarations = append(ir.Declarations, decls...)
	}
	return ir, nil
}

func namedSuccessors(g *tgraph.Graph, r ref.Ref, index map[ref.Ref]int) []int {
	var out []int
	seen := map[int]bool{}
	var walk func(r ref.Ref, topLevel bool)
	walk = func(r ref.Ref, topLevel bool) {
		if i, ok := index[r]; ok && !topLevel {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
			return
		}
		for _, c := range g.Children(r) {
			walk(c, false)
		}
	}
	walk(r, true)
	return out
}

func selfReferential(g *tgraph.Graph, r ref.Ref, index map[ref.Ref]int, self int) bool {
	for _, s := range namedSuccessors(g, r, index) {
		if s == self {
			return true
		}
	}
	return false
}

// scheduleCycle handles one non-trivial SCC (size > 1, or a
// self-referential singleton). It hands the SCC's internal edges to
// internal/cycle.BreakCycles, whose chooser prefers a forward-
// declarable member of each reported cycle as the cut node; every cut
// node is emitted as a Forward declaration, then every member is
// emitted as Define in member order. If a reported cycle contains no
// forward-declarable member at all, the chooser has no legal choice
// and the pass fails with direrr.NoForwardDeclarableTypeInCycle.
func scheduleCycle(g *tgraph.Graph, nodes []ref.Ref, members []int, canForwardDeclare CanForwardDeclare) ([]Declaration, error) {
	localIndex := make(map[int]int, len(members))
	for i, idx := range members {
		localIndex[idx] = i
	}
	globalIndex := indexOf(nodes)

	succ := make([][]int, len(members))
	forwardable := make([]bool, len(members))
	for i, idx := range members {
		r := nodes[idx]
		forwardable[i] = canForwardDeclare(g.Resolve(r))
		for _, s := range namedSuccessors(g, r, globalIndex) {
			if li, ok := localIndex[s]; ok {
				succ[i] = append(succ[i], li)
			}
		}
	}

	var badCycle []int
	breaks := cycle.BreakCycles(succ, func(cyc []int) (int, struct{}) {
		for _, n := range cyc {
			if forwardable[n] {
				return n, struct{}{}
			}
		}
		badCycle = cyc
		return cyc[0], struct{}{}
	})
	if badCycle != nil {
		names := make([]ref.Ref, len(badCycle))
		for i, n := range badCycle {
			names[i] = nodes[members[n]]
		}
		return nil, direrr.New(direrr.NoForwardDeclarableTypeInCycle, map[string]interface{}{"cycle": names})
	}

	forwarded := make([]bool, len(members))
	var out []Declaration
	for _, b := range breaks {
		if !forwarded[b.Node] {
			forwarded[b.Node] = true
			out = append(out, Declaration{Ref: nodes[members[b.Node]], Kind: Forward})
		}
	}
	for _, idx := range members {
		out = append(out, Declaration{Ref: nodes[idx], Kind: Define})
	}
	return out, nil
}

func indexOf(nodes []ref.Ref) map[ref.Ref]int {
	m := make(map[ref.Ref]int, len(nodes))
	for i, r := range nodes {
		m[r] = i
	}
	return m
}
