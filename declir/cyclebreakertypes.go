package declir

import (
	"github.com/shyptr/typegraph/direrr"
	"github.com/shyptr/typegraph/ref"
)

// IsImplicitCycleBreaker reports whether r already breaks any cycle it
// participates in without needing to be selected (e.g. an array or a
// map value position -- a renderer can always emit a pointer/reference
// there regardless of what's on the other end).
type IsImplicitCycleBreaker func(r ref.Ref) bool

// CanBreak reports whether r is an eligible cut point for a cycle that
// has no implicit breaker (e.g. r is a class a renderer can represent
// with a pointer field).
type CanBreak func(r ref.Ref) bool

// CycleBreakerTypes implements spec.md section 4.10's CycleBreakerTypes
// companion: a direct DFS over the type graph (as opposed to Build's
// SCC-based scheduling) that tracks the current path and, the moment
// it revisits a path member and so closes a cycle none of whose members
// is an implicit breaker, walks back along the path to the nearest
// member satisfying canBreak and
// records it as a required break point. Returns every such selected
// type, or a direrr.NoForwardDeclarableTypeInCycle error the first
// time a revisited cycle has no eligible member at all.
func CycleBreakerTypes(g interface {
	Children(ref.Ref) []ref.Ref
}, roots []ref.Ref, isImplicit IsImplicitCycleBreaker, canBreak CanBreak) (map[ref.Ref]bool, error) {
	breaks := map[ref.Ref]bool{}
	visited := map[ref.Ref]bool{}
	var path []ref.Ref
	onPath := map[ref.Ref]int{}

	var walk func(r ref.Ref) error
	walk = func(r ref.Ref) error {
		if pos, onCurrentPath := onPath[r]; onCurrentPath {
			cyc := path[pos:]
			for _, m := range cyc {
				if isImplicit(m) {
					return nil
				}
			}
			for i := len(cyc) - 1; i >= 0; i-- {
				if canBreak(cyc[i]) {
					breaks[cyc[i]] = true
					return nil
				}
			}
			return direrr.New(direrr.NoForwardDeclarableTypeInCycle, map[string]interface{}{"cycle": cyc})
		}
		if visited[r] {
			return nil
		}
		visited[r] = true

		onPath[r] = len(path)
		path = append(path, r)
		for _, c := range g.Children(r) {
			if err := walk(c); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(onPath, r)
		return nil
	}

	for _, r := range roots {
		if err := walk(r); err != nil {
			return nil, err
		}
	}
	return breaks, nil
}
