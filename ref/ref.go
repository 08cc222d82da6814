// Package ref defines TypeRef, the opaque stable handle described in
// spec.md section 3. It is kept in its own leaf package (no
// dependency on model or tgraph) because both the attribute framework
// and the type model need to refer to it without creating an import
// cycle between "the thing Types reference" and "the thing that
// defines Types".
package ref

import "fmt"

// Ref is the only way one Type refers to another: an opaque handle
// pairing a graph identifier with a stable index into that graph's
// arena. Refs are comparable and hashable (plain struct of comparable
// fields), and carry enough to assert they belong to a specific graph
// at use time (spec.md section 5 "Shared-resource policy": "Inter-
// graph TypeRefs are forbidden").
type Ref struct {
	Graph string // the owning graph's serial (see tgraph.Graph.Serial)
	Index int    // stable index into that graph's arena
}

// IsZero reports whether r is the zero value, used as a sentinel for
// "not yet set" in the one-shot setters (array item, union/
// intersection members) before they are assigned.
func (r Ref) IsZero() bool { return r.Graph == "" && r.Index == 0 }

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Graph, r.Index)
}

// AssertGraph panics (via the caller's own invariant-checking
// convention) is deliberately NOT implemented here to avoid a
// dependency on internalerr from this leaf package; tgraph.Graph
// provides the checked accessor (Graph.Resolve) that asserts the ref
// belongs to it.
