package rewrite

import (
	"sort"

	"github.com/shyptr/typegraph/graphrewrite"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
)

// CombineClasses implements spec.md section 4.9's CombineClasses, whose
// Open Question ("clique vs. chain merging") this module resolves in
// favor of a most-recently-used clique without swapping: classes are
// visited in ref order, each joining the most recently used still-open
// clique it is structurally compatible with every member of (the clique
// it joins, or starts, becomes the most recently used), and a clique
// closes (stops accepting new members) the moment a visited class is
// incompatible with one of its members -- so merges never
// retroactively rearrange earlier decisions. This matches the groupings schemabuilder/build.go would
// produce if it deduplicated reflect.Type-derived structs by shape
// instead of by identical Go type.
func CombineClasses(g *tgraph.Graph, serial string, conflateNumbers bool) Result {
	objects := g.AllNamedTypesSeparated().Objects
	var classes []ref.Ref
	for _, r := range objects {
		if o, ok := g.Resolve(r).(*model.Object); ok && o.ObjKind == model.ObjectClass {
			classes = append(classes, r)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Index < classes[j].Index })

	var cliques [][]ref.Ref
	var open []int // indices into cliques still accepting members
	for _, r := range classes {
		joined := -1
		for k := len(open) - 1; k >= 0; k-- {
			ci := open[k]
			if allCompatible(g, cliques[ci], r, conflateNumbers) {
				cliques[ci] = append(cliques[ci], r)
				joined = ci
				break
			}
		}
		if joined < 0 {
			cliques = append(cliques, []ref.Ref{r})
			joined = len(cliques) - 1
		}
		// prune cliques that can no longer accept r's incompatible peers:
		// a clique stays open only if r would have joined it too, so any
		// clique r is incompatible with closes now. open is kept in
		// least- to most-recently-used order, with r's clique moved to
		// the end (MRU-without-swap).
		var stillOpen []int
		for _, ci := range open {
			if ci != joined && allCompatible(g, cliques[ci], r, conflateNumbers) {
				stillOpen = append(stillOpen, ci)
			}
		}
		open = append(stillOpen, joined)
	}

	changed := false
	var sets []graphrewrite.ReplaceSet
	for _, clique := range cliques {
		if len(clique) < 2 {
			continue
		}
		changed = true
		sets = append(sets, graphrewrite.ReplaceSet{
			Members:  clique,
			Replacer: combineReplacer(g, clique),
		})
	}
	if !changed {
		return Result{Graph: g, Changed: false}
	}
	return Result{Graph: graphrewrite.Replace(g, serial, sets, nil, nil), Changed: true}
}

func allCompatible(g *tgraph.Graph, clique []ref.Ref, candidate ref.Ref, conflateNumbers bool) bool {
	for _, m := range clique {
		if !model.StructurallyCompatible(g, m, candidate, conflateNumbers) {
			return false
		}
	}
	return true
}

// combineReplacer merges a clique of structurally compatible classes
// into one class: the property union across all members, each property
// optional unless every member has it as required, with same-name
// property types merged into an intersection for ResolveIntersections
// to fold on the next fixpoint iteration.
func combineReplacer(g *tgraph.Graph, clique []ref.Ref) graphrewrite.Replacer {
	return func(_ []ref.Ref, b *tbuilder.Builder, forwardingRef ref.Ref) ref.Ref {
		var order []string
		seen := map[string]bool{}
		propTypes := map[string][]ref.Ref{}
		requiredCount := map[string]int{}
		attrs := typeattr.Empty

		for _, m := range clique {
			o := g.Resolve(m).(*model.Object)
			attrs = typeattr.Merge(attrs, g.Attributes(m))
			for _, name := range o.PropertyOrder {
				if !seen[name] {
					seen[name] = true
					order = append(order, name)
				}
				p := o.Properties[name]
				propTypes[name] = append(propTypes[name], p.Type)
				if !p.Optional {
					requiredCount[name]++
				}
			}
		}

		props := make(map[string]model.Property, len(order))
		for _, name := range order {
			types := propTypes[name]
			var t ref.Ref
			if len(types) == 1 {
				t = types[0]
			} else {
				t = b.GetUniqueIntersectionType(typeattr.Empty, types)
			}
			props[name] = model.Property{Type: t, Optional: requiredCount[name] != len(clique)}
		}

		b.CommitAt(forwardingRef, model.NewClass(order, props), attrs)
		return forwardingRef
	}
}
