// Package rewrite implements spec.md section 4.9: the normalization
// passes that run to fixpoint over a frozen tgraph.Graph, each
// producing a new graph via graphrewrite.
//
// Grounded on schemabuilder/build.go's multi-pass construction (it
// resolves objects, then enums, then unions, then circles back for
// anything left pending); rewrite generalizes that "keep passing over
// the discovered set until nothing changes" shape into the type
// graph's own fixpoint loop over named passes.
package rewrite

import (
	"sort"
	"strings"

	"github.com/shyptr/typegraph/graphrewrite"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/unionbuilder"
)

// Result reports whether a pass changed anything, per spec.md's "each
// pass returns a new graph" + "until no pass reports changes" loop
// condition.
type Result struct {
	Graph   *tgraph.Graph
	Changed bool
}

// FlattenUnions implements spec.md section 4.9's FlattenUnions: for
// every non-canonical union, collect its transitive members (recursing
// through nested unions) and rebuild as a canonical union via
// unionbuilder. Unions whose transitively-expanded member sets are
// equal are flattened together into the same rebuilt union.
func FlattenUnions(g *tgraph.Graph, serial string, conflateNumbers bool) Result {
	changed := false
	var sets []graphrewrite.ReplaceSet
	seen := map[ref.Ref]bool{}
	groups := map[string]int{} // expanded member-set key -> index into sets

	for _, r := range g.AllTypesUnordered() {
		so, ok := g.Resolve(r).(*model.SetOperation)
		if !ok || so.SOKind != model.SetOpUnion || seen[r] {
			continue
		}
		if model.IsCanonicalUnion(g, so) {
			continue
		}
		if containsIntersectionMember(g, so) {
			continue // handled by ResolveIntersections
		}
		changed = true
		seen[r] = true
		members := expandUnionMembers(g, so, map[ref.Ref]bool{})
		keys := make([]string, len(members))
		for i, m := range members {
			keys[i] = m.String()
		}
		sort.Strings(keys)
		key := strings.Join(keys, ",")
		if i, ok := groups[key]; ok {
			sets[i].Members = append(sets[i].Members, r)
			continue
		}
		groups[key] = len(sets)
		sets = append(sets, graphrewrite.ReplaceSet{
			Members:  []ref.Ref{r},
			Replacer: flattenReplacer(g, members, conflateNumbers),
		})
	}

	if !changed {
		return Result{Graph: g, Changed: false}
	}
	return Result{Graph: graphrewrite.Replace(g, serial, sets, nil, nil), Changed: true}
}

func containsIntersectionMember(g *tgraph.Graph, so *model.SetOperation) bool {
	for _, m := range so.Members {
		if t, ok := g.Resolve(m).(*model.SetOperation); ok && t.SOKind == model.SetOpIntersection {
			return true
		}
	}
	return false
}

// expandUnionMembers recurses through nested unions to collect the
// transitive leaf member set, deduplicating by ref.
func expandUnionMembers(g *tgraph.Graph, so *model.SetOperation, visited map[ref.Ref]bool) []ref.Ref {
	var out []ref.Ref
	for _, m := range so.Members {
		if visited[m] {
			continue
		}
		visited[m] = true
		if nested, ok := g.Resolve(m).(*model.SetOperation); ok && nested.SOKind == model.SetOpUnion {
			out = append(out, expandUnionMembers(g, nested, visited)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

func flattenReplacer(g *tgraph.Graph, members []ref.Ref, conflateNumbers bool) graphrewrite.Replacer {
	return func(_ []ref.Ref, b *tbuilder.Builder, forwardingRef ref.Ref) ref.Ref {
		acc := unionbuilder.NewAccumulator()
		attrs := typeattr.Empty
		var itemRefs []ref.Ref
		var objectRef ref.Ref
		for _, m := range members {
			t := g.Resolve(m)
			acc.AddType(t, g.Attributes(m))
			attrs = typeattr.Merge(attrs, g.Attributes(m))
			if arr, ok := t.(*model.Array); ok {
				itemRefs = append(itemRefs, arr.Item)
			}
			if _, ok := t.(*model.Object); ok {
				objectRef = m
			}
		}
		item := ref.Ref{}
		if len(itemRefs) > 0 {
			item = itemRefs[0]
			for _, r := range itemRefs[1:] {
				if r != item {
					item = b.GetUniqueUnionType(typeattr.Empty, []ref.Ref{item, r})
				}
			}
		}
		ub := unionbuilder.NewBuilder(b, conflateNumbers)
		result := ub.Build(acc, attrs, item, objectRef, true)
		if result != forwardingRef {
			b.CommitAt(forwardingRef, model.NewIntersection([]ref.Ref{result}), typeattr.Empty)
		}
		return forwardingRef
	}
}
