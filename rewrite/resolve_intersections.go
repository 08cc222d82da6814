package rewrite

import (
	"github.com/shyptr/typegraph/graphrewrite"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
)

const anyKind = typekind.Any

// ResolveIntersections implements spec.md section 4.9's
// ResolveIntersections: every intersection type is replaced by the
// single type its members collapse to. A single-member intersection
// (the shape `graphrewrite`'s own forwarding machinery produces) always
// collapses to that member; when a graph has any of these, this call
// remaps only them, and multi-member intersections are resolved on the
// next call. A multi-member intersection collapses by structural
// intersection: members of different kinds make the whole intersection
// `any`; primitives keep the first member; arrays must share the same
// item ref; enums keep the cases common to every member (none in common
// is `any`); maps must share the same value ref; objects of differing
// object kinds are `any`; other objects intersect property-wise (a
// property present in every member is required only if every member
// has it as required; a property present in only some members becomes
// optional).
func ResolveIntersections(g *tgraph.Graph, serial string) Result {
	changed := false
	var sets []graphrewrite.ReplaceSet
	collapse := map[ref.Ref]ref.Ref{}

	for _, r := range g.AllTypesUnordered() {
		so, ok := g.Resolve(r).(*model.SetOperation)
		if !ok || so.SOKind != model.SetOpIntersection {
			continue
		}
		changed = true
		members := so.Members
		if len(members) == 1 {
			collapse[r] = members[0]
			continue
		}
		sets = append(sets, graphrewrite.ReplaceSet{
			Members:  []ref.Ref{r},
			Replacer: intersectionReplacer(g, members),
		})
	}

	if !changed {
		return Result{Graph: g, Changed: false}
	}
	if len(collapse) > 0 {
		return Result{Graph: graphrewrite.Remap(g, serial, collapse, nil, nil), Changed: true}
	}
	return Result{Graph: graphrewrite.Replace(g, serial, sets, nil, nil), Changed: true}
}

func intersectionReplacer(g *tgraph.Graph, members []ref.Ref) graphrewrite.Replacer {
	return func(_ []ref.Ref, b *tbuilder.Builder, forwardingRef ref.Ref) ref.Ref {
		if len(members) == 0 {
			b.CommitAt(forwardingRef, model.Primitive{K: anyKind}, typeattr.Empty)
			return forwardingRef
		}
		if len(members) == 1 {
			b.CommitAt(forwardingRef, model.NewIntersection(members), typeattr.Empty)
			return forwardingRef
		}

		result, ok := intersectTypes(g, b, members[0], members[1:])
		attrs := typeattr.Empty
		for _, m := range members {
			attrs = typeattr.Merge(attrs, g.Attributes(m))
		}
		if !ok {
			b.CommitAt(forwardingRef, model.Primitive{K: anyKind}, attrs)
			return forwardingRef
		}
		b.CommitAt(forwardingRef, result, attrs)
		return forwardingRef
	}
}

// intersectTypes folds a chain of member refs into one structurally
// intersected Type, grounded on spec.md's description of intersection
// resolution as a pairwise fold.
func intersectTypes(g *tgraph.Graph, b *tbuilder.Builder, first ref.Ref, rest []ref.Ref) (model.Type, bool) {
	acc := g.Resolve(first)
	for _, r := range rest {
		next, ok := intersectPair(b, acc, g.Resolve(r))
		if !ok {
			return nil, false
		}
		acc = next
	}
	return acc, true
}

func intersectPair(tb *tbuilder.Builder, a, b model.Type) (model.Type, bool) {
	if a.Kind() != b.Kind() {
		return nil, false
	}
	switch at := a.(type) {
	case model.Primitive:
		return at, true
	case *model.Enum:
		bt := b.(*model.Enum)
		shared := map[string]bool{}
		for _, c := range at.Cases {
			shared[c] = true
		}
		var out []string
		for _, c := range bt.Cases {
			if shared[c] {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return model.NewEnum(out), true
	case *model.Array:
		bt := b.(*model.Array)
		if at.Item != bt.Item {
			return nil, false // item unification happens earlier, in inference/union building
		}
		return model.NewArray(at.Item), true
	case *model.Object:
		bt := b.(*model.Object)
		if at.ObjKind != bt.ObjKind {
			return nil, false
		}
		if at.ObjKind == model.ObjectMap {
			if at.Additional != bt.Additional {
				return nil, false
			}
			return model.NewMap(at.Additional), true
		}
		order := append([]string{}, at.PropertyOrder...)
		seen := map[string]bool{}
		for _, n := range order {
			seen[n] = true
		}
		for _, n := range bt.PropertyOrder {
			if !seen[n] {
				order = append(order, n)
				seen[n] = true
			}
		}
		props := make(map[string]model.Property, len(order))
		for _, n := range order {
			pa, inA := at.Properties[n]
			pb, inB := bt.Properties[n]
			switch {
			case inA && inB:
				typ := pa.Type
				if pa.Type != pb.Type {
					typ = tb.GetUniqueUnionType(typeattr.Empty, []ref.Ref{pa.Type, pb.Type})
				}
				props[n] = model.Property{Type: typ, Optional: pa.Optional || pb.Optional}
			case inA:
				props[n] = model.Property{Type: pa.Type, Optional: true}
			default:
				props[n] = model.Property{Type: pb.Type, Optional: true}
			}
		}
		return model.NewClass(order, props), true
	default:
		return nil, false
	}
}
