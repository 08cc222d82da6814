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

// FlattenStrings implements spec.md section 4.9's FlattenStrings: for
// every canonical union with >= 2 string-like members (plain `string`
// plus any transformed-string variant) where the plain string, if
// present, is unrestricted (no enum cases), coalesce the string-like
// subset into a single plain-string member carrying their merged
// attributes. Non-string-like members are left untouched.
func FlattenStrings(g *tgraph.Graph, serial string) Result {
	changed := false
	var sets []graphrewrite.ReplaceSet

	for _, r := range g.AllTypesUnordered() {
		so, ok := g.Resolve(r).(*model.SetOperation)
		if !ok || so.SOKind != model.SetOpUnion {
			continue
		}
		if !eligibleForStringFlattening(g, so) {
			continue
		}
		changed = true
		sets = append(sets, graphrewrite.ReplaceSet{
			Members:  []ref.Ref{r},
			Replacer: flattenStringsReplacer(g, so),
		})
	}

	if !changed {
		return Result{Graph: g, Changed: false}
	}
	return Result{Graph: graphrewrite.Replace(g, serial, sets, nil, nil), Changed: true}
}

func eligibleForStringFlattening(g *tgraph.Graph, so *model.SetOperation) bool {
	stringLike := 0
	for _, m := range so.Members {
		p, ok := g.Resolve(m).(model.Primitive)
		if !ok {
			continue
		}
		if p.K == typekind.String {
			if st, ok := typeattr.GetStringTypes(g.Attributes(m)); ok && st.IsRestricted() {
				return false // a restricted string is handled by ExpandStrings, not here
			}
			stringLike++
		} else if typekind.IsTransformedString(p.K) {
			stringLike++
		}
	}
	return stringLike >= 2
}

func flattenStringsReplacer(g *tgraph.Graph, so *model.SetOperation) graphrewrite.Replacer {
	return func(_ []ref.Ref, b *tbuilder.Builder, forwardingRef ref.Ref) ref.Ref {
		var others []ref.Ref
		mergedAttrs := typeattr.Empty
		for _, m := range so.Members {
			t := g.Resolve(m)
			p, ok := t.(model.Primitive)
			if ok && (p.K == typekind.String || typekind.IsTransformedString(p.K)) {
				mergedAttrs = typeattr.Merge(mergedAttrs, g.Attributes(m))
				continue
			}
			others = append(others, rematerialize(g, b, m))
		}
		merged := b.GetPrimitiveType(typekind.String, mergedAttrs)
		members := append([]ref.Ref{merged}, others...)
		if len(members) == 1 {
			b.CommitAt(forwardingRef, model.NewIntersection(members), typeattr.Empty)
			return forwardingRef
		}
		b.CommitAt(forwardingRef, model.NewIntersection([]ref.Ref{b.GetUniqueUnionType(typeattr.Empty, members)}), typeattr.Empty)
		return forwardingRef
	}
}
