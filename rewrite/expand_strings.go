package rewrite

import (
	"sort"

	"github.com/shyptr/typegraph/graphrewrite"
	"github.com/shyptr/typegraph/infer"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
)

// ExpandStrings implements spec.md section 4.9's ExpandStrings driver:
// every plain string type carrying a StringTypesKind attribute is
// handed to infer.DecideStringExpansion, and the ones that decide to
// become (or merge into) an enum, or to carry a transformed-string
// sibling, are collapsed accordingly via graphrewrite.Replace.
// existingEnumSets accumulates case lists as earlier strings (lower
// ref index) are decided, so a later string's infer-mode overlap check
// sees every enum already produced this pass -- mirroring spec.md's
// single left-to-right sweep.
func ExpandStrings(g *tgraph.Graph, serial string, mode infer.ExpandMode) Result {
	return ExpandStringsWithThresholds(g, serial, mode, infer.DefaultStringExpansionThresholds())
}

// ExpandStringsWithThresholds is ExpandStrings with caller-supplied
// infer.StringExpansionThresholds, per spec.md section 9's inference-
// constant Open Question.
func ExpandStringsWithThresholds(g *tgraph.Graph, serial string, mode infer.ExpandMode, th infer.StringExpansionThresholds) Result {
	changed := false
	var sets []graphrewrite.ReplaceSet
	var existingEnumSets [][]string

	for _, r := range g.AllTypesUnordered() {
		if _, ok := g.Resolve(r).(model.Primitive); !ok {
			continue
		}
		st, ok := typeattr.GetStringTypes(g.Attributes(r))
		if !ok || !st.IsRestricted() {
			continue
		}
		transformations := sortedTransformations(st)
		decision := infer.DecideStringExpansionWithThresholds(mode, st.Cases, transformations, existingEnumSets, th)
		if decision.AsEnum == nil && len(decision.Transformations) == 0 {
			continue
		}
		if decision.AsEnum != nil {
			existingEnumSets = append(existingEnumSets, decision.AsEnum)
		}
		changed = true
		sets = append(sets, graphrewrite.ReplaceSet{
			Members:  []ref.Ref{r},
			Replacer: stringExpansionReplacer(decision),
		})
	}

	if !changed {
		return Result{Graph: g, Changed: false}
	}
	return Result{Graph: graphrewrite.Replace(g, serial, sets, nil, nil), Changed: true}
}

func sortedTransformations(st typeattr.StringTypes) []typekind.Kind {
	out := make([]typekind.Kind, 0, len(st.Transformations))
	for k := range st.Transformations {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func stringExpansionReplacer(d infer.StringDecision) graphrewrite.Replacer {
	return func(_ []ref.Ref, b *tbuilder.Builder, forwardingRef ref.Ref) ref.Ref {
		var members []ref.Ref
		if len(d.AsEnum) > 0 {
			members = append(members, b.GetEnumType(typeattr.Empty, d.AsEnum))
		}
		for _, k := range d.Transformations {
			members = append(members, b.GetPrimitiveType(k, typeattr.Empty))
		}
		if len(members) == 0 {
			members = append(members, b.GetPrimitiveType(typekind.String, typeattr.Empty))
		}
		if len(members) == 1 {
			b.CommitAt(forwardingRef, model.NewIntersection(members), typeattr.Empty)
			return forwardingRef
		}
		b.CommitAt(forwardingRef, model.NewIntersection([]ref.Ref{b.GetUniqueUnionType(typeattr.Empty, members)}), typeattr.Empty)
		return forwardingRef
	}
}
