package rewrite

import (
	"github.com/shyptr/typegraph/graphrewrite"
	"github.com/shyptr/typegraph/infer"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
)

// ReplaceObjectType implements spec.md section 4.9's ReplaceObjectType
// (InferMaps' graph-level driver): for every class with >= 2
// properties, ask infer.ShouldInferMap whether it should become a map,
// and if so collapse it to one via graphrewrite.Replace. The decision's
// Reason is not surfaced by this pass, and the replaced map carries no
// record of which property attributes were lost: the map's value type
// is rebuilt without attributes.
func ReplaceObjectType(g *tgraph.Graph, serial string, trigrams *infer.TrigramModel, conflateNumbers bool) Result {
	return ReplaceObjectTypeWithThresholds(g, serial, trigrams, conflateNumbers, infer.DefaultMapInferenceThresholds())
}

// ReplaceObjectTypeWithThresholds is ReplaceObjectType with caller-
// supplied infer.MapInferenceThresholds, per spec.md section 9's
// inference-constant Open Question.
func ReplaceObjectTypeWithThresholds(g *tgraph.Graph, serial string, trigrams *infer.TrigramModel, conflateNumbers bool, th infer.MapInferenceThresholds) Result {
	changed := false
	var sets []graphrewrite.ReplaceSet

	for _, r := range g.AllNamedTypesSeparated().Objects {
		o, ok := g.Resolve(r).(*model.Object)
		if !ok || o.ObjKind != model.ObjectClass {
			continue
		}
		cv := classView(g, o)
		decision := infer.ShouldInferMapWithThresholds(cv, trigrams, th)
		if !decision.Convert {
			continue
		}
		changed = true
		sets = append(sets, graphrewrite.ReplaceSet{
			Members:  []ref.Ref{r},
			Replacer: objectToMapReplacer(g, o, conflateNumbers),
		})
	}

	if !changed {
		return Result{Graph: g, Changed: false}
	}
	return Result{Graph: graphrewrite.Replace(g, serial, sets, nil, nil), Changed: true}
}

func classView(g *tgraph.Graph, o *model.Object) infer.ClassView {
	cv := infer.ClassView{
		PropertyNames:                   append([]string{}, o.PropertyOrder...),
		PropertyIsNullOrPrimitiveString: make([]bool, len(o.PropertyOrder)),
		StructurallyCompatible:          true,
	}
	var first ref.Ref
	for i, name := range o.PropertyOrder {
		p := o.Properties[name]
		cv.PropertyIsNullOrPrimitiveString[i] = isNullOrPrimitiveString(g, p.Type)
		if i == 0 {
			first = p.Type
			continue
		}
		if !model.StructurallyCompatible(g, first, p.Type, true) {
			cv.StructurallyCompatible = false
		}
	}
	return cv
}

func isNullOrPrimitiveString(g *tgraph.Graph, r ref.Ref) bool {
	p, ok := g.Resolve(r).(model.Primitive)
	return ok && (p.K == typekind.Null || p.K == typekind.String)
}

// objectToMapReplacer rebuilds a class as a map whose value type is the
// union of every property's type. It walks the class's own original
// property types and re-materializes each one into the new builder via
// unionPropertyTypes; the rewriter's reconstituted refs are not used.
func objectToMapReplacer(g *tgraph.Graph, o *model.Object, conflateNumbers bool) graphrewrite.Replacer {
	types := make([]ref.Ref, 0, len(o.PropertyOrder))
	for _, name := range o.PropertyOrder {
		types = append(types, o.Properties[name].Type)
	}
	return func(_ []ref.Ref, b *tbuilder.Builder, forwardingRef ref.Ref) ref.Ref {
		value := unionPropertyTypes(g, b, types)
		b.CommitAt(forwardingRef, model.UnsetObject(model.ObjectMap), typeattr.Empty)
		b.SetObjectAdditional(forwardingRef, value)
		return forwardingRef
	}
}

// unionPropertyTypes re-materializes each property's type against the
// Replacer's builder (the original refs belong to the old, frozen
// graph, so they cannot be reused directly) and unions the results.
// Property types are not reconstituted by the shared rewriter here
// (unlike Remap's recursive descent) since a Replacer only has direct
// builder access; flattenStringsReplacer and baseObjectReplacer use
// rematerialize in the same way.
func unionPropertyTypes(g *tgraph.Graph, b *tbuilder.Builder, types []ref.Ref) ref.Ref {
	if len(types) == 0 {
		return b.GetPrimitiveType(typekind.Any, typeattr.Empty)
	}
	var unified ref.Ref
	for i, t := range types {
		r := rematerialize(g, b, t)
		if i == 0 {
			unified = r
			continue
		}
		if r != unified {
			unified = b.GetUniqueUnionType(typeattr.Empty, []ref.Ref{unified, r})
		}
	}
	return unified
}

func rematerialize(g *tgraph.Graph, b *tbuilder.Builder, r ref.Ref) ref.Ref {
	switch t := g.Resolve(r).(type) {
	case model.Primitive:
		return b.GetPrimitiveType(t.K, typeattr.Empty)
	case *model.Array:
		return b.GetArrayType(typeattr.Empty, rematerialize(g, b, t.Item))
	case *model.Enum:
		return b.GetEnumType(typeattr.Empty, t.Cases)
	case *model.Object:
		if t.ObjKind == model.ObjectMap {
			return b.GetMapType(typeattr.Empty, rematerialize(g, b, t.Additional))
		}
		order := append([]string{}, t.PropertyOrder...)
		props := make(map[string]model.Property, len(order))
		for _, name := range order {
			p := t.Properties[name]
			props[name] = model.Property{Type: rematerialize(g, b, p.Type), Optional: p.Optional}
		}
		return b.GetClassType(typeattr.Empty, order, props)
	case *model.SetOperation:
		members := make([]ref.Ref, len(t.Members))
		for i, m := range t.Members {
			members[i] = rematerialize(g, b, m)
		}
		if t.SOKind == model.SetOpUnion {
			return b.GetUnionType(typeattr.Empty, members)
		}
		return b.GetIntersectionType(typeattr.Empty, members)
	default:
		return b.GetPrimitiveType(typekind.Any, typeattr.Empty)
	}
}
