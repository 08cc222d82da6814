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

// ReplaceBaseObjectType implements spec.md section 4.9's
// ReplaceObjectType pass proper: every base `object` (model.ObjectBase
// -- neither class nor map, the "fixed" object with both named
// properties and an additional-properties type) is converted unless
// leaveFullObjects is set and it genuinely has both. The conversion
// rule, verbatim from spec.md:
//   - no additional-properties -> unique class over its properties;
//   - no properties -> map over the additional-properties type;
//   - additional-properties is `any` -> class, losing the additional
//     slot;
//   - otherwise -> map whose value type is the union of every
//     property's type and the additional-properties type.
func ReplaceBaseObjectType(g *tgraph.Graph, serial string, leaveFullObjects bool) Result {
	changed := false
	var sets []graphrewrite.ReplaceSet

	for _, r := range g.AllNamedTypesSeparated().Objects {
		o, ok := g.Resolve(r).(*model.Object)
		if !ok || o.ObjKind != model.ObjectBase {
			continue
		}
		hasProperties := len(o.PropertyOrder) > 0
		if leaveFullObjects && hasProperties && o.HasAdditional {
			continue
		}
		changed = true
		sets = append(sets, graphrewrite.ReplaceSet{
			Members:  []ref.Ref{r},
			Replacer: baseObjectReplacer(g, o),
		})
	}

	if !changed {
		return Result{Graph: g, Changed: false}
	}
	return Result{Graph: graphrewrite.Replace(g, serial, sets, nil, nil), Changed: true}
}

func baseObjectReplacer(g *tgraph.Graph, o *model.Object) graphrewrite.Replacer {
	hasProperties := len(o.PropertyOrder) > 0
	propertyTypes := make([]ref.Ref, 0, len(o.PropertyOrder))
	for _, name := range o.PropertyOrder {
		propertyTypes = append(propertyTypes, o.Properties[name].Type)
	}
	isAny := o.HasAdditional && isAnyType(g, o.Additional)

	return func(_ []ref.Ref, b *tbuilder.Builder, forwardingRef ref.Ref) ref.Ref {
		switch {
		case !o.HasAdditional:
			order, props := rematerializeProperties(g, b, o)
			b.CommitAt(forwardingRef, model.NewClass(order, props), typeattr.Empty)
			return forwardingRef

		case !hasProperties:
			value := rematerialize(g, b, o.Additional)
			b.CommitAt(forwardingRef, model.UnsetObject(model.ObjectMap), typeattr.Empty)
			b.SetObjectAdditional(forwardingRef, value)
			return forwardingRef

		case isAny:
			order, props := rematerializeProperties(g, b, o)
			b.CommitAt(forwardingRef, model.NewClass(order, props), typeattr.Empty)
			return forwardingRef

		default:
			types := append(append([]ref.Ref{}, propertyTypes...), o.Additional)
			value := unionPropertyTypes(g, b, types)
			b.CommitAt(forwardingRef, model.UnsetObject(model.ObjectMap), typeattr.Empty)
			b.SetObjectAdditional(forwardingRef, value)
			return forwardingRef
		}
	}
}

func rematerializeProperties(g *tgraph.Graph, b *tbuilder.Builder, o *model.Object) ([]string, map[string]model.Property) {
	order := append([]string{}, o.PropertyOrder...)
	props := make(map[string]model.Property, len(order))
	for _, name := range order {
		p := o.Properties[name]
		props[name] = model.Property{Type: rematerialize(g, b, p.Type), Optional: p.Optional}
	}
	return order, props
}

func isAnyType(g *tgraph.Graph, r ref.Ref) bool {
	p, ok := g.Resolve(r).(model.Primitive)
	return ok && p.K == typekind.Any
}
