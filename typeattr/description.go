package typeattr

import "github.com/shyptr/typegraph/typekind"

// DescriptionKind attaches a free-text description to any type,
// typically lifted from a JSON-Schema "description" keyword or a
// sample document's enclosing comment. It does not participate in
// identity: two otherwise-identical types with different descriptions
// are still the same type, picking up whichever description arrives
// first (spec.md section 3's attribute list: "description").
var DescriptionKind Kind = &simple{
	name:       "description",
	appliesTo:  anyKind,
	inIdentity: false,
	combine:    firstNonNil,
	stringer:   func(v interface{}) string { return v.(string) },
}

// GetDescription returns the description string, if any, attached to
// attrs.
func GetDescription(attrs TypeAttributes) (string, bool) {
	v, ok := attrs.Get(DescriptionKind)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// WithDescription returns a single-kind TypeAttributes carrying desc,
// for passing to a TypeBuilder factory method.
func WithDescription(desc string) TypeAttributes {
	return New(DescriptionKind, desc)
}

// PropertyDescriptionKind attaches a per-property description map
// (property name -> description) to an object/class/map type.
var PropertyDescriptionKind Kind = &simple{
	name:       "property-description",
	appliesTo:  func(k typekind.Kind) bool { return typekind.IsObjectLike(k) },
	inIdentity: false,
	combine:    mergeStringMaps,
}

func mergeStringMaps(values []interface{}) interface{} {
	out := map[string]string{}
	any := false
	for _, v := range values {
		if v == nil {
			continue
		}
		any = true
		for k, s := range v.(map[string]string) {
			if _, exists := out[k]; !exists {
				out[k] = s
			}
		}
	}
	if !any {
		return nil
	}
	return out
}

// GetPropertyDescriptions returns the property-name -> description map
// attached to attrs, if any.
func GetPropertyDescriptions(attrs TypeAttributes) (map[string]string, bool) {
	v, ok := attrs.Get(PropertyDescriptionKind)
	if !ok {
		return nil, false
	}
	return v.(map[string]string), true
}

// AccessorNamesKind attaches per-property, renderer-facing accessor
// name overrides (distinct from the property's wire name) to an
// object/class type.
var AccessorNamesKind Kind = &simple{
	name:       "accessor-names",
	appliesTo:  func(k typekind.Kind) bool { return typekind.IsObjectLike(k) },
	inIdentity: false,
	combine:    mergeStringMaps,
}

// ProvenanceKind records which input document(s) contributed to a
// type, as a set of small integer source indices. It never affects
// identity, combines by set union, and is useful for diagnostics
// ("this field came from sample #3").
var ProvenanceKind Kind = &simple{
	name:       "provenance",
	appliesTo:  anyKind,
	inIdentity: false,
	combine:    unionIntSets,
}

func unionIntSets(values []interface{}) interface{} {
	set := map[int]bool{}
	any := false
	for _, v := range values {
		if v == nil {
			continue
		}
		any = true
		for _, i := range v.([]int) {
			set[i] = true
		}
	}
	if !any {
		return nil
	}
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	return sortedInts(out)
}

func sortedInts(xs []int) []int {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
	return xs
}

// GetProvenance returns the set of source indices attached to attrs.
func GetProvenance(attrs TypeAttributes) []int {
	v, ok := attrs.Get(ProvenanceKind)
	if !ok {
		return nil
	}
	return v.([]int)
}
