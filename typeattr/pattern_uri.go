package typeattr

import "github.com/shyptr/typegraph/typekind"

// PatternKind carries a JSON-Schema "pattern" regex on a string type.
// Union composition keeps the pattern only when every side agrees on
// the exact same pattern; otherwise the constraint is lost (there is
// no single regex describing the union of two distinct patterns in
// general), matching the conservative "drop on conflict" rule the
// source applies to unreconcilable scalar constraints.
var PatternKind Kind = &simple{
	name:       "pattern",
	appliesTo:  func(k typekind.Kind) bool { return k == typekind.String },
	inIdentity: false,
	combine:    agreeOrDrop,
	stringer:   func(v interface{}) string { return v.(string) },
}

func agreeOrDrop(values []interface{}) interface{} {
	var first interface{}
	set := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if !set {
			first = v
			set = true
			continue
		}
		if first != v {
			return nil
		}
	}
	return first
}

// GetPattern returns the regex attached to attrs.
func GetPattern(attrs TypeAttributes) (string, bool) {
	v, ok := attrs.Get(PatternKind)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// URIAttributes is the value type of URIAttributesKind: the accepted
// protocols (scheme) and file extensions for a `uri` transformed
// string, used by the naming engine to pick accessor names like
// "asImageUri" and by downstream renderers (out of scope here) to
// pick a richer wrapper type.
type URIAttributes struct {
	Protocols  []string
	Extensions []string
}

// URIAttributesKind carries protocol/extension hints for the `uri`
// transformed-string kind, unioning both sets under composition.
var URIAttributesKind Kind = &simple{
	name:       "uri-attributes",
	appliesTo:  func(k typekind.Kind) bool { return k == typekind.URI },
	inIdentity: false,
	combine: func(values []interface{}) interface{} {
		var protos, exts []string
		any := false
		for _, v := range values {
			if v == nil {
				continue
			}
			any = true
			u := v.(URIAttributes)
			protos = unionStrings(protos, u.Protocols)
			exts = unionStrings(exts, u.Extensions)
		}
		if !any {
			return nil
		}
		return URIAttributes{Protocols: protos, Extensions: exts}
	},
}

func unionStrings(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// GetURIAttributes returns the protocol/extension hints attached to attrs.
func GetURIAttributes(attrs TypeAttributes) (URIAttributes, bool) {
	v, ok := attrs.Get(URIAttributesKind)
	if !ok {
		return URIAttributes{}, false
	}
	return v.(URIAttributes), true
}

// UnionIdentifierKind tags a union type with a small integer assigned
// in construction order, used only so the naming engine and debug
// printer have a stable tie-breaker across otherwise-identical
// unions; it never participates in identity.
var UnionIdentifierKind Kind = &simple{
	name:       "union-identifier",
	appliesTo:  func(k typekind.Kind) bool { return k == typekind.Union },
	inIdentity: false,
	combine:    firstNonNil,
}

// UnionMemberNamesKind attaches, per member type, a name hint derived
// from how that member appeared in the source (e.g. a discriminant
// property's value, or a $ref's final path segment) -- spec.md
// section 3's "union-member-names".
var UnionMemberNamesKind Kind = &simple{
	name:       "union-member-names",
	appliesTo:  func(k typekind.Kind) bool { return k == typekind.Union },
	inIdentity: false,
	combine:    mergeRefStringMaps,
}

func mergeRefStringMaps(values []interface{}) interface{} {
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

// GetUnionMemberNames returns the member-ref-string -> name-hint map
// attached to attrs.
func GetUnionMemberNames(attrs TypeAttributes) (map[string]string, bool) {
	v, ok := attrs.Get(UnionMemberNamesKind)
	if !ok {
		return nil, false
	}
	return v.(map[string]string), true
}
