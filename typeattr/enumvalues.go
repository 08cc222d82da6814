package typeattr

import "github.com/shyptr/typegraph/typekind"

// EnumValuesKind records the literal case strings an Enum type was
// built from, as originally cased/ordered in the input -- distinct
// from model.Enum.Cases, which is the identity-affecting,
// normalized set. This attribute is purely informative (naming,
// diagnostics) and never affects identity.
var EnumValuesKind Kind = &simple{
	name:       "enum-values",
	appliesTo:  func(k typekind.Kind) bool { return k == typekind.Enum },
	inIdentity: false,
	combine:    unionStringSetsOrdered,
}

func unionStringSetsOrdered(values []interface{}) interface{} {
	seen := map[string]bool{}
	var out []string
	any := false
	for _, v := range values {
		if v == nil {
			continue
		}
		any = true
		for _, s := range v.([]string) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	if !any {
		return nil
	}
	return out
}

// GetEnumValues returns the literal case strings attached to attrs.
func GetEnumValues(attrs TypeAttributes) []string {
	v, ok := attrs.Get(EnumValuesKind)
	if !ok {
		return nil
	}
	return v.([]string)
}
