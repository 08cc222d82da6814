package typeattr

import "github.com/shyptr/typegraph/typekind"

// StringTypes is the value type of StringTypesKind: the restricted
// shape a plain `string` type was actually observed to take --
// candidate enum cases (with how many samples took each value) and
// which transformed-string kinds (date, uuid, uri, ...) some samples
// additionally matched. ExpandStrings (spec.md section 4.8) consumes
// this to decide whether the final type is a string, an enum, a
// transformed-string primitive, or a union of those.
type StringTypes struct {
	// Cases maps each observed literal string value to how many
	// samples took that value.
	Cases map[string]int
	// Transformations is the set of transformed-string kinds any
	// sample matched (date, time, date-time, uuid, uri,
	// integer-string, bool-string).
	Transformations map[typekind.Kind]bool
}

// NoRestriction is the StringTypes value for a string with no
// observed case restriction and no transformation matches: an
// unrestricted string.
func NoRestriction() StringTypes {
	return StringTypes{}
}

// ForCases builds a StringTypes value observing exactly the given
// case counts and no transformations.
func ForCases(cases map[string]int) StringTypes {
	return StringTypes{Cases: cases}
}

// ForTransformation builds a StringTypes value observing exactly one
// transformed-string match and no literal cases.
func ForTransformation(k typekind.Kind) StringTypes {
	return StringTypes{Transformations: map[typekind.Kind]bool{k: true}}
}

// IsRestricted reports whether s carries any case or transformation
// information at all (as opposed to being a wholly unrestricted
// string).
func (s StringTypes) IsRestricted() bool {
	return len(s.Cases) > 0 || len(s.Transformations) > 0
}

// Union merges two StringTypes per the resolution of spec.md section
// 9's open question: cases are merged as a per-key sum (not the
// source's apparent "last writer wins" conflation), and
// transformations are merged as a set union, kept as two genuinely
// separate merges.
func (s StringTypes) Union(other StringTypes) StringTypes {
	cases := map[string]int{}
	for k, v := range s.Cases {
		cases[k] += v
	}
	for k, v := range other.Cases {
		cases[k] += v
	}
	if len(cases) == 0 {
		cases = nil
	}
	transforms := map[typekind.Kind]bool{}
	for k := range s.Transformations {
		transforms[k] = true
	}
	for k := range other.Transformations {
		transforms[k] = true
	}
	if len(transforms) == 0 {
		transforms = nil
	}
	return StringTypes{Cases: cases, Transformations: transforms}
}

// StringTypesKind is the attribute kind wrapping StringTypes. It
// applies only to the plain String kind (transformed-string
// primitives carry no StringTypes of their own), never affects
// identity, and composes via Union under both union and intersection.
var StringTypesKind Kind = &simple{
	name:       "string-types",
	appliesTo:  func(k typekind.Kind) bool { return k == typekind.String },
	inIdentity: false,
	combine: func(values []interface{}) interface{} {
		var acc StringTypes
		any := false
		for _, v := range values {
			if v == nil {
				continue
			}
			any = true
			acc = acc.Union(v.(StringTypes))
		}
		if !any {
			return nil
		}
		return acc
	},
}

// GetStringTypes returns the StringTypes value attached to attrs.
func GetStringTypes(attrs TypeAttributes) (StringTypes, bool) {
	v, ok := attrs.Get(StringTypesKind)
	if !ok {
		return StringTypes{}, false
	}
	return v.(StringTypes), true
}

// WithStringTypes returns a single-kind TypeAttributes carrying st.
func WithStringTypes(st StringTypes) TypeAttributes {
	if !st.IsRestricted() {
		return Empty
	}
	return New(StringTypesKind, st)
}
