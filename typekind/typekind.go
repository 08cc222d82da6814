// Package typekind enumerates the tagged-variant kinds of spec.md
// section 3 "Type", in the teacher's style of a flat const block of
// named string kinds (see the copied internal/typekinds package this
// repository started from).
package typekind

// Kind tags a Type's variant. String-valued so debug printing and
// error messages never need a separate stringer.
type Kind string

const (
	None   Kind = "none"
	Any    Kind = "any"
	Null   Kind = "null"
	Bool   Kind = "bool"
	Int    Kind = "integer"
	Double Kind = "double"
	String Kind = "string"

	// Transformed-string kinds: logically string, semantically refined.
	Date          Kind = "date"
	Time          Kind = "time"
	DateTime      Kind = "date-time"
	UUID          Kind = "uuid"
	URI           Kind = "uri"
	IntegerString Kind = "integer-string"
	BoolString    Kind = "bool-string"

	Array        Kind = "array"
	Object       Kind = "object"
	Class        Kind = "class"
	Map          Kind = "map"
	Enum         Kind = "enum"
	Union        Kind = "union"
	Intersection Kind = "intersection"
)

// TransformedStringKinds is every primitive kind whose logical kind is
// string but whose semantic refinement narrows it further.
var TransformedStringKinds = []Kind{Date, Time, DateTime, UUID, URI, IntegerString, BoolString}

// IsTransformedString reports whether k is one of TransformedStringKinds.
func IsTransformedString(k Kind) bool {
	for _, t := range TransformedStringKinds {
		if t == k {
			return true
		}
	}
	return false
}

// IsPrimitive reports whether k is a primitive (leaf, non-container,
// non-set-operation) kind.
func IsPrimitive(k Kind) bool {
	switch k {
	case None, Any, Null, Bool, Int, Double, String:
		return true
	default:
		return IsTransformedString(k)
	}
}

// IsSetOperation reports whether k combines other types: Union or
// Intersection.
func IsSetOperation(k Kind) bool {
	return k == Union || k == Intersection
}

// IsObjectLike reports whether k is one of the three object kinds:
// the fixed base Object, Class (fixed named properties), or Map
// (additional-properties only).
func IsObjectLike(k Kind) bool {
	return k == Object || k == Class || k == Map
}
