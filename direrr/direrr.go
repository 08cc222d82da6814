// Package direrr implements the structural-input error taxonomy from
// spec.md section 6 "Error taxonomy" and section 7 category 2:
// typed, property-bag errors the driver can localize and render
// through a message template, as opposed to internalerr's fatal
// invariant violations.
package direrr

import "fmt"

// Kind identifies one of the structural error categories a rewrite
// pass can report.
type Kind string

const (
	NoForwardDeclarableTypeInCycle Kind = "IRNoForwardDeclarableTypeInCycle"
	NoEmptyUnions                  Kind = "IRNoEmptyUnions"
	TypeAttributesNotPropagated    Kind = "IRTypeAttributesNotPropagated"
)

var templates = map[Kind]string{
	NoForwardDeclarableTypeInCycle: "cannot break cycle %v: no member can be forward-declared",
	NoEmptyUnions:                  "union %v has no members",
	TypeAttributesNotPropagated:    "attribute %q was dropped while reconstituting %v",
}

// Error is a structured, typed error: a Kind plus the properties a
// message formatter substitutes into that kind's template.
type Error struct {
	Kind       Kind
	Properties map[string]interface{}
}

func (e *Error) Error() string {
	tmpl, ok := templates[e.Kind]
	if !ok {
		return string(e.Kind)
	}
	switch e.Kind {
	case NoForwardDeclarableTypeInCycle:
		return fmt.Sprintf(tmpl, e.Properties["cycle"])
	case NoEmptyUnions:
		return fmt.Sprintf(tmpl, e.Properties["union"])
	case TypeAttributesNotPropagated:
		return fmt.Sprintf(tmpl, e.Properties["attribute"], e.Properties["type"])
	default:
		return string(e.Kind)
	}
}

// New constructs a structural error of the given kind with the
// supplied properties.
func New(kind Kind, properties map[string]interface{}) *Error {
	return &Error{Kind: kind, Properties: properties}
}

// Is supports errors.Is matching purely on Kind, so callers can test
// `errors.Is(err, direrr.New(direrr.NoEmptyUnions, nil))`.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}
