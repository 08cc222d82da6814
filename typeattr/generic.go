package typeattr

import (
	"fmt"

	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/typekind"
)

// simple is a Kind implementation for attribute kinds whose behavior
// is fully described by a handful of small functions, avoiding a
// hand-written struct+method set per kind the way description,
// property-description, accessor-names, min/max, min/max-length,
// pattern, URI attributes, union-identifier, union-member-names and
// provenance would otherwise need; enum-values and string-types use it
// too. Kinds with richer semantics (TypeNames, Transformation)
// implement Kind directly in their own file instead of using this
// helper.
type simple struct {
	name        string
	appliesTo   func(typekind.Kind) bool
	inIdentity  bool
	combine     func([]interface{}) interface{}
	intersect   func([]interface{}) interface{} // nil means "reuse combine"
	stringer    func(interface{}) string
	requireUniq func(interface{}) bool // nil means never
}

func (s *simple) Name() string                               { return s.name }
func (s *simple) AppliesToKind(k typekind.Kind) bool          { return s.appliesTo(k) }
func (s *simple) InIdentity() bool                            { return s.inIdentity }
func (s *simple) Children(interface{}) []ref.Ref              { return nil }
func (s *simple) IncreaseDistance(v interface{}) interface{}  { return v }
func (s *simple) MakeInferred(v interface{}) interface{}      { return v }
func (s *simple) Reconstitute(_ Reconstituter, v interface{}) interface{} { return v }

func (s *simple) RequireUniqueIdentity(v interface{}) bool {
	if s.requireUniq == nil {
		return false
	}
	return s.requireUniq(v)
}

func (s *simple) Combine(values []interface{}) interface{} {
	return s.combine(values)
}

func (s *simple) Intersect(values []interface{}) interface{} {
	if s.intersect != nil {
		return s.intersect(values)
	}
	return s.combine(values)
}

func (s *simple) String(v interface{}) string {
	if s.stringer != nil {
		return s.stringer(v)
	}
	return fmt.Sprintf("%v", v)
}

func anyKind(typekind.Kind) bool { return true }

// firstNonNil keeps the first non-nil value, which is the right
// "combine" rule for attributes where union composition is defined as
// "the members agree, or the attribute is simply dropped from whoever
// doesn't carry it" -- description and property-description follow
// this rule in the source.
func firstNonNil(values []interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
