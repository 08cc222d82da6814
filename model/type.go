// Package model implements spec.md section 4.4: the Type tagged
// variant over primitive/array/object/class/map/enum/union/
// intersection kinds, and the structural-comparison machinery every
// kind shares.
//
// Grounded on builder/types.go's Type interface hierarchy (Scalar,
// Object, Interface, List, Enum, Union, ...): a small sealed interface
// plus one concrete struct per variant, each implementing String() and
// a marker method. This package generalizes that shape from
// GraphQL-specific variants to the type-graph's own kinds, and adds
// the identity/children/nullability/structural-compatibility contract
// spec.md requires that builder/types.go has no analog for.
package model

import (
	"sort"

	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
)

// Type is the sealed interface every type variant implements.
type Type interface {
	// Kind returns this type's typekind.Kind tag.
	Kind() typekind.Kind
	// Identity returns the identity tuple used for builder
	// deduplication, or (nil, false) to force uniqueness.
	Identity() (interface{}, bool)
	// NonAttributeChildren returns direct type references from
	// structural fields only (not from attributes).
	NonAttributeChildren() []ref.Ref
	// IsNullable reports spec.md section 4.4's is-nullable rule.
	// Intersection types panic; callers that may see an intersection
	// should check Kind() first.
	IsNullable() bool
	// String renders the type for debug printing.
	String() string

	isType()
}

// Children returns t's non-attribute children union the children
// reported by every attribute in attrs.
func Children(t Type, attrs typeattr.TypeAttributes) []ref.Ref {
	out := append([]ref.Ref{}, t.NonAttributeChildren()...)
	for _, k := range attrs.Kinds() {
		v, _ := attrs.Get(k)
		out = append(out, k.Children(v)...)
	}
	return out
}

// Primitive is none/any/null/bool/integer/double/string or a
// transformed-string kind. It carries no structural fields.
type Primitive struct {
	K typekind.Kind
}

func (Primitive) isType()         {}
func (p Primitive) Kind() typekind.Kind { return p.K }
func (p Primitive) Identity() (interface{}, bool) { return p.K, true }
func (Primitive) NonAttributeChildren() []ref.Ref  { return nil }
func (p Primitive) IsNullable() bool {
	return p.K == typekind.Null || p.K == typekind.Any || p.K == typekind.None
}
func (p Primitive) String() string { return string(p.K) }

// Array holds one item TypeRef, settable once at construction (or via
// SetItem for the forwarding-ref construction path).
type Array struct {
	Item ref.Ref
	set  bool
}

func NewArray(item ref.Ref) *Array { return &Array{Item: item, set: true} }

// UnsetArray returns a not-yet-populated array for the forwarding-ref
// construction path; SetItem must be called exactly once before use.
func UnsetArray() *Array { return &Array{} }

func (a *Array) SetItem(item ref.Ref) {
	if a.set {
		panic("model: array item already set")
	}
	a.Item, a.set = item, true
}

func (*Array) isType()                      {}
func (*Array) Kind() typekind.Kind          { return typekind.Array }
func (a *Array) Identity() (interface{}, bool) { return a.Item, true }
func (a *Array) NonAttributeChildren() []ref.Ref { return []ref.Ref{a.Item} }
func (*Array) IsNullable() bool             { return false }
func (a *Array) String() string             { return "array(" + a.Item.String() + ")" }

// Property is one named member of an object-like type: a TypeRef plus
// whether it is optional.
type Property struct {
	Type     ref.Ref
	Optional bool
}

// ObjectKind distinguishes the three object-like shapes spec.md
// section 3 names: a base "object" always has fixed properties, a
// "class" has fixed named properties and no additional-properties, a
// "map" has only an additional-properties type and no named
// properties.
type ObjectKind int

const (
	ObjectBase ObjectKind = iota
	ObjectClass
	ObjectMap
)

// Object is the shared representation of object/class/map: an ordered
// mapping from name to Property, plus an optional additional-
// properties type. PropertyOrder preserves insertion order since
// object identity and rendering both care about property order.
type Object struct {
	ObjKind        ObjectKind
	PropertyOrder  []string
	Properties     map[string]Property
	Additional     ref.Ref
	HasAdditional  bool
	set            bool
}

// UnsetObject returns a not-yet-populated object/class/map for the
// forwarding-ref construction path.
func UnsetObject(k ObjectKind) *Object {
	return &Object{ObjKind: k, Properties: map[string]Property{}}
}

// NewClass returns an already-populated class type.
func NewClass(order []string, props map[string]Property) *Object {
	return &Object{ObjKind: ObjectClass, PropertyOrder: order, Properties: props, set: true}
}

// NewMap returns an already-populated map type.
func NewMap(additional ref.Ref) *Object {
	return &Object{ObjKind: ObjectMap, Properties: map[string]Property{}, Additional: additional, HasAdditional: true, set: true}
}

// NewObject returns an already-populated base object type.
func NewObject(order []string, props map[string]Property, additional ref.Ref, hasAdditional bool) *Object {
	return &Object{ObjKind: ObjectBase, PropertyOrder: order, Properties: props, Additional: additional, HasAdditional: hasAdditional, set: true}
}

// SetProperties populates a class/base-object's named properties
// exactly once.
func (o *Object) SetProperties(order []string, props map[string]Property) {
	if o.set {
		panic("model: object properties already set")
	}
	if o.ObjKind == ObjectMap {
		panic("model: a map type has no named properties")
	}
	o.PropertyOrder, o.Properties, o.set = order, props, true
}

// SetAdditional populates a map/base-object's additional-properties
// type exactly once.
func (o *Object) SetAdditional(additional ref.Ref) {
	if o.HasAdditional {
		panic("model: object additional-properties already set")
	}
	if o.ObjKind == ObjectClass {
		panic("model: a class type has no additional-properties")
	}
	o.Additional, o.HasAdditional = additional, true
}

func (*Object) isType() {}

func (o *Object) Kind() typekind.Kind {
	switch o.ObjKind {
	case ObjectClass:
		return typekind.Class
	case ObjectMap:
		return typekind.Map
	default:
		return typekind.Object
	}
}

// Identity forces uniqueness (nil, false) for base objects and
// classes: per spec.md's external interfaces, classes and base
// objects are always constructed via the "unique" factory methods.
// Maps are deduplicatable by their value type.
func (o *Object) Identity() (interface{}, bool) {
	if o.ObjKind == ObjectMap {
		return o.Additional, true
	}
	return nil, false
}

func (o *Object) NonAttributeChildren() []ref.Ref {
	var out []ref.Ref
	for _, name := range o.PropertyOrder {
		out = append(out, o.Properties[name].Type)
	}
	if o.HasAdditional {
		out = append(out, o.Additional)
	}
	return out
}

func (*Object) IsNullable() bool { return false }

func (o *Object) String() string {
	switch o.ObjKind {
	case ObjectClass:
		return "class(" + joinNames(o.PropertyOrder) + ")"
	case ObjectMap:
		return "map(" + o.Additional.String() + ")"
	default:
		return "object(" + joinNames(o.PropertyOrder) + ")"
	}
}

func joinNames(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ","
		}
		s += n
	}
	return s
}

// Enum is a closed set of string cases.
type Enum struct {
	Cases []string
}

func NewEnum(cases []string) *Enum {
	sorted := append([]string{}, cases...)
	sort.Strings(sorted)
	return &Enum{Cases: sorted}
}

func (*Enum) isType()             {}
func (*Enum) Kind() typekind.Kind { return typekind.Enum }
func (e *Enum) Identity() (interface{}, bool) {
	key := ""
	for i, c := range e.Cases {
		if i > 0 {
			key += "\x00"
		}
		key += c
	}
	return key, true
}
func (*Enum) NonAttributeChildren() []ref.Ref { return nil }
func (*Enum) IsNullable() bool                { return false }
func (e *Enum) String() string                { return "enum(" + joinNames(e.Cases) + ")" }

// SetOpKind distinguishes union from intersection, the two set-
// operation variants that otherwise share representation.
type SetOpKind int

const (
	SetOpUnion SetOpKind = iota
	SetOpIntersection
)

// SetOperation is a union or intersection over member TypeRefs,
// settable once. Spec.md section 3 invariant 3 forbids empty unions;
// that invariant is enforced by callers (the builder/union-builder),
// not here, since an intersection may legitimately start empty before
// SetMembers runs on the forwarding-ref construction path.
type SetOperation struct {
	SOKind  SetOpKind
	Members []ref.Ref
	set     bool
}

func UnsetSetOperation(k SetOpKind) *SetOperation { return &SetOperation{SOKind: k} }

func NewUnion(members []ref.Ref) *SetOperation {
	return &SetOperation{SOKind: SetOpUnion, Members: members, set: true}
}

func NewIntersection(members []ref.Ref) *SetOperation {
	return &SetOperation{SOKind: SetOpIntersection, Members: members, set: true}
}

func (s *SetOperation) SetMembers(members []ref.Ref) {
	if s.set {
		panic("model: set-operation members already set")
	}
	s.Members, s.set = members, true
}

func (*SetOperation) isType() {}

func (s *SetOperation) Kind() typekind.Kind {
	if s.SOKind == SetOpUnion {
		return typekind.Union
	}
	return typekind.Intersection
}

// Identity forces uniqueness unless the caller goes through
// getUnionType/getIntersectionType's deduplicating path; this package
// always reports unique identity and leaves deduplication-by-member-
// set to the builder, which is the only place that can canonicalize
// member ordering.
func (*SetOperation) Identity() (interface{}, bool) { return nil, false }

func (s *SetOperation) NonAttributeChildren() []ref.Ref { return append([]ref.Ref{}, s.Members...) }

// IsNullable always reports false for a union at this layer: spec.md
// section 4.4's rule ("union -> has a null member") needs the
// members' resolved kinds, which a bare SetOperation cannot see since
// it only holds refs. Callers that need the real answer for a union
// should use tgraph.Graph.IsNullable, which resolves members first.
// Intersections still panic per spec.md section 4.4.
func (s *SetOperation) IsNullable() bool {
	if s.SOKind == SetOpIntersection {
		panic("model: intersection types are not nullable-queryable")
	}
	return false
}

func (s *SetOperation) String() string {
	op := "union"
	if s.SOKind == SetOpIntersection {
		op = "intersection"
	}
	str := op + "("
	for i, m := range s.Members {
		if i > 0 {
			str += ","
		}
		str += m.String()
	}
	return str + ")"
}
