// Package typeattr implements spec.md section 4.3: the TypeAttribute
// framework, a pluggable, combinable, identity-affecting metadata
// system attached to every Type.
//
// The source material's attribute kinds are singleton objects
// identified by pointer/name equality with a handful of behavioral
// methods (combine, intersect, makeInferred, ...). Per the Design
// Notes' re-architecture guidance, this package keeps that shape as a
// small interface (Kind) registered by stable name into a
// process-wide Registry, with type-erased values so a TypeAttributes
// map can hold heterogeneous attribute kinds side by side; each
// concrete kind (names.go, description.go, ...) provides a
// typed accessor so callers never touch interface{} directly.
package typeattr

import (
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/typekind"
)

// Kind is the behavioral contract every attribute kind implements.
// Values are opaque (interface{}) on this interface; concrete kinds
// wrap it with typed Get/Set helpers (see names.go for the richest
// example, TypeNames).
type Kind interface {
	// Name uniquely identifies this kind; two Kinds are the same
	// attribute iff their Name is equal. This is the "stable kind-id"
	// the Design Notes call for in place of source's pointer identity.
	Name() string

	// AppliesToKind reports whether this attribute may attach to a
	// type of the given kind.
	AppliesToKind(k typekind.Kind) bool

	// InIdentity reports whether this attribute's value participates
	// in a type's identity tuple (spec.md section 3 invariant 4).
	InIdentity() bool

	// RequireUniqueIdentity reports whether the given value forces its
	// owning type to be constructed as unique (never deduplicated).
	RequireUniqueIdentity(v interface{}) bool

	// Combine merges N values under union composition. A nil return
	// means the attribute is dropped from the result.
	Combine(values []interface{}) interface{}

	// Intersect merges N values under intersection composition.
	// Defaults to Combine when a kind has no distinct intersection
	// rule (spec.md: "default: reuse combine").
	Intersect(values []interface{}) interface{}

	// MakeInferred demotes a value to an inferred one, or drops it
	// (nil return).
	MakeInferred(v interface{}) interface{}

	// IncreaseDistance widens a value's "namedness distance" (used by
	// the union builder when a kind materializes alone out of an
	// accumulator, spec.md section 4.7).
	IncreaseDistance(v interface{}) interface{}

	// Children returns the type references transitively owned by this
	// attribute value (e.g. TypeNames.TooMany owns none, but the
	// Transformation attribute owns every type its tree touches).
	Children(v interface{}) []ref.Ref

	// Reconstitute rebuilds v for a new graph via builder, called
	// during spec.md section 4.6 reconstitution.
	Reconstitute(builder Reconstituter, v interface{}) interface{}

	// String renders v for debug printing.
	String(v interface{}) string
}

// Reconstituter is the minimal surface GraphRewriting exposes to an
// attribute's Reconstitute method: the ability to map an old TypeRef
// to its rebuilt counterpart in the new graph.
type Reconstituter interface {
	Reconstitute(old ref.Ref) ref.Ref
}

// Registry is a process-wide table of attribute kinds, keyed by
// stable name, standing in for the source's singleton-object identity
// per the Design Notes' "Attribute framework polymorphism"
// re-architecture.
type Registry struct {
	byName map[string]Kind
}

// NewRegistry returns an empty registry. Pipelines normally use
// DefaultRegistry, which has every attribute kind defined in this
// package pre-registered; a custom registry is only needed by a host
// program defining its own attribute kinds.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]Kind{}}
}

// Register adds k to the registry. Registering two kinds with the
// same Name is an internal error: attribute kinds are meant to be
// singletons.
func (r *Registry) Register(k Kind) {
	if _, exists := r.byName[k.Name()]; exists {
		panic("typeattr: duplicate attribute kind registered: " + k.Name())
	}
	r.byName[k.Name()] = k
}

// Lookup returns the kind registered under name, or nil.
func (r *Registry) Lookup(name string) Kind { return r.byName[name] }

// All returns every registered kind, in registration order is not
// guaranteed; callers that need a stable order should sort by Name.
func (r *Registry) All() []Kind {
	out := make([]Kind, 0, len(r.byName))
	for _, k := range r.byName {
		out = append(out, k)
	}
	return out
}

// DefaultRegistry has every attribute kind this package defines
// pre-registered, in the order spec.md section 3 lists "Known kinds".
var DefaultRegistry = buildDefaultRegistry()

func buildDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NamesKind)
	r.Register(DescriptionKind)
	r.Register(PropertyDescriptionKind)
	r.Register(AccessorNamesKind)
	r.Register(EnumValuesKind)
	r.Register(MinMaxKind)
	r.Register(MinMaxLengthKind)
	r.Register(PatternKind)
	r.Register(URIAttributesKind)
	r.Register(StringTypesKind)
	r.Register(UnionIdentifierKind)
	r.Register(UnionMemberNamesKind)
	r.Register(TransformationKind)
	r.Register(ProvenanceKind)
	return r
}
