// Package tgraph implements spec.md section 3/4.5's TypeGraph: a
// frozen arena of Types, indexed by TypeRef, with a parallel
// TypeAttributes array and a top-level name map.
//
// Grounded on schemabuilder/build.go's builder struct, which holds a
// similar "everything discovered so far" arena (types, objects,
// enums keyed by reflect.Type) before schema.go freezes it into an
// immutable *Schema; TypeGraph generalizes that freeze step to the
// type-graph's own Type/TypeAttributes arrays.
package tgraph

import (
	"sort"

	"github.com/shyptr/typegraph/direrr"
	"github.com/shyptr/typegraph/internalerr"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
)

// Graph is an immutable type-graph: once returned by a TypeBuilder's
// Finish, none of its exported accessors ever mutate it.
type Graph struct {
	serial     string
	types      []model.Type
	attributes []typeattr.TypeAttributes
	topLevels  map[string]ref.Ref
	topOrder   []string
}

// New builds a frozen Graph from already-committed arrays. Callers
// outside tbuilder should not call this directly; tbuilder.Finish is
// the only intended constructor, kept exported so other packages
// (graphrewrite, tests) can build graphs directly when they already
// have committed arrays.
func New(serial string, types []model.Type, attributes []typeattr.TypeAttributes, topOrder []string, topLevels map[string]ref.Ref) *Graph {
	return &Graph{
		serial:     serial,
		types:      types,
		attributes: attributes,
		topLevels:  topLevels,
		topOrder:   topOrder,
	}
}

// Serial returns this graph's serial id, the first half of every
// TypeRef it mints.
func (g *Graph) Serial() string { return g.serial }

// Size reports how many types this graph holds.
func (g *Graph) Size() int { return len(g.types) }

// Resolve returns the Type r resolves to, asserting r belongs to this
// graph and indexes a committed type (spec.md section 3 invariant 1).
func (g *Graph) Resolve(r ref.Ref) model.Type {
	return g.MustResolve(r)
}

// ResolveChecked is Resolve's checked form: returns ok=false instead
// of panicking when r does not belong to this graph or is out of
// range, for callers that need to probe refs from a possibly-stale
// prior graph.
func (g *Graph) ResolveChecked(r ref.Ref) (model.Type, bool) {
	if r.Graph != g.serial {
		return nil, false
	}
	if r.Index < 0 || r.Index >= len(g.types) {
		return nil, false
	}
	t := g.types[r.Index]
	if t == nil {
		return nil, false
	}
	return t, true
}

// MustResolve panics via internalerr if r does not resolve, for
// internal call sites that have already established r belongs to this
// graph.
func (g *Graph) MustResolve(r ref.Ref) model.Type {
	t, ok := g.ResolveChecked(r)
	internalerr.Assert(ok, "tgraph: ref %s does not resolve in graph %s", r, g.serial)
	return t
}

// Attributes returns the TypeAttributes attached to r.
func (g *Graph) Attributes(r ref.Ref) typeattr.TypeAttributes {
	internalerr.Assert(r.Graph == g.serial, "tgraph: ref %s is foreign to graph %s", r, g.serial)
	return g.attributes[r.Index]
}

// TopLevelRef returns the ref registered under name, if any.
func (g *Graph) TopLevelRef(name string) (ref.Ref, bool) {
	r, ok := g.topLevels[name]
	return r, ok
}

// TopLevels returns every (name, ref) pair in the order names were
// added (spec.md section 5's ordering guarantee).
func (g *Graph) TopLevels() []TopLevel {
	out := make([]TopLevel, len(g.topOrder))
	for i, name := range g.topOrder {
		out[i] = TopLevel{Name: name, Ref: g.topLevels[name]}
	}
	return out
}

// TopLevel pairs a top-level name with its TypeRef.
type TopLevel struct {
	Name string
	Ref  ref.Ref
}

// AllTypesUnordered returns every committed ref in this graph, in no
// particular order beyond index order (the "unordered" in its name
// documents that callers must not depend on any semantic ordering
// beyond what index order happens to give them).
func (g *Graph) AllTypesUnordered() []ref.Ref {
	out := make([]ref.Ref, 0, len(g.types))
	for i, t := range g.types {
		if t == nil {
			continue
		}
		out = append(out, ref.Ref{Graph: g.serial, Index: i})
	}
	return out
}

// NamedTypes buckets every object-like/enum/union type by category,
// implementing spec.md section 6's allNamedTypesSeparated.
type NamedTypes struct {
	Objects []ref.Ref
	Enums   []ref.Ref
	Unions  []ref.Ref
}

// AllNamedTypesSeparated partitions every nameable type into its
// rendering category.
func (g *Graph) AllNamedTypesSeparated() NamedTypes {
	var out NamedTypes
	for _, r := range g.AllTypesUnordered() {
		t := g.Resolve(r)
		switch t.(type) {
		case *model.Object:
			out.Objects = append(out.Objects, r)
		case *model.Enum:
			out.Enums = append(out.Enums, r)
		case *model.SetOperation:
			if so := t.(*model.SetOperation); so.SOKind == model.SetOpUnion {
				out.Unions = append(out.Unions, r)
			}
		}
	}
	return out
}

// Children returns r's full child set: structural children union
// attribute-reported children, per spec.md section 4.4.
func (g *Graph) Children(r ref.Ref) []ref.Ref {
	return model.Children(g.Resolve(r), g.Attributes(r))
}

// IsNullable reports spec.md section 4.4's is-nullable rule for r,
// resolving through this graph so a union's own rule ("has a null
// member") can actually inspect its members' kinds -- something
// model.SetOperation.IsNullable cannot do on its own, since it only
// holds refs, not resolved Types. Every other kind defers to its own
// Type.IsNullable, which needs no graph access.
func (g *Graph) IsNullable(r ref.Ref) bool {
	t := g.Resolve(r)
	so, ok := t.(*model.SetOperation)
	if !ok || so.SOKind != model.SetOpUnion {
		return t.IsNullable()
	}
	for _, m := range so.Members {
		if g.Resolve(m).Kind() == typekind.Null {
			return true
		}
	}
	return false
}

// RequireNonEmptyUnions asserts spec.md section 3 invariant 3: every
// union in the graph has at least one member. Callers run this as a
// consistency check after a rewrite pass; a failure is reported as
// direrr.NoEmptyUnions rather than panicking, since it reflects a bug
// in pass logic rather than an internal invariant violation of this
// package itself.
func (g *Graph) RequireNonEmptyUnions() error {
	for _, r := range g.AllTypesUnordered() {
		so, ok := g.Resolve(r).(*model.SetOperation)
		if !ok || so.SOKind != model.SetOpUnion {
			continue
		}
		if len(so.Members) == 0 {
			return direrr.New(direrr.NoEmptyUnions, map[string]interface{}{"union": r.String()})
		}
	}
	return nil
}

// NewUnordered builds a Graph from a top-level map without a tracked
// insertion order, falling back to lexicographic order; this is never
// what a real TypeBuilder produces but is a convenient, deterministic
// constructor for fixtures and tests.
func NewUnordered(serial string, types []model.Type, attributes []typeattr.TypeAttributes, topLevels map[string]ref.Ref) *Graph {
	order := make([]string, 0, len(topLevels))
	for k := range topLevels {
		order = append(order, k)
	}
	sort.Strings(order)
	return New(serial, types, attributes, order, topLevels)
}
