// Package tbuilder implements spec.md section 4.5's TypeBuilder: the
// sole mutator of an in-progress type graph, responsible for identity
// deduplication, one-shot structural field assignment, and freezing
// into an immutable tgraph.Graph.
//
// Grounded on schemabuilder/build.go's schemaBuilder: a reflect.Type
// -keyed map of already-built types consulted before constructing a
// new one (sb.types[nodeType]), generalized here from "keyed by Go
// reflect.Type" to "keyed by a computed identity value", since the
// type-graph builds types from sample data rather than Go structs.
package tbuilder

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shyptr/typegraph/internalerr"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
)

// NewSerial mints a fresh, globally-unique graph serial tag. Callers
// that are chaining a rewrite pass's output onto an already-named
// successor graph pick their own serial (so a pipeline can reason
// about "the graph after pass N"); this is for the one place a serial
// has no natural name yet -- bootstrapping the very first graph a
// pipeline run builds from scratch.
func NewSerial() string {
	return uuid.NewString()
}

// StringTypeMapping configures, per spec.md section 4.5's
// "String-type mapping", whether a transformed-string kind is
// preserved as its own primitive or falls back to plain string.
// A kind absent from the map is preserved.
type StringTypeMapping map[typekind.Kind]typekind.Kind

// Builder is the TypeBuilder. The zero value is not usable; construct
// with New.
type Builder struct {
	serial       string
	nextIndex    int
	types        []model.Type // nil slot = reserved-but-uncommitted
	attributes   []typeattr.TypeAttributes
	committed    []bool
	byIdentity   map[string]ref.Ref
	topOrder     []string
	topLevels    map[string]ref.Ref
	stringTypeMapping StringTypeMapping
}

// New returns an empty Builder whose minted refs carry the given
// graph serial.
func New(serial string, stringTypeMapping StringTypeMapping) *Builder {
	if stringTypeMapping == nil {
		stringTypeMapping = StringTypeMapping{}
	}
	return &Builder{
		serial:            serial,
		byIdentity:        map[string]ref.Ref{},
		topLevels:         map[string]ref.Ref{},
		stringTypeMapping: stringTypeMapping,
	}
}

// reserve allocates a new, uncommitted index and returns its ref.
func (b *Builder) reserve() ref.Ref {
	idx := b.nextIndex
	b.nextIndex++
	b.types = append(b.types, nil)
	b.attributes = append(b.attributes, typeattr.Empty)
	b.committed = append(b.committed, false)
	return ref.Ref{Graph: b.serial, Index: idx}
}

// commit installs t at r's reserved index exactly once (spec.md
// section 3's lifecycle: "each Type is committed exactly once to its
// reserved index").
func (b *Builder) commit(r ref.Ref, t model.Type, attrs typeattr.TypeAttributes) {
	internalerr.Assert(r.Graph == b.serial, "tbuilder: ref %s is foreign to builder %s", r, b.serial)
	internalerr.Assert(!b.committed[r.Index], "tbuilder: index %d committed twice", r.Index)
	b.types[r.Index] = t
	b.attributes[r.Index] = attrs
	b.committed[r.Index] = true
}

// identityKey renders an identity tuple (kind, identity components,
// identity-affecting attributes) to a stable string key.
func identityKey(k typekind.Kind, components interface{}, attrs typeattr.TypeAttributes) string {
	return fmt.Sprintf("%s|%v|%s", k, components, typeattr.IdentityAttributes(attrs))
}

// getOrAdd implements spec.md section 4.5's get-or-add: compute
// identity; on a cache hit, fold in the caller's non-identity
// attributes and (if forwardingRef is non-zero) create a single-
// member intersection forwarding to the hit; on a miss, reserve (or
// reuse forwardingRef), construct via create, commit, and register.
func (b *Builder) getOrAdd(
	kind typekind.Kind,
	components interface{},
	attrs typeattr.TypeAttributes,
	create func(r ref.Ref) model.Type,
	forwardingRef ref.Ref,
) ref.Ref {
	unique := typeattr.RequiresUniqueIdentity(attrs)
	if !unique && components != nil {
		key := identityKey(kind, components, attrs)
		if hit, ok := b.byIdentity[key]; ok {
			b.addAttributes(hit, attrs)
			if !forwardingRef.IsZero() {
				return b.forwardIntersection(forwardingRef, hit)
			}
			return hit
		}
		r := forwardingRef
		if r.IsZero() {
			r = b.reserve()
		}
		b.commit(r, create(r), attrs)
		b.byIdentity[key] = r
		return r
	}

	r := forwardingRef
	if r.IsZero() {
		r = b.reserve()
	}
	b.commit(r, create(r), attrs)
	return r
}

// forwardIntersection builds a single-member intersection at
// forwardingRef that forwards to hit, used when a caller reserved a
// ref ahead of discovering their construction was actually a cache
// hit (needed for cycles, per spec.md section 4.6).
func (b *Builder) forwardIntersection(forwardingRef, hit ref.Ref) ref.Ref {
	b.commit(forwardingRef, model.NewIntersection([]ref.Ref{hit}), typeattr.Empty)
	return forwardingRef
}

// addAttributes implements spec.md section 4.5's add-attributes:
// asserts no identity-affecting attribute is added after the fact,
// then unions in the non-identity attributes.
func (b *Builder) addAttributes(r ref.Ref, attrs typeattr.TypeAttributes) {
	existing := b.attributes[r.Index]
	for _, k := range attrs.Kinds() {
		if !k.InIdentity() {
			continue
		}
		newVal, _ := attrs.Get(k)
		oldVal, existed := existing.Get(k)
		internalerr.Assert(!existed || k.String(oldVal) == k.String(newVal),
			"tbuilder: identity-affecting attribute %q changed after commit on ref %s", k.Name(), r)
	}
	b.attributes[r.Index] = typeattr.Merge(existing, attrs)
}

// --- primitive / string ---

// GetPrimitiveType returns (dedup-ing) a primitive type of kind k.
func (b *Builder) GetPrimitiveType(k typekind.Kind, attrs typeattr.TypeAttributes) ref.Ref {
	if mapped, ok := b.stringTypeMapping[k]; ok {
		k = mapped
	}
	return b.getOrAdd(k, k, attrs, func(ref.Ref) model.Type { return model.Primitive{K: k} }, ref.Ref{})
}

// GetStringType returns a plain string type, optionally restricted by
// stringTypes (enum-case/transformation observations carried as a
// StringTypesKind attribute consumed later by ExpandStrings).
func (b *Builder) GetStringType(attrs typeattr.TypeAttributes, stringTypes typeattr.StringTypes) ref.Ref {
	full := typeattr.Merge(attrs, typeattr.WithStringTypes(stringTypes))
	return b.getOrAdd(typekind.String, typekind.String, full, func(ref.Ref) model.Type { return model.Primitive{K: typekind.String} }, ref.Ref{})
}

// --- enum ---

// GetEnumType returns (dedup-ing by sorted case set) an enum type.
func (b *Builder) GetEnumType(attrs typeattr.TypeAttributes, cases []string) ref.Ref {
	sorted := append([]string{}, cases...)
	sort.Strings(sorted)
	key := fmt.Sprintf("%v", sorted)
	return b.getOrAdd(typekind.Enum, key, attrs, func(ref.Ref) model.Type { return model.NewEnum(cases) }, ref.Ref{})
}

// --- array ---

// GetArrayType returns (dedup-ing by item ref) an array type.
func (b *Builder) GetArrayType(attrs typeattr.TypeAttributes, item ref.Ref) ref.Ref {
	return b.getOrAdd(typekind.Array, item, attrs, func(ref.Ref) model.Type { return model.NewArray(item) }, ref.Ref{})
}

// ReserveArrayType reserves a forwarding ref for an array whose item
// type is not yet known (a self-referential array of arrays, etc).
// SetArrayItem must be called on the returned ref exactly once.
func (b *Builder) ReserveArrayType(attrs typeattr.TypeAttributes) ref.Ref {
	r := b.reserve()
	b.commit(r, model.UnsetArray(), attrs)
	return r
}

// SetArrayItem populates a reserved array's item type exactly once.
func (b *Builder) SetArrayItem(r ref.Ref, item ref.Ref) {
	a, ok := b.types[r.Index].(*model.Array)
	internalerr.Assert(ok, "tbuilder: ref %s is not an array", r)
	a.SetItem(item)
}

// --- map ---

// GetMapType returns (dedup-ing by value-type ref) a map type.
func (b *Builder) GetMapType(attrs typeattr.TypeAttributes, values ref.Ref) ref.Ref {
	return b.getOrAdd(typekind.Map, values, attrs, func(ref.Ref) model.Type { return model.NewMap(values) }, ref.Ref{})
}

// --- class (always unique; classes are never structurally deduped --
// CombineClasses is the pass responsible for merging similar ones) ---

// GetClassType constructs a fresh class type with the given ordered
// properties. Unlike the primitive/array/map factories this never
// deduplicates: spec.md's external interfaces list getClassType
// alongside getUniqueClassType because classes discovered from
// distinct samples are distinct until CombineClasses says otherwise.
func (b *Builder) GetClassType(attrs typeattr.TypeAttributes, order []string, props map[string]model.Property) ref.Ref {
	r := b.reserve()
	b.commit(r, model.NewClass(order, props), attrs)
	return r
}

// GetUniqueClassType reserves a forwarding ref for a class whose
// properties are not yet known (needed when building a class that may
// recursively reference itself). SetObjectProperties populates it.
func (b *Builder) GetUniqueClassType(attrs typeattr.TypeAttributes) ref.Ref {
	r := b.reserve()
	b.commit(r, model.UnsetObject(model.ObjectClass), attrs)
	return r
}

// GetUniqueObjectType reserves a forwarding ref for a base object type
// (non-class, non-map).
func (b *Builder) GetUniqueObjectType(attrs typeattr.TypeAttributes) ref.Ref {
	r := b.reserve()
	b.commit(r, model.UnsetObject(model.ObjectBase), attrs)
	return r
}

// SetObjectProperties populates a reserved class/object's named
// properties exactly once.
func (b *Builder) SetObjectProperties(r ref.Ref, order []string, props map[string]model.Property) {
	o, ok := b.types[r.Index].(*model.Object)
	internalerr.Assert(ok, "tbuilder: ref %s is not an object", r)
	o.SetProperties(order, props)
}

// SetObjectAdditional populates a reserved base-object/map's
// additional-properties type exactly once.
func (b *Builder) SetObjectAdditional(r ref.Ref, additional ref.Ref) {
	o, ok := b.types[r.Index].(*model.Object)
	internalerr.Assert(ok, "tbuilder: ref %s is not an object", r)
	o.SetAdditional(additional)
}

// --- union / intersection ---

// GetUnionType returns (dedup-ing by sorted member-ref set) a union
// type. Spec.md section 3 invariant 3 forbids empty unions; callers
// (UnionBuilder) are responsible for never calling this with zero
// members.
func (b *Builder) GetUnionType(attrs typeattr.TypeAttributes, members []ref.Ref) ref.Ref {
	internalerr.Assert(len(members) > 0, "tbuilder: union must have at least one member")
	key := sortedRefKey(members)
	return b.getOrAdd(typekind.Union, key, attrs, func(ref.Ref) model.Type { return model.NewUnion(members) }, ref.Ref{})
}

// GetUniqueUnionType reserves a forwarding ref for a union whose
// members are not yet known, or constructs one immediately if members
// is non-nil.
func (b *Builder) GetUniqueUnionType(attrs typeattr.TypeAttributes, members []ref.Ref) ref.Ref {
	r := b.reserve()
	if members != nil {
		b.commit(r, model.NewUnion(members), attrs)
	} else {
		b.commit(r, model.UnsetSetOperation(model.SetOpUnion), attrs)
	}
	return r
}

// GetIntersectionType returns (dedup-ing by sorted member-ref set) an
// intersection type.
func (b *Builder) GetIntersectionType(attrs typeattr.TypeAttributes, members []ref.Ref) ref.Ref {
	key := sortedRefKey(members)
	return b.getOrAdd(typekind.Intersection, key, attrs, func(ref.Ref) model.Type { return model.NewIntersection(members) }, ref.Ref{})
}

// GetUniqueIntersectionType reserves a forwarding ref for an
// intersection whose members are not yet known, or constructs one
// immediately if members is non-nil. This is also the path used for
// the "deferred intersection" TypeInference builds for `{"$ref":
// string}` shapes (spec.md section 4.8). The single-member forwarding
// intersections getOrAdd creates on identity cache hits are committed
// by forwardIntersection instead.
func (b *Builder) GetUniqueIntersectionType(attrs typeattr.TypeAttributes, members []ref.Ref) ref.Ref {
	r := b.reserve()
	if members != nil {
		b.commit(r, model.NewIntersection(members), attrs)
	} else {
		b.commit(r, model.UnsetSetOperation(model.SetOpIntersection), attrs)
	}
	return r
}

// SetSetOperationMembers populates a reserved union/intersection's
// member list exactly once.
func (b *Builder) SetSetOperationMembers(r ref.Ref, members []ref.Ref) {
	so, ok := b.types[r.Index].(*model.SetOperation)
	internalerr.Assert(ok, "tbuilder: ref %s is not a set-operation type", r)
	so.SetMembers(members)
}

func sortedRefKey(members []ref.Ref) string {
	sorted := append([]ref.Ref{}, members...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Graph != sorted[j].Graph {
			return sorted[i].Graph < sorted[j].Graph
		}
		return sorted[i].Index < sorted[j].Index
	})
	return fmt.Sprintf("%v", sorted)
}

// --- forwarding refs, for graphrewrite ---

// Reserve allocates a new, uncommitted index and returns its ref, for
// callers (graphrewrite) that need a forwarding ref before the type
// it will eventually hold is known -- needed for cycles, per spec.md
// section 4.6.
func (b *Builder) Reserve() ref.Ref { return b.reserve() }

// CommitAt installs t at a previously reserved ref exactly once.
func (b *Builder) CommitAt(r ref.Ref, t model.Type, attrs typeattr.TypeAttributes) {
	b.commit(r, t, attrs)
}

// AddAttributesAt is the exported form of addAttributes, for
// graphrewrite's reconstitution of already-committed types.
func (b *Builder) AddAttributesAt(r ref.Ref, attrs typeattr.TypeAttributes) {
	b.addAttributes(r, attrs)
}

// --- top levels / finish ---

// AddTopLevel registers name -> r, failing if name is already
// present.
func (b *Builder) AddTopLevel(name string, r ref.Ref) error {
	if _, exists := b.topLevels[name]; exists {
		return fmt.Errorf("tbuilder: top-level %q already added", name)
	}
	b.topLevels[name] = r
	b.topOrder = append(b.topOrder, name)
	return nil
}

// Finish asserts every reserved index is committed and freezes the
// builder's arrays into an immutable tgraph.Graph.
func (b *Builder) Finish() *tgraph.Graph {
	for i, ok := range b.committed {
		internalerr.Assert(ok, "tbuilder: index %d reserved but never committed", i)
	}
	types := append([]model.Type{}, b.types...)
	attrs := append([]typeattr.TypeAttributes{}, b.attributes...)
	topOrder := append([]string{}, b.topOrder...)
	topLevels := make(map[string]ref.Ref, len(b.topLevels))
	for k, v := range b.topLevels {
		topLevels[k] = v
	}
	return tgraph.New(b.serial, types, attrs, topOrder, topLevels)
}
