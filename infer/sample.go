// Package infer implements spec.md section 4.8: turning sampled JSON
// values into TypeRefs (TypeInference), then two post-construction
// rewrite-adjacent heuristics consumed by the rewrite package:
// InferMaps (class-to-map conversion scored by a trigram model) and
// ExpandStrings (restricted-string-to-enum promotion).
//
// Grounded on schemabuilder/reflect.go, which walks a Go value's
// reflect.Type recursively to decide struct/slice/map/scalar shape;
// TypeInference generalizes that walk from "driven by Go's static
// reflect.Type" to "driven by a dynamically sampled, lazily-widened
// set of untyped JSON values", since input here is schema-less sample
// data rather than a compiled Go type.
package infer

import (
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
	"github.com/shyptr/typegraph/unionbuilder"
)

// Value is one sampled value's tag: null, bool, integer, double,
// interned-string, uninterned-string, transformed-string, object or
// array. There is no separate string-format tag; a recognized format
// is carried as a transformed string.
type Value struct {
	Kind ValueKind
	// Str is populated for the string kinds; KindTransformedString
	// additionally sets TransformedKind.
	Str             string
	TransformedKind typekind.Kind
	// Object maps property name to every sampled value recorded under
	// it (a lazy nested array per spec.md's "lazy nested array of
	// sampled values").
	Object map[string][]Value
	// ObjectOrder preserves first-seen property order.
	ObjectOrder []string
	// Array holds every sampled element.
	Array []Value
}

// ValueKind tags a sampled Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInteger
	KindDouble
	KindInternedString
	KindUninternedString
	KindTransformedString
	KindObject
	KindArray
)

// Options configures TypeInference's heuristics.
type Options struct {
	// EnumInference enables promoting interned strings to single-case
	// enum candidates.
	EnumInference bool
	// MapInferencePropertyThreshold: once an object's property count
	// reaches this, it is collapsed to a map unconditionally (spec.md's
	// "typical: 500").
	MapInferencePropertyThreshold int
	// ConflateNumbers enables integer/double conflation in the
	// accumulator.
	ConflateNumbers bool
}

// DefaultOptions returns the spec's suggested defaults.
func DefaultOptions() Options {
	return Options{EnumInference: true, MapInferencePropertyThreshold: 500}
}

// Inference drives TypeInference over a builder.
type Inference struct {
	b    *tbuilder.Builder
	opts Options
	// deferred collects refs reserved for `{"$ref": string}`-shaped
	// objects, resolved into intersections after the top-level
	// construction finishes, per spec.md section 4.8.
	deferred []deferredRef
}

type deferredRef struct {
	ref    ref.Ref
	target string // the "$ref" string value observed
}

// New returns an Inference writing into b.
func New(b *tbuilder.Builder, opts Options) *Inference {
	return &Inference{b: b, opts: opts}
}

// Infer builds a TypeRef for one sampled value (and every value
// structurally folded into it by the caller beforehand -- the
// "lazy nested array" in spec.md means callers pass every sample for
// a given logical slot as Array-like children of one synthetic Value,
// not that this function widens across an explicit list itself).
func (inf *Inference) Infer(v Value, names typeattr.TypeAttributes) ref.Ref {
	return inf.inferLeaf(v, names).ref
}

// leaf pairs one sampled value's constructed ref with the Type/
// attributes used to build it, so a caller building a union over
// several sampled values can feed unionbuilder.Accumulator directly
// instead of re-deriving kinds from refs (the builder has no public
// resolve-in-progress accessor mid-construction, so this is the only
// point anything downstream can observe what was actually built).
type leaf struct {
	ref   ref.Ref
	typ   model.Type
	attrs typeattr.TypeAttributes
}

func (inf *Inference) inferLeaf(v Value, names typeattr.TypeAttributes) leaf {
	switch v.Kind {
	case KindNull:
		t := model.Primitive{K: typekind.Null}
		return leaf{ref: inf.b.GetPrimitiveType(t.K, names), typ: t, attrs: names}
	case KindBool:
		t := model.Primitive{K: typekind.Bool}
		return leaf{ref: inf.b.GetPrimitiveType(t.K, names), typ: t, attrs: names}
	case KindInteger:
		t := model.Primitive{K: typekind.Int}
		return leaf{ref: inf.b.GetPrimitiveType(t.K, names), typ: t, attrs: names}
	case KindDouble:
		t := model.Primitive{K: typekind.Double}
		return leaf{ref: inf.b.GetPrimitiveType(t.K, names), typ: t, attrs: names}
	case KindTransformedString:
		t := model.Primitive{K: v.TransformedKind}
		return leaf{ref: inf.b.GetPrimitiveType(t.K, names), typ: t, attrs: names}
	case KindInternedString, KindUninternedString:
		r := inf.inferString(v, names)
		return leaf{ref: r, typ: model.Primitive{K: typekind.String}, attrs: names}
	case KindArray:
		r, typ := inf.inferArray(v, names)
		return leaf{ref: r, typ: typ, attrs: names}
	case KindObject:
		r, typ := inf.inferObject(v, names)
		return leaf{ref: r, typ: typ, attrs: names}
	default:
		t := model.Primitive{K: typekind.Any}
		return leaf{ref: inf.b.GetPrimitiveType(t.K, names), typ: t, attrs: names}
	}
}

func (inf *Inference) inferString(v Value, names typeattr.TypeAttributes) ref.Ref {
	var st typeattr.StringTypes
	if inf.opts.EnumInference && v.Kind == KindInternedString {
		st = typeattr.ForCases(map[string]int{v.Str: 1})
	}
	return inf.b.GetStringType(names, st)
}

func (inf *Inference) inferArray(v Value, names typeattr.TypeAttributes) (ref.Ref, model.Type) {
	leaves := make([]leaf, 0, len(v.Array))
	for _, elem := range v.Array {
		leaves = append(leaves, inf.inferLeaf(elem, typeattr.Empty))
	}
	item := inf.unionLeaves(leaves)
	return inf.b.GetArrayType(names, item), model.NewArray(item)
}

// unionLeaves feeds every leaf's Type/attributes into a
// unionbuilder.Accumulator and materializes the result via
// unionbuilder.Builder, per spec.md section 4.8's "For each value's
// tag ... it feeds the Accumulator" and section 4.7's conflict
// reconciliation (integer/double conflation under ConflateNumbers,
// `any` absorption, enum/string coalescing).
func (inf *Inference) unionLeaves(leaves []leaf) ref.Ref {
	if len(leaves) == 0 {
		return inf.b.GetPrimitiveType(typekind.Any, typeattr.Empty)
	}
	acc := unionbuilder.NewAccumulator()
	var itemRefs []ref.Ref
	var objectRef ref.Ref
	for _, l := range leaves {
		acc.AddType(l.typ, l.attrs)
		if arr, ok := l.typ.(*model.Array); ok {
			itemRefs = append(itemRefs, arr.Item)
		}
		if _, ok := l.typ.(*model.Object); ok {
			objectRef = l.ref
		}
	}
	item := ref.Ref{}
	if len(itemRefs) > 0 {
		item = itemRefs[0]
		for _, r := range itemRefs[1:] {
			if r != item {
				item = inf.b.GetUniqueUnionType(typeattr.Empty, []ref.Ref{item, r})
			}
		}
	}
	ub := unionbuilder.NewBuilder(inf.b, inf.opts.ConflateNumbers)
	return ub.Build(acc, typeattr.Empty, item, objectRef, false)
}

func (inf *Inference) inferObject(v Value, names typeattr.TypeAttributes) (ref.Ref, model.Type) {
	if target, ok := refTarget(v); ok {
		r := inf.b.GetUniqueIntersectionType(typeattr.Empty, nil)
		inf.deferred = append(inf.deferred, deferredRef{ref: r, target: target})
		return r, model.NewIntersection(nil)
	}

	if inf.opts.MapInferencePropertyThreshold > 0 && len(v.ObjectOrder) >= inf.opts.MapInferencePropertyThreshold {
		r := inf.inferAsMap(v, names)
		return r, model.UnsetObject(model.ObjectMap)
	}

	order := append([]string{}, v.ObjectOrder...)
	props := make(map[string]model.Property, len(order))
	for _, key := range order {
		samples := v.Object[key]
		props[key] = model.Property{
			Type:     inf.inferProperty(samples),
			Optional: observedAbsent(v, key),
		}
	}
	r := inf.b.GetClassType(names, order, props)
	return r, model.NewClass(order, props)
}

// inferAsMap unions every sampled value across every property
// (flattened, not unioned per-key-then-again-across-keys) into the
// map's single value type.
func (inf *Inference) inferAsMap(v Value, names typeattr.TypeAttributes) ref.Ref {
	var leaves []leaf
	for _, key := range v.ObjectOrder {
		for _, s := range v.Object[key] {
			leaves = append(leaves, inf.inferLeaf(s, typeattr.Empty))
		}
	}
	value := inf.unionLeaves(leaves)
	return inf.b.GetMapType(names, value)
}

func (inf *Inference) inferProperty(samples []Value) ref.Ref {
	leaves := make([]leaf, 0, len(samples))
	for _, s := range samples {
		leaves = append(leaves, inf.inferLeaf(s, typeattr.Empty))
	}
	return inf.unionLeaves(leaves)
}

// observedAbsent reports whether key was sampled fewer times than the
// object's most-frequently-sampled key, per spec.md's "marks a
// property optional if it was absent in any sample" -- callers
// populate v.Object[key] with exactly one entry per document the key
// appeared in, so a shorter list than the max means some document
// omitted it.
func observedAbsent(v Value, key string) bool {
	total := 0
	for _, samples := range v.Object {
		if len(samples) > total {
			total = len(samples)
		}
	}
	return len(v.Object[key]) < total
}

// refTarget reports whether v looks like `{"$ref": "<string>"}`: one
// property named "$ref" whose only sampled value is a string.
func refTarget(v Value) (string, bool) {
	if len(v.ObjectOrder) != 1 || v.ObjectOrder[0] != "$ref" {
		return "", false
	}
	samples := v.Object["$ref"]
	if len(samples) != 1 {
		return "", false
	}
	s := samples[0]
	if s.Kind != KindInternedString && s.Kind != KindUninternedString {
		return "", false
	}
	return s.Str, true
}

// Deferred returns every `{"$ref": ...}` intersection reserved during
// inference, for the driver to resolve once the referenced top-level
// is known.
func (inf *Inference) Deferred() []DeferredIntersection {
	out := make([]DeferredIntersection, len(inf.deferred))
	for i, d := range inf.deferred {
		out[i] = DeferredIntersection{Ref: d.ref, Target: d.target}
	}
	return out
}

// DeferredIntersection is one unresolved `{"$ref": target}` shape.
type DeferredIntersection struct {
	Ref    ref.Ref
	Target string
}

// ResolveDeferred fills in each deferred intersection's members once
// resolve can map target strings to refs.
func (inf *Inference) ResolveDeferred(resolve func(target string) (ref.Ref, bool)) {
	for _, d := range inf.deferred {
		if r, ok := resolve(d.target); ok {
			inf.b.SetSetOperationMembers(d.ref, []ref.Ref{r})
		} else {
			inf.b.SetSetOperationMembers(d.ref, []ref.Ref{inf.b.GetPrimitiveType(typekind.Any, typeattr.Empty)})
		}
	}
	inf.deferred = nil
}
