// Package unionbuilder implements spec.md section 4.7: a two-phase
// builder that accumulates observed types by kind and materializes
// either a single type or a canonical union from the result.
//
// Grounded on schemabuilder/build.go's buildUnion, which collects a Go
// union-tagged struct's member types into a builder.Union keyed by
// name; unionbuilder generalizes that single-pass collection into a
// two-phase accumulate/materialize split driven by typekind.Kind
// rather than Go reflection, since the type-graph accumulates members
// discovered incrementally from sample data rather than from a single
// struct definition.
package unionbuilder

import (
	"sort"

	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
)

// bucket is the accumulator's per-kind slot: spec.md groups kinds as
// primitive-non-string, primitive-string, array, object/class/map
// (collapsed to "object" during accumulation), and enum.
type bucket int

const (
	bucketNone bucket = iota
	bucketAny
	bucketNull
	bucketBool
	bucketInt
	bucketDouble
	bucketString
	bucketDate
	bucketTime
	bucketDateTime
	bucketUUID
	bucketURI
	bucketIntegerString
	bucketBoolString
	bucketArray
	bucketObject
	bucketEnum
)

var bucketForPrimitive = map[typekind.Kind]bucket{
	typekind.None:          bucketNone,
	typekind.Any:           bucketAny,
	typekind.Null:          bucketNull,
	typekind.Bool:          bucketBool,
	typekind.Int:           bucketInt,
	typekind.Double:        bucketDouble,
	typekind.String:        bucketString,
	typekind.Date:          bucketDate,
	typekind.Time:          bucketTime,
	typekind.DateTime:      bucketDateTime,
	typekind.UUID:          bucketUUID,
	typekind.URI:           bucketURI,
	typekind.IntegerString: bucketIntegerString,
	typekind.BoolString:    bucketBoolString,
}

// Accumulator is phase 1: callers feed observed types one by one; it
// partitions them by bucket and merges attributes per bucket under
// union composition.
type Accumulator struct {
	attrs              map[bucket]typeattr.TypeAttributes
	arrayItems         []ref.Ref // item refs seen for the array bucket, unioned later by the caller's union-builder over items
	enumCases          map[string]bool
	lostTypeAttributes bool
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		attrs:     map[bucket]typeattr.TypeAttributes{},
		enumCases: map[string]bool{},
	}
}

// AddType feeds one observed type (plus its attributes) into the
// accumulator.
func (a *Accumulator) AddType(t model.Type, attrs typeattr.TypeAttributes) {
	switch tt := t.(type) {
	case model.Primitive:
		b, ok := bucketForPrimitive[tt.K]
		if !ok {
			b = bucketAny
		}
		a.merge(b, attrs)
	case *model.Array:
		a.merge(bucketArray, attrs)
		a.arrayItems = append(a.arrayItems, tt.Item)
	case *model.Object:
		a.merge(bucketObject, attrs)
	case *model.Enum:
		a.merge(bucketEnum, attrs)
		for _, c := range tt.Cases {
			a.enumCases[c] = true
		}
	case *model.SetOperation:
		// A nested union or intersection is not flattened here (callers
		// expand nested unions and resolve intersections before
		// union-building); any set-operation type is treated as `any`,
		// matching the accumulator's "unknown shape collapses to any"
		// fallback.
		a.merge(bucketAny, attrs)
	}
}

func (a *Accumulator) merge(b bucket, attrs typeattr.TypeAttributes) {
	a.attrs[b] = typeattr.Merge(a.attrs[b], attrs)
}

// ArrayItems returns every item ref observed for the array bucket, so
// the caller can recursively union them into one item type before
// calling Builder.Build.
func (a *Accumulator) ArrayItems() []ref.Ref { return a.arrayItems }

// EnumCases returns every case observed across all enum-bucket
// members.
func (a *Accumulator) EnumCases() []string {
	out := make([]string, 0, len(a.enumCases))
	for c := range a.enumCases {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LostTypeAttributes reports whether resolution forced an `any`
// absorption that dropped incompatible attributes, per spec.md
// section 4.7.
func (a *Accumulator) LostTypeAttributes() bool { return a.lostTypeAttributes }

// present lists which buckets have at least one observation, in a
// fixed canonical order (matches spec.md's description order).
func (a *Accumulator) present() []bucket {
	order := []bucket{
		bucketNone, bucketAny, bucketNull, bucketBool, bucketInt, bucketDouble,
		bucketString, bucketDate, bucketTime, bucketDateTime, bucketUUID, bucketURI,
		bucketIntegerString, bucketBoolString, bucketArray, bucketObject, bucketEnum,
	}
	var out []bucket
	for _, b := range order {
		if _, ok := a.attrs[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// resolve implements spec.md section 4.7's conflict reconciliation:
// integer/double conflation, map-into-class-as-object absorption
// (handled by the caller before feeding objects in, so purely a no-op
// here), `any` absorption, and enum/string coalescing.
func (a *Accumulator) resolve(conflateNumbers bool) []bucket {
	present := a.present()
	hasAny := false
	for _, b := range present {
		if b == bucketAny {
			hasAny = true
		}
	}
	if hasAny && len(present) > 1 {
		merged := typeattr.Empty
		for _, b := range present {
			merged = typeattr.Merge(merged, a.attrs[b])
			if b != bucketAny {
				delete(a.attrs, b)
			}
		}
		a.attrs[bucketAny] = merged
		a.lostTypeAttributes = true
		return []bucket{bucketAny}
	}

	if conflateNumbers {
		_, hasInt := a.attrs[bucketInt]
		_, hasDouble := a.attrs[bucketDouble]
		if hasInt && hasDouble {
			a.attrs[bucketDouble] = typeattr.Merge(a.attrs[bucketDouble], a.attrs[bucketInt])
			delete(a.attrs, bucketInt)
		}
	}

	_, hasEnum := a.attrs[bucketEnum]
	_, hasString := a.attrs[bucketString]
	if hasEnum && hasString {
		a.attrs[bucketString] = typeattr.Merge(a.attrs[bucketString], a.attrs[bucketEnum])
		delete(a.attrs, bucketEnum)
	}

	return a.present()
}

func bucketKind(b bucket) typekind.Kind {
	switch b {
	case bucketNone:
		return typekind.None
	case bucketAny:
		return typekind.Any
	case bucketNull:
		return typekind.Null
	case bucketBool:
		return typekind.Bool
	case bucketInt:
		return typekind.Int
	case bucketDouble:
		return typekind.Double
	case bucketString:
		return typekind.String
	case bucketDate:
		return typekind.Date
	case bucketTime:
		return typekind.Time
	case bucketDateTime:
		return typekind.DateTime
	case bucketUUID:
		return typekind.UUID
	case bucketURI:
		return typekind.URI
	case bucketIntegerString:
		return typekind.IntegerString
	case bucketBoolString:
		return typekind.BoolString
	case bucketArray:
		return typekind.Array
	case bucketObject:
		return typekind.Object
	default:
		return typekind.Enum
	}
}

// Builder is phase 2: given a finished Accumulator, materializes the
// final type.
type Builder struct {
	b               *tbuilder.Builder
	conflateNumbers bool
}

// NewBuilder returns a Builder that constructs into b.
func NewBuilder(b *tbuilder.Builder, conflateNumbers bool) *Builder {
	return &Builder{b: b, conflateNumbers: conflateNumbers}
}

// Build materializes acc's accumulated state. itemType and
// objectMembers are the caller's already-unified results for the
// array-item and object-shape buckets respectively (unioning those is
// itself a recursive union-build the caller drives; unionbuilder only
// orchestrates the top-level kind resolution). unique requests a
// never-deduplicated union when multiple kinds remain.
func (ub *Builder) Build(acc *Accumulator, attrs typeattr.TypeAttributes, itemType ref.Ref, objectMembers ref.Ref, unique bool) ref.Ref {
	kinds := acc.resolve(ub.conflateNumbers)

	if len(kinds) == 1 {
		only := kinds[0]
		memberAttrs := typeattr.IncreaseDistance(acc.attrs[only])
		full := typeattr.Merge(attrs, memberAttrs)
		switch only {
		case bucketArray:
			return ub.b.GetArrayType(full, itemType)
		case bucketObject:
			return objectMembers
		case bucketEnum:
			return ub.b.GetEnumType(full, acc.EnumCases())
		default:
			return ub.b.GetPrimitiveType(bucketKind(only), full)
		}
	}

	members := make([]ref.Ref, 0, len(kinds))
	for _, k := range kinds {
		memberAttrs := acc.attrs[k]
		switch k {
		case bucketArray:
			members = append(members, ub.b.GetArrayType(memberAttrs, itemType))
		case bucketObject:
			members = append(members, objectMembers)
		case bucketEnum:
			members = append(members, ub.b.GetEnumType(memberAttrs, acc.EnumCases()))
		default:
			members = append(members, ub.b.GetPrimitiveType(bucketKind(k), memberAttrs))
		}
	}
	if unique {
		return ub.b.GetUniqueUnionType(attrs, members)
	}
	return ub.b.GetUnionType(attrs, members)
}

// AttributesForTypes implements spec.md section 4.7's
// attributesForTypes: walks nested unions to find, for each leaf type,
// the union chain that reached it, attributing each leaf the
// attributes of every "single-ancestor" union above it (a union with
// exactly one member is transparent for naming purposes), and returns
// the attributes collected at the root for unions that behave as
// identity transparents all the way down.
func AttributesForTypes(g *tgraph.Graph, roots []ref.Ref) map[ref.Ref]typeattr.TypeAttributes {
	out := map[ref.Ref]typeattr.TypeAttributes{}
	for _, r := range roots {
		walkAttributesForTypes(g, r, typeattr.Empty, out)
	}
	return out
}

func walkAttributesForTypes(g *tgraph.Graph, r ref.Ref, inherited typeattr.TypeAttributes, out map[ref.Ref]typeattr.TypeAttributes) {
	t := g.Resolve(r)
	so, ok := t.(*model.SetOperation)
	if !ok || so.SOKind != model.SetOpUnion || len(so.Members) != 1 {
		out[r] = typeattr.Merge(out[r], inherited, g.Attributes(r))
		return
	}
	carried := typeattr.Merge(inherited, g.Attributes(r))
	walkAttributesForTypes(g, so.Members[0], carried, out)
}
