// Package graphrewrite implements spec.md section 4.6: rebuilding a
// type graph into a new one, either by remapping some types onto
// others or by replacing disjoint sets of types with replacement
// types, sharing one reconstitution machinery between both modes.
//
// Grounded on schemabuilder/build.go's getType, which already does a
// version of "reconstitute a node into a fresh structure, consulting
// a cache, recursing into children" -- graphrewrite generalizes that
// single-pass memoized recursion into a two-mode (remap/replace),
// forwarding-ref-aware rebuild across an entire graph.
package graphrewrite

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shyptr/typegraph/internalerr"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
)

// unionLookupCacheSize bounds the union-by-member-set cache below:
// passes that reconstitute very large graphs evict the oldest entries
// rather than holding one forever, trading an occasional re-created
// union for bounded memory.
const unionLookupCacheSize = 4096

// TraceWriter receives indented debug lines during reconstitution, per
// spec.md section 4.6's "debug printing tracks indentation across
// nested reconstitutions". A nil TraceWriter disables tracing.
type TraceWriter interface {
	Trace(depth int, format string, args ...interface{})
}

// Replacer is the Replace mode's per-set callback: given the original
// members of a collapsed set, the builder to construct into, and a
// forwarding ref reserved ahead of time (for self-referential sets),
// it must commit the new type at forwardingRef (via b.CommitAt) and
// return it; any set member that is its own ancestor was already
// pointed at forwardingRef before the callback ran.
type Replacer func(members []ref.Ref, b *tbuilder.Builder, forwardingRef ref.Ref) ref.Ref

// rewriter holds the shared reconstitution state for one rewrite
// operation (one Remap or one Replace call).
type rewriter struct {
	old   *tgraph.Graph
	b     *tbuilder.Builder
	trace TraceWriter
	depth int

	done   map[ref.Ref]ref.Ref // old ref -> new ref, already finished
	active map[ref.Ref]ref.Ref // old ref -> forwarding ref, in progress (cycle support)

	// attrOverrides lets Remap substitute a pre-merged attribute set
	// for a remap target before it is reconstituted, instead of the
	// target's own stored attributes.
	attrOverrides map[ref.Ref]typeattr.TypeAttributes

	// unionLookup lets passes avoid re-creating a union whose
	// (already-reconstituted) member set was already built under a
	// different original ref, per spec.md's "looks up a previously-
	// registered union by member set". Bounded so a pass reconstituting
	// an unusually large graph doesn't hold one entry per union forever.
	unionLookup *lru.Cache[string, ref.Ref]
}

func newRewriter(old *tgraph.Graph, b *tbuilder.Builder, trace TraceWriter) *rewriter {
	cache, err := lru.New[string, ref.Ref](unionLookupCacheSize)
	internalerr.Assert(err == nil, "graphrewrite: failed to construct union lookup cache: %v", err)
	return &rewriter{
		old:           old,
		b:             b,
		trace:         trace,
		done:          map[ref.Ref]ref.Ref{},
		active:        map[ref.Ref]ref.Ref{},
		attrOverrides: map[ref.Ref]typeattr.TypeAttributes{},
		unionLookup:   cache,
	}
}

func (rw *rewriter) logf(format string, args ...interface{}) {
	if rw.trace == nil {
		return
	}
	rw.trace.Trace(rw.depth, format, args...)
}

func (rw *rewriter) attrsFor(old ref.Ref) typeattr.TypeAttributes {
	if a, ok := rw.attrOverrides[old]; ok {
		return a
	}
	return rw.old.Attributes(old)
}

// Reconstitute implements typeattr.Reconstituter: map an old ref to
// its rebuilt counterpart, recursing as necessary.
func (rw *rewriter) Reconstitute(old ref.Ref) ref.Ref {
	if n, ok := rw.done[old]; ok {
		return n
	}
	if n, ok := rw.active[old]; ok {
		return n // cycle: hand back the forwarding ref reserved for this in-progress reconstitution
	}

	t := rw.old.Resolve(old)
	attrs := rw.attrsFor(old)

	rw.logf("reconstitute %s (%s)", old, t.Kind())
	rw.depth++
	defer func() { rw.depth-- }()

	switch tt := t.(type) {
	case model.Primitive:
		n := rw.b.GetPrimitiveType(tt.K, rw.reconstituteAttrs(attrs))
		rw.done[old] = n
		return n

	case *model.Array:
		forward := rw.b.Reserve()
		rw.active[old] = forward
		placeholder := model.UnsetArray()
		rw.b.CommitAt(forward, placeholder, typeattr.Empty)
		item := rw.Reconstitute(tt.Item)
		delete(rw.active, old)
		placeholder.SetItem(item)
		rw.b.AddAttributesAt(forward, rw.reconstituteAttrs(attrs))
		rw.done[old] = forward
		return forward

	case *model.Enum:
		n := rw.b.GetEnumType(rw.reconstituteAttrs(attrs), tt.Cases)
		rw.done[old] = n
		return n

	case *model.Object:
		return rw.reconstituteObject(old, tt, attrs)

	case *model.SetOperation:
		return rw.reconstituteSetOperation(old, tt, attrs)

	default:
		panic(internalerr.New("graphrewrite: unreachable type variant %T", t))
	}
}

func (rw *rewriter) reconstituteObject(old ref.Ref, o *model.Object, attrs typeattr.TypeAttributes) ref.Ref {
	forward := rw.b.Reserve()
	rw.active[old] = forward
	placeholder := model.UnsetObject(o.ObjKind)
	rw.b.CommitAt(forward, placeholder, typeattr.Empty)

	var values ref.Ref
	if o.ObjKind == model.ObjectMap {
		values = rw.Reconstitute(o.Additional)
		delete(rw.active, old)
		placeholder.SetAdditional(values)
		rw.b.AddAttributesAt(forward, rw.reconstituteAttrs(attrs))
		rw.done[old] = forward
		return forward
	}

	order, props := rw.reconstituteProperties(o)
	var additional ref.Ref
	if o.HasAdditional {
		additional = rw.Reconstitute(o.Additional)
	}
	delete(rw.active, old)
	placeholder.SetProperties(order, props)
	if o.HasAdditional {
		placeholder.SetAdditional(additional)
	}
	rw.b.AddAttributesAt(forward, rw.reconstituteAttrs(attrs))
	rw.done[old] = forward
	return forward
}

func (rw *rewriter) reconstituteProperties(o *model.Object) ([]string, map[string]model.Property) {
	order := append([]string{}, o.PropertyOrder...)
	props := make(map[string]model.Property, len(o.Properties))
	for _, name := range order {
		p := o.Properties[name]
		props[name] = model.Property{Type: rw.Reconstitute(p.Type), Optional: p.Optional}
	}
	return order, props
}

func (rw *rewriter) reconstituteSetOperation(old ref.Ref, s *model.SetOperation, attrs typeattr.TypeAttributes) ref.Ref {
	forward := rw.b.Reserve()
	rw.active[old] = forward
	placeholder := model.UnsetSetOperation(s.SOKind)
	rw.b.CommitAt(forward, placeholder, typeattr.Empty)

	members := make([]ref.Ref, len(s.Members))
	for i, m := range s.Members {
		members[i] = rw.Reconstitute(m)
	}
	delete(rw.active, old)

	if s.SOKind == model.SetOpUnion {
		key := refSetKey(members)
		if existing, ok := rw.unionLookup.Get(key); ok {
			rw.done[old] = existing
			return existing
		}
		placeholder.SetMembers(members)
		rw.b.AddAttributesAt(forward, rw.reconstituteAttrs(attrs))
		rw.unionLookup.Add(key, forward)
		rw.done[old] = forward
		return forward
	}

	placeholder.SetMembers(members)
	rw.b.AddAttributesAt(forward, rw.reconstituteAttrs(attrs))
	rw.done[old] = forward
	return forward
}

func refSetKey(members []ref.Ref) string {
	sorted := append([]ref.Ref{}, members...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Graph != sorted[j].Graph {
			return sorted[i].Graph < sorted[j].Graph
		}
		return sorted[i].Index < sorted[j].Index
	})
	var sb strings.Builder
	for _, m := range sorted {
		fmt.Fprintf(&sb, "%s,", m)
	}
	return sb.String()
}

func (rw *rewriter) reconstituteAttrs(attrs typeattr.TypeAttributes) typeattr.TypeAttributes {
	out := typeattr.Empty
	for _, k := range attrs.Kinds() {
		v, _ := attrs.Get(k)
		out = out.With(k, k.Reconstitute(rw, v))
	}
	return out
}

// Remap rewrites old so every occurrence of a key in mapping becomes
// that key's value (within old). Sources mapping to the same target
// have their attributes unioned under union composition into the
// target before it is reconstituted. Forwarding refs are not
// supported in Remap, matching spec.md section 4.6.
func Remap(old *tgraph.Graph, serial string, mapping map[ref.Ref]ref.Ref, stringTypeMapping tbuilder.StringTypeMapping, trace TraceWriter) *tgraph.Graph {
	b := tbuilder.New(serial, stringTypeMapping)
	rw := newRewriter(old, b, trace)

	bySources := map[ref.Ref][]ref.Ref{}
	for src, tgt := range mapping {
		bySources[tgt] = append(bySources[tgt], src)
	}
	for tgt, srcs := range bySources {
		merged := old.Attributes(tgt)
		for _, s := range srcs {
			merged = typeattr.Merge(merged, old.Attributes(s))
		}
		rw.attrOverrides[tgt] = merged
	}
	for src, tgt := range mapping {
		rw.done[src] = rw.Reconstitute(tgt)
	}

	for _, r := range old.AllTypesUnordered() {
		rw.Reconstitute(r)
	}
	for _, tl := range old.TopLevels() {
		b.AddTopLevel(tl.Name, rw.Reconstitute(tl.Ref))
	}
	return b.Finish()
}

// ReplaceSet is one disjoint group of old types to collapse via
// Replacer.
type ReplaceSet struct {
	Members  []ref.Ref
	Replacer Replacer
}

// Replace rewrites old by collapsing each ReplaceSet into a single new
// type (via its Replacer), reconstituting everything else normally.
// Each set's members resolve, during reconstitution of the rest of
// the graph, to a forwarding ref reserved ahead of the replacer
// running -- needed when a set member is its own ancestor.
func Replace(old *tgraph.Graph, serial string, sets []ReplaceSet, stringTypeMapping tbuilder.StringTypeMapping, trace TraceWriter) *tgraph.Graph {
	b := tbuilder.New(serial, stringTypeMapping)
	rw := newRewriter(old, b, trace)

	forwardingRefs := make([]ref.Ref, len(sets))
	for i, set := range sets {
		r := b.Reserve()
		forwardingRefs[i] = r
		for _, m := range set.Members {
			rw.active[m] = r
		}
	}
	for i, set := range sets {
		newRef := set.Replacer(set.Members, b, forwardingRefs[i])
		for _, m := range set.Members {
			rw.done[m] = newRef
			delete(rw.active, m)
		}
	}

	for _, r := range old.AllTypesUnordered() {
		rw.Reconstitute(r)
	}
	for _, tl := range old.TopLevels() {
		b.AddTopLevel(tl.Name, rw.Reconstitute(tl.Ref))
	}
	return b.Finish()
}
