package typeattr

import (
	"fmt"
	"sort"

	"github.com/jinzhu/inflection"
	"github.com/shyptr/typegraph/internal/strutil"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/typekind"
)

// tooManyThreshold is the name-count above which a Names value
// collapses to a single synthetic name rather than carrying every
// candidate forward (spec.md section 4.3: "more than ~1000 names").
const tooManyThreshold = 1000

// Names is the value type of NamesKind: spec.md section 4.3's richest
// attribute. Exactly one of Regular or TooMany is set.
type Names struct {
	Regular *RegularNames
	TooMany *TooManyNames
}

// RegularNames holds the accumulated name candidates for a type,
// ranked by how confidently they identify it.
type RegularNames struct {
	// Names is the ordered set of candidate names, most-preferred
	// first, deduplicated.
	Names []string
	// Alternative holds secondary candidates a namer may fall back to
	// when every primary candidate collides.
	Alternative []string
	// Distance is how "inferred" this name set is: 0 = explicitly
	// given (e.g. a JSON-Schema property name or top-level name), >0 =
	// guessed with increasing remoteness from the source.
	Distance int
}

// TooManyNames replaces RegularNames once the accumulated name count
// crosses tooManyThreshold: tracking a thousand candidate names has no
// naming value, so a single deterministic synthetic name is
// substituted instead.
type TooManyNames struct {
	Distance      int
	SyntheticName string
}

// Regular constructs a Names value with one initial candidate at
// distance 0 (an explicitly-given name).
func Regular(name string) Names {
	return Names{Regular: &RegularNames{Names: []string{name}}}
}

// RegularAt constructs a Names value with candidates at the given
// distance.
func RegularAt(distance int, names ...string) Names {
	return Names{Regular: &RegularNames{Names: dedup(names), Distance: distance}}
}

func dedup(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Add merges others into n, keeping whichever side has the smaller
// distance; ties union their name sets. A TooMany on either side
// propagates (min distance wins there too), and crossing
// tooManyThreshold after a union collapses the result to TooMany with
// a deterministic synthetic name seeded from the merged name set.
func (n Names) Add(others ...Names) Names {
	result := n
	for _, o := range others {
		result = addPair(result, o)
	}
	return result
}

func addPair(a, b Names) Names {
	if a.Regular == nil && a.TooMany == nil {
		return b
	}
	if b.Regular == nil && b.TooMany == nil {
		return a
	}
	da, db := a.distance(), b.distance()
	switch {
	case da < db:
		return a
	case db < da:
		return b
	default:
		// tie: union the underlying name sets.
		if a.TooMany != nil || b.TooMany != nil {
			return Names{TooMany: &TooManyNames{Distance: da, SyntheticName: pickSynthetic(a, b)}}
		}
		names := dedup(append(append([]string{}, a.Regular.Names...), b.Regular.Names...))
		alt := dedup(append(append([]string{}, a.Regular.Alternative...), b.Regular.Alternative...))
		if len(names)+len(alt) > tooManyThreshold {
			return Names{TooMany: &TooManyNames{Distance: da, SyntheticName: syntheticNameFor(names)}}
		}
		return Names{Regular: &RegularNames{Names: names, Alternative: alt, Distance: da}}
	}
}

func pickSynthetic(a, b Names) string {
	if a.TooMany != nil {
		return a.TooMany.SyntheticName
	}
	return b.TooMany.SyntheticName
}

func (n Names) distance() int {
	if n.Regular != nil {
		return n.Regular.Distance
	}
	if n.TooMany != nil {
		return n.TooMany.Distance
	}
	return 0
}

// ClearInferred erases this Names value's candidates if they were
// inferred (distance > 0), returning an empty Regular at distance 0.
// Explicitly-given names (distance == 0) pass through unchanged.
func (n Names) ClearInferred() Names {
	if n.distance() > 0 {
		return Names{Regular: &RegularNames{}}
	}
	return n
}

// Singularize applies a singularizer (github.com/jinzhu/inflection) to
// every candidate name, used when a type's names were derived from a
// pluralized JSON array property (e.g. "users" -> "user").
func (n Names) Singularize() Names {
	if n.TooMany != nil {
		return n
	}
	if n.Regular == nil {
		return n
	}
	out := &RegularNames{Distance: n.Regular.Distance}
	for _, name := range n.Regular.Names {
		out.Names = append(out.Names, inflection.Singular(name))
	}
	for _, name := range n.Regular.Alternative {
		out.Alternative = append(out.Alternative, inflection.Singular(name))
	}
	return Names{Regular: out}
}

// CombinedName computes one representative name: split every
// candidate into words, lowercase them, and look for a longest common
// prefix or (failing that) suffix of at least 3 characters across all
// of them, concatenating that run back together. Falls back to the
// first candidate name when no such run exists or there's only one
// candidate.
func (n Names) CombinedName() string {
	if n.TooMany != nil {
		return n.TooMany.SyntheticName
	}
	if n.Regular == nil || len(n.Regular.Names) == 0 {
		return ""
	}
	names := n.Regular.Names
	if len(names) == 1 {
		return names[0]
	}
	wordLists := make([][]string, len(names))
	for i, name := range names {
		wordLists[i] = strutil.SplitWords(name)
	}
	if run := strutil.CommonPrefixWords(wordLists); runeLen(run) >= 3 {
		return strutil.Join(run, "")
	}
	if run := strutil.CommonSuffixWords(wordLists); runeLen(run) >= 3 {
		return strutil.Join(run, "")
	}
	return names[0]
}

func runeLen(words []string) int {
	n := 0
	for _, w := range words {
		n += len([]rune(w))
	}
	return n
}

// syntheticNameFor derives a deterministic adjective+noun synthetic
// name from the set of names that overflowed tooManyThreshold, so the
// same accumulation always yields the same synthetic name (spec.md
// section 8 "Name determinism").
func syntheticNameFor(names []string) string {
	var seed uint64 = 1469598103934665603 // FNV offset basis
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		for _, b := range []byte(name) {
			seed ^= uint64(b)
			seed *= 1099511628211
		}
	}
	return syntheticNameFromSeed(seed)
}

var syntheticAdjectives = []string{
	"ambient", "brisk", "candid", "dapper", "eager", "fickle", "gentle",
	"hollow", "icy", "jovial", "keen", "lively", "mellow", "nimble",
	"olive", "placid", "quiet", "ruddy", "solemn", "tidy",
}

var syntheticNouns = []string{
	"badger", "cobra", "dune", "ember", "finch", "glade", "heron",
	"ibis", "jackal", "kiln", "lynx", "meadow", "nettle", "otter",
	"pebble", "quarry", "raven", "sparrow", "thicket", "vetch",
}

func syntheticNameFromSeed(seed uint64) string {
	a := syntheticAdjectives[seed%uint64(len(syntheticAdjectives))]
	n := syntheticNouns[(seed/uint64(len(syntheticAdjectives)))%uint64(len(syntheticNouns))]
	return strutil.PascalCase([]string{a, n})
}

// NamesKind is the attribute kind wrapping Names. It applies to every
// type kind, never affects identity, and composes via Names.Add under
// both union and intersection (there is no separate intersection
// rule: two intersected types are still "the same thing" from a
// naming perspective, so the same merge applies).
var NamesKind Kind = namesKind{}

type namesKind struct{}

func (namesKind) Name() string                      { return "names" }
func (namesKind) AppliesToKind(typekind.Kind) bool   { return true }
func (namesKind) InIdentity() bool                   { return false }
func (namesKind) RequireUniqueIdentity(interface{}) bool { return false }
func (namesKind) Children(interface{}) []ref.Ref     { return nil }

func (namesKind) Combine(values []interface{}) interface{} {
	var acc Names
	for _, v := range values {
		if v == nil {
			continue
		}
		acc = acc.Add(v.(Names))
	}
	if acc.Regular == nil && acc.TooMany == nil {
		return nil
	}
	return acc
}

func (k namesKind) Intersect(values []interface{}) interface{} { return k.Combine(values) }

func (namesKind) MakeInferred(v interface{}) interface{} {
	n := v.(Names)
	if n.Regular != nil && n.Regular.Distance == 0 {
		clone := *n.Regular
		clone.Distance = 1
		return Names{Regular: &clone}
	}
	return n
}

func (namesKind) IncreaseDistance(v interface{}) interface{} {
	n := v.(Names)
	if n.Regular != nil {
		clone := *n.Regular
		clone.Distance++
		return Names{Regular: &clone}
	}
	clone := *n.TooMany
	clone.Distance++
	return Names{TooMany: &clone}
}

func (namesKind) Reconstitute(_ Reconstituter, v interface{}) interface{} { return v }

func (namesKind) String(v interface{}) string {
	n := v.(Names)
	if n.TooMany != nil {
		return fmt.Sprintf("TooMany(%s, d=%d)", n.TooMany.SyntheticName, n.TooMany.Distance)
	}
	if n.Regular != nil {
		return fmt.Sprintf("%v(d=%d)", n.Regular.Names, n.Regular.Distance)
	}
	return "<no names>"
}

// GetNames returns the Names value attached to attrs.
func GetNames(attrs TypeAttributes) (Names, bool) {
	v, ok := attrs.Get(NamesKind)
	if !ok {
		return Names{}, false
	}
	return v.(Names), true
}

// WithNames returns a single-kind TypeAttributes carrying an
// explicitly-given (distance 0) name.
func WithNames(name string, more ...string) TypeAttributes {
	return New(NamesKind, RegularAt(0, append([]string{name}, more...)...))
}
