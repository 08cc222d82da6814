package typeattr

import (
	"sort"
	"strings"
)

// TypeAttributes is the immutable mapping from Kind to opaque value
// described in spec.md section 3. The zero value is a valid empty
// attribute set.
type TypeAttributes struct {
	values map[string]interface{} // keyed by Kind.Name()
	kinds  map[string]Kind
}

// New builds a TypeAttributes holding a single kind/value pair; chain
// with.With to add more.
func New(kind Kind, value interface{}) TypeAttributes {
	return TypeAttributes{}.With(kind, value)
}

// Empty is the attribute set with no members.
var Empty = TypeAttributes{}

// With returns a copy of a extended with kind/value. Re-setting a
// kind that's already present replaces its value (used by
// add-attributes' "non-identity attributes are unioned in" path,
// which calls Merge rather than With for that reason -- With is for
// construction-time assembly where the kind is known fresh).
func (a TypeAttributes) With(kind Kind, value interface{}) TypeAttributes {
	out := a.clone()
	out.values[kind.Name()] = value
	out.kinds[kind.Name()] = kind
	return out
}

func (a TypeAttributes) clone() TypeAttributes {
	out := TypeAttributes{values: map[string]interface{}{}, kinds: map[string]Kind{}}
	for k, v := range a.values {
		out.values[k] = v
	}
	for k, v := range a.kinds {
		out.kinds[k] = v
	}
	return out
}

// Get returns the value attached under kind, if present.
func (a TypeAttributes) Get(kind Kind) (interface{}, bool) {
	if a.values == nil {
		return nil, false
	}
	v, ok := a.values[kind.Name()]
	return v, ok
}

// Has reports whether kind is present.
func (a TypeAttributes) Has(kind Kind) bool {
	_, ok := a.Get(kind)
	return ok
}

// Kinds returns every kind present, sorted by name for determinism.
func (a TypeAttributes) Kinds() []Kind {
	names := make([]string, 0, len(a.kinds))
	for n := range a.kinds {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Kind, len(names))
	for i, n := range names {
		out[i] = a.kinds[n]
	}
	return out
}

// Len reports how many attribute kinds are present.
func (a TypeAttributes) Len() int { return len(a.values) }

// Merge combines a and b kind-by-kind under union composition via
// each kind's Combine; a kind present in only one side passes through
// unchanged (Combine receives a single-element slice).
func Merge(sets ...TypeAttributes) TypeAttributes {
	return combineAll(sets, func(k Kind, vs []interface{}) interface{} { return k.Combine(vs) })
}

// Intersect combines sets kind-by-kind under intersection
// composition; unlike Merge, a kind missing from any one set is
// dropped entirely (intersection requires every side to agree a
// type has the attribute at all).
func Intersect(sets ...TypeAttributes) TypeAttributes {
	if len(sets) == 0 {
		return Empty
	}
	present := map[string]int{}
	for _, s := range sets {
		for n := range s.values {
			present[n]++
		}
	}
	filtered := make([]TypeAttributes, len(sets))
	for i, s := range sets {
		out := s.clone()
		for n := range out.values {
			if present[n] != len(sets) {
				delete(out.values, n)
				delete(out.kinds, n)
			}
		}
		filtered[i] = out
	}
	return combineAll(filtered, func(k Kind, vs []interface{}) interface{} { return k.Intersect(vs) })
}

func combineAll(sets []TypeAttributes, apply func(Kind, []interface{}) interface{}) TypeAttributes {
	kindOf := map[string]Kind{}
	perKind := map[string][]interface{}{}
	for _, s := range sets {
		for n, k := range s.kinds {
			kindOf[n] = k
			perKind[n] = append(perKind[n], s.values[n])
		}
	}
	out := TypeAttributes{values: map[string]interface{}{}, kinds: map[string]Kind{}}
	for n, k := range kindOf {
		v := apply(k, perKind[n])
		if v == nil {
			continue
		}
		out.values[n] = v
		out.kinds[n] = k
	}
	return out
}

// MakeInferred applies each kind's MakeInferred rule, dropping any
// kind whose rule returns nil.
func MakeInferred(a TypeAttributes) TypeAttributes {
	out := TypeAttributes{values: map[string]interface{}{}, kinds: map[string]Kind{}}
	for n, k := range a.kinds {
		v := k.MakeInferred(a.values[n])
		if v == nil {
			continue
		}
		out.values[n] = v
		out.kinds[n] = k
	}
	return out
}

// IncreaseDistance applies each kind's IncreaseDistance rule.
func IncreaseDistance(a TypeAttributes) TypeAttributes {
	out := a.clone()
	for n, k := range out.kinds {
		out.values[n] = k.IncreaseDistance(out.values[n])
	}
	return out
}

// IdentityAttributes returns the subset of a whose kinds participate
// in type identity (spec.md section 3 invariant 4), in a stable
// string form suitable for hashing/equality as part of a Type's
// identity tuple.
func IdentityAttributes(a TypeAttributes) string {
	var parts []string
	for _, k := range a.Kinds() {
		if !k.InIdentity() {
			continue
		}
		v := a.values[k.Name()]
		parts = append(parts, k.Name()+"="+k.String(v))
	}
	return strings.Join(parts, ";")
}

// RequiresUniqueIdentity reports whether any attribute in a forces its
// owning type to be constructed as unique.
func RequiresUniqueIdentity(a TypeAttributes) bool {
	for n, k := range a.kinds {
		if k.RequireUniqueIdentity(a.values[n]) {
			return true
		}
	}
	return false
}

// String renders every attribute for debug printing, sorted by kind
// name.
func (a TypeAttributes) String() string {
	var parts []string
	for _, k := range a.Kinds() {
		v, _ := a.Get(k)
		parts = append(parts, k.Name()+"="+k.String(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
