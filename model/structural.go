package model

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shyptr/typegraph/internalerr"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/typekind"
)

// visitedCacheSize bounds the per-call BFS visited-pair cache: a
// pathologically wide structural comparison evicts its oldest visited
// pairs rather than growing the cache without limit, at the cost of
// occasionally re-visiting an evicted pair.
const visitedCacheSize = 4096

// Resolver is the minimal surface structural comparison needs: look
// up the Type a Ref currently resolves to. TypeGraph implements this.
type Resolver interface {
	Resolve(ref.Ref) Type
}

// pairKey canonicalizes a pair of refs (smaller index first) so BFS
// memoization treats (a,b) and (b,a) as the same visited pair, per
// spec.md section 4.4.
type pairKey struct{ a, b ref.Ref }

func canonicalPair(a, b ref.Ref) pairKey {
	if less(b, a) {
		a, b = b, a
	}
	return pairKey{a, b}
}

func less(a, b ref.Ref) bool {
	if a.Graph != b.Graph {
		return a.Graph < b.Graph
	}
	return a.Index < b.Index
}

// StructurallyCompatible runs the BFS described in spec.md section
// 4.4: starting from (a, b), it enqueues child ref pairs surfaced by
// each side's structural-equality step, memoizing visited canonical
// pairs, and early-exits false on the first structural mismatch.
func StructurallyCompatible(g Resolver, a, b ref.Ref, conflateNumbers bool) bool {
	visited, err := lru.New[pairKey, struct{}](visitedCacheSize)
	internalerr.Assert(err == nil, "model: failed to construct visited-pair cache: %v", err)
	queue := []pairKey{{a, b}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		key := canonicalPair(p.a, p.b)
		if visited.Contains(key) {
			continue
		}
		visited.Add(key, struct{}{})

		ta, tb := g.Resolve(p.a), g.Resolve(p.b)
		pairs, ok := structuralEqualityStep(ta, tb, conflateNumbers)
		if !ok {
			return false
		}
		queue = append(queue, pairs...)
	}
	return true
}

// structuralEqualityStep compares a and b's kind-specific shape
// (without recursing into children), returning the child ref pairs to
// enqueue for further comparison and whether a and b are compatible
// at this level.
func structuralEqualityStep(a, b Type, conflateNumbers bool) ([]pairKey, bool) {
	if pa, ok := a.(Primitive); ok {
		pb, ok := b.(Primitive)
		if !ok {
			return nil, false
		}
		if pa.K == pb.K {
			return nil, true
		}
		if conflateNumbers {
			return nil, isNumeric(pa.K) && isNumeric(pb.K)
		}

		return nil, false
	}

	if aa, ok := a.(*Array); ok {
		ab, ok := b.(*Array)
		if !ok {
			return nil, false
		}
		return []pairKey{{aa.Item, ab.Item}}, true
	}

	if oa, ok := a.(*Object); ok {
		ob, ok := b.(*Object)
		if !ok || oa.ObjKind != ob.ObjKind {
			return nil, false
		}
		switch oa.ObjKind {
		case ObjectMap:
			return []pairKey{{oa.Additional, ob.Additional}}, true
		default:
			if len(oa.PropertyOrder) != len(ob.PropertyOrder) {
				return nil, false
			}
			var pairs []pairKey
			for _, name := range oa.PropertyOrder {
				pa, ok := oa.Properties[name]
				if !ok {
					return nil, false
				}
				pb, ok := ob.Properties[name]
				if !ok || pa.Optional != pb.Optional {
					return nil, false
				}
				pairs = append(pairs, pairKey{pa.Type, pb.Type})
			}
			if oa.HasAdditional != ob.HasAdditional {
				return nil, false
			}
			if oa.HasAdditional {
				pairs = append(pairs, pairKey{oa.Additional, ob.Additional})
			}
			return pairs, true
		}
	}

	if ea, ok := a.(*Enum); ok {
		eb, ok := b.(*Enum)
		if !ok || len(ea.Cases) != len(eb.Cases) {
			return nil, false
		}
		for i := range ea.Cases {
			if ea.Cases[i] != eb.Cases[i] {
				return nil, false
			}
		}
		return nil, true
	}

	if sa, ok := a.(*SetOperation); ok {
		sb, ok := b.(*SetOperation)
		if !ok || sa.SOKind != sb.SOKind || len(sa.Members) != len(sb.Members) {
			return nil, false
		}
		var pairs []pairKey
		for i := range sa.Members {
			pairs = append(pairs, pairKey{sa.Members[i], sb.Members[i]})
		}
		return pairs, true
	}

	return nil, false
}

func isNumeric(k typekind.Kind) bool {
	return k == typekind.Int || k == typekind.Double
}

// IsCanonicalUnion reports whether a SetOperation (which must be a
// union) satisfies spec.md section 4.4's canonical-union predicate.
func IsCanonicalUnion(g Resolver, u *SetOperation) bool {
	if u.SOKind != SetOpUnion || len(u.Members) <= 1 {
		return false
	}
	seenKind := map[string]bool{}
	objectLikeCount := 0
	hasString, hasEnum := false, false
	for _, m := range u.Members {
		t := g.Resolve(m)
		k := t.Kind()
		if seenKind[string(k)] {
			return false
		}
		seenKind[string(k)] = true

		switch any(t).(type) {
		case *SetOperation:
			return false
		}
		if k == "any" || k == "none" {
			return false
		}
		if k == "string" {
			hasString = true
		}
		if k == "enum" {
			hasEnum = true
		}
		if k == "object" || k == "class" || k == "map" {
			objectLikeCount++
		}
	}
	if hasString && hasEnum {
		return false
	}
	if objectLikeCount > 1 {
		return false
	}
	return true
}
