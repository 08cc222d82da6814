package naming

import (
	"fmt"

	"github.com/shyptr/typegraph/internalerr"
)

// Namer implements spec.md section 4.11's Namer: given a style
// function, a prefix set, and a batch of candidate-string sets, it
// proposes one collision-free styled name per entry by trying, in
// order, (a) each raw candidate styled as-is, (b) each raw prefixed
// by each configured prefix then styled, (c) each raw suffixed with
// 1..MaxNumericSuffix then styled. The first candidate whose styled
// form collides with neither the supplied forbidden set nor an
// earlier assignment in the same batch wins.
type Namer struct {
	Style            func(raw string) string
	Prefixes         []string
	MaxNumericSuffix int
}

// batchItem pairs a Name with its raw candidate strings for one
// AssignBatch call.
type batchItem struct {
	name Name
	raws []string
}

// AssignBatch assigns every item a distinct styled string, avoiding
// forbidden and avoiding collisions among items processed earlier in
// this same call. Items are processed in slice order, so callers that
// need deterministic output must supply items in a deterministic
// order.
func (nm *Namer) AssignBatch(items []batchItem, forbidden map[string]bool) map[Name]string {
	claimed := map[string]bool{}
	out := make(map[Name]string, len(items))
	for _, it := range items {
		s := nm.assignOne(it.raws, forbidden, claimed)
		out[it.name] = s
		claimed[s] = true
	}
	return out
}

func (nm *Namer) assignOne(raws []string, forbidden, claimed map[string]bool) string {
	try := func(raw string) (string, bool) {
		styled := raw
		if nm.Style != nil {
			styled = nm.Style(raw)
		}
		if styled == "" || forbidden[styled] || claimed[styled] {
			return "", false
		}
		return styled, true
	}

	for _, raw := range raws {
		if s, ok := try(raw); ok {
			return s
		}
	}
	for _, prefix := range nm.Prefixes {
		for _, raw := range raws {
			if s, ok := try(prefix + raw); ok {
				return s
			}
		}
	}
	max := nm.MaxNumericSuffix
	if max <= 0 {
		max = 1000
	}
	for i := 1; i <= max; i++ {
		for _, raw := range raws {
			if s, ok := try(fmt.Sprintf("%s%d", raw, i)); ok {
				return s
			}
		}
	}
	internalerr.Assert(false, "naming: exhausted %d numeric suffixes for candidates %v", max, raws)
	return ""
}
