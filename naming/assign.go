package naming

import "sort"

// groupKey identifies one (order, namer) batch within a single
// namespace pass.
type groupKey struct {
	order Order
	namer *Namer
}

// Assign runs spec.md section 4.11's assignment algorithm over every
// namespace reachable from root, returning a frozen Name -> string
// map. Every FixedName is assigned first; then, repeatedly, each
// namespace whose forbidden set is fully assigned contributes its
// ready AssociatedNames (assigned directly from their sponsor) and
// its ready SimpleName/DependencyName entries (grouped by (order,
// namer) and run through that namer's batch assignment, lowest order
// first), until a full
// pass over every namespace makes no further progress.
func Assign(root *Namespace) map[Name]string {
	assigned := map[Name]string{}
	namespaces := allNamespaces(root)

	for _, ns := range namespaces {
		for _, n := range ns.owned {
			if f, ok := n.(*FixedName); ok {
				assigned[n] = f.Styled
			}
		}
	}

	for {
		progress := false
		for _, ns := range namespaces {
			if !ns.forbiddenNamesReady(assigned) {
				continue
			}

			for _, n := range ns.owned {
				if _, done := assigned[n]; done {
					continue
				}
				a, ok := n.(*AssociatedName)
				if !ok || !depsAssigned(a, assigned) {
					continue
				}
				assigned[n] = a.Transform(assigned[a.Sponsor])
				progress = true
			}

			var keys []groupKey
			groups := map[groupKey][]batchItem{}
			for _, n := range ns.owned {
				if _, done := assigned[n]; done {
					continue
				}
				switch t := n.(type) {
				case *SimpleName:
					if !depsAssigned(t, assigned) {
						continue
					}
					key := groupKey{order: t.order, namer: t.Namer}
					if _, ok := groups[key]; !ok {
						keys = append(keys, key)
					}
					groups[key] = append(groups[key], batchItem{name: n, raws: t.Candidates})
				case *DependencyName:
					if !depsAssigned(t, assigned) {
						continue
					}
					key := groupKey{order: t.order, namer: t.Namer}
					if _, ok := groups[key]; !ok {
						keys = append(keys, key)
					}
					groups[key] = append(groups[key], batchItem{name: n, raws: []string{t.candidate(assigned)}})
				}
			}
			if len(keys) == 0 {
				continue
			}
			sort.SliceStable(keys, func(i, j int) bool { return keys[i].order < keys[j].order })

			forbidden := ns.forbiddenStrings(assigned)
			for _, key := range keys {
				result := key.namer.AssignBatch(groups[key], forbidden)
				for n, s := range result {
					assigned[n] = s
					forbidden[s] = true
				}
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	return assigned
}

func depsAssigned(n Name, assigned map[Name]string) bool {
	for _, d := range n.Dependencies() {
		if _, ok := assigned[d]; !ok {
			return false
		}
	}
	return true
}
