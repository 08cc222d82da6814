// Package naming implements spec.md section 4.11's Naming Engine: a
// tree of Namespaces holding Names, assigned collision-free strings in
// dependency order via repeated batch runs of a Namer.
//
// Grounded on typeattr.Names (the candidate-name accumulation this
// package ultimately resolves to one string per type) and on the
// module's internal/strutil casing helpers, reused here for a Namer's
// style function.
package naming

// Namespace is a node in the naming tree: it owns a set of Names and
// forbids collisions against a set of foreign namespaces' members (in
// addition to its own). Children inherit every ancestor's forbidden
// namespaces (see foreignForbidden); the parent namespace's own names
// are not forbidden to a child unless the child forbids it explicitly.
type Namespace struct {
	parent    *Namespace
	children  []*Namespace
	owned     []Name
	forbidden []*Namespace
}

// NewNamespace creates a root namespace with no parent.
func NewNamespace() *Namespace {
	return &Namespace{}
}

// Child creates a new namespace nested under ns.
func (ns *Namespace) Child() *Namespace {
	child := &Namespace{parent: ns}
	ns.children = append(ns.children, child)
	return child
}

// Add registers n as owned by ns.
func (ns *Namespace) Add(n Name) {
	ns.owned = append(ns.owned, n)
	n.setNamespace(ns)
}

// Forbid adds other to ns's forbidden set: names assigned in ns must
// not collide with any name already assigned in other.
func (ns *Namespace) Forbid(other *Namespace) {
	ns.forbidden = append(ns.forbidden, other)
}

// Owned returns every Name directly owned by ns (not its children).
func (ns *Namespace) Owned() []Name { return ns.owned }

// Children returns ns's child namespaces.
func (ns *Namespace) Children() []*Namespace { return ns.children }

// foreignForbidden collects every namespace foreign to ns whose
// members ns's own names must avoid: ns's own forbidden list, plus
// (since a child must never collide with anything its ancestors
// forbid) the same computed recursively up the parent chain. ns
// itself is never included -- ns's own in-progress batch is handled
// separately (collisions within the same namespace are resolved by
// forbiddenStrings reading what's already assigned there, not by a
// readiness requirement).
func (ns *Namespace) foreignForbidden() []*Namespace {
	var out []*Namespace
	seen := map[*Namespace]bool{}
	var walk func(n *Namespace)
	walk = func(n *Namespace) {
		if n == nil {
			return
		}
		for _, f := range n.forbidden {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
		walk(n.parent)
	}
	walk(ns)
	return out
}

// forbiddenStrings collects every assigned string ns's own batch must
// avoid: every already-assigned string among ns's own owned names
// (so a later batch in the same namespace doesn't repeat an earlier
// one) plus every assigned string owned by a foreign forbidden
// namespace.
func (ns *Namespace) forbiddenStrings(assigned map[Name]string) map[string]bool {
	out := map[string]bool{}
	for _, owned := range ns.owned {
		if s, ok := assigned[owned]; ok {
			out[s] = true
		}
	}
	for _, f := range ns.foreignForbidden() {
		for _, owned := range f.owned {
			if s, ok := assigned[owned]; ok {
				out[s] = true
			}
		}
	}
	return out
}

// forbiddenNamesReady reports whether every name owned by a namespace
// foreign to ns is already assigned -- the gate spec.md section 4.11
// describes as "every forbidden-name is already assigned". ns's own
// names are never part of this check: a namespace's own batch is what
// assigns them.
func (ns *Namespace) forbiddenNamesReady(assigned map[Name]string) bool {
	for _, f := range ns.foreignForbidden() {
		for _, owned := range f.owned {
			if _, ok := assigned[owned]; !ok {
				return false
			}
		}
	}
	return true
}

// allNamespaces returns ns and every namespace transitively reachable
// through its children, in a stable pre-order.
func allNamespaces(root *Namespace) []*Namespace {
	var out []*Namespace
	var walk func(n *Namespace)
	walk = func(n *Namespace) {
		out = append(out, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return out
}
