package naming

// Order controls which category of name is assigned first within a
// namespace: Assign runs a namespace's ready batches in increasing
// Order, so a lower-Order batch claims a contested string before a
// higher-Order one. Values mirror spec.md section 4.11's suggested
// renderer ordering: top-level types first, then properties a prior
// pass already pinned to a specific string (AssociatedName), then
// ordinary properties, then pinned enum cases, then ordinary cases,
// then anonymous union members.
type Order int

const (
	OrderTopLevel Order = iota
	OrderAssignedProperty
	OrderProperty
	OrderAssignedCase
	OrderCase
	OrderUnionMember
	OrderSynthetic
)

// Name is one of FixedName, SimpleName, DependencyName, or
// AssociatedName. The assignment algorithm in assign.go type-switches
// on the concrete variant.
type Name interface {
	Order() Order
	Dependencies() []Name

	namespace() *Namespace
	setNamespace(ns *Namespace)
}

type base struct {
	order Order
	ns    *Namespace
}

func (b *base) Order() Order            { return b.order }
func (b *base) namespace() *Namespace    { return b.ns }
func (b *base) setNamespace(ns *Namespace) { b.ns = ns }

// FixedName carries its final styled string directly; it has no
// dependencies and is assigned before anything else.
type FixedName struct {
	base
	Styled string
}

func NewFixedName(order Order, styled string) *FixedName {
	return &FixedName{base: base{order: order}, Styled: styled}
}

func (*FixedName) Dependencies() []Name { return nil }

// SimpleName carries a set of raw candidate strings and the Namer
// that will style and disambiguate them. It has no dependencies: it
// becomes ready as soon as its namespace's forbidden set is ready.
type SimpleName struct {
	base
	Candidates []string
	Namer      *Namer
}

func NewSimpleName(order Order, namer *Namer, candidates ...string) *SimpleName {
	return &SimpleName{base: base{order: order}, Candidates: candidates, Namer: namer}
}

func (*SimpleName) Dependencies() []Name { return nil }

// DependencyName produces its one raw candidate by invoking Fn with a
// lookup of already-assigned strings. Its dependency set is not
// declared by the caller: NewDependencyName runs Fn once at
// construction with a recording lookup (every Name queried is
// collected, regardless of what Fn does with the placeholder result)
// to discover exactly which other Names this one's output depends on.
type DependencyName struct {
	base
	Namer *Namer
	fn    func(lookup func(Name) string) string
	deps  []Name
}

func NewDependencyName(order Order, namer *Namer, fn func(lookup func(Name) string) string) *DependencyName {
	var deps []Name
	seen := map[Name]bool{}
	probe := func(n Name) string {
		if !seen[n] {
			seen[n] = true
			deps = append(deps, n)
		}
		return ""
	}
	fn(probe)
	return &DependencyName{base: base{order: order}, Namer: namer, fn: fn, deps: deps}
}

func (d *DependencyName) Dependencies() []Name { return d.deps }

// candidate invokes Fn for real, once every dependency is assigned.
func (d *DependencyName) candidate(assigned map[Name]string) string {
	return d.fn(func(n Name) string { return assigned[n] })
}

// AssociatedName is co-named with a sponsor: once the sponsor is
// assigned, Transform derives this name's final string directly from
// the sponsor's assigned string. It is never run through a Namer's
// batch and so can never collide-resolve independently -- the caller
// is responsible for Transform producing something that doesn't
// collide (typically because it's already namespaced by construction,
// e.g. "get"+Sponsor or Sponsor+"Input").
type AssociatedName struct {
	base
	Sponsor   Name
	Transform func(sponsorAssigned string) string
}

func NewAssociatedName(order Order, sponsor Name, transform func(string) string) *AssociatedName {
	return &AssociatedName{base: base{order: order}, Sponsor: sponsor, Transform: transform}
}

func (a *AssociatedName) Dependencies() []Name { return []Name{a.Sponsor} }
