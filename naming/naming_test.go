package naming

import (
	"testing"

	"github.com/shyptr/typegraph/internal/strutil"
	"github.com/stretchr/testify/assert"
)

func pascalNamer() *Namer {
	return &Namer{
		Style: func(raw string) string {
			return strutil.PascalCase(strutil.SplitWords(raw))
		},
	}
}

func TestAssignFixedNameIsImmediate(t *testing.T) {
	root := NewNamespace()
	n := NewFixedName(OrderTopLevel, "User")
	root.Add(n)

	assigned := Assign(root)
	assert.Equal(t, "User", assigned[n])
}

func TestAssignSimpleNamesAvoidCollisionWithinBatch(t *testing.T) {
	root := NewNamespace()
	namer := pascalNamer()
	a := NewSimpleName(OrderTopLevel, namer, "user")
	b := NewSimpleName(OrderTopLevel, namer, "user")
	root.Add(a)
	root.Add(b)

	assigned := Assign(root)
	assert.Equal(t, "User", assigned[a])
	assert.NotEqual(t, assigned[a], assigned[b])
}

func TestAssignSimpleNameAvoidsForbiddenNamespace(t *testing.T) {
	root := NewNamespace()
	parent := root.Child()
	sibling := root.Child()
	parent.Forbid(sibling)

	namer := pascalNamer()
	taken := NewFixedName(OrderTopLevel, "User")
	sibling.Add(taken)
	candidate := NewSimpleName(OrderTopLevel, namer, "user")
	parent.Add(candidate)

	assigned := Assign(root)
	assert.NotEqual(t, "User", assigned[candidate])
}

func TestAssignDependencyNameWaitsForDependencyAndUsesItsValue(t *testing.T) {
	root := NewNamespace()
	namer := pascalNamer()
	sponsor := NewSimpleName(OrderTopLevel, namer, "user")
	root.Add(sponsor)

	dep := NewDependencyName(OrderProperty, namer, func(lookup func(Name) string) string {
		return lookup(sponsor) + "_input"
	})
	root.Add(dep)

	assigned := Assign(root)
	assert.Equal(t, "User", assigned[sponsor])
	assert.Equal(t, "UserInput", assigned[dep])
}

func TestAssignDependencyNameDiscoversDependenciesAtConstruction(t *testing.T) {
	namer := pascalNamer()
	a := NewSimpleName(OrderTopLevel, namer, "a")
	b := NewSimpleName(OrderTopLevel, namer, "b")
	dep := NewDependencyName(OrderProperty, namer, func(lookup func(Name) string) string {
		return lookup(a) + lookup(b)
	})
	assert.ElementsMatch(t, []Name{a, b}, dep.Dependencies())
}

func TestAssignAssociatedNameTransformsSponsor(t *testing.T) {
	root := NewNamespace()
	namer := pascalNamer()
	sponsor := NewSimpleName(OrderTopLevel, namer, "user")
	root.Add(sponsor)
	assoc := NewAssociatedName(OrderAssignedProperty, sponsor, func(s string) string {
		return s + "Input"
	})
	root.Add(assoc)

	assigned := Assign(root)
	assert.Equal(t, "UserInput", assigned[assoc])
}

func TestAssignFallsBackToNumericSuffixWhenPrefixesExhausted(t *testing.T) {
	root := NewNamespace()
	namer := &Namer{
		Style: func(raw string) string {
			return strutil.PascalCase(strutil.SplitWords(raw))
		},
	}
	fixed := NewFixedName(OrderTopLevel, "User")
	root.Add(fixed)
	dup := NewSimpleName(OrderTopLevel, namer, "user")
	root.Add(dup)

	assigned := Assign(root)
	assert.Equal(t, "User1", assigned[dup])
}
