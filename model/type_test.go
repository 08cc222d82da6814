package model

import (
	"testing"

	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/typekind"
	"github.com/stretchr/testify/assert"
)

func r(i int) ref.Ref { return ref.Ref{Graph: "g", Index: i} }

type fakeGraph map[int]Type

func (g fakeGraph) Resolve(rf ref.Ref) Type { return g[rf.Index] }

func TestPrimitiveIsNullable(t *testing.T) {
	assert.True(t, (Primitive{K: typekind.Null}).IsNullable())
	assert.True(t, (Primitive{K: typekind.Any}).IsNullable())
	assert.True(t, (Primitive{K: typekind.None}).IsNullable())
	assert.False(t, (Primitive{K: typekind.Int}).IsNullable())
}

func TestArraySetItemOnce(t *testing.T) {
	a := UnsetArray()
	a.SetItem(r(1))
	assert.Panics(t, func() { a.SetItem(r(2)) })
}

func TestObjectKindSelectsTypeKind(t *testing.T) {
	assert.Equal(t, typekind.Class, NewClass(nil, map[string]Property{}).Kind())
	assert.Equal(t, typekind.Map, NewMap(r(1)).Kind())
	assert.Equal(t, typekind.Object, NewObject(nil, nil, ref.Ref{}, false).Kind())
}

func TestMapSetPropertiesPanics(t *testing.T) {
	m := NewMap(r(1))
	assert.Panics(t, func() { m.SetProperties(nil, nil) })
}

func TestClassSetAdditionalPanics(t *testing.T) {
	c := NewClass(nil, map[string]Property{})
	assert.Panics(t, func() { c.SetAdditional(r(1)) })
}

func TestEnumIdentityOrdersCasesForDeterminism(t *testing.T) {
	a := NewEnum([]string{"b", "a"})
	b := NewEnum([]string{"a", "b"})
	ia, _ := a.Identity()
	ib, _ := b.Identity()
	assert.Equal(t, ia, ib)
}

func TestSetOperationIntersectionIsNullablePanics(t *testing.T) {
	s := NewIntersection([]ref.Ref{r(1), r(2)})
	assert.Panics(t, func() { s.IsNullable() })
}

func TestStructurallyCompatibleArrays(t *testing.T) {
	g := fakeGraph{
		1: Primitive{K: typekind.Int},
		2: Primitive{K: typekind.Int},
		3: NewArray(r(1)),
		4: NewArray(r(2)),
	}
	assert.True(t, StructurallyCompatible(g, r(3), r(4), false))
}

func TestStructurallyCompatibleConflatesNumbers(t *testing.T) {
	g := fakeGraph{1: Primitive{K: typekind.Int}, 2: Primitive{K: typekind.Double}}
	assert.False(t, StructurallyCompatible(g, r(1), r(2), false))
	assert.True(t, StructurallyCompatible(g, r(1), r(2), true))
}

func TestIsCanonicalUnionRejectsDuplicateObjectLike(t *testing.T) {
	g := fakeGraph{
		1: NewClass(nil, map[string]Property{}),
		2: NewMap(r(3)),
		3: Primitive{K: typekind.String},
	}
	u := NewUnion([]ref.Ref{r(1), r(2)})
	assert.False(t, IsCanonicalUnion(g, u))
}

func TestIsCanonicalUnionRejectsStringAndEnum(t *testing.T) {
	g := fakeGraph{1: Primitive{K: typekind.String}, 2: NewEnum([]string{"a"})}
	u := NewUnion([]ref.Ref{r(1), r(2)})
	assert.False(t, IsCanonicalUnion(g, u))
}

func TestIsCanonicalUnionAcceptsDistinctSimpleKinds(t *testing.T) {
	g := fakeGraph{1: Primitive{K: typekind.Bool}, 2: Primitive{K: typekind.Int}}
	u := NewUnion([]ref.Ref{r(1), r(2)})
	assert.True(t, IsCanonicalUnion(g, u))
}
