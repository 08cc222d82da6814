package tgraph

import (
	"testing"

	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
	"github.com/stretchr/testify/assert"
)

func buildFixture() *Graph {
	types := []model.Type{
		model.Primitive{K: typekind.Int},
		model.NewArray(ref.Ref{Graph: "g", Index: 0}),
	}
	attrs := []typeattr.TypeAttributes{typeattr.Empty, typeattr.WithNames("ids")}
	return New("g", types, attrs, []string{"Ids"}, map[string]ref.Ref{"Ids": {Graph: "g", Index: 1}})
}

func TestResolveAssertsGraphMembership(t *testing.T) {
	g := buildFixture()
	_, ok := g.ResolveChecked(ref.Ref{Graph: "other", Index: 0})
	assert.False(t, ok)
	typ, ok := g.ResolveChecked(ref.Ref{Graph: "g", Index: 1})
	assert.True(t, ok)
	assert.Equal(t, typekind.Array, typ.Kind())
}

func TestTopLevelsPreservesInsertionOrder(t *testing.T) {
	g := buildFixture()
	tops := g.TopLevels()
	assert.Len(t, tops, 1)
	assert.Equal(t, "Ids", tops[0].Name)
}

func TestChildrenUnionsStructuralAndAttributeChildren(t *testing.T) {
	g := buildFixture()
	children := g.Children(ref.Ref{Graph: "g", Index: 1})
	assert.Contains(t, children, ref.Ref{Graph: "g", Index: 0})
}

func TestRequireNonEmptyUnionsFailsOnEmptyUnion(t *testing.T) {
	types := []model.Type{model.NewUnion(nil)}
	attrs := []typeattr.TypeAttributes{typeattr.Empty}
	g := New("g", types, attrs, nil, map[string]ref.Ref{})
	err := g.RequireNonEmptyUnions()
	assert.Error(t, err)
}

func TestIsNullableReportsTrueForUnionWithNullMember(t *testing.T) {
	types := []model.Type{
		model.Primitive{K: typekind.Null},
		model.Primitive{K: typekind.String},
		model.NewUnion([]ref.Ref{{Graph: "g", Index: 0}, {Graph: "g", Index: 1}}),
	}
	attrs := make([]typeattr.TypeAttributes, 3)
	g := New("g", types, attrs, nil, map[string]ref.Ref{})
	assert.True(t, g.IsNullable(ref.Ref{Graph: "g", Index: 2}))
}

func TestIsNullableReportsFalseForUnionWithoutNullMember(t *testing.T) {
	types := []model.Type{
		model.Primitive{K: typekind.String},
		model.Primitive{K: typekind.Int},
		model.NewUnion([]ref.Ref{{Graph: "g", Index: 0}, {Graph: "g", Index: 1}}),
	}
	attrs := make([]typeattr.TypeAttributes, 3)
	g := New("g", types, attrs, nil, map[string]ref.Ref{})
	assert.False(t, g.IsNullable(ref.Ref{Graph: "g", Index: 2}))
}

func TestAllNamedTypesSeparated(t *testing.T) {
	types := []model.Type{
		model.NewClass(nil, map[string]model.Property{}),
		model.NewEnum([]string{"a"}),
		model.NewUnion([]ref.Ref{{Graph: "g", Index: 0}, {Graph: "g", Index: 1}}),
	}
	attrs := make([]typeattr.TypeAttributes, 3)
	g := New("g", types, attrs, nil, map[string]ref.Ref{})
	named := g.AllNamedTypesSeparated()
	assert.Len(t, named.Objects, 1)
	assert.Len(t, named.Enums, 1)
	assert.Len(t, named.Unions, 1)
}
