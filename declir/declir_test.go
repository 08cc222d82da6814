package declir

import (
	"testing"

	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noForward(model.Type) bool { return false }
func allForward(model.Type) bool { return true }

func classesOnly(t model.Type) bool {
	o, ok := t.(*model.Object)
	return ok && o.ObjKind == model.ObjectClass
}

func TestBuildOrdersAcyclicDependencyBeforeDependent(t *testing.T) {
	b := tbuilder.New("g", nil)
	leaf := b.GetClassType(typeattr.Empty, []string{"name"}, map[string]model.Property{
		"name": {Type: b.GetStringType(typeattr.Empty, typeattr.StringTypes{})},
	})
	root := b.GetClassType(typeattr.Empty, []string{"child"}, map[string]model.Property{
		"child": {Type: leaf},
	})
	require.NoError(t, b.AddTopLevel("Root", root))
	g := b.Finish()

	ir, err := Build(g, noForward)
	require.NoError(t, err)
	require.Len(t, ir.Declarations, 2)
	for _, d := range ir.Declarations {
		assert.Equal(t, Define, d.Kind)
	}
	assert.Equal(t, leaf, ir.Declarations[0].Ref)
	assert.Equal(t, root, ir.Declarations[1].Ref)
	assert.Empty(t, ir.ForwardedTypes)
}

func TestBuildBreaksSelfReferentialCycleWithForward(t *testing.T) {
	b := tbuilder.New("g", nil)
	selfRef := b.ReserveArrayType(typeattr.Empty)
	node := b.GetClassType(typeattr.Empty, []string{"children"}, map[string]model.Property{
		"children": {Type: selfRef},
	})
	b.SetArrayItem(selfRef, node)
	require.NoError(t, b.AddTopLevel("Node", node))
	g := b.Finish()

	ir, err := Build(g, classesOnly)
	require.NoError(t, err)

	var forwards, defines int
	for _, d := range ir.Declarations {
		if d.Kind == Forward {
			forwards++
			assert.Equal(t, node, d.Ref)
		} else {
			defines++
		}
	}
	assert.Equal(t, 1, forwards)
	assert.Equal(t, 1, defines)
	assert.True(t, ir.ForwardedTypes[node])
}

func TestBuildBreaksMutualClassCycleChoosingForwardDeclarableMember(t *testing.T) {
	b := tbuilder.New("g", nil)
	aRef := b.Reserve()
	bRef := b.GetClassType(typeattr.Empty, []string{"a"}, map[string]model.Property{
		"a": {Type: aRef},
	})
	b.CommitAt(aRef, model.NewClass([]string{"b"}, map[string]model.Property{
		"b": {Type: bRef},
	}), typeattr.Empty)
	require.NoError(t, b.AddTopLevel("A", aRef))
	require.NoError(t, b.AddTopLevel("B", bRef))
	g := b.Finish()

	ir, err := Build(g, classesOnly)
	require.NoError(t, err)

	var forwards []ref.Ref
	defineCount := 0
	for _, d := range ir.Declarations {
		if d.Kind == Forward {
			forwards = append(forwards, d.Ref)
		} else {
			defineCount++
		}
	}
	assert.Len(t, forwards, 1)
	assert.Equal(t, 2, defineCount)
	assert.Contains(t, []ref.Ref{aRef, bRef}, forwards[0])
	assert.Len(t, ir.ForwardedTypes, 1)
}

func TestBuildFailsWhenCycleHasNoForwardDeclarableMember(t *testing.T) {
	b := tbuilder.New("g", nil)
	aRef := b.Reserve()
	bRef := b.GetClassType(typeattr.Empty, []string{"a"}, map[string]model.Property{
		"a": {Type: aRef},
	})
	b.CommitAt(aRef, model.NewClass([]string{"b"}, map[string]model.Property{
		"b": {Type: bRef},
	}), typeattr.Empty)
	require.NoError(t, b.AddTopLevel("A", aRef))
	require.NoError(t, b.AddTopLevel("B", bRef))
	g := b.Finish()

	_, err := Build(g, noForward)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no member can be forward-declared")
}

func TestBuildHandlesIndependentEnumAndUnionNodes(t *testing.T) {
	b := tbuilder.New("g", nil)
	enumRef := b.GetEnumType(typeattr.Empty, []string{"red", "blue"})
	intRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	strRef := b.GetPrimitiveType(typekind.String, typeattr.Empty)
	unionRef := b.GetUnionType(typeattr.Empty, []ref.Ref{intRef, strRef})
	require.NoError(t, b.AddTopLevel("Color", enumRef))
	require.NoError(t, b.AddTopLevel("IntOrString", unionRef))
	g := b.Finish()

	ir, err := Build(g, allForward)
	require.NoError(t, err)
	assert.Len(t, ir.Declarations, 2)
	refs := map[ref.Ref]bool{}
	for _, d := range ir.Declarations {
		assert.Equal(t, Define, d.Kind)
		refs[d.Ref] = true
	}
	assert.True(t, refs[enumRef])
	assert.True(t, refs[unionRef])
}

func TestCycleBreakerTypesPicksNearestCanBreakOnRevisitedCycle(t *testing.T) {
	b := tbuilder.New("g", nil)
	arrRef := b.ReserveArrayType(typeattr.Empty)
	cls := b.GetClassType(typeattr.Empty, []string{"items"}, map[string]model.Property{
		"items": {Type: arrRef},
	})
	b.SetArrayItem(arrRef, cls)
	require.NoError(t, b.AddTopLevel("Root", cls))
	g := b.Finish()

	noImplicit := func(ref.Ref) bool { return false }
	allBreak := func(ref.Ref) bool { return true }

	breaks, err := CycleBreakerTypes(g, []ref.Ref{cls}, noImplicit, allBreak)
	require.NoError(t, err)
	// arrRef is the path member nearest the point of revisit (cls's
	// direct predecessor in the walk), so it's chosen over cls itself.
	assert.True(t, breaks[arrRef])
	assert.False(t, breaks[cls])
}

func TestCycleBreakerTypesTreatsArrayPositionAsImplicitBreaker(t *testing.T) {
	b := tbuilder.New("g", nil)
	arrRef := b.ReserveArrayType(typeattr.Empty)
	cls := b.GetClassType(typeattr.Empty, []string{"items"}, map[string]model.Property{
		"items": {Type: arrRef},
	})
	b.SetArrayItem(arrRef, cls)
	require.NoError(t, b.AddTopLevel("Root", cls))
	g := b.Finish()

	isArray := func(r ref.Ref) bool {
		_, ok := g.Resolve(r).(*model.Array)
		return ok
	}
	noBreak := func(ref.Ref) bool { return false }

	breaks, err := CycleBreakerTypes(g, []ref.Ref{cls}, isArray, noBreak)
	require.NoError(t, err)
	assert.Empty(t, breaks)
}

func TestCycleBreakerTypesFailsWhenNoMemberCanBreak(t *testing.T) {
	b := tbuilder.New("g", nil)
	aRef := b.Reserve()
	bRef := b.GetClassType(typeattr.Empty, []string{"a"}, map[string]model.Property{
		"a": {Type: aRef},
	})
	b.CommitAt(aRef, model.NewClass([]string{"b"}, map[string]model.Property{
		"b": {Type: bRef},
	}), typeattr.Empty)
	require.NoError(t, b.AddTopLevel("A", aRef))
	g := b.Finish()

	noImplicit := func(ref.Ref) bool { return false }
	noBreak := func(ref.Ref) bool { return false }

	_, err := CycleBreakerTypes(g, []ref.Ref{aRef}, noImplicit, noBreak)
	assert.Error(t, err)
}
