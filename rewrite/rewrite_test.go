package rewrite

import (
	"testing"

	"github.com/shyptr/typegraph/infer"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
	"github.com/stretchr/testify/assert"
)

func TestFlattenUnionsCollapsesNestedUnion(t *testing.T) {
	b := tbuilder.New("g", nil)
	intRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	boolRef := b.GetPrimitiveType(typekind.Bool, typeattr.Empty)
	inner := b.GetUnionType(typeattr.Empty, []ref.Ref{intRef, boolRef})
	strRef := b.GetPrimitiveType(typekind.String, typeattr.Empty)
	outer := b.GetUniqueUnionType(typeattr.Empty, []ref.Ref{inner, strRef})
	require(t, b.AddTopLevel("Top", outer))
	g := b.Finish()

	res := FlattenUnions(g, "g2", false)
	assert.True(t, res.Changed)
	// FlattenUnions' replacer forwards through a single-member
	// intersection (the same convention tbuilder's own identity-cache-
	// hit forwarding uses); ResolveIntersections is the pass that
	// unwraps it, matching the driver's settle() fixpoint.
	final := ResolveIntersections(res.Graph, "g3")
	g3 := final.Graph
	if !final.Changed {
		g3 = res.Graph
	}

	topRef, ok := g3.TopLevelRef("Top")
	assert.True(t, ok)
	so, ok := g3.Resolve(topRef).(*model.SetOperation)
	assert.True(t, ok)
	assert.Equal(t, model.SetOpUnion, so.SOKind)
	assert.Len(t, so.Members, 3)
}

func TestResolveIntersectionsMergesCompatibleClasses(t *testing.T) {
	b := tbuilder.New("g", nil)
	nameRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	ageRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	classA := b.GetClassType(typeattr.Empty, []string{"name", "age"}, map[string]model.Property{
		"name": {Type: nameRef},
		"age":  {Type: ageRef},
	})
	classB := b.GetClassType(typeattr.Empty, []string{"name", "age"}, map[string]model.Property{
		"name": {Type: nameRef},
		"age":  {Type: ageRef, Optional: true},
	})
	inter := b.GetIntersectionType(typeattr.Empty, []ref.Ref{classA, classB})
	require(t, b.AddTopLevel("Top", inter))
	g := b.Finish()

	res := ResolveIntersections(g, "g2")
	assert.True(t, res.Changed)
	topRef, _ := res.Graph.TopLevelRef("Top")
	cls, ok := res.Graph.Resolve(topRef).(*model.Object)
	assert.True(t, ok)
	assert.True(t, cls.Properties["age"].Optional)
	assert.False(t, cls.Properties["name"].Optional)
}

func TestResolveIntersectionsUnionsDifferingPropertyTypes(t *testing.T) {
	b := tbuilder.New("g", nil)
	nameRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	ageIntRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	ageStrRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	classA := b.GetClassType(typeattr.Empty, []string{"name", "age"}, map[string]model.Property{
		"name": {Type: nameRef},
		"age":  {Type: ageIntRef},
	})
	classB := b.GetClassType(typeattr.Empty, []string{"name", "age"}, map[string]model.Property{
		"name": {Type: nameRef},
		"age":  {Type: ageStrRef},
	})
	inter := b.GetIntersectionType(typeattr.Empty, []ref.Ref{classA, classB})
	require(t, b.AddTopLevel("Top", inter))
	g := b.Finish()

	res := ResolveIntersections(g, "g2")
	assert.True(t, res.Changed)
	topRef, _ := res.Graph.TopLevelRef("Top")
	cls, ok := res.Graph.Resolve(topRef).(*model.Object)
	assert.True(t, ok)
	age := cls.Properties["age"]
	assert.False(t, age.Optional)
	so, ok := res.Graph.Resolve(age.Type).(*model.SetOperation)
	assert.True(t, ok)
	assert.Equal(t, model.SetOpUnion, so.SOKind)
	assert.ElementsMatch(t, []ref.Ref{ageIntRef, ageStrRef}, so.Members)
}

func TestCombineClassesMergesStructurallyCompatiblePair(t *testing.T) {
	b := tbuilder.New("g", nil)
	nameRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	classA := b.GetClassType(typeattr.Empty, []string{"name"}, map[string]model.Property{"name": {Type: nameRef}})
	classB := b.GetClassType(typeattr.Empty, []string{"name"}, map[string]model.Property{"name": {Type: nameRef}})
	arr := b.GetArrayType(typeattr.Empty, classA)
	arr2 := b.GetArrayType(typeattr.Empty, classB)
	require(t, b.AddTopLevel("A", arr))
	require(t, b.AddTopLevel("B", arr2))
	g := b.Finish()

	res := CombineClasses(g, "g2", false)
	assert.True(t, res.Changed)

	aRef, _ := res.Graph.TopLevelRef("A")
	bRef, _ := res.Graph.TopLevelRef("B")
	aArr := res.Graph.Resolve(aRef).(*model.Array)
	bArr := res.Graph.Resolve(bRef).(*model.Array)
	assert.Equal(t, aArr.Item, bArr.Item)
}

func TestReplaceObjectTypeConvertsDigitKeyedClassToMap(t *testing.T) {
	b := tbuilder.New("g", nil)
	v1 := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	v2 := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	cls := b.GetClassType(typeattr.Empty, []string{"1", "2"}, map[string]model.Property{
		"1": {Type: v1},
		"2": {Type: v2},
	})
	require(t, b.AddTopLevel("Top", cls))
	g := b.Finish()

	res := ReplaceObjectType(g, "g2", infer.DefaultTrigramModel, false)
	assert.True(t, res.Changed)
	topRef, _ := res.Graph.TopLevelRef("Top")
	obj, ok := res.Graph.Resolve(topRef).(*model.Object)
	assert.True(t, ok)
	assert.Equal(t, model.ObjectMap, obj.ObjKind)
}

func TestExpandStringsPromotesAllCasesToEnumInAllMode(t *testing.T) {
	b := tbuilder.New("g", nil)
	str := b.GetStringType(typeattr.Empty, typeattr.ForCases(map[string]int{"red": 3, "blue": 2}))
	require(t, b.AddTopLevel("Top", str))
	g := b.Finish()

	res := ExpandStrings(g, "g2", infer.ExpandAll)
	assert.True(t, res.Changed)
	// stringExpansionReplacer forwards through a single-member
	// intersection when only one replacement candidate (the enum) was
	// produced; ResolveIntersections unwraps it.
	final := ResolveIntersections(res.Graph, "g3")
	g3 := final.Graph
	if !final.Changed {
		g3 = res.Graph
	}
	topRef, _ := g3.TopLevelRef("Top")
	e, ok := g3.Resolve(topRef).(*model.Enum)
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"red", "blue"}, e.Cases)
}

func TestFlattenUnionsLeavesCanonicalUnionUnchanged(t *testing.T) {
	b := tbuilder.New("g", nil)
	intRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	strRef := b.GetPrimitiveType(typekind.String, typeattr.Empty)
	u := b.GetUnionType(typeattr.Empty, []ref.Ref{intRef, strRef})
	require(t, b.AddTopLevel("Top", u))
	g := b.Finish()

	res := FlattenUnions(g, "g2", false)
	assert.False(t, res.Changed)
}

func require(t *testing.T, err error) {
	t.Helper()
	assert.NoError(t, err)
}

func TestFlattenStringsCoalescesStringAndTransformedVariants(t *testing.T) {
	b := tbuilder.New("g", nil)
	strRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	dateRef := b.GetPrimitiveType(typekind.Date, typeattr.Empty)
	intRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	u := b.GetUniqueUnionType(typeattr.Empty, []ref.Ref{strRef, dateRef, intRef})
	require(t, b.AddTopLevel("Top", u))
	g := b.Finish()

	res := FlattenStrings(g, "g2")
	assert.True(t, res.Changed)

	final := ResolveIntersections(res.Graph, "g3")
	g3 := final.Graph
	if !final.Changed {
		g3 = res.Graph
	}
	topRef, ok := g3.TopLevelRef("Top")
	assert.True(t, ok)
	so, ok := g3.Resolve(topRef).(*model.SetOperation)
	assert.True(t, ok)
	assert.Len(t, so.Members, 2) // merged string + int, date absorbed
	sawString, sawInt := false, false
	for _, m := range so.Members {
		p, ok := g3.Resolve(m).(model.Primitive)
		assert.True(t, ok)
		switch p.K {
		case typekind.String:
			sawString = true
		case typekind.Int:
			sawInt = true
		}
	}
	assert.True(t, sawString)
	assert.True(t, sawInt)
}

func TestFlattenStringsLeavesUnionAloneWithOnlyOneStringLikeMember(t *testing.T) {
	b := tbuilder.New("g", nil)
	strRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	intRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	u := b.GetUnionType(typeattr.Empty, []ref.Ref{strRef, intRef})
	require(t, b.AddTopLevel("Top", u))
	g := b.Finish()

	res := FlattenStrings(g, "g2")
	assert.False(t, res.Changed)
}

func TestFlattenStringsSkipsRestrictedString(t *testing.T) {
	b := tbuilder.New("g", nil)
	strRef := b.GetStringType(typeattr.Empty, typeattr.ForCases(map[string]int{"a": 1}))
	dateRef := b.GetPrimitiveType(typekind.Date, typeattr.Empty)
	u := b.GetUniqueUnionType(typeattr.Empty, []ref.Ref{strRef, dateRef})
	require(t, b.AddTopLevel("Top", u))
	g := b.Finish()

	res := FlattenStrings(g, "g2")
	assert.False(t, res.Changed)
}

func TestReplaceBaseObjectTypeWithNoAdditionalBecomesClass(t *testing.T) {
	b := tbuilder.New("g", nil)
	nameRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	obj := b.GetUniqueObjectType(typeattr.Empty)
	b.SetObjectProperties(obj, []string{"name"}, map[string]model.Property{
		"name": {Type: nameRef},
	})
	require(t, b.AddTopLevel("Top", obj))
	g := b.Finish()

	res := ReplaceBaseObjectType(g, "g2", false)
	assert.True(t, res.Changed)
	topRef, ok := res.Graph.TopLevelRef("Top")
	assert.True(t, ok)
	o, ok := res.Graph.Resolve(topRef).(*model.Object)
	assert.True(t, ok)
	assert.Equal(t, model.ObjectClass, o.ObjKind)
}

func TestReplaceBaseObjectTypeWithNoPropertiesBecomesMap(t *testing.T) {
	b := tbuilder.New("g", nil)
	valRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	obj := b.GetUniqueObjectType(typeattr.Empty)
	b.SetObjectAdditional(obj, valRef)
	require(t, b.AddTopLevel("Top", obj))
	g := b.Finish()

	res := ReplaceBaseObjectType(g, "g2", false)
	assert.True(t, res.Changed)
	topRef, ok := res.Graph.TopLevelRef("Top")
	assert.True(t, ok)
	o, ok := res.Graph.Resolve(topRef).(*model.Object)
	assert.True(t, ok)
	assert.Equal(t, model.ObjectMap, o.ObjKind)
}

func TestReplaceBaseObjectTypeHonorsLeaveFullObjects(t *testing.T) {
	b := tbuilder.New("g", nil)
	nameRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	valRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	obj := b.GetUniqueObjectType(typeattr.Empty)
	b.SetObjectProperties(obj, []string{"name"}, map[string]model.Property{
		"name": {Type: nameRef},
	})
	b.SetObjectAdditional(obj, valRef)
	require(t, b.AddTopLevel("Top", obj))
	g := b.Finish()

	res := ReplaceBaseObjectType(g, "g2", true)
	assert.False(t, res.Changed)
}

func TestReplaceBaseObjectTypeWithAdditionalBecomesMapOverUnion(t *testing.T) {
	b := tbuilder.New("g", nil)
	nameRef := b.GetStringType(typeattr.Empty, typeattr.StringTypes{})
	valRef := b.GetPrimitiveType(typekind.Int, typeattr.Empty)
	obj := b.GetUniqueObjectType(typeattr.Empty)
	b.SetObjectProperties(obj, []string{"name"}, map[string]model.Property{
		"name": {Type: nameRef},
	})
	b.SetObjectAdditional(obj, valRef)
	require(t, b.AddTopLevel("Top", obj))
	g := b.Finish()

	res := ReplaceBaseObjectType(g, "g2", false)
	assert.True(t, res.Changed)
	topRef, ok := res.Graph.TopLevelRef("Top")
	assert.True(t, ok)
	o, ok := res.Graph.Resolve(topRef).(*model.Object)
	assert.True(t, ok)
	assert.Equal(t, model.ObjectMap, o.ObjKind)
	so, ok := res.Graph.Resolve(o.Additional).(*model.SetOperation)
	assert.True(t, ok)
	assert.Equal(t, model.SetOpUnion, so.SOKind)
}
