package infer

import (
	"testing"

	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
	"github.com/stretchr/testify/assert"
)

func TestInferPrimitives(t *testing.T) {
	b := tbuilder.New("g", nil)
	inf := New(b, DefaultOptions())
	r := inf.Infer(Value{Kind: KindInteger}, typeattr.Empty)
	g := b.Finish()
	assert.Equal(t, typekind.Int, g.Resolve(r).Kind())
}

func TestInferObjectBuildsClassWithOptionalProperty(t *testing.T) {
	b := tbuilder.New("g", nil)
	inf := New(b, DefaultOptions())
	v := Value{
		Kind:        KindObject,
		ObjectOrder: []string{"name", "nickname"},
		Object: map[string][]Value{
			"name":     {{Kind: KindInternedString, Str: "a"}, {Kind: KindInternedString, Str: "b"}},
			"nickname": {{Kind: KindInternedString, Str: "x"}},
		},
	}
	r := inf.Infer(v, typeattr.Empty)
	g := b.Finish()
	cls := g.Resolve(r).(*model.Object)
	assert.True(t, cls.Properties["nickname"].Optional)
	assert.False(t, cls.Properties["name"].Optional)
}

func TestInferObjectAboveThresholdBecomesMap(t *testing.T) {
	b := tbuilder.New("g", nil)
	opts := DefaultOptions()
	opts.MapInferencePropertyThreshold = 2
	inf := New(b, opts)
	v := Value{
		Kind:        KindObject,
		ObjectOrder: []string{"a", "b", "c"},
		Object: map[string][]Value{
			"a": {{Kind: KindInteger}},
			"b": {{Kind: KindInteger}},
			"c": {{Kind: KindInteger}},
		},
	}
	r := inf.Infer(v, typeattr.Empty)
	g := b.Finish()
	assert.Equal(t, typekind.Map, g.Resolve(r).Kind())
}

func TestInferPropertyConflatesIntegerAndDoubleWhenEnabled(t *testing.T) {
	b := tbuilder.New("g", nil)
	opts := DefaultOptions()
	opts.ConflateNumbers = true
	inf := New(b, opts)
	v := Value{
		Kind:        KindObject,
		ObjectOrder: []string{"amount"},
		Object: map[string][]Value{
			"amount": {{Kind: KindInteger}, {Kind: KindDouble}},
		},
	}
	r := inf.Infer(v, typeattr.Empty)
	g := b.Finish()
	cls := g.Resolve(r).(*model.Object)
	amount := g.Resolve(cls.Properties["amount"].Type)
	assert.Equal(t, typekind.Double, amount.Kind())
}

func TestInferPropertyKeepsUnionWhenConflateNumbersDisabled(t *testing.T) {
	b := tbuilder.New("g", nil)
	opts := DefaultOptions()
	opts.ConflateNumbers = false
	inf := New(b, opts)
	v := Value{
		Kind:        KindObject,
		ObjectOrder: []string{"amount"},
		Object: map[string][]Value{
			"amount": {{Kind: KindInteger}, {Kind: KindDouble}},
		},
	}
	r := inf.Infer(v, typeattr.Empty)
	g := b.Finish()
	cls := g.Resolve(r).(*model.Object)
	amount := g.Resolve(cls.Properties["amount"].Type)
	assert.Equal(t, typekind.Union, amount.Kind())
}

func TestInferArrayConflatesIntegerAndDoubleWhenEnabled(t *testing.T) {
	b := tbuilder.New("g", nil)
	opts := DefaultOptions()
	opts.ConflateNumbers = true
	inf := New(b, opts)
	v := Value{
		Kind: KindArray,
		Array: []Value{
			{Kind: KindInteger},
			{Kind: KindDouble},
		},
	}
	r := inf.Infer(v, typeattr.Empty)
	g := b.Finish()
	arr := g.Resolve(r).(*model.Array)
	assert.Equal(t, typekind.Double, g.Resolve(arr.Item).Kind())
}

func TestInferRefShapeDefersIntersection(t *testing.T) {
	b := tbuilder.New("g", nil)
	inf := New(b, DefaultOptions())
	v := Value{
		Kind:        KindObject,
		ObjectOrder: []string{"$ref"},
		Object:      map[string][]Value{"$ref": {{Kind: KindInternedString, Str: "#/defs/Widget"}}},
	}
	_ = inf.Infer(v, typeattr.Empty)
	deferred := inf.Deferred()
	assert.Len(t, deferred, 1)
	assert.Equal(t, "#/defs/Widget", deferred[0].Target)
}

func TestShouldInferMapAllDigitKeys(t *testing.T) {
	cv := ClassView{PropertyNames: []string{"1", "2", "3"}}
	d := ShouldInferMap(cv, DefaultTrigramModel)
	assert.True(t, d.Convert)
}

func TestShouldInferMapFewSimpleProperties(t *testing.T) {
	cv := ClassView{
		PropertyNames:                    []string{"name", "age"},
		PropertyIsNullOrPrimitiveString: []bool{true, true},
	}
	d := ShouldInferMap(cv, DefaultTrigramModel)
	assert.False(t, d.Convert)
}

func TestDecideStringExpansionAllMode(t *testing.T) {
	d := DecideStringExpansion(ExpandAll, map[string]int{"a": 1, "b": 2}, nil, nil)
	assert.ElementsMatch(t, []string{"a", "b"}, d.AsEnum)
}

func TestDecideStringExpansionNoneMode(t *testing.T) {
	d := DecideStringExpansion(ExpandNone, map[string]int{"a": 1}, nil, nil)
	assert.Nil(t, d.AsEnum)
}

func TestDecideStringExpansionInferMergesOnOverlap(t *testing.T) {
	existing := [][]string{{"red", "green", "blue", "yellow"}}
	cases := map[string]int{"red": 2, "green": 2, "blue": 2, "purple": 1}
	d := DecideStringExpansion(ExpandInfer, cases, nil, existing)
	assert.NotNil(t, d.AsEnum)
}

func TestDecideStringExpansionWithThresholdsLowersMergeBar(t *testing.T) {
	existing := [][]string{{"red", "green"}}
	cases := map[string]int{"red": 1, "purple": 1}
	th := StringExpansionThresholds{MinValuesForOwnEnum: 10, MinValuesForOverlapMerge: 2, RequiredOverlap: 0.4}
	d := DecideStringExpansionWithThresholds(ExpandInfer, cases, nil, existing, th)
	assert.NotNil(t, d.AsEnum)
}

func TestShouldInferMapWithThresholdsRaisesFewPropertiesCutoff(t *testing.T) {
	cv := ClassView{
		PropertyNames:                    []string{"a", "b", "c", "d", "e"},
		PropertyIsNullOrPrimitiveString: []bool{true, true, true, true, true},
	}
	th := MapInferenceThresholds{FewPropertiesCutoff: 5, Scale: DefaultMapInferenceThresholds().Scale}
	d := ShouldInferMapWithThresholds(cv, DefaultTrigramModel, th)
	assert.False(t, d.Convert)
}
