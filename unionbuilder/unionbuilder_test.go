package unionbuilder

import (
	"testing"

	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/typeattr"
	"github.com/shyptr/typegraph/typekind"
	"github.com/stretchr/testify/assert"
)

var ref_ = ref.Ref{}

func TestSingleKindMaterializesDirectly(t *testing.T) {
	b := tbuilder.New("g", nil)
	acc := NewAccumulator()
	acc.AddType(model.Primitive{K: typekind.Int}, typeattr.WithNames("count"))

	ub := NewBuilder(b, false)
	r := ub.Build(acc, typeattr.Empty, ref_, ref_, false)
	g := b.Finish()
	assert.Equal(t, typekind.Int, g.Resolve(r).Kind())
}

func TestConflateNumbersMovesIntAttributesToDouble(t *testing.T) {
	b := tbuilder.New("g", nil)
	acc := NewAccumulator()
	acc.AddType(model.Primitive{K: typekind.Int}, typeattr.WithNames("count"))
	acc.AddType(model.Primitive{K: typekind.Double}, typeattr.Empty)

	ub := NewBuilder(b, true)
	r := ub.Build(acc, typeattr.Empty, ref_, ref_, false)
	g := b.Finish()
	assert.Equal(t, typekind.Double, g.Resolve(r).Kind())
	names, ok := typeattr.GetNames(g.Attributes(r))
	assert.True(t, ok)
	assert.Equal(t, []string{"count"}, names.Regular.Names)
}

func TestAnyAbsorptionSetsLostTypeAttributes(t *testing.T) {
	acc := NewAccumulator()
	acc.AddType(model.Primitive{K: typekind.Int}, typeattr.Empty)
	acc.AddType(model.Primitive{K: typekind.Any}, typeattr.Empty)

	b := tbuilder.New("g", nil)
	ub := NewBuilder(b, false)
	r := ub.Build(acc, typeattr.Empty, ref_, ref_, false)
	g := b.Finish()
	assert.Equal(t, typekind.Any, g.Resolve(r).Kind())
	assert.True(t, acc.LostTypeAttributes())
}

func TestMultipleKindsProduceUnion(t *testing.T) {
	acc := NewAccumulator()
	acc.AddType(model.Primitive{K: typekind.Bool}, typeattr.Empty)
	acc.AddType(model.Primitive{K: typekind.Int}, typeattr.Empty)

	b := tbuilder.New("g", nil)
	ub := NewBuilder(b, false)
	r := ub.Build(acc, typeattr.Empty, ref_, ref_, false)
	g := b.Finish()
	assert.Equal(t, typekind.Union, g.Resolve(r).Kind())
}

func TestEnumAndStringCoalesceIntoString(t *testing.T) {
	acc := NewAccumulator()
	acc.AddType(model.NewEnum([]string{"a"}), typeattr.Empty)
	acc.AddType(model.Primitive{K: typekind.String}, typeattr.Empty)

	b := tbuilder.New("g", nil)
	ub := NewBuilder(b, false)
	r := ub.Build(acc, typeattr.Empty, ref_, ref_, false)
	g := b.Finish()
	assert.Equal(t, typekind.String, g.Resolve(r).Kind())
}
