package transform

import (
	"testing"

	"github.com/shyptr/typegraph/ref"
	"github.com/stretchr/testify/assert"
)

// reverseRoundTrip checks spec.md section 8's Transformer law: for
// canFail=false transformers, reverse(target).reverse(source) is
// structurally the same as the original.
func reverseRoundTrip(t *testing.T, tr Transformer) {
	t.Helper()
	if tr.CanFail() {
		t.Fatalf("test helper only applies to canFail=false transformers")
	}
	roundTripped := tr.Reverse().Reverse()
	assert.True(t, tr.Equal(roundTripped), "expected %s == %s", tr.String(), roundTripped.String())
}

func TestIdentityRoundTrips(t *testing.T) {
	reverseRoundTrip(t, Identity{Source: ref.Ref{Graph: "g", Index: 1}, Target: ref.Ref{Graph: "g", Index: 2}})
}

func TestStringifyRoundTrips(t *testing.T) {
	src := ref.Ref{Graph: "g", Index: 1}
	dst := ref.Ref{Graph: "g", Index: 2}
	reverseRoundTrip(t, Stringify{Source: src, Target: dst, Kind: "integer"})
}

func TestSequenceOfNonFailingStepsRoundTrips(t *testing.T) {
	a := ref.Ref{Graph: "g", Index: 1}
	b := ref.Ref{Graph: "g", Index: 2}
	c := ref.Ref{Graph: "g", Index: 3}
	seq := Sequence{Steps: []Transformer{
		Stringify{Source: a, Target: b, Kind: "integer"},
		Identity{Source: b, Target: c},
	}}
	reverseRoundTrip(t, seq)
}

func TestParseReversesToStringify(t *testing.T) {
	src := ref.Ref{Graph: "g", Index: 1}
	dst := ref.Ref{Graph: "g", Index: 2}
	p := Parse{Source: src, Target: dst, Kind: "integer"}
	rev := p.Reverse()
	s, ok := rev.(Stringify)
	assert.True(t, ok)
	assert.Equal(t, dst, s.Source)
	assert.Equal(t, src, s.Target)
	assert.True(t, p.CanFail())
	assert.False(t, s.CanFail())
}

func TestChoicePreservesOrderOnReverse(t *testing.T) {
	a := ref.Ref{Graph: "g", Index: 1}
	b := ref.Ref{Graph: "g", Index: 2}
	c := ref.Ref{Graph: "g", Index: 3}
	ch := Choice{Alternatives: []Transformer{
		Identity{Source: a, Target: b},
		Identity{Source: a, Target: c},
	}}
	rev := ch.Reverse().(Choice)
	assert.Len(t, rev.Alternatives, 2)
	assert.Equal(t, Identity{Source: b, Target: a}, rev.Alternatives[0])
	assert.Equal(t, Identity{Source: c, Target: a}, rev.Alternatives[1])
	reverseRoundTrip(t, ch)
}
