// Package transform implements the Transformer IR named in spec.md's
// glossary and section 4.11/Component table ("Encode/decode
// transformation trees attached as attributes"): a small tree of
// reversible conversions between a type's wire representation and its
// logical representation (e.g. an `integer-string` type's decode step
// parses a string into an integer; its encode step stringifies it
// back).
//
// Transformer trees are attached to a Type via the typeattr
// Transformation attribute kind and are consumed by renderers (out of
// scope for this module) to generate the actual conversion code; the
// core's job is only to build, reverse, and compare these trees
// correctly across rewrites.
package transform

import (
	"fmt"

	"github.com/shyptr/typegraph/ref"
)

// Transformer is one node of an encode/decode tree.
type Transformer interface {
	// CanFail reports whether applying this transformer can fail at
	// runtime (e.g. parsing a string as a date can fail; stringifying
	// an integer cannot).
	CanFail() bool
	// Reverse returns the transformer that undoes this one: a
	// Transformer built to decode source->target reverses into one
	// that encodes target->source.
	Reverse() Transformer
	// Equal reports structural equality with other.
	Equal(other Transformer) bool
	// Children returns every TypeRef this transformer's tree touches,
	// for the attribute framework's "which child types does this
	// attribute transitively own" contract.
	Children() []ref.Ref
	// String renders the transformer for debug printing.
	String() string
}

// Identity is a no-op transformer between two refs considered
// equivalent (e.g. a `string` type standing in unchanged for a JSON
// string). It is its own reverse and never fails.
type Identity struct {
	Source, Target ref.Ref
}

func (t Identity) CanFail() bool     { return false }
func (t Identity) Reverse() Transformer { return Identity{Source: t.Target, Target: t.Source} }
func (t Identity) Children() []ref.Ref { return []ref.Ref{t.Source, t.Target} }
func (t Identity) String() string    { return fmt.Sprintf("identity(%s->%s)", t.Source, t.Target) }
func (t Identity) Equal(other Transformer) bool {
	o, ok := other.(Identity)
	return ok && o.Source == t.Source && o.Target == t.Target
}

// Parse converts a string-kind source into a more specific logical
// target (e.g. parsing "integer-string" text into an integer). Parse
// transformers can fail; their reverse is a Stringify.
type Parse struct {
	Source, Target ref.Ref
	Kind           string // e.g. "integer", "bool", "date"
}

func (t Parse) CanFail() bool       { return true }
func (t Parse) Reverse() Transformer { return Stringify{Source: t.Target, Target: t.Source, Kind: t.Kind} }
func (t Parse) Children() []ref.Ref  { return []ref.Ref{t.Source, t.Target} }
func (t Parse) String() string       { return fmt.Sprintf("parse<%s>(%s->%s)", t.Kind, t.Source, t.Target) }
func (t Parse) Equal(other Transformer) bool {
	o, ok := other.(Parse)
	return ok && o.Source == t.Source && o.Target == t.Target && o.Kind == t.Kind
}

// Stringify is the reverse of Parse: rendering a logical value back
// to its string wire form. Stringify never fails.
type Stringify struct {
	Source, Target ref.Ref
	Kind           string
}

func (t Stringify) CanFail() bool        { return false }
func (t Stringify) Reverse() Transformer { return Parse{Source: t.Target, Target: t.Source, Kind: t.Kind} }
func (t Stringify) Children() []ref.Ref  { return []ref.Ref{t.Source, t.Target} }
func (t Stringify) String() string       { return fmt.Sprintf("stringify<%s>(%s->%s)", t.Kind, t.Source, t.Target) }
func (t Stringify) Equal(other Transformer) bool {
	o, ok := other.(Stringify)
	return ok && o.Source == t.Source && o.Target == t.Target && o.Kind == t.Kind
}

// Sequence composes transformers in order: apply Steps[0], then
// Steps[1] to its result, and so on ("parenthesize" two adjacent
// transformers into one compound step). Its reverse is the reversed
// list of reversed steps.
type Sequence struct {
	Steps []Transformer
}

func (t Sequence) CanFail() bool {
	for _, s := range t.Steps {
		if s.CanFail() {
			return true
		}
	}
	return false
}

func (t Sequence) Reverse() Transformer {
	rev := make([]Transformer, len(t.Steps))
	for i, s := range t.Steps {
		rev[len(t.Steps)-1-i] = s.Reverse()
	}
	return Sequence{Steps: rev}
}

func (t Sequence) Children() []ref.Ref {
	var out []ref.Ref
	for _, s := range t.Steps {
		out = append(out, s.Children()...)
	}
	return out
}

func (t Sequence) String() string {
	s := "sequence("
	for i, step := range t.Steps {
		if i > 0 {
			s += ", "
		}
		s += step.String()
	}
	return s + ")"
}

func (t Sequence) Equal(other Transformer) bool {
	o, ok := other.(Sequence)
	if !ok || len(o.Steps) != len(t.Steps) {
		return false
	}
	for i := range t.Steps {
		if !t.Steps[i].Equal(o.Steps[i]) {
			return false
		}
	}
	return true
}

// Choice tries each alternative in order, used for decoding a union:
// each Alternatives[i] attempts source->one member type. Its reverse
// reverses each alternative but keeps the same try-order, since
// encoding a union picks whichever member the runtime value actually
// is and applies that branch's (now-reversed) transformer.
type Choice struct {
	Alternatives []Transformer
}

func (t Choice) CanFail() bool {
	for _, a := range t.Alternatives {
		if a.CanFail() {
			return true
		}
	}
	return false
}

func (t Choice) Reverse() Transformer {
	rev := make([]Transformer, len(t.Alternatives))
	for i, a := range t.Alternatives {
		rev[i] = a.Reverse()
	}
	return Choice{Alternatives: rev}
}

func (t Choice) Children() []ref.Ref {
	var out []ref.Ref
	for _, a := range t.Alternatives {
		out = append(out, a.Children()...)
	}
	return out
}

func (t Choice) String() string {
	s := "choice("
	for i, a := range t.Alternatives {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func (t Choice) Equal(other Transformer) bool {
	o, ok := other.(Choice)
	if !ok || len(o.Alternatives) != len(t.Alternatives) {
		return false
	}
	for i := range t.Alternatives {
		if !t.Alternatives[i].Equal(o.Alternatives[i]) {
			return false
		}
	}
	return true
}
