package typeattr

import (
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/transform"
	"github.com/shyptr/typegraph/typekind"
)

// TransformationKind attaches a transform.Transformer encode/decode
// tree to a type -- one of the few attribute kinds that owns child
// TypeRefs of its own (spec.md's Design Notes call this out
// specifically: "several attribute kinds carry child TypeRefs ... these
// must be traversed during reconstitution"), since a transformer tree
// references the source and target types it converts between.
var TransformationKind Kind = transformationKind{}

type transformationKind struct{}

func (transformationKind) Name() string                    { return "transformation" }
func (transformationKind) AppliesToKind(typekind.Kind) bool { return true }
func (transformationKind) InIdentity() bool                 { return false }

// RequireUniqueIdentity is true: a type carrying a transformer tree
// always gets a fresh, unshared identity, since two otherwise-
// identical types might convert from different source representations.
func (transformationKind) RequireUniqueIdentity(interface{}) bool { return true }

func (transformationKind) Children(v interface{}) []ref.Ref {
	return v.(transform.Transformer).Children()
}

// Combine is undefined for Transformation: two types that both carry
// a conversion tree are never merged into one by the union/
// intersection machinery (RequireUniqueIdentity keeps them separate),
// so Combine only needs to handle the single-value passthrough case.
func (transformationKind) Combine(values []interface{}) interface{} {
	return firstNonNil(values)
}

func (k transformationKind) Intersect(values []interface{}) interface{} { return k.Combine(values) }

func (transformationKind) MakeInferred(v interface{}) interface{} { return v }

func (transformationKind) IncreaseDistance(v interface{}) interface{} { return v }

func (transformationKind) Reconstitute(b Reconstituter, v interface{}) interface{} {
	return reconstituteTransformer(b, v.(transform.Transformer))
}

func reconstituteTransformer(b Reconstituter, t transform.Transformer) transform.Transformer {
	switch tt := t.(type) {
	case transform.Identity:
		return transform.Identity{Source: b.Reconstitute(tt.Source), Target: b.Reconstitute(tt.Target)}
	case transform.Parse:
		return transform.Parse{Source: b.Reconstitute(tt.Source), Target: b.Reconstitute(tt.Target), Kind: tt.Kind}
	case transform.Stringify:
		return transform.Stringify{Source: b.Reconstitute(tt.Source), Target: b.Reconstitute(tt.Target), Kind: tt.Kind}
	case transform.Sequence:
		steps := make([]transform.Transformer, len(tt.Steps))
		for i, s := range tt.Steps {
			steps[i] = reconstituteTransformer(b, s)
		}
		return transform.Sequence{Steps: steps}
	case transform.Choice:
		alts := make([]transform.Transformer, len(tt.Alternatives))
		for i, a := range tt.Alternatives {
			alts[i] = reconstituteTransformer(b, a)
		}
		return transform.Choice{Alternatives: alts}
	default:
		return t
	}
}

func (transformationKind) String(v interface{}) string {
	return v.(transform.Transformer).String()
}

// GetTransformation returns the Transformer attached to attrs.
func GetTransformation(attrs TypeAttributes) (transform.Transformer, bool) {
	v, ok := attrs.Get(TransformationKind)
	if !ok {
		return nil, false
	}
	return v.(transform.Transformer), true
}

// WithTransformation returns a single-kind TypeAttributes carrying t.
func WithTransformation(t transform.Transformer) TypeAttributes {
	return New(TransformationKind, t)
}
