// Package pipeline ties the core's stages together end to end: it
// infers an initial graph from sampled sources, drives it through
// rewrite.Run's fixpoint, and schedules the result through declir.
// Naming is deliberately left to the caller (spec.md's Naming engine
// is driven by a renderer-supplied Namespace tree, which this package
// has no opinion about).
//
// Grounded on builder.go/schemabuilder's single-entry build() driver,
// which takes a bag of config plus input and produces the finished
// schema in one call; pipeline.Run generalizes that shape to the
// type-graph core's own stages.
package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shyptr/typegraph/graphrewrite"
	"github.com/shyptr/typegraph/infer"
	"github.com/shyptr/typegraph/rewrite"
)

// Options is every tunable named in spec.md section 9's Open
// Questions plus the ambient knobs SPEC_FULL.md's AMBIENT STACK
// commits to (logger, debug-print writer).
type Options struct {
	// ConflateNumbers lets integer/double conflate under union and
	// structural-compatibility comparisons.
	ConflateNumbers bool

	// EnumInference enables promoting interned strings to single-case
	// enum candidates during inference.
	EnumInference bool
	// MapInferencePropertyThreshold collapses an object to a map
	// unconditionally once its property count reaches this (spec.md's
	// "typical: 500"). Zero disables the unconditional collapse.
	MapInferencePropertyThreshold int `validate:"gte=0"`

	// ExpandStringsMode selects spec.md section 4.8's ExpandStrings
	// aggressiveness.
	ExpandStringsMode infer.ExpandMode
	// FlattenStrings enables spec.md section 4.9's FlattenStrings pass.
	FlattenStrings bool
	// InferMaps enables the class-to-map conversion driven by a
	// trigram model (spec.md section 4.8's InferMaps).
	InferMaps bool
	// CombineClasses enables spec.md section 4.9's CombineClasses
	// clique-merging pass.
	CombineClasses bool
	// ReplaceObjects enables spec.md section 4.9's ReplaceObjectType
	// pass over base (non-class, non-map) object types.
	ReplaceObjects bool
	// LeaveFullObjects keeps a base object with both properties and an
	// additional-properties type as-is instead of collapsing it.
	LeaveFullObjects bool

	// StringThresholds and MapThresholds override spec.md section 9's
	// tunable inference constants (MinLengthForEnum, MinLengthForOverlap,
	// RequiredOverlap, the map-inference power-law scale). The zero
	// value means "use spec.md's defaults".
	StringThresholds infer.StringExpansionThresholds
	MapThresholds    infer.MapInferenceThresholds
	Trigrams         *infer.TrigramModel

	// Logger receives Debug-level fixpoint progress and Warn-level
	// heuristic-threshold notices; a nop logger is substituted by New
	// when unset, so library consumers who never configure logging see
	// nothing, per SPEC_FULL.md's AMBIENT STACK commitment.
	Logger *zap.Logger
	// Trace, when set, is adapted into a graphrewrite.TraceWriter and
	// handed to rewrite.Options.Trace. The rewrite passes call
	// graphrewrite with no trace writer, so nothing is written to Trace.
	Trace io.Writer
}

// DefaultOptions returns spec.md's suggested defaults: number
// conflation and enum inference on, every optional rewrite pass off
// (a caller opts in explicitly), spec.md's literal inference
// constants.
func DefaultOptions() Options {
	return Options{
		ConflateNumbers:               true,
		EnumInference:                 true,
		MapInferencePropertyThreshold: 500,
		ExpandStringsMode:             infer.ExpandInfer,
		StringThresholds:              infer.DefaultStringExpansionThresholds(),
		MapThresholds:                 infer.DefaultMapInferenceThresholds(),
	}
}

var validate = validator.New()

// Validate reports a structural configuration error -- never a panic,
// since it originates from caller-supplied config rather than an
// internal invariant violation -- per SPEC_FULL.md's AMBIENT STACK
// "Configuration" section.
func (o Options) Validate() error {
	return validate.Struct(o)
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

type traceWriter struct{ w io.Writer }

func (t traceWriter) Trace(depth int, format string, args ...interface{}) {
	if t.w == nil {
		return
	}
	prefix := strings.Repeat("  ", depth)
	fmt.Fprintf(t.w, "%s%s\n", prefix, fmt.Sprintf(format, args...))
}

func (o Options) traceWriter() graphrewrite.TraceWriter {
	if o.Trace == nil {
		return nil
	}
	return traceWriter{w: o.Trace}
}

func (o Options) rewriteOptions() rewrite.Options {
	return rewrite.Options{
		ConflateNumbers:  o.ConflateNumbers,
		ExpandStrings:    o.ExpandStringsMode,
		FlattenStrings:   o.FlattenStrings,
		InferMaps:        o.InferMaps,
		CombineClasses:   o.CombineClasses,
		ReplaceObjects:   o.ReplaceObjects,
		LeaveFullObjects: o.LeaveFullObjects,
		Trigrams:         o.Trigrams,
		Trace:            o.traceWriter(),
		StringThresholds: o.StringThresholds,
		MapThresholds:    o.MapThresholds,
		Logger:           o.logger(),
	}
}

func (o Options) inferOptions() infer.Options {
	return infer.Options{
		EnumInference:                 o.EnumInference,
		MapInferencePropertyThreshold: o.MapInferencePropertyThreshold,
		ConflateNumbers:               o.ConflateNumbers,
	}
}
