package rewrite

import (
	"go.uber.org/zap"

	"github.com/shyptr/typegraph/graphrewrite"
	"github.com/shyptr/typegraph/infer"
	"github.com/shyptr/typegraph/tgraph"
)

// Options configures the fixpoint driver, per spec.md section 4.9's
// "passes run in a fixed order, with flatten-unions/resolve-
// intersections iterated to a fixpoint before anything else runs".
type Options struct {
	ConflateNumbers bool
	ExpandStrings   infer.ExpandMode
	FlattenStrings  bool
	InferMaps       bool
	CombineClasses  bool
	// ReplaceObjects enables spec.md section 4.9's ReplaceObjectType
	// pass over base `object` types (neither class nor map); LeaveFullObjects
	// keeps a base object as-is when it genuinely has both named
	// properties and an additional-properties type.
	ReplaceObjects   bool
	LeaveFullObjects bool
	Trigrams         *infer.TrigramModel
	Trace            graphrewrite.TraceWriter

	// StringThresholds and MapThresholds override spec.md section 9's
	// inference constants; the zero value is not usable directly, so
	// Run substitutes the spec's defaults when either is unset (its
	// RequiredOverlap/Scale is zero).
	StringThresholds infer.StringExpansionThresholds
	MapThresholds    infer.MapInferenceThresholds

	// Logger receives a Debug log once the initial flatten-unions/
	// resolve-intersections fixpoint settles, and for each enabled
	// optional pass a Debug log when it starts and another when it
	// changed the graph, naming the pass and (after a change) the type
	// count it left behind. A nil Logger (the zero value) disables this
	// entirely.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// Run drives g through spec.md section 4.9's fixpoint: flatten-unions
// and resolve-intersections alternate until neither reports a change,
// then (if enabled) expand-strings, infer-maps/combine-classes, and
// replace-object-type each run once, re-entering the flatten/resolve
// fixpoint afterward since each can introduce fresh unions or
// intersections.
func Run(g *tgraph.Graph, serial string, opts Options) *tgraph.Graph {
	log := opts.logger()

	g = settle(g, serial, opts.ConflateNumbers)
	log.Debug("rewrite pass settled", zap.String("pass", "flatten-unions/resolve-intersections"), zap.Int("types", g.Size()))

	stringThresholds := opts.StringThresholds
	if stringThresholds.RequiredOverlap == 0 {
		stringThresholds = infer.DefaultStringExpansionThresholds()
	}
	if opts.ExpandStrings != infer.ExpandNone {
		log.Debug("rewrite pass starting", zap.String("pass", "expand-strings"))
		if res := ExpandStringsWithThresholds(g, serial, opts.ExpandStrings, stringThresholds); res.Changed {
			g = settle(res.Graph, serial, opts.ConflateNumbers)
			log.Debug("rewrite pass changed graph", zap.String("pass", "expand-strings"), zap.Int("types", g.Size()))
		}
	}

	if opts.FlattenStrings {
		log.Debug("rewrite pass starting", zap.String("pass", "flatten-strings"))
		if res := FlattenStrings(g, serial); res.Changed {
			g = settle(res.Graph, serial, opts.ConflateNumbers)
			log.Debug("rewrite pass changed graph", zap.String("pass", "flatten-strings"), zap.Int("types", g.Size()))
		}
	}

	trigrams := opts.Trigrams
	if trigrams == nil {
		trigrams = infer.DefaultTrigramModel
	}
	mapThresholds := opts.MapThresholds
	if mapThresholds.Scale == 0 {
		mapThresholds = infer.DefaultMapInferenceThresholds()
	}
	if opts.InferMaps {
		log.Debug("rewrite pass starting", zap.String("pass", "infer-maps"))
		if res := ReplaceObjectTypeWithThresholds(g, serial, trigrams, opts.ConflateNumbers, mapThresholds); res.Changed {
			g = settle(res.Graph, serial, opts.ConflateNumbers)
			log.Debug("rewrite pass changed graph", zap.String("pass", "infer-maps"), zap.Int("types", g.Size()))
		}
	}

	if opts.CombineClasses {
		log.Debug("rewrite pass starting", zap.String("pass", "combine-classes"))
		if res := CombineClasses(g, serial, opts.ConflateNumbers); res.Changed {
			g = settle(res.Graph, serial, opts.ConflateNumbers)
			log.Debug("rewrite pass changed graph", zap.String("pass", "combine-classes"), zap.Int("types", g.Size()))
		}
	}

	if opts.ReplaceObjects {
		log.Debug("rewrite pass starting", zap.String("pass", "replace-object-type"))
		if res := ReplaceBaseObjectType(g, serial, opts.LeaveFullObjects); res.Changed {
			g = settle(res.Graph, serial, opts.ConflateNumbers)
			log.Debug("rewrite pass changed graph", zap.String("pass", "replace-object-type"), zap.Int("types", g.Size()))
		}
	}

	return g
}

// settle runs flatten-unions/resolve-intersections to a fixpoint.
func settle(g *tgraph.Graph, serial string, conflateNumbers bool) *tgraph.Graph {
	for {
		changed := false
		if res := FlattenUnions(g, serial, conflateNumbers); res.Changed {
			g = res.Graph
			changed = true
		}
		if res := ResolveIntersections(g, serial); res.Changed {
			g = res.Graph
			changed = true
		}
		if !changed {
			return g
		}
	}
}
