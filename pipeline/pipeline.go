package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/shyptr/typegraph/declir"
	"github.com/shyptr/typegraph/infer"
	"github.com/shyptr/typegraph/internalerr"
	"github.com/shyptr/typegraph/ref"
	"github.com/shyptr/typegraph/rewrite"
	"github.com/shyptr/typegraph/source"
	"github.com/shyptr/typegraph/tbuilder"
	"github.com/shyptr/typegraph/tgraph"
	"github.com/shyptr/typegraph/typeattr"
)

// Pipeline drives the core's stages with one fixed Options value,
// matching the teacher's validate-once-then-reuse shape
// (schemabuilder.NewValidate's sync.Once, generalized to struct-level
// config validated at construction instead of a package singleton).
type Pipeline struct {
	opts Options
	log  *zap.Logger
}

// New validates opts (a caller mistake here is a structural error, not
// a panic) and returns a Pipeline ready to run.
func New(opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid options: %w", err)
	}
	return &Pipeline{opts: opts, log: opts.logger()}, nil
}

// Result is everything a renderer needs after the core has finished:
// the final, frozen graph and its declaration schedule. Naming is left
// to the caller, per this package's doc comment.
type Result struct {
	Graph *tgraph.Graph
	IR    declir.IR
}

// BuildFromSources drains every source (via source.AddSource),
// infers one top-level type per source, and runs the full rewrite
// fixpoint plus declaration scheduling over the result -- spec.md
// section 5's "drains to completion before any rewrite pass begins"
// end to end.
func (p *Pipeline) BuildFromSources(ctx context.Context, sources []source.ValueSource, serial string, canForwardDeclare declir.CanForwardDeclare) (res Result, err error) {
	defer internalerr.Recover(&err)

	p.log.Debug("draining sources", zap.Int("count", len(sources)))
	parsed, err := source.AddSource(ctx, sources)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: draining sources: %w", err)
	}

	b := tbuilder.New(serial, nil)
	inf := infer.New(b, p.opts.inferOptions())
	targets := make(map[string]ref.Ref, len(parsed))
	var buildErrs error
	for _, p2 := range parsed {
		r := inf.Infer(p2.Value, typeattr.Empty)
		targets[p2.Name] = r
		if err := b.AddTopLevel(p2.Name, r); err != nil {
			buildErrs = multierr.Append(buildErrs, fmt.Errorf("top-level %q: %w", p2.Name, err))
		}
	}
	if buildErrs != nil {
		return Result{}, buildErrs
	}
	inf.ResolveDeferred(func(target string) (ref.Ref, bool) {
		r, ok := targets[target]
		return r, ok
	})

	g := b.Finish()
	return p.Run(g, serial, canForwardDeclare)
}

// Run drives an already-built graph through the rewrite fixpoint and
// declaration scheduling. internalerr panics raised anywhere in the
// core are recovered at this boundary and returned as errors, per
// SPEC_FULL.md's AMBIENT STACK error-handling section; a panic
// carrying any other value is re-raised by internalerr.Recover.
func (p *Pipeline) Run(g *tgraph.Graph, serial string, canForwardDeclare declir.CanForwardDeclare) (res Result, err error) {
	defer internalerr.Recover(&err)

	p.log.Debug("starting rewrite fixpoint", zap.String("serial", serial), zap.Int("types", g.Size()))
	rewritten := p.runRewrite(g, serial)
	p.log.Debug("rewrite fixpoint settled", zap.Int("types", rewritten.Size()))

	if verr := rewritten.RequireNonEmptyUnions(); verr != nil {
		return Result{}, verr
	}

	ir, err := declir.Build(rewritten, canForwardDeclare)
	if err != nil {
		return Result{}, err
	}
	if len(ir.ForwardedTypes) > 0 {
		p.log.Debug("declaration scheduling inserted forward declarations", zap.Int("count", len(ir.ForwardedTypes)))
	}

	return Result{Graph: rewritten, IR: ir}, nil
}

func (p *Pipeline) runRewrite(g *tgraph.Graph, serial string) *tgraph.Graph {
	opts := p.opts.rewriteOptions()

	if names, ok := p.opts.syntheticNameOverflowCount(g); ok && names > 0 {
		p.log.Warn("types accumulated more names than the synthetic-name threshold", zap.Int("count", names))
	}

	return rewrite.Run(g, serial, opts)
}

// syntheticNameOverflowCount counts how many types already carry a
// TooMany names value, for the Warn-level heuristic-threshold notice
// SPEC_FULL.md's AMBIENT STACK logging section describes.
func (o Options) syntheticNameOverflowCount(g *tgraph.Graph) (int, bool) {
	count := 0
	for _, r := range g.AllTypesUnordered() {
		names, ok := typeattr.GetNames(g.Attributes(r))
		if !ok || names.TooMany == nil {
			continue
		}
		count++
	}
	return count, count > 0
}
