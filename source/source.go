// Package source defines the input-boundary contracts described in
// spec.md section 5/6: an address-addressable JSON-Schema store and a
// per-document value source, plus AddSource, the helper that drains
// every source to completion before a rewrite stage ever runs. No
// concrete fetcher or parser lives here -- per spec.md's Non-goals
// ("fetching schemas", "parsing any particular input format") this
// package only names the boundary the core consumes.
//
// Grounded on golang-tools/gopls's snapshot/session fan-out pattern
// (a WaitGroup over independently-failing goroutines, each writing only
// its own index of pre-sized result and error slices, so ordering
// survives concurrency without a mutex) and on
// internalerr's error-family split: AddSource aggregates every
// failure with go.uber.org/multierr instead of returning only the
// first, per SPEC_FULL.md's domain-stack commitment.
package source

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/shyptr/typegraph/infer"
)

// Address identifies a JSON-Schema document reachable through a
// JSONSchemaStore -- typically a "$ref" URI or a resolved file path.
type Address string

// JSONSchemaStore resolves schema addresses to raw schema bytes.
// Fetch is the only suspension point spec.md section 5 names at the
// input boundary; the core never calls this interface itself (AddSource
// drains ValueSources only), so a driver is free to back it with
// network I/O, a local cache, or an embedded filesystem.
type JSONSchemaStore interface {
	Fetch(ctx context.Context, address Address) ([]byte, error)
}

// ValueSource is one sampled input document, already reducible to the
// core's generic sample shape (infer.Value). Parse may itself suspend
// (streamed from disk or network); AddSource awaits every source's
// Parse before any rewrite stage begins, per spec.md section 5.
type ValueSource interface {
	// Name is the top-level name this source's inferred type should
	// be registered under.
	Name() string
	Parse(ctx context.Context) (infer.Value, error)
}

// Parsed pairs a ValueSource's name with its parsed sample value,
// ready to be handed to infer.Inference.Infer.
type Parsed struct {
	Name  string
	Value infer.Value
}

// AddSource drains every source concurrently, awaiting each Parse
// call, and aggregates every independent failure via multierr rather
// than stopping at the first -- per spec.md's "addSource awaits each
// parse(source)". It returns only once every source has completed,
// successfully or not: no caller ever observes a still-suspended
// source, preserving spec.md section 5's "drains to completion before
// any rewrite pass begins".
//
// Results are returned in the same order as sources, regardless of
// completion order, so a caller building top-levels from the result
// gets spec.md section 5's "top-level iteration follows insertion
// order" guarantee without having to re-sort.
func AddSource(ctx context.Context, sources []ValueSource) ([]Parsed, error) {
	results := make([]Parsed, len(sources))
	errs := make([]error, len(sources))

	var wg sync.WaitGroup
	wg.Add(len(sources))
	for i, src := range sources {
		i, src := i, src
		go func() {
			defer wg.Done()
			v, err := src.Parse(ctx)
			if err != nil {
				errs[i] = fmt.Errorf("source %q: %w", src.Name(), err)
				return
			}
			results[i] = Parsed{Name: src.Name(), Value: v}
		}()
	}
	wg.Wait()

	var combined error
	for _, err := range errs {
		combined = multierr.Append(combined, err)
	}
	if combined != nil {
		return nil, combined
	}
	return results, nil
}
