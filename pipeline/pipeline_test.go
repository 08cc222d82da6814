package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyptr/typegraph/declir"
	"github.com/shyptr/typegraph/infer"
	"github.com/shyptr/typegraph/model"
	"github.com/shyptr/typegraph/source"
)

type constSource struct {
	name string
	val  infer.Value
	err  error
}

func (c constSource) Name() string { return c.name }

func (c constSource) Parse(_ context.Context) (infer.Value, error) {
	if c.err != nil {
		return infer.Value{}, c.err
	}
	return c.val, nil
}

func stringValue(s string) infer.Value {
	return infer.Value{Kind: infer.KindUninternedString, Str: s}
}

func noForward(model.Type) bool { return false }

func TestNewRejectsNegativeMapInferenceThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.MapInferencePropertyThreshold = -1
	_, err := New(opts)
	assert.Error(t, err)
}

func TestNewAcceptsDefaultOptions(t *testing.T) {
	p, err := New(DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestBuildFromSourcesInfersOneTopLevelPerSource(t *testing.T) {
	p, err := New(DefaultOptions())
	require.NoError(t, err)

	res, err := p.BuildFromSources(context.Background(), []source.ValueSource{
		constSource{name: "Greeting", val: stringValue("hello")},
		constSource{name: "Farewell", val: stringValue("bye")},
	}, "g", noForward)
	require.NoError(t, err)

	tops := res.Graph.TopLevels()
	require.Len(t, tops, 2)
	assert.Equal(t, "Greeting", tops[0].Name)
	assert.Equal(t, "Farewell", tops[1].Name)
	// plain strings are not named types, so nothing is declared
	assert.Empty(t, res.IR.Declarations)
}

func TestBuildFromSourcesAggregatesEveryParseFailure(t *testing.T) {
	p, err := New(DefaultOptions())
	require.NoError(t, err)

	_, err = p.BuildFromSources(context.Background(), []source.ValueSource{
		constSource{name: "bad-1", err: fmt.Errorf("boom-1")},
		constSource{name: "bad-2", err: fmt.Errorf("boom-2")},
	}, "g", noForward)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom-1")
	assert.Contains(t, err.Error(), "boom-2")
}

func TestRunProducesStableDeclarationOrderForIdenticalGraphs(t *testing.T) {
	p, err := New(DefaultOptions())
	require.NoError(t, err)

	build := func() (Result, error) {
		return p.BuildFromSources(context.Background(), []source.ValueSource{
			constSource{name: "Thing", val: stringValue("x")},
		}, "g", noForward)
	}

	first, err := build()
	require.NoError(t, err)
	second, err := build()
	require.NoError(t, err)

	firstKinds := declarationKinds(first)
	secondKinds := declarationKinds(second)
	if diff := cmp.Diff(firstKinds, secondKinds); diff != "" {
		t.Fatalf("declaration kind sequence diverged between identical runs (-first +second):\n%s", diff)
	}
}

func declarationKinds(r Result) []declir.Kind {
	kinds := make([]declir.Kind, len(r.IR.Declarations))
	for i, d := range r.IR.Declarations {
		kinds[i] = d.Kind
	}
	return kinds
}
