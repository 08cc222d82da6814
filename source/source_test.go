package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyptr/typegraph/infer"
)

type fakeSource struct {
	name string
	val  infer.Value
	err  error
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Parse(context.Context) (infer.Value, error) {
	return f.val, f.err
}

func TestAddSourcePreservesInputOrderRegardlessOfCompletionOrder(t *testing.T) {
	sources := []ValueSource{
		fakeSource{name: "a", val: infer.Value{Kind: infer.KindInteger}},
		fakeSource{name: "b", val: infer.Value{Kind: infer.KindBool}},
		fakeSource{name: "c", val: infer.Value{Kind: infer.KindNull}},
	}

	results, err := AddSource(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, infer.KindInteger, results[0].Value.Kind)
	assert.Equal(t, "b", results[1].Name)
	assert.Equal(t, "c", results[2].Name)
}

func TestAddSourceAggregatesEveryFailureNotJustTheFirst(t *testing.T) {
	sources := []ValueSource{
		fakeSource{name: "good", val: infer.Value{Kind: infer.KindBool}},
		fakeSource{name: "bad-1", err: errors.New("fetch failed")},
		fakeSource{name: "bad-2", err: errors.New("malformed document")},
	}

	results, err := AddSource(context.Background(), sources)
	assert.Nil(t, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-1")
	assert.Contains(t, err.Error(), "bad-2")
}

func TestAddSourceHandlesEmptyInput(t *testing.T) {
	results, err := AddSource(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
