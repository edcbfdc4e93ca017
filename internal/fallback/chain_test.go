package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	name   string
	result Result[string]
	calls  int
}

func (r *countingResolver) Name() string { return r.name }

func (r *countingResolver) Resolve(ctx context.Context) Result[string] {
	r.calls++
	return r.result
}

func TestChainReturnsFirstHitAndSkipsLaterSteps(t *testing.T) {
	cache := &countingResolver{name: "cache", result: Found("cached")}
	primary := &countingResolver{name: "primary", result: Found("fresh")}

	var stored []string
	chain := NewChain(func(ctx context.Context, v string) error {
		stored = append(stored, v)
		return nil
	},
		Step[string]{Resolver: cache},
		Step[string]{Resolver: primary, Store: true},
	)

	res, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached", res.Value)
	assert.Equal(t, "cache", res.Source)
	assert.Equal(t, 0, primary.calls)
	assert.Empty(t, stored)
}

func TestChainStoresOnlyFlaggedHits(t *testing.T) {
	cache := &countingResolver{name: "cache", result: Missing[string]()}
	primary := &countingResolver{name: "primary", result: Found("fresh")}

	var stored []string
	chain := NewChain(func(ctx context.Context, v string) error {
		stored = append(stored, v)
		return nil
	},
		Step[string]{Resolver: cache},
		Step[string]{Resolver: primary, Store: true},
	)

	res, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.Value)
	assert.Equal(t, []string{"fresh"}, stored)
	require.Len(t, res.Attempts, 2)
	assert.Equal(t, Empty, res.Attempts[0].Outcome)
	assert.Equal(t, Hit, res.Attempts[1].Outcome)
}

func TestChainErrorFallsThroughWithoutStoring(t *testing.T) {
	primary := &countingResolver{name: "primary", result: Failure[string](errors.New("connection refused"))}
	defaults := &countingResolver{name: "defaults", result: Found("static")}

	var stored []string
	chain := NewChain(func(ctx context.Context, v string) error {
		stored = append(stored, v)
		return nil
	},
		Step[string]{Resolver: primary, Store: true},
		Step[string]{Resolver: defaults},
	)

	res, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static", res.Value)
	assert.Equal(t, "defaults", res.Source)
	assert.Empty(t, stored)
	assert.EqualError(t, res.Attempts[0].Err, "connection refused")
}

func TestChainSinkFailureKeepsValue(t *testing.T) {
	chain := NewChain(func(ctx context.Context, v string) error {
		return errors.New("cache down")
	}, Step[string]{Resolver: &countingResolver{name: "defaults", result: Found("static")}, Store: true})

	res, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static", res.Value)
	assert.EqualError(t, res.StoreErr, "cache down")
}

func TestChainExhausted(t *testing.T) {
	chain := NewChain[string](nil,
		Step[string]{Resolver: &countingResolver{name: "a", result: Missing[string]()}},
		Step[string]{Resolver: &countingResolver{name: "b", result: Failure[string](errors.New("x"))}},
	)

	res, err := chain.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)
	assert.False(t, res.Resolved)
	assert.Len(t, res.Attempts, 2)
}

func TestChainHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &countingResolver{name: "a", result: Found("v")}
	_, err := NewChain[string](nil, Step[string]{Resolver: r}).Resolve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, r.calls)
}

func TestResolverFunc(t *testing.T) {
	r := ResolverFunc[int]{Label: "fn", Fn: func(ctx context.Context) Result[int] { return Found(7) }}
	assert.Equal(t, "fn", r.Name())
	assert.Equal(t, 7, r.Resolve(context.Background()).Value)
	assert.Equal(t, "error", Failed.String())
}
