// Package fallback resolves a value by trying an ordered list of sources.
package fallback

import (
	"context"
	"errors"
	"fmt"
)

type Outcome int

const (
	Hit Outcome = iota
	Empty
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Empty:
		return "empty"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is what a single source produced.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

func Found[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: Hit}
}

func Missing[T any]() Result[T] {
	return Result[T]{Outcome: Empty}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{Outcome: Failed, Err: err}
}

// Resolver is one source in a chain.
type Resolver[T any] interface {
	Name() string
	Resolve(ctx context.Context) Result[T]
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc[T any] struct {
	Label string
	Fn    func(ctx context.Context) Result[T]
}

func (f ResolverFunc[T]) Name() string {
	return f.Label
}

func (f ResolverFunc[T]) Resolve(ctx context.Context) Result[T] {
	return f.Fn(ctx)
}

// Step wraps a resolver. When Store is set, a hit from this step is written
// through the chain's sink before it is returned.
type Step[T any] struct {
	Resolver Resolver[T]
	Store    bool
}

// Sink receives values that should be remembered, usually a cache.
type Sink[T any] func(ctx context.Context, value T) error

// Attempt records how a step fared during one resolution.
type Attempt struct {
	Source  string
	Outcome Outcome
	Err     error
}

// Resolution is the outcome of running a chain.
type Resolution[T any] struct {
	Value    T
	Source   string
	Attempts []Attempt
	StoreErr error
	Resolved bool
}

var ErrExhausted = errors.New("no source produced a value")

type Chain[T any] struct {
	steps []Step[T]
	sink  Sink[T]
}

func NewChain[T any](sink Sink[T], steps ...Step[T]) *Chain[T] {
	return &Chain[T]{steps: steps, sink: sink}
}

// Resolve tries each step in order and returns the first hit. Empty and
// failed steps fall through. A sink failure is reported on the resolution
// but never discards the value.
func (c *Chain[T]) Resolve(ctx context.Context) (Resolution[T], error) {
	var res Resolution[T]

	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		r := step.Resolver.Resolve(ctx)
		res.Attempts = append(res.Attempts, Attempt{
			Source:  step.Resolver.Name(),
			Outcome: r.Outcome,
			Err:     r.Err,
		})
		if r.Outcome != Hit {
			continue
		}

		res.Value = r.Value
		res.Source = step.Resolver.Name()
		res.Resolved = true
		if step.Store && c.sink != nil {
			res.StoreErr = c.sink(ctx, r.Value)
		}
		return res, nil
	}

	return res, ErrExhausted
}
