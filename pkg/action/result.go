package action

import (
	"context"
	"fmt"
	"iter"
)

// Result is the outcome of one invocation, shaped by the invocable Kind.
type Result struct {
	kind     Kind
	value    any
	err      error
	deferred *Deferred
	seq      iter.Seq2[any, error]
}

// Kind returns the calling convention that produced r.
func (r Result) Kind() Kind {
	return r.kind
}

// Value returns what the invocable returned: the value and error of a sync
// call, the *Deferred of an async call, or the iter.Seq2 of a generator call.
func (r Result) Value() (any, error) {
	switch r.kind {
	case KindAsync:
		return r.deferred, nil
	case KindGenerator:
		return r.seq, nil
	default:
		return r.value, r.err
	}
}

// Deferred returns the pending outcome of an async call, or nil.
func (r Result) Deferred() *Deferred {
	return r.deferred
}

// Seq returns the value sequence of a generator call, or nil.
func (r Result) Seq() iter.Seq2[any, error] {
	return r.seq
}

// Await resolves r to a plain value.
//
// Sync outcomes return immediately. Async outcomes wait for the Deferred.
// Generator outcomes are drained into a []any; the first yielded error
// aborts the drain and is returned unchanged.
func (r Result) Await(ctx context.Context) (any, error) {
	switch r.kind {
	case KindSync:
		return r.value, r.err
	case KindAsync:
		return r.deferred.Await(ctx)
	case KindGenerator:
		return collect(ctx, r.seq)
	default:
		if r.err != nil {
			return nil, r.err
		}
		return nil, fmt.Errorf("await result: %w", ErrUninitialized)
	}
}

func collect(ctx context.Context, seq iter.Seq2[any, error]) (any, error) {
	values := make([]any, 0)
	for value, err := range seq {
		if err != nil {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("collect sequence: %w", ctxErr)
		}
		values = append(values, value)
	}

	return values, nil
}
