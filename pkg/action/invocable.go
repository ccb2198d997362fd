package action

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

var errNilDeferred = errors.New("action: async invocable returned nil deferred")

// Kind identifies the calling convention of one Invocable.
type Kind string

const (
	// KindSync identifies invocables that return their value directly.
	KindSync Kind = "sync"
	// KindAsync identifies invocables that return a Deferred.
	KindAsync Kind = "async"
	// KindGenerator identifies invocables that return a lazy value sequence.
	KindGenerator Kind = "generator"
)

// Validate checks whether one invocable kind is supported.
func (k Kind) Validate() error {
	switch k {
	case KindSync, KindAsync, KindGenerator:
		return nil
	default:
		return fmt.Errorf("validate invocable kind: unsupported kind %q", k)
	}
}

// SyncFunc computes a value on the calling goroutine.
type SyncFunc func(ctx context.Context, args ...any) (any, error)

// AsyncFunc starts a computation and returns its Deferred outcome.
type AsyncFunc func(ctx context.Context, args ...any) *Deferred

// GeneratorFunc returns a lazy sequence of values. A non-nil error ends the sequence.
type GeneratorFunc func(ctx context.Context, args ...any) iter.Seq2[any, error]

// Invocable is a callable unit of work tagged with its Kind.
//
// Invocable is a handle: copies share identity, and two invocables compare
// equal with == only when they come from the same constructor call.
type Invocable struct {
	fn *invocable
}

type invocable struct {
	kind      Kind
	sync      SyncFunc
	async     AsyncFunc
	generator GeneratorFunc
}

// Sync wraps fn as a KindSync invocable. A nil fn yields the zero Invocable.
func Sync(fn SyncFunc) Invocable {
	if fn == nil {
		return Invocable{}
	}

	return Invocable{fn: &invocable{kind: KindSync, sync: fn}}
}

// Async wraps fn as a KindAsync invocable. A nil fn yields the zero Invocable.
func Async(fn AsyncFunc) Invocable {
	if fn == nil {
		return Invocable{}
	}

	return Invocable{fn: &invocable{kind: KindAsync, async: fn}}
}

// Generator wraps fn as a KindGenerator invocable. A nil fn yields the zero Invocable.
func Generator(fn GeneratorFunc) Invocable {
	if fn == nil {
		return Invocable{}
	}

	return Invocable{fn: &invocable{kind: KindGenerator, generator: fn}}
}

// Go wraps a blocking fn as a KindAsync invocable that runs each call on its
// own goroutine through Spawn.
func Go(fn SyncFunc) Invocable {
	if fn == nil {
		return Invocable{}
	}

	return Async(func(ctx context.Context, args ...any) *Deferred {
		return Spawn(ctx, func(ctx context.Context) (any, error) {
			return fn(ctx, args...)
		})
	})
}

// Kind returns the calling convention, or "" for the zero Invocable.
func (i Invocable) Kind() Kind {
	if i.fn == nil {
		return ""
	}

	return i.fn.kind
}

// IsZero reports whether i wraps no function.
func (i Invocable) IsZero() bool {
	return i.fn == nil
}

// Equal reports whether i and other share identity.
func (i Invocable) Equal(other Invocable) bool {
	return i.fn == other.fn
}

// Validate checks that i carries a supported kind and a matching function.
func (i Invocable) Validate() error {
	if i.fn == nil {
		return fmt.Errorf("validate invocable: %w", ErrUninitialized)
	}
	if err := i.fn.kind.Validate(); err != nil {
		return err
	}

	var present bool
	switch i.fn.kind {
	case KindSync:
		present = i.fn.sync != nil
	case KindAsync:
		present = i.fn.async != nil
	case KindGenerator:
		present = i.fn.generator != nil
	}
	if !present {
		return fmt.Errorf("validate invocable: missing %s func", i.fn.kind)
	}

	return nil
}

// Invoke calls the wrapped function with args spread positionally.
//
// Failures are never translated: a sync error lands in the Result, an async
// failure rejects the Deferred and a generator failure is yielded by the
// sequence.
func (i Invocable) Invoke(ctx context.Context, args ...any) Result {
	if i.fn == nil {
		return Result{err: fmt.Errorf("invoke: %w", ErrUninitialized)}
	}

	switch i.fn.kind {
	case KindSync:
		value, err := i.fn.sync(ctx, args...)
		return Result{kind: KindSync, value: value, err: err}
	case KindAsync:
		deferred := i.fn.async(ctx, args...)
		if deferred == nil {
			deferred = Rejected(errNilDeferred)
		}
		return Result{kind: KindAsync, deferred: deferred}
	case KindGenerator:
		seq := i.fn.generator(ctx, args...)
		if seq == nil {
			seq = emptySeq
		}
		return Result{kind: KindGenerator, seq: seq}
	default:
		return Result{err: fmt.Errorf("invoke: %w", ErrUninitialized)}
	}
}

func emptySeq(func(any, error) bool) {}

// invocableOf recognizes the values accepted as an invocable by Init and
// OverridesFromMap.
func invocableOf(value any) (Invocable, bool) {
	var result Invocable
	switch fn := value.(type) {
	case Invocable:
		result = fn
	case *Invocable:
		if fn != nil {
			result = *fn
		}
	case SyncFunc:
		result = Sync(fn)
	case AsyncFunc:
		result = Async(fn)
	case GeneratorFunc:
		result = Generator(fn)
	case func(context.Context, ...any) (any, error):
		result = Sync(fn)
	case func(context.Context, ...any) *Deferred:
		result = Async(fn)
	case func(context.Context, ...any) iter.Seq2[any, error]:
		result = Generator(fn)
	case func(...any) (any, error):
		if fn != nil {
			result = Sync(func(_ context.Context, args ...any) (any, error) {
				return fn(args...)
			})
		}
	case func(...any) any:
		if fn != nil {
			result = Sync(func(_ context.Context, args ...any) (any, error) {
				return fn(args...), nil
			})
		}
	}

	return result, result.Validate() == nil
}
