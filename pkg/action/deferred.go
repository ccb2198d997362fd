package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errRejectedWithoutCause = errors.New("action: deferred rejected without cause")

// Deferred is a result that settles later, exactly once, with a value or an error.
//
// A Deferred is safe for concurrent use. Any number of goroutines can wait on
// it; settling it more than once is a no-op.
type Deferred struct {
	done  chan struct{}
	once  sync.Once
	value any
	err   error
}

// NewDeferred creates a pending Deferred and the functions that settle it.
func NewDeferred() (deferred *Deferred, resolve func(any), reject func(error)) {
	deferred = &Deferred{done: make(chan struct{})}

	return deferred, deferred.resolve, deferred.reject
}

// Resolved returns a Deferred already settled with value.
func Resolved(value any) *Deferred {
	deferred, resolve, _ := NewDeferred()
	resolve(value)

	return deferred
}

// Rejected returns a Deferred already settled with err.
func Rejected(err error) *Deferred {
	deferred, _, reject := NewDeferred()
	reject(err)

	return deferred
}

// Spawn runs fn on its own goroutine and returns a Deferred for its outcome.
// A panic inside fn rejects the Deferred with an error wrapping ErrPanic.
func Spawn(ctx context.Context, fn func(context.Context) (any, error)) *Deferred {
	if fn == nil {
		return Rejected(fmt.Errorf("spawn deferred: nil func: %w", ErrUninitialized))
	}

	deferred, resolve, reject := NewDeferred()
	go func() {
		value, err := runSafely(ctx, fn)
		if err != nil {
			reject(err)
			return
		}
		resolve(value)
	}()

	return deferred
}

// runSafely executes fn and converts panics into returned errors.
func runSafely(ctx context.Context, fn func(context.Context) (any, error)) (value any, err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		value = nil
		if recoveredErr, ok := recovered.(error); ok {
			err = fmt.Errorf("%w: %w", ErrPanic, recoveredErr)
			return
		}
		err = fmt.Errorf("%w: %v", ErrPanic, recovered)
	}()

	return fn(ctx)
}

// Done returns a channel closed once the Deferred settles.
func (d *Deferred) Done() <-chan struct{} {
	if d == nil {
		return closedChan
	}

	return d.done
}

// Settled reports whether the Deferred has a value or an error.
func (d *Deferred) Settled() bool {
	select {
	case <-d.Done():
		return true
	default:
		return false
	}
}

// Await blocks until the Deferred settles or ctx ends.
//
// Returning early on ctx leaves the Deferred untouched; a later Await still
// observes the settled outcome.
func (d *Deferred) Await(ctx context.Context) (any, error) {
	if d == nil {
		return nil, fmt.Errorf("await deferred: %w", ErrUninitialized)
	}

	select {
	case <-d.done:
		return d.value, d.err
	default:
	}

	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		return nil, fmt.Errorf("await deferred: %w", ctx.Err())
	}
}

func (d *Deferred) resolve(value any) {
	d.settle(value, nil)
}

func (d *Deferred) reject(err error) {
	if err == nil {
		err = errRejectedWithoutCause
	}
	d.settle(nil, err)
}

func (d *Deferred) settle(value any, err error) {
	d.once.Do(func() {
		d.value = value
		d.err = err
		close(d.done)
	})
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
