// Package jsfunc binds JavaScript functions, run by the goja engine, as
// action invocables.
package jsfunc

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/zanner-cms/action/pkg/action"
)

var (
	// ErrNotFunction indicates that a bound global is missing or not callable.
	ErrNotFunction = errors.New("jsfunc: not a function")
	// ErrNotIterator indicates that a generator binding returned no iterator.
	ErrNotIterator = errors.New("jsfunc: not an iterator")
	// ErrPromisePending indicates a promise still pending after the job queue drained.
	ErrPromisePending = errors.New("jsfunc: promise still pending")
	// ErrPromiseRejected indicates a rejected promise; the JS reason follows in the message.
	ErrPromiseRejected = errors.New("jsfunc: promise rejected")
)

// config stores resolved script settings after option application.
type config struct {
	globals map[string]any
	timeout time.Duration
}

// Option mutates script construction configuration.
type Option func(*config)

// WithGlobals sets values on every runtime before the script runs.
func WithGlobals(globals map[string]any) Option {
	return func(cfg *config) {
		cfg.globals = make(map[string]any, len(globals))
		for key, value := range globals {
			cfg.globals[key] = value
		}
	}
}

// WithTimeout bounds each call, or each full iteration of a generator.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// Script is one compiled JavaScript source whose global functions can be
// bound as invocables. Runtimes are pooled; each call owns one exclusively.
type Script struct {
	name    string
	program *goja.Program
	cfg     config
	pool    sync.Pool
}

// Compile compiles source in strict mode and evaluates it once to surface
// top-level errors early.
func Compile(name, source string, opts ...Option) (*Script, error) {
	program, err := goja.Compile(name, source, true)
	if err != nil {
		return nil, fmt.Errorf("compile script %s: %w", name, err)
	}

	script := &Script{name: name, program: program}
	for _, opt := range opts {
		opt(&script.cfg)
	}

	vm, err := script.newRuntime()
	if err != nil {
		return nil, fmt.Errorf("compile script %s: %w", name, err)
	}
	script.pool.Put(vm)

	return script, nil
}

// Name returns the script name given to Compile.
func (s *Script) Name() string {
	return s.name
}

// Bind binds the global function fn with the calling convention kind.
func (s *Script) Bind(kind action.Kind, fn string) (action.Invocable, error) {
	switch kind {
	case action.KindSync:
		return s.Sync(fn)
	case action.KindAsync:
		return s.Async(fn)
	case action.KindGenerator:
		return s.Generator(fn)
	default:
		return action.Invocable{}, fmt.Errorf("bind %s: %w", fn, kind.Validate())
	}
}

// Sync binds fn as a sync invocable returning the exported JS value.
// JS exceptions are returned unchanged as *goja.Exception.
func (s *Script) Sync(fn string) (action.Invocable, error) {
	if err := s.checkFunction(fn); err != nil {
		return action.Invocable{}, err
	}

	return action.Sync(func(ctx context.Context, args ...any) (any, error) {
		ctx, cancel := s.callContext(ctx)
		defer cancel()

		var out any
		err := s.withRuntime(ctx, func(vm *goja.Runtime) error {
			value, err := call(vm, fn, args)
			if err != nil {
				return err
			}
			out = export(value)
			return nil
		})

		return out, err
	}), nil
}

// Async binds fn as an async invocable. Each call runs on its own goroutine.
// A returned promise settles the Deferred once the job queue drains.
func (s *Script) Async(fn string) (action.Invocable, error) {
	if err := s.checkFunction(fn); err != nil {
		return action.Invocable{}, err
	}

	return action.Async(func(ctx context.Context, args ...any) *action.Deferred {
		return action.Spawn(ctx, func(ctx context.Context) (any, error) {
			ctx, cancel := s.callContext(ctx)
			defer cancel()

			var out any
			err := s.withRuntime(ctx, func(vm *goja.Runtime) error {
				value, err := call(vm, fn, args)
				if err != nil {
					return err
				}
				out, err = settle(value)
				return err
			})

			return out, err
		})
	}), nil
}

// Generator binds fn as a generator invocable. fn must return an object
// following the iterator protocol; values are pulled lazily with next().
func (s *Script) Generator(fn string) (action.Invocable, error) {
	if err := s.checkFunction(fn); err != nil {
		return action.Invocable{}, err
	}

	return action.Generator(func(ctx context.Context, args ...any) iter.Seq2[any, error] {
		return func(yield func(any, error) bool) {
			ctx, cancel := s.callContext(ctx)
			defer cancel()

			err := s.withRuntime(ctx, func(vm *goja.Runtime) error {
				return iterate(vm, fn, args, yield)
			})
			if err != nil {
				yield(nil, err)
			}
		}
	}), nil
}

func (s *Script) checkFunction(fn string) error {
	return s.withRuntime(context.Background(), func(vm *goja.Runtime) error {
		if _, ok := goja.AssertFunction(vm.Get(fn)); !ok {
			return fmt.Errorf("bind %s in %s: %w", fn, s.name, ErrNotFunction)
		}
		return nil
	})
}

func (s *Script) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.timeout)
	}

	return context.WithCancel(ctx)
}

// withRuntime lends one pooled runtime to fn and interrupts it when ctx ends.
// A runtime that may have been interrupted is dropped instead of pooled.
func (s *Script) withRuntime(ctx context.Context, fn func(*goja.Runtime) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	vm, err := s.runtime()
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(context.Cause(ctx))
	})
	err = fn(vm)
	if stop() {
		s.pool.Put(vm)
	}

	return err
}

func (s *Script) runtime() (*goja.Runtime, error) {
	if vm, ok := s.pool.Get().(*goja.Runtime); ok {
		return vm, nil
	}

	return s.newRuntime()
}

func (s *Script) newRuntime() (*goja.Runtime, error) {
	vm := goja.New()
	for key, value := range s.cfg.globals {
		if err := vm.Set(key, value); err != nil {
			return nil, fmt.Errorf("set global %s: %w", key, err)
		}
	}
	if _, err := vm.RunProgram(s.program); err != nil {
		return nil, fmt.Errorf("run script %s: %w", s.name, err)
	}

	return vm, nil
}

func call(vm *goja.Runtime, fn string, args []any) (goja.Value, error) {
	callable, ok := goja.AssertFunction(vm.Get(fn))
	if !ok {
		return nil, fmt.Errorf("call %s: %w", fn, ErrNotFunction)
	}

	params := make([]goja.Value, len(args))
	for idx, arg := range args {
		params[idx] = vm.ToValue(arg)
	}

	return callable(goja.Undefined(), params...)
}

func settle(value goja.Value) (any, error) {
	if value == nil {
		return nil, nil
	}
	promise, ok := value.Export().(*goja.Promise)
	if !ok {
		return export(value), nil
	}

	switch promise.State() {
	case goja.PromiseStateFulfilled:
		return export(promise.Result()), nil
	case goja.PromiseStateRejected:
		return nil, fmt.Errorf("%w: %s", ErrPromiseRejected, reason(promise.Result()))
	default:
		return nil, ErrPromisePending
	}
}

func iterate(vm *goja.Runtime, fn string, args []any, yield func(any, error) bool) error {
	value, err := call(vm, fn, args)
	if err != nil {
		return err
	}
	if isAbsent(value) {
		return fmt.Errorf("iterate %s: %w", fn, ErrNotIterator)
	}

	iterator := value.ToObject(vm)
	next, ok := goja.AssertFunction(iterator.Get("next"))
	if !ok {
		return fmt.Errorf("iterate %s: %w", fn, ErrNotIterator)
	}

	for {
		step, err := next(iterator)
		if err != nil {
			return err
		}
		if isAbsent(step) {
			return fmt.Errorf("iterate %s: step result: %w", fn, ErrNotIterator)
		}

		stepObject := step.ToObject(vm)
		if done := stepObject.Get("done"); done != nil && done.ToBoolean() {
			return nil
		}
		if !yield(export(stepObject.Get("value")), nil) {
			return nil
		}
	}
}

func export(value goja.Value) any {
	if isAbsent(value) {
		return nil
	}

	return value.Export()
}

func reason(value goja.Value) string {
	if isAbsent(value) {
		return "undefined"
	}

	return value.String()
}

func isAbsent(value goja.Value) bool {
	return value == nil || goja.IsUndefined(value) || goja.IsNull(value)
}
