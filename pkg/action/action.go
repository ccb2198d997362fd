package action

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
)

// Key identifies one Action inside its owning service.
type Key struct {
	Service string
	Name    string
}

// String returns the "service/name" form of k.
func (k Key) String() string {
	return k.Service + "/" + k.Name
}

// Action is an immutable, named unit of work bound to an owning service.
//
// Action has no mutators. Derive variants with Clone. The zero Action is not
// usable; every invocation on it reports ErrUninitialized.
type Action struct {
	name    string
	service string
	action  Invocable
}

// New validates and builds one Action.
func New(name, service string, action Invocable) (Action, error) {
	if err := validateText(FieldName, name); err != nil {
		return Action{}, fmt.Errorf("new action: %w", err)
	}
	if err := validateText(FieldService, service); err != nil {
		return Action{}, fmt.Errorf("new action: %w", err)
	}
	if err := action.Validate(); err != nil {
		return Action{}, fmt.Errorf("new action: %w", typeError(FieldAction, action))
	}

	return Action{
		name:    name,
		service: service,
		action:  action,
	}, nil
}

// Init builds one Action from loosely typed arguments: exactly a name
// string, a service string and an invocable value.
//
// Recognized invocable values are Invocable, *Invocable, SyncFunc, AsyncFunc,
// GeneratorFunc, the unnamed func types behind those three, and the plain
// shapes func(...any) (any, error) and func(...any) any.
func Init(args ...any) (Action, error) {
	if len(args) != 3 {
		return Action{}, fmt.Errorf("init action: got %d arguments, want 3: %w", len(args), ErrArity)
	}

	name, ok := args[0].(string)
	if !ok {
		return Action{}, fmt.Errorf("init action: %w", typeError(FieldName, args[0]))
	}
	if err := validateText(FieldName, name); err != nil {
		return Action{}, fmt.Errorf("init action: %w", err)
	}

	service, ok := args[1].(string)
	if !ok {
		return Action{}, fmt.Errorf("init action: %w", typeError(FieldService, args[1]))
	}
	if err := validateText(FieldService, service); err != nil {
		return Action{}, fmt.Errorf("init action: %w", err)
	}

	fn, ok := invocableOf(args[2])
	if !ok {
		return Action{}, fmt.Errorf("init action: %w", typeError(FieldAction, args[2]))
	}

	return Action{
		name:    name,
		service: service,
		action:  fn,
	}, nil
}

func validateText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return validationError(field, value)
	}

	return nil
}

// Name returns the action name.
func (a Action) Name() string {
	return a.name
}

// Service returns the owning service identifier.
func (a Action) Service() string {
	return a.service
}

// Invocable returns the wrapped unit of work.
func (a Action) Invocable() Invocable {
	return a.action
}

// Kind returns the calling convention of the wrapped unit of work.
func (a Action) Kind() Kind {
	return a.action.Kind()
}

// Key returns the (service, name) lookup key.
func (a Action) Key() Key {
	return Key{Service: a.service, Name: a.name}
}

// IsZero reports whether a is the zero Action.
func (a Action) IsZero() bool {
	return a.action.IsZero()
}

// String returns the "service/name" form of a.
func (a Action) String() string {
	return a.Key().String()
}

// LogValue groups the identifying fields for structured logging.
func (a Action) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("service", a.service),
		slog.String("name", a.name),
		slog.String("kind", string(a.action.Kind())),
	)
}

// Apply invokes the action with args spread positionally.
func (a Action) Apply(ctx context.Context, args []any) Result {
	return a.invoke(ctx, args)
}

// Call invokes the action with positional args.
func (a Action) Call(ctx context.Context, args ...any) Result {
	return a.invoke(ctx, args)
}

func (a Action) invoke(ctx context.Context, args []any) Result {
	if a.IsZero() {
		return Result{err: fmt.Errorf("invoke action: %w", ErrUninitialized)}
	}

	return a.action.Invoke(ctx, args...)
}

// Clone returns a new Action with the fields set in o replacing those of a.
// Replacement values go through the same validation as New; a stays as is.
func (a Action) Clone(o Overrides) (Action, error) {
	name := a.name
	if o.Name != nil {
		name = *o.Name
	}
	service := a.service
	if o.Service != nil {
		service = *o.Service
	}
	fn := a.action
	if o.Action != nil {
		fn = *o.Action
	}

	cloned, err := New(name, service, fn)
	if err != nil {
		return Action{}, fmt.Errorf("clone action %s: %w", a, err)
	}

	return cloned, nil
}

// Args turns one loosely shaped argument value into an argument list.
//
// A []any is returned unchanged, other slices and arrays are expanded element
// by element, nil yields no arguments and any other value becomes a
// one-element list.
func Args(value any) []any {
	if value == nil {
		return nil
	}
	if args, ok := value.([]any); ok {
		return args
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Slice, reflect.Array:
		args := make([]any, reflected.Len())
		for idx := range args {
			args[idx] = reflected.Index(idx).Interface()
		}
		return args
	default:
		return []any{value}
	}
}
