// Package exprfunc binds compiled expr-lang expressions as sync action
// invocables.
package exprfunc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/zanner-cms/action/pkg/action"
)

// ArgsKey names the environment entry holding all positional arguments.
const ArgsKey = "args"

// ErrTooManyArgs indicates a call with more arguments than declared params.
var ErrTooManyArgs = errors.New("exprfunc: too many arguments")

type config struct {
	params []string
	env    map[string]any
}

// Option mutates program construction configuration.
type Option func(*config)

// WithParams binds positional arguments to names, in order.
func WithParams(names ...string) Option {
	return func(cfg *config) {
		cfg.params = cfg.params[:0]
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				cfg.params = append(cfg.params, trimmed)
			}
		}
	}
}

// WithEnv exposes constants and helper functions to the expression.
// Positional params shadow entries of the same name.
func WithEnv(env map[string]any) Option {
	return func(cfg *config) {
		cfg.env = make(map[string]any, len(env))
		for key, value := range env {
			cfg.env[key] = value
		}
	}
}

// Program is one compiled expression.
type Program struct {
	source  string
	program *vm.Program
	cfg     config
}

// Compile compiles source. Unknown identifiers evaluate to nil.
func Compile(source string, opts ...Option) (*Program, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, err)
	}

	return &Program{source: source, program: program, cfg: cfg}, nil
}

// Source returns the expression text.
func (p *Program) Source() string {
	return p.source
}

// Params returns a copy of the declared positional parameter names.
func (p *Program) Params() []string {
	return append([]string(nil), p.cfg.params...)
}

// Eval runs the expression with args bound to the declared params.
func (p *Program) Eval(args ...any) (any, error) {
	if len(p.cfg.params) > 0 && len(args) > len(p.cfg.params) {
		return nil, fmt.Errorf("eval %q: got %d arguments for %d params: %w",
			p.source, len(args), len(p.cfg.params), ErrTooManyArgs)
	}

	env := make(map[string]any, len(p.cfg.env)+len(p.cfg.params)+1)
	for key, value := range p.cfg.env {
		env[key] = value
	}
	for idx, arg := range args {
		if idx < len(p.cfg.params) {
			env[p.cfg.params[idx]] = arg
		}
	}
	env[ArgsKey] = args

	return expr.Run(p.program, env)
}

// Invocable returns p as a sync invocable. A done ctx skips evaluation.
func (p *Program) Invocable() action.Invocable {
	return action.Sync(func(ctx context.Context, args ...any) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		return p.Eval(args...)
	})
}
