package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zanner-cms/action/internal/config"
	"github.com/zanner-cms/action/pkg/action"
	"github.com/zanner-cms/action/pkg/action/exprfunc"
	"github.com/zanner-cms/action/pkg/action/jsfunc"
)

type runOptions struct {
	service    string
	name       string
	jsFile     string
	function   string
	kind       string
	expression string
	params     []string
}

func newRootCommand(loadConfig func() (config.Config, error)) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "action --service <service> --name <name> (--js <file> | --expr <source>) [args...]",
		Short: "Build one action and invoke it with the given arguments",
		Long: `action builds one named action bound to a service from a JavaScript
function or an expression, invokes it with the positional arguments and
prints the awaited result as JSON. Arguments are parsed as JSON values and
fall back to plain strings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			return run(cmd, logger, cfg, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.service, "service", "", "owning service of the action")
	flags.StringVar(&opts.name, "name", "", "action name")
	flags.StringVar(&opts.jsFile, "js", "", "JavaScript file defining the action function")
	flags.StringVar(&opts.function, "func", "", "JavaScript function to bind (defaults to --name)")
	flags.StringVar(&opts.kind, "kind", string(action.KindSync), "calling convention: sync, async or generator")
	flags.StringVar(&opts.expression, "expr", "", "expression evaluated by the action")
	flags.StringSliceVar(&opts.params, "params", nil, "expression parameter names bound to positional arguments")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("js", "expr")
	cmd.MarkFlagsOneRequired("js", "expr")

	return cmd
}

func run(cmd *cobra.Command, logger *slog.Logger, cfg config.Config, opts runOptions, rawArgs []string) error {
	fn, err := buildInvocable(cfg, opts)
	if err != nil {
		return err
	}
	created, err := action.New(opts.name, opts.service, fn)
	if err != nil {
		return err
	}
	logger.Debug("action constructed", "action", created)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	started := time.Now()
	value, err := created.Apply(ctx, parseArgs(rawArgs)).Await(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "action invocation failed", "action", created, "error", err)
		return fmt.Errorf("invoke %s: %w", created, err)
	}
	logger.InfoContext(ctx, "action invoked", "action", created, "duration", time.Since(started))

	encoder := json.NewEncoder(cmd.OutOrStdout())
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode result of %s: %w", created, err)
	}

	return nil
}

func buildInvocable(cfg config.Config, opts runOptions) (action.Invocable, error) {
	kind := action.Kind(strings.ToLower(strings.TrimSpace(opts.kind)))
	if err := kind.Validate(); err != nil {
		return action.Invocable{}, err
	}

	if opts.jsFile != "" {
		source, err := os.ReadFile(opts.jsFile)
		if err != nil {
			return action.Invocable{}, fmt.Errorf("read script: %w", err)
		}
		script, err := jsfunc.Compile(opts.jsFile, string(source), jsfunc.WithTimeout(cfg.Timeout))
		if err != nil {
			return action.Invocable{}, err
		}
		function := opts.function
		if function == "" {
			function = opts.name
		}
		return script.Bind(kind, function)
	}

	program, err := exprfunc.Compile(opts.expression, exprfunc.WithParams(opts.params...))
	if err != nil {
		return action.Invocable{}, err
	}
	switch kind {
	case action.KindSync:
		return program.Invocable(), nil
	case action.KindAsync:
		return action.Go(func(_ context.Context, args ...any) (any, error) {
			return program.Eval(args...)
		}), nil
	default:
		return action.Invocable{}, errors.New("build expression action: generator kind is not supported for expressions")
	}
}

// parseArgs decodes each raw argument as JSON, keeping it as a string when
// it is not valid JSON.
func parseArgs(rawArgs []string) []any {
	args := make([]any, 0, len(rawArgs))
	for _, raw := range rawArgs {
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			args = append(args, raw)
			continue
		}
		args = append(args, value)
	}

	return args
}
