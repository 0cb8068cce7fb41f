package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/identities"
	"github.com/reusee/vague/logs"
	"github.com/reusee/vague/oracles"
	"github.com/reusee/vague/routines"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	newScope func() dscope.Scope
	stdout   io.Writer

	LogLevel string
	Oracle   string
	Dialect  string
}

func newRootCommand(newScope func() dscope.Scope, stdout io.Writer) *cobra.Command {
	opts := &rootOptions{
		newScope: newScope,
		stdout:   stdout,
	}

	cmd := &cobra.Command{
		Use:           "vague",
		Short:         "Run natural-language instructions as generated routines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Oracle, "oracle", "", "oracle name, e.g. gpt-4o, gemini-flash, ollama:<model>")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "", "routine dialect (starlark|go)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newHashCommand(opts))
	cmd.AddCommand(newStoreCommand(opts))

	return cmd
}

// scope applies flags over the configured scope.
func (o *rootOptions) scope() (dscope.Scope, error) {
	scope := o.newScope()

	var defs []any
	if o.Oracle != "" {
		name := oracles.DefaultOracleName(o.Oracle)
		defs = append(defs, func() oracles.DefaultOracleName {
			return name
		})
	}
	if o.Dialect != "" {
		dialect := routines.Dialect(o.Dialect)
		if dialect != routines.DialectStarlark && dialect != routines.DialectGo {
			return scope, fmt.Errorf("invalid dialect: %s", o.Dialect)
		}
		defs = append(defs, func() routines.Dialect {
			return dialect
		})
	}
	if len(defs) > 0 {
		scope = scope.Fork(defs...)
	}

	var levelName string
	scope.Call(func(loader configs.Loader) {
		levelName = configs.First[string](loader, "log_level")
	})
	if o.LogLevel != "" {
		levelName = o.LogLevel
	}
	if levelName != "" {
		level, err := logs.ParseLevel(levelName)
		if err != nil {
			return scope, err
		}
		logs.SetLevel(level)
	}

	return scope, nil
}

// parseAssignments turns name=value pairs into params, decoding values as JSON when possible.
func parseAssignments(assignments []string) ([]identities.Param, error) {
	var ret []identities.Param
	for _, assignment := range assignments {
		name, raw, ok := strings.Cut(assignment, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expecting name=value, got %q", assignment)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		if f, ok := value.(float64); ok && f == float64(int(f)) {
			value = int(f)
		}
		ret = append(ret, identities.P(name, value))
	}
	return ret, nil
}
