package main

import (
	"encoding/json"
	"fmt"

	"github.com/reusee/vague/pipelines"
	"github.com/reusee/vague/routines"
	"github.com/spf13/cobra"
)

type runOptions struct {
	*rootOptions
	Vars   []string
	Params []string
}

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <instructions>",
		Short: "Run instructions, generating the routine on first use",
		Long: `Run instructions as a routine.

The routine is looked up by the identity of the instructions and params,
loaded from the code store, or generated by the oracle on first use.
Variables passed with --var form the only argument the routine receives.

Example:
  vague run "return the sum of a and b" --var a=1 --var b=2
  vague run "greet name" --var name='"world"' --oracle ollama:qwen2.5-coder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "routine variable as name=value, value decoded as JSON when valid")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "identity parameter as name=value")

	return cmd
}

func (o *runOptions) run(cmd *cobra.Command, instructions string) error {
	vars, err := parseAssignments(o.Vars)
	if err != nil {
		return err
	}
	params, err := parseAssignments(o.Params)
	if err != nil {
		return err
	}
	locals := make(routines.Mapping, len(vars))
	for _, v := range vars {
		locals[v.Name] = v.Value
	}

	scope, err := o.scope()
	if err != nil {
		return err
	}
	var pipeline *pipelines.Pipeline
	scope.Call(func(getPipeline pipelines.GetPipeline) {
		pipeline, err = getPipeline()
	})
	if err != nil {
		return err
	}
	defer pipeline.Close()

	result, err := pipeline.Vague(cmd.Context(), instructions, locals, params...)
	if err != nil {
		return err
	}

	out, err := json.Marshal(result)
	if err != nil {
		// not representable as JSON, e.g. dicts with non-string keys
		_, err = fmt.Fprintf(o.stdout, "%v\n", result)
		return err
	}
	_, err = fmt.Fprintf(o.stdout, "%s\n", out)
	return err
}
