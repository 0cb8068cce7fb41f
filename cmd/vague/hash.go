package main

import (
	"fmt"

	"github.com/reusee/vague/identities"
	"github.com/spf13/cobra"
)

func newHashCommand(opts *rootOptions) *cobra.Command {
	var rawParams []string
	cmd := &cobra.Command{
		Use:   "hash <instructions>",
		Short: "Print the identity key of instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseAssignments(rawParams)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(opts.stdout, identities.Identity(args[0], params))
			return err
		},
	}
	cmd.Flags().StringArrayVar(&rawParams, "param", nil, "identity parameter as name=value")
	return cmd
}
