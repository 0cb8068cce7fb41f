package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/reusee/vague/storages"
	"github.com/spf13/cobra"
)

func newStoreCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the code store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored routines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := opts.loadRecords(cmd)
			if err != nil {
				return err
			}
			for _, key := range slices.Sorted(maps.Keys(records)) {
				if _, err := fmt.Fprintf(opts.stdout, "%s\t%s\n", key, records[key].FunctionName); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <key>",
		Short: "Print the source of a stored routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := opts.loadRecords(cmd)
			if err != nil {
				return err
			}
			record, ok := records[args[0]]
			if !ok {
				return fmt.Errorf("no routine stored under %s", args[0])
			}
			_, err = fmt.Fprintln(opts.stdout, record.FunctionCode)
			return err
		},
	})

	return cmd
}

func (o *rootOptions) loadRecords(cmd *cobra.Command) (storages.Records, error) {
	scope, err := o.scope()
	if err != nil {
		return nil, err
	}
	var store storages.Store
	scope.Call(func(getStore storages.GetStore) {
		store, err = getStore()
	})
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(cmd.Context())
}
