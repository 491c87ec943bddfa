package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/tree"
)

type opsOptions struct {
	add    []int64
	remove []int64
	desc   bool
	show   bool
}

func newOpsCmd() *cobra.Command {
	opts := &opsOptions{}
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "Apply scripted inserts then removes to a fresh tree",
		Example: `  xtree ops --add 5,2,7,1,3,0 --remove 7 --show
  xtree ops --add 1,2,3 --desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(cmd, opts)
		},
	}
	cmd.Flags().Int64SliceVar(&opts.add, "add", nil, "keys to insert, in order")
	cmd.Flags().Int64SliceVar(&opts.remove, "remove", nil, "keys to remove after the inserts, in order")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "order the keys descending")
	cmd.Flags().BoolVar(&opts.show, "show", false, "render the tree sideways with the balance factors")
	return cmd
}

func runOps(cmd *cobra.Command, opts *opsOptions) error {
	var treeOpts []tree.AVLTreeOpt[int64, struct{}]
	if opts.desc {
		treeOpts = append(treeOpts, tree.WithAVLTreeDesc[int64, struct{}]())
	}
	set := tree.NewAVLSet[int64](treeOpts...)
	defer set.Release()

	for _, key := range opts.add {
		if !set.Add(key) {
			cmd.PrintErrf("duplicate key %d ignored\n", key)
		}
	}
	for _, key := range opts.remove {
		if !set.Remove(key) {
			cmd.PrintErrf("absent key %d ignored\n", key)
		}
	}

	if err := multierr.Combine(
		tree.BalanceViolationValidate[int64, struct{}](set),
		tree.OrderViolationValidate[int64, struct{}](set),
		tree.HeightViolationValidate[int64, struct{}](set),
	); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "keys: %v\nlen: %d\nheight: %d\n", set.Keys(), set.Len(), set.Height())
	if opts.show {
		_, _ = fmt.Fprint(out, tree.Render[int64, struct{}](set))
	}
	return nil
}
