package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/tiermap/internal/app"
	"github.com/crimson-sun/tiermap/internal/engine/compactor"
	"github.com/crimson-sun/tiermap/internal/engine/taxonomy"
)

func (c *cli) taxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect the taxonomy",
	}

	domains := &cobra.Command{
		Use:   "domains",
		Short: "List top-level domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.LoadStore(c.cfg.Data)
			if err != nil {
				return err
			}
			for _, d := range store.Domains() {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}

	var depth int
	subset := &cobra.Command{
		Use:   "subset <domain>",
		Short: "Print the id:name candidate list sent for fine classification",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.LoadStore(c.cfg.Data)
			if err != nil {
				return err
			}
			if depth == 0 {
				depth = c.cfg.Data.TierDepth
			}
			// Domain names contain spaces; accept them unquoted.
			domain := strings.Join(args, " ")
			cats, err := store.Subset(domain, depth)
			if err != nil {
				return err
			}
			compact := taxonomy.Compact(cats)
			fmt.Fprintln(cmd.OutOrStdout(), compact)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d categories, ~%d tokens\n", len(cats), compactor.EstimateTokens(compact))
			return nil
		},
	}
	subset.Flags().IntVar(&depth, "depth", 0, "tier depth (2-4)")

	cmd.AddCommand(domains, subset)
	return cmd
}
