package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/tiermap/internal/app"
	"github.com/crimson-sun/tiermap/internal/engine/vectorindex"
)

func (c *cli) indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the domain vector index",
	}

	var descriptions, out string
	build := &cobra.Command{
		Use:   "build",
		Short: "Embed domain descriptions and save the index",
		Long: "Embeds one description per top-level domain with the configured embedder and " +
			"writes " + vectorindex.DomainsFile + " and " + vectorindex.EmbeddingsFile + " to --out. " +
			"Point TIERMAP_INDEX_DIR at the directory to skip embedding at startup.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			if descriptions != "" {
				cfg.Data.DescriptionsPath = descriptions
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			store, err := app.LoadStore(cfg.Data)
			if err != nil {
				return err
			}
			descs, err := app.Descriptions(cfg.Data, store)
			if err != nil {
				return err
			}
			emb, err := app.NewEmbedder(cfg.Embedding)
			if err != nil {
				return err
			}
			defer emb.Close()

			idx, err := vectorindex.Build(cmd.Context(), emb, descs)
			if err != nil {
				return err
			}
			if err := idx.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d domains (dim %d) to %s\n", idx.Len(), idx.Dim(), out)
			return nil
		},
	}
	build.Flags().StringVar(&descriptions, "descriptions", "", "domain descriptions JSON (name, description)")
	build.Flags().StringVar(&out, "out", "index", "output directory")

	cmd.AddCommand(build)
	return cmd
}
