package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/tiermap/internal/config"
	"github.com/crimson-sun/tiermap/internal/logging"
)

// cli carries state shared by all subcommands.
type cli struct {
	cfgFile  string
	logLevel string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "tiermap",
		Short:         "Classify text into the IAB content taxonomy",
		Long:          "tiermap ranks a text against the taxonomy's top-level domains, picks fine-grained categories within the winner and estimates the reader.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "YAML config file (overrides TIERMAP_CONFIG)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides TIERMAP_LOG_LEVEL)")

	root.AddCommand(
		c.classifyCmd(),
		c.batchCmd(),
		c.indexCmd(),
		c.taxonomyCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) load() error {
	if c.cfgFile != "" {
		if err := os.Setenv("TIERMAP_CONFIG", c.cfgFile); err != nil {
			return fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	// Logs go to stderr; JSON when results are machine-read.
	logging.Init(cfg.Output.Format != "text", logging.ParseLevel(cfg.LogLevel))
	c.cfg = cfg
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tiermap %s\n", config.Version)
		},
	}
}
