// Package cmd implements the catalogctl command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Avinash9608/Furniture-sub006/internal/app"
	"github.com/Avinash9608/Furniture-sub006/internal/config"
)

var (
	cfgFile  string
	instance *app.App
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Admin client for the furniture storefront catalog.",
		Long: `catalogctl manages the storefront catalog from the command line.
It talks to the backend through a resilient data-access layer that
tolerates moved endpoints, flaky connectivity and misrouted proxies,
and keeps a local category cache for offline reads.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			instance, err = app.New(cfg)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if instance != nil {
				instance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus CATALOG_* env)")

	cmd.AddCommand(newCategoriesCmd())
	cmd.AddCommand(newProductCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
