package main

import (
	"fmt"
	"os"

	"delivery-tracker/cmd"

	"github.com/spf13/cobra"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed-couriers",
	Short: "Register the demo courier roster",
	RunE: func(c *cobra.Command, _ []string) error {
		cfg, err := cmd.LoadConfig(envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.StorageDriver != cmd.StoragePostgres {
			return fmt.Errorf("seeding needs STORAGE_DRIVER=%s; serve seeds in-memory storage itself", cmd.StoragePostgres)
		}
		logger := cmd.NewLogger(cfg, os.Stderr)

		storage, err := cmd.OpenStorage(c.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer storage.Close()

		root, err := cmd.NewCompositionRoot(cfg, storage.UoWFactory, logger)
		if err != nil {
			return err
		}
		defer func() { _ = root.Orchestrator().Shutdown(c.Context()) }()

		n, err := cmd.SeedCouriers(c.Context(), root.CreateCreateCourierCommandHandler(), seedCount)
		fmt.Fprintf(c.OutOrStdout(), "registered %d couriers\n", n)
		return err
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 0, "number of couriers to register (0 registers the whole roster)")
}
