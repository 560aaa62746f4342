package main

import (
	"fmt"

	"delivery-tracker/cmd"
	"delivery-tracker/internal/adapters/out/postgres/migrations"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Database migration management",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := cmd.LoadConfig(envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.StorageDriver != cmd.StoragePostgres {
			return fmt.Errorf("migrations need STORAGE_DRIVER=%s", cmd.StoragePostgres)
		}

		action := "up"
		if len(args) > 0 {
			action = args[0]
		}

		switch action {
		case "up":
			return cmd.Migrate(c.Context(), cfg, migrations.Up)
		case "down":
			return cmd.Migrate(c.Context(), cfg, migrations.Down)
		default:
			return cmd.Migrate(c.Context(), cfg, migrations.Status)
		}
	},
}
