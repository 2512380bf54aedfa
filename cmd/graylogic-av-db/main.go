// graylogic-av-db inspects and steps the Gray Logic AV schema.
//
// graylogic-av applies pending migrations on startup; this tool reports
// their state and rolls the latest one back when a release is reverted.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-av/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-av/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "graylogic-av-db",
		Short:        "Manage the Gray Logic AV database schema",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Config file path")

	withDB := func(fn func(ctx context.Context, db *database.DB, w io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(configPath)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(cmd.Context(), db, cmd.OutOrStdout())
		}
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "List applied and pending migrations",
			RunE:  withDB(printStatus),
		},
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: withDB(func(ctx context.Context, db *database.DB, w io.Writer) error {
				if err := db.Migrate(ctx, migrations.FS); err != nil {
					return err
				}
				return printStatus(ctx, db, w)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withDB(func(ctx context.Context, db *database.DB, w io.Writer) error {
				if err := db.MigrateDown(ctx, migrations.FS); err != nil {
					return err
				}
				return printStatus(ctx, db, w)
			}),
		},
	)
	return rootCmd
}

func openDB(path string) (*database.DB, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return database.Open(cfg.Database)
}

func printStatus(ctx context.Context, db *database.DB, w io.Writer) error {
	applied, pending, err := db.MigrationStatus(ctx, migrations.FS)
	if err != nil {
		return err
	}
	for _, r := range applied {
		fmt.Fprintf(w, "applied  %s  %s\n", r.Version, r.AppliedAt.Format(time.RFC3339))
	}
	for _, m := range pending {
		fmt.Fprintf(w, "pending  %s  %s\n", m.Version, m.Name)
	}
	return nil
}
