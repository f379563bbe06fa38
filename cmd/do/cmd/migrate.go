package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/keesschollaart/sprintgoal/internal/config"
	"github.com/keesschollaart/sprintgoal/internal/db"
	"github.com/keesschollaart/sprintgoal/internal/logger"
	"github.com/spf13/cobra"
)

type migrateFunc func(ctx context.Context, out io.Writer, database *sql.DB, driver string) error

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the extension data schema of the sql data driver",
	}

	cmd.AddCommand(migrateSubCmd("up", "Apply all pending migrations",
		func(ctx context.Context, _ io.Writer, database *sql.DB, driver string) error {
			return db.RunMigrations(ctx, database, driver)
		}))
	cmd.AddCommand(migrateSubCmd("down", "Roll back the latest migration",
		func(ctx context.Context, _ io.Writer, database *sql.DB, driver string) error {
			return db.MigrateDown(ctx, database, driver)
		}))
	cmd.AddCommand(migrateSubCmd("status", "Show applied migrations", printStatus))
	return cmd
}

func migrateSubCmd(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(logger.Options{
				Development: cfg.IsDevelopment(),
				SentryDSN:   cfg.SentryDSN,
				Environment: cfg.AppEnv,
				ExtensionID: cfg.ExtensionID,
			})
			defer logger.Flush()

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer func() { _ = db.Close(database) }()

			return run(cmd.Context(), cmd.OutOrStdout(), database.DB, cfg.DBDriver)
		},
	}
}

func printStatus(ctx context.Context, out io.Writer, database *sql.DB, driver string) error {
	status, err := db.MigrationStatus(ctx, database, driver)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, s := range status {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
	}
	return tw.Flush()
}
