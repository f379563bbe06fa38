package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/keesschollaart/sprintgoal/internal/app"
	"github.com/keesschollaart/sprintgoal/internal/config"
	"github.com/keesschollaart/sprintgoal/internal/logger"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/service"
	"github.com/spf13/cobra"
)

func ExportCmd() *cobra.Command {
	var projectID, projectName, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every saved sprint goal of a project to JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runExport(ctx, projectID, projectName, output)
		},
	}

	cmd.Flags().StringVar(&projectID, "project-id", "", "project id (required)")
	cmd.Flags().StringVar(&projectName, "project-name", "", "project name used in the export rows")
	cmd.Flags().StringVarP(&output, "output", "o", service.ExportFilename, "output file, - for stdout")
	_ = cmd.MarkFlagRequired("project-id")

	return cmd
}

func runExport(ctx context.Context, projectID, projectName, output string) error {
	cfg := config.Load()
	logger.Init(logger.Options{
		Development: cfg.IsDevelopment(),
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.AppEnv,
		ExtensionID: cfg.ExtensionID,
	})
	defer logger.Flush()

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer func() { _ = a.Close() }()

	wc := &model.WebContext{
		Project:     model.Project{ID: projectID, Name: projectName},
		ExtensionID: cfg.ExtensionID,
	}

	rows, err := a.ExportService.ExportAll(ctx, wc)
	if err != nil {
		return err
	}

	if output == "-" {
		return service.WriteExport(os.Stdout, rows)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	err = service.WriteExport(f, rows)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if closeErr != nil {
		return closeErr
	}

	slog.Info("export written", "file", output, "rows", len(rows))
	return nil
}
