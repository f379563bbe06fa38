package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	sprintgoal "github.com/keesschollaart/sprintgoal"
	"github.com/keesschollaart/sprintgoal/internal/config"
	"github.com/keesschollaart/sprintgoal/internal/db"
	"github.com/keesschollaart/sprintgoal/internal/devops"
	"github.com/keesschollaart/sprintgoal/internal/host"
	"github.com/keesschollaart/sprintgoal/internal/repository"
	"github.com/keesschollaart/sprintgoal/internal/service"
	"github.com/keesschollaart/sprintgoal/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB // nil unless DATA_DRIVER=sql
	DevOps            *devops.Client
	ExtensionData     repository.ExtensionDataRepository
	Navigator         *host.Navigator
	SprintGoalService *service.SprintGoalService
	TelemetryService  *service.TelemetryService
	ExportService     *service.ExportService
	HelpService       *service.HelpService
}

func New(cfg *config.Config) (*App, error) {
	// Host API
	devopsClient := devops.New(devops.Options{
		OrgURL:      cfg.DevOpsOrgURL,
		ExtMgmtURL:  cfg.DevOpsExtMgmtURL,
		Token:       cfg.DevOpsToken,
		Publisher:   cfg.ExtensionPublisher,
		ExtensionID: cfg.ExtensionID,
		Timeout:     cfg.DevOpsTimeout,
	})

	a := &App{
		Cfg:       cfg,
		DevOps:    devopsClient,
		Navigator: host.NewNavigator(),
	}

	// Extension data
	data, err := a.extensionData()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.ExtensionData = data

	// Services
	var tracker service.Tracker = service.LogTracker{}
	if cfg.SentryDSN != "" {
		tracker = service.SentryTracker{}
	}

	settingsService := service.NewSettingsService(data)
	iterationService := service.NewIterationService(devopsClient)
	a.TelemetryService = service.NewTelemetryService(data, tracker)
	a.SprintGoalService = service.NewSprintGoalService(settingsService, iterationService, a.TelemetryService)
	a.ExportService = service.NewExportService(devopsClient, settingsService, a.TelemetryService, cfg.ExportConcurrency)
	a.HelpService = service.NewHelpService(sprintgoal.ContentFS, "content/help")

	return a, nil
}

func (a *App) extensionData() (repository.ExtensionDataRepository, error) {
	slog.Info("initializing extension data", "driver", a.Cfg.DataDriver)

	switch a.Cfg.DataDriver {
	case config.DataDriverSQL:
		database, err := db.Init(a.Cfg.DBDriver, a.Cfg.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = database

		err = db.RunMigrations(context.Background(), database.DB, a.Cfg.DBDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repository.NewExtensionDataRepository(database), nil

	case config.DataDriverS3:
		data, err := storage.New(a.Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return data, nil

	case config.DataDriverDevOps:
		return a.DevOps, nil

	case config.DataDriverMemory:
		if !a.Cfg.IsDevelopment() {
			return nil, fmt.Errorf("DATA_DRIVER=memory is only allowed in development")
		}
		return repository.NewMemoryExtensionData(), nil

	default:
		return nil, fmt.Errorf("unknown DATA_DRIVER %q", a.Cfg.DataDriver)
	}
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
