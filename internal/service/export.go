package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const ExportFilename = "goals.json"

// exportTimeout bounds a shared export run, which outlives the request
// that started it.
const exportTimeout = 2 * time.Minute

type exportTarget struct {
	configKey string
	team      model.Team
	iteration model.Iteration
}

type ExportService struct {
	work        WorkClient
	settings    *SettingsService
	telemetry   *TelemetryService
	concurrency int
	group       singleflight.Group
}

func NewExportService(work WorkClient, settings *SettingsService, telemetry *TelemetryService, concurrency int) *ExportService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ExportService{
		work:        work,
		settings:    settings,
		telemetry:   telemetry,
		concurrency: concurrency,
	}
}

// ExportAll collects every saved sprint goal of the project. Teams and
// iterations without a record produce no row. Any failure aborts the export
// without partial results. Concurrent exports of one project share a run,
// which keeps going when the caller that started it goes away.
func (s *ExportService) ExportAll(ctx context.Context, wc *model.WebContext) ([]model.ExportRow, error) {
	runCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(wc.Project.ID, func() (any, error) {
		ctx, cancel := context.WithTimeout(runCtx, exportTimeout)
		defer cancel()
		return s.export(ctx, wc.Project)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	rows := res.Val.([]model.ExportRow)
	if !res.Shared {
		s.telemetry.Track(ctx, wc, EventExport, map[string]string{
			"rows": strconv.Itoa(len(rows)),
		})
	}
	return rows, nil
}

func (s *ExportService) export(ctx context.Context, project model.Project) ([]model.ExportRow, error) {
	runID := uuid.New().String()
	start := time.Now()

	teams, err := s.work.Teams(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	iterationsByTeam := make([][]model.Iteration, len(teams))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, team := range teams {
		g.Go(func() error {
			teamCtx := model.TeamContext{ProjectID: project.ID, TeamID: team.ID}
			iterations, err := s.work.TeamIterations(gctx, teamCtx, model.TimeframeAll)
			if err != nil {
				return fmt.Errorf("failed to list iterations of team %s: %w", team.Name, err)
			}
			iterationsByTeam[i] = iterations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var targets []exportTarget
	var keys []string
	for i, team := range teams {
		for _, iteration := range iterationsByTeam[i] {
			key := model.ConfigKey(iteration.ID, team.ID)
			targets = append(targets, exportTarget{configKey: key, team: team, iteration: iteration})
			keys = append(keys, key)
		}
	}

	goals, err := s.settings.ReadMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ExportRow, 0, len(goals))
	for _, target := range targets {
		goal, ok := goals[target.configKey]
		if !ok {
			continue
		}
		rows = append(rows, model.NewExportRow(goal, target.team, target.iteration, project))
	}

	slog.Info("sprint goals exported",
		"run_id", runID,
		"project_id", project.ID,
		"teams", len(teams),
		"keys", len(keys),
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rows, nil
}

// WriteExport writes rows as a JSON array.
func WriteExport(w io.Writer, rows []model.ExportRow) error {
	if rows == nil {
		rows = []model.ExportRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}
