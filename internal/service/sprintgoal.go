package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/keesschollaart/sprintgoal/internal/cookie"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/richtext"
)

const (
	TitleDefault = "Goal"
	titlePrefix  = "Goal: "

	adminContribution = "keesschollaart.sprint-goal"

	// detailsUsedThreshold is the plain text length above which details
	// count as used in telemetry.
	detailsUsedThreshold = 10
)

// Action is what the host should do after a context update.
type Action int

const (
	ActionNone Action = iota
	ActionReload
)

// TabContribution is the capability set the host expects from a tab.
type TabContribution interface {
	Title(ctx context.Context, wc *model.WebContext, cookies cookie.Store) (string, error)
	OnContextUpdated(ctx context.Context, wc *model.WebContext) Action
	IsVisible(state map[string]any) bool
}

// SaveInput is the submitted tab form. Unset fields are zero values.
type SaveInput struct {
	Goal                 string
	SprintGoalInTabLabel bool
	GoalAchieved         bool
	Details              string
}

// SprintGoalService drives the sprint goal tab.
type SprintGoalService struct {
	settings   *SettingsService
	iterations *IterationService
	telemetry  *TelemetryService
}

var _ TabContribution = (*SprintGoalService)(nil)

func NewSprintGoalService(settings *SettingsService, iterations *IterationService, telemetry *TelemetryService) *SprintGoalService {
	return &SprintGoalService{
		settings:   settings,
		iterations: iterations,
		telemetry:  telemetry,
	}
}

// Settings resolves the record of the current iteration. A usable cookie
// cache wins unless forceReload is set or cookies are unavailable; reading
// through extension data always refreshes the cache.
// The returned record is nil when nothing was saved yet or on failure.
func (s *SprintGoalService) Settings(ctx context.Context, wc *model.WebContext, cookies cookie.Store, forceReload bool) (*model.SprintGoal, error) {
	key, err := s.iterations.ConfigKey(ctx, wc)
	if err != nil {
		return nil, err
	}
	return s.settingsForKey(ctx, key, cookies, forceReload)
}

func (s *SprintGoalService) settingsForKey(ctx context.Context, key string, cookies cookie.Store, forceReload bool) (*model.SprintGoal, error) {
	cached, ok := cookie.ReadGoal(cookies, key)
	available := cookies.Available()

	if !forceReload && ok && available {
		slog.Debug("sprint goal loaded from cookie", "key", key)
		return cached, nil
	}

	goal, err := s.settings.Read(ctx, key)
	cookie.WriteGoal(cookies, key, goal)
	if err != nil {
		slog.Warn("failed to read sprint goal", "error", err, "key", key)
		return nil, err
	}

	slog.Debug("sprint goal loaded from extension data", "key", key, "found", goal != nil)
	return goal, nil
}

// Title renders the tab label. A cached goal renders without touching
// extension data and honors the tab label flag. Without a cache the stored
// goal is shown whenever it is set. Every failure renders the default label.
func (s *SprintGoalService) Title(ctx context.Context, wc *model.WebContext, cookies cookie.Store) (string, error) {
	key, err := s.iterations.ConfigKey(ctx, wc)
	if err != nil {
		return TitleDefault, err
	}

	if cached, ok := cookie.ReadGoal(cookies, key); ok {
		if cached.SprintGoalInTabLabel {
			return titlePrefix + cached.Goal, nil
		}
		return TitleDefault, nil
	}

	goal, err := s.settingsForKey(ctx, key, cookies, true)
	if err != nil {
		return TitleDefault, err
	}
	if goal.HasGoal() {
		return titlePrefix + goal.Goal, nil
	}
	return TitleDefault, nil
}

// Save overwrites the record of the current iteration with the form and
// refreshes the cookie cache. Nothing of the previous record is merged.
// Details are sanitized before the plain text projection is derived.
func (s *SprintGoalService) Save(ctx context.Context, wc *model.WebContext, cookies cookie.Store, in SaveInput) (*model.SprintGoal, error) {
	details := richtext.Sanitize(in.Details)
	goal := &model.SprintGoal{
		Goal:                 in.Goal,
		SprintGoalInTabLabel: in.SprintGoalInTabLabel,
		GoalAchieved:         in.GoalAchieved,
		Details:              details,
		DetailsPlain:         richtext.PlainText(details),
	}

	s.telemetry.Track(ctx, wc, EventSaveSettings, map[string]string{
		"sprintGoalInTabLabel": strconv.FormatBool(goal.SprintGoalInTabLabel),
		"detailsUsed":          strconv.FormatBool(richtext.Len(goal.DetailsPlain) > detailsUsedThreshold),
	})

	key, err := s.iterations.ConfigKey(ctx, wc)
	if err != nil {
		return nil, err
	}

	err = s.settings.Write(ctx, key, goal)
	if err != nil {
		return nil, err
	}

	cookie.WriteGoal(cookies, key, goal)
	slog.Info("sprint goal saved", "key", key, "team_id", wc.Team.ID)
	return goal, nil
}

// OnContextUpdated reloads the interactive instance; background instances
// recompute their title lazily.
func (s *SprintGoalService) OnContextUpdated(_ context.Context, wc *model.WebContext) Action {
	if wc.Foreground {
		return ActionReload
	}
	return ActionNone
}

func (s *SprintGoalService) IsVisible(map[string]any) bool {
	return true
}

// AdminPageURI is the project settings hub page of the admin contribution.
func AdminPageURI(wc *model.WebContext) string {
	return wc.HostURI + wc.Project.Name + "/_settings/" + adminContribution + wc.EnvSuffix() + ".SprintGoalWidget.Admin"
}
