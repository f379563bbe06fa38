package handler

import (
	"log/slog"
	"net/http"

	"github.com/keesschollaart/sprintgoal/internal/cookie"
	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
	"github.com/keesschollaart/sprintgoal/internal/host"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/service"
	"github.com/keesschollaart/sprintgoal/internal/ui"
	"github.com/keesschollaart/sprintgoal/internal/ui/pages"
)

type TabHandler struct {
	sprintGoalService *service.SprintGoalService
	telemetryService  *service.TelemetryService
	navigator         *host.Navigator
	cookieOptions     cookie.Options
}

func NewTabHandler(sprintGoalService *service.SprintGoalService, telemetryService *service.TelemetryService, navigator *host.Navigator, cookieOptions cookie.Options) *TabHandler {
	return &TabHandler{
		sprintGoalService: sprintGoalService,
		telemetryService:  telemetryService,
		navigator:         navigator,
		cookieOptions:     cookieOptions,
	}
}

func (h *TabHandler) TabPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wc := ctxkeys.WebContext(ctx)
	cookies := cookie.NewHTTPStore(w, r, h.cookieOptions)

	props := pages.TabProps{
		Query: hostQuery(ctx, wc),
	}

	goal, err := h.sprintGoalService.Settings(ctx, wc, cookies, true)
	switch service.KindOf(err) {
	case service.KindNone:
		props.Goal = goal
	case service.KindNoCurrentIteration:
		props.Error = userMessage(err)
	default:
		// Unreadable storage shows an empty form, the next save overwrites it
		slog.Warn("sprint goal unavailable, showing defaults", "error", err, "team_id", wc.Team.ID)
	}

	props.Title, _ = h.sprintGoalService.Title(ctx, wc, cookies)

	h.telemetryService.Track(ctx, wc, service.EventPageView, map[string]string{"page": "tab"})
	ui.Render(w, r, pages.Tab(props))
}

// Title answers the host's tab label request.
func (h *TabHandler) Title(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wc := ctxkeys.WebContext(ctx)
	cookies := cookie.NewHTTPStore(w, r, h.cookieOptions)

	title, err := h.sprintGoalService.Title(ctx, wc, cookies)
	if err != nil {
		slog.Debug("tab title fell back to default", "error", err, "kind", service.KindOf(err).String())
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(title))
}

func (h *TabHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wc := ctxkeys.WebContext(ctx)
	cookies := cookie.NewHTTPStore(w, r, h.cookieOptions)

	in := service.SaveInput{
		Goal:                 r.PostFormValue("goal"),
		SprintGoalInTabLabel: formBool(r, "sprintGoalInTabLabel"),
		GoalAchieved:         formBool(r, "goalAchieved"),
		Details:              r.PostFormValue("details"),
	}

	_, err := h.sprintGoalService.Save(ctx, wc, cookies, in)
	if err != nil {
		slog.Error("failed to save sprint goal", "error", err, "team_id", wc.Team.ID, "project_id", wc.Project.ID)

		if isHTMX(r) {
			ui.Render(w, r, pages.SaveStatus(userMessage(err)))
			return
		}

		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Tab(pages.TabProps{
			Title: service.TitleDefault,
			Goal: &model.SprintGoal{
				Goal:                 in.Goal,
				SprintGoalInTabLabel: in.SprintGoalInTabLabel,
				GoalAchieved:         in.GoalAchieved,
				Details:              in.Details,
			},
			Error: userMessage(err),
			Query: hostQuery(ctx, wc),
		}))
		return
	}

	h.navigator.Reload(w, r, tabPage(ctx, wc))
}

// ContextUpdated handles the host switching iteration.
func (h *TabHandler) ContextUpdated(w http.ResponseWriter, r *http.Request) {
	wc := ctxkeys.WebContext(r.Context())

	if h.sprintGoalService.OnContextUpdated(r.Context(), wc) == service.ActionReload {
		h.navigator.Reload(w, r, tabPage(r.Context(), wc))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Settings navigates to the admin page of the project.
func (h *TabHandler) Settings(w http.ResponseWriter, r *http.Request) {
	wc := ctxkeys.WebContext(r.Context())
	h.navigator.Navigate(w, r, service.AdminPageURI(wc))
}
