package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/keesschollaart/sprintgoal/internal/config"
	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/validation"
)

// WebContext builds the host context from the query parameters the host
// appends to the widget URL. Validation happens in RequireProject and
// RequireTeam, so routes without host context still get an empty one.
func WebContext(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()

			foreground := true
			if v := q.Get("foreground"); v != "" {
				parsed, err := strconv.ParseBool(v)
				if err == nil {
					foreground = parsed
				}
			}

			wc := &model.WebContext{
				HostURI: q.Get("hostUri"),
				Project: model.Project{
					ID:   q.Get("projectId"),
					Name: q.Get("projectName"),
				},
				Team: model.Team{
					ID:   q.Get("teamId"),
					Name: q.Get("teamName"),
				},
				IterationID: q.Get("iterationId"),
				ExtensionID: cfg.ExtensionID,
				Foreground:  foreground,
			}

			ctx := ctxkeys.WithWebContext(r.Context(), wc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireProject rejects requests without a valid host and project.
func RequireProject(cfg *config.Config) func(http.HandlerFunc) http.HandlerFunc {
	return requireHostContext(cfg, false)
}

// RequireTeam rejects requests without a valid host, project and team.
func RequireTeam(cfg *config.Config) func(http.HandlerFunc) http.HandlerFunc {
	return requireHostContext(cfg, true)
}

func requireHostContext(cfg *config.Config, team bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			wc := ctxkeys.WebContext(r.Context())
			if wc == nil {
				http.Error(w, "missing host context", http.StatusBadRequest)
				return
			}

			err := validateWebContext(wc, cfg.DevOpsOrgURL, team)
			if err != nil {
				slog.Warn("invalid host context", "error", err, "path", r.URL.Path)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			next(w, r)
		}
	}
}

func validateWebContext(wc *model.WebContext, orgURL string, team bool) error {
	err := validation.ValidateHostURI(wc.HostURI, orgURL)
	if err != nil {
		return err
	}
	err = validation.ValidateID("projectId", wc.Project.ID)
	if err != nil {
		return err
	}
	err = validation.ValidateID("projectName", wc.Project.Name)
	if err != nil {
		return err
	}
	if !team {
		return nil
	}
	return validation.ValidateID("teamId", wc.Team.ID)
}
