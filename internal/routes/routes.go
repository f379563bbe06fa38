package routes

import (
	"net/http"

	"github.com/keesschollaart/sprintgoal/internal/app"
	"github.com/keesschollaart/sprintgoal/internal/cookie"
	"github.com/keesschollaart/sprintgoal/internal/handler"
	"github.com/keesschollaart/sprintgoal/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	tab := handler.NewTabHandler(app.SprintGoalService, app.TelemetryService, app.Navigator, cookie.Options{
		Domain: app.Cfg.CookieDomain(),
		Secure: app.Cfg.IsProduction(),
	})
	admin := handler.NewAdminHandler(app.ExportService, app.TelemetryService, app.HelpService)

	hostAuth := middleware.HostAuth(app.Cfg.ExtensionSecret)
	requireTeam := middleware.RequireTeam(app.Cfg)
	requireProject := middleware.RequireProject(app.Cfg)
	exportLimiter := middleware.RateLimitExport()

	mux := http.NewServeMux()

	// ============================================================================
	// HEALTH
	// ============================================================================

	mux.HandleFunc("GET /healthz", handler.Health)

	// ============================================================================
	// TAB (/tab/*), one per team and iteration
	// ============================================================================

	mux.HandleFunc("GET /tab", hostAuth(requireTeam(tab.TabPage)))
	mux.HandleFunc("GET /tab/title", hostAuth(requireTeam(tab.Title)))
	mux.HandleFunc("GET /tab/settings", hostAuth(requireProject(tab.Settings)))
	mux.HandleFunc("POST /tab/save", hostAuth(requireTeam(tab.Save)))
	mux.HandleFunc("POST /tab/context", hostAuth(requireTeam(tab.ContextUpdated)))

	// ============================================================================
	// ADMIN (/admin/*), project settings hub
	// ============================================================================

	mux.HandleFunc("GET /admin", hostAuth(requireProject(admin.AdminPage)))
	mux.HandleFunc("GET /admin/export", exportLimiter(hostAuth(requireProject(admin.Export))))
	mux.HandleFunc("POST /admin/telemetry", hostAuth(requireProject(admin.SetTelemetry)))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by SecurityHeaders and CSRF)
		middleware.NonceMiddleware, // Generate CSP nonce for each request (must be before SecurityHeaders)
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.WebContext(app.Cfg),
	)

	return handler
}
