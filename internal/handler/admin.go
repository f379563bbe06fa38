package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
	"github.com/keesschollaart/sprintgoal/internal/service"
	"github.com/keesschollaart/sprintgoal/internal/ui"
	"github.com/keesschollaart/sprintgoal/internal/ui/pages"
)

type AdminHandler struct {
	exportService    *service.ExportService
	telemetryService *service.TelemetryService
	helpService      *service.HelpService
}

func NewAdminHandler(exportService *service.ExportService, telemetryService *service.TelemetryService, helpService *service.HelpService) *AdminHandler {
	return &AdminHandler{
		exportService:    exportService,
		telemetryService: telemetryService,
		helpService:      helpService,
	}
}

func (h *AdminHandler) AdminPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Admin(h.adminProps(r, "")))
}

func (h *AdminHandler) adminProps(r *http.Request, exportLabel string) pages.AdminProps {
	ctx := r.Context()
	wc := ctxkeys.WebContext(ctx)

	optOut, err := h.telemetryService.OptOut(ctx)
	if err != nil {
		slog.Debug("telemetry opt-out unreadable, showing enabled", "error", err)
	}

	help, err := h.helpService.Pages()
	if err != nil {
		slog.Error("failed to load help", "error", err)
	}

	return pages.AdminProps{
		ProjectName: wc.Project.Name,
		OptOut:      optOut,
		ExportLabel: exportLabel,
		Help:        help,
		Query:       hostQuery(ctx, wc),
	}
}

func (h *AdminHandler) SetTelemetry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	optOut := formBool(r, "optOut")

	err := h.telemetryService.SetOptOut(ctx, optOut)
	if err != nil {
		slog.Error("failed to store telemetry opt-out", "error", err)
	} else {
		slog.Info("telemetry opt-out changed", "opt_out", optOut)
	}

	if !isHTMX(r) {
		wc := ctxkeys.WebContext(ctx)
		http.Redirect(w, r, "/admin?"+hostQuery(ctx, wc).Encode(), http.StatusSeeOther)
		return
	}

	errMsg := ""
	if err != nil {
		errMsg = userMessage(err)
	}
	ui.Render(w, r, pages.TelemetryStatus(optOut, errMsg))
}

// Export downloads goals.json. A failed export renders the admin page with
// the error text as the export button label.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wc := ctxkeys.WebContext(ctx)

	rows, err := h.exportService.ExportAll(ctx, wc)
	if err != nil {
		slog.Error("export failed", "error", err, "project_id", wc.Project.ID)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Admin(h.adminProps(r, err.Error())))
		return
	}

	var buf bytes.Buffer
	err = service.WriteExport(&buf, rows)
	if err != nil {
		slog.Error("failed to encode export", "error", err, "project_id", wc.Project.ID)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Admin(h.adminProps(r, err.Error())))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ExportFilename+`"`)
	_, _ = w.Write(buf.Bytes())
}
