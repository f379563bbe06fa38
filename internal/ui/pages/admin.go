package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/ui"
	"github.com/keesschollaart/sprintgoal/internal/ui/components/alert"
	"github.com/keesschollaart/sprintgoal/internal/ui/components/button"
	"github.com/keesschollaart/sprintgoal/internal/ui/layouts"
)

const ExportLabel = "Export all sprint goals"

type AdminProps struct {
	ProjectName string
	OptOut      bool
	ExportLabel string // replaced by the error text of a failed export
	Help        []*model.HelpPage
	Query       url.Values
}

// Admin is the project settings page of the extension.
func Admin(p AdminProps) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		query := "?" + p.Query.Encode()
		label := p.ExportLabel
		if label == "" {
			label = ExportLabel
		}

		hw := ui.NewWriter(w)
		hw.Raw(`<div class="mx-auto max-w-3xl space-y-6">`)
		hw.Raw(`<h1 class="text-xl font-semibold">Sprint Goal</h1>`)

		hw.Raw(`<section class="space-y-2"><h2 class="font-semibold">Export</h2><p class="text-sm">`)
		hw.Text("Download the sprint goals of every team and iteration in " + p.ProjectName + ".")
		hw.Raw("</p>")
		hw.Component(ctx, button.Button(button.Props{
			ID:      "export-button",
			Label:   label,
			Variant: button.VariantPrimary,
			Href:    "/admin/export" + query,
		}))
		hw.Raw("</section>")

		hw.Raw(`<section class="space-y-2"><h2 class="font-semibold">Telemetry</h2>`)
		hw.Raw("<form")
		hw.Attrs(map[string]string{
			"method":     "post",
			"action":     "/admin/telemetry" + query,
			"hx-post":    "/admin/telemetry" + query,
			"hx-trigger": "change",
			"hx-target":  "#telemetry-status",
		})
		hw.Raw("><input")
		hw.Attrs(map[string]string{"type": "hidden", "name": "csrf_token", "value": ctxkeys.CSRFToken(ctx)})
		hw.Raw(`><label class="flex items-center gap-2 text-sm"><input`)
		attrs := map[string]string{"id": "telemetry-opt-out", "name": "optOut", "type": "checkbox", "value": "true"}
		if p.OptOut {
			attrs["checked"] = ""
		}
		hw.Attrs(attrs)
		hw.Raw("><span>Opt out of anonymous usage telemetry for this organization</span></label>")
		hw.Raw(`<noscript><button type="submit" class="mt-1 text-sm underline">Save</button></noscript></form>`)
		hw.Raw(`<div id="telemetry-status"></div></section>`)

		if len(p.Help) > 0 {
			hw.Raw(`<section class="space-y-4"><h2 class="font-semibold">Help</h2>`)
			for _, page := range p.Help {
				hw.Raw("<article")
				hw.Attrs(map[string]string{"id": "help-" + page.Slug, "class": "prose prose-sm"})
				hw.Raw(`><h3 class="font-medium">`)
				hw.Text(page.Title)
				hw.Raw("</h3>")
				hw.Raw(page.HTMLContent)
				hw.Raw("</article>")
			}
			hw.Raw("</section>")
		}

		hw.Raw("</div>")
		return hw.Err()
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layouts.Base("Sprint Goal settings").Render(templ.WithChildren(ctx, content), w)
	})
}

// TelemetryStatus confirms or rejects an opt-out change.
func TelemetryStatus(optOut bool, errMsg string) templ.Component {
	if errMsg != "" {
		return alert.Alert(alert.Props{Variant: alert.VariantError, Title: "Setting not saved", Description: errMsg})
	}
	description := "Telemetry is enabled."
	if optOut {
		description = "Telemetry is disabled."
	}
	return alert.Alert(alert.Props{Variant: alert.VariantSuccess, Description: description})
}
