package pages

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/richtext"
	"github.com/keesschollaart/sprintgoal/internal/ui"
	"github.com/keesschollaart/sprintgoal/internal/ui/components/alert"
	"github.com/keesschollaart/sprintgoal/internal/ui/components/button"
	"github.com/keesschollaart/sprintgoal/internal/ui/layouts"
)

type TabProps struct {
	Title         string
	Goal          *model.SprintGoal // nil renders the defaults
	Error         string
	Query         url.Values // host context and app token for follow-up requests
}

// Tab is the sprint goal form with its toolbar.
func Tab(p TabProps) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		goal := p.Goal
		if goal == nil {
			goal = model.DefaultSprintGoal()
		}
		query := "?" + p.Query.Encode()

		hw := ui.NewWriter(w)
		hw.Raw(`<div id="sprint-goal" class="mx-auto max-w-3xl space-y-4">`)

		hw.Raw(`<div class="toolbar flex gap-2 border-b border-gray-200 pb-2">`)
		hw.Component(ctx, button.Button(button.Props{
			ID:      "save",
			Label:   "Save",
			Variant: button.VariantPrimary,
			Type:    "submit",
			Attributes: map[string]string{
				"form": "sprint-goal-form",
			},
		}))
		hw.Component(ctx, button.Button(button.Props{
			ID:      "settings",
			Label:   "Settings",
			Variant: button.VariantGhost,
			Href:    "/tab/settings" + query,
			Attributes: map[string]string{
				"target": "_top",
			},
		}))
		hw.Raw(`</div>`)

		// revealed by the page script when the browser rejects the test cookie
		hw.Component(ctx, alert.Alert(alert.Props{
			ID:          "cookie-warning",
			Variant:     alert.VariantWarning,
			Title:       "Cookies are blocked",
			Description: "Your browser does not accept cookies from this widget. The goal in the tab label loads slower and may not show at all.",
			Hidden:      true,
		}))

		hw.Raw(`<div id="save-status">`)
		hw.Component(ctx, SaveStatus(p.Error))
		hw.Raw(`</div>`)

		hw.Raw("<form")
		hw.Attrs(map[string]string{
			"id":        "sprint-goal-form",
			"method":    "post",
			"action":    "/tab/save" + query,
			"hx-post":   "/tab/save" + query,
			"hx-target": "#save-status",
			"class":     "space-y-3",
		})
		hw.Raw(">")
		hw.Raw("<input")
		hw.Attrs(map[string]string{"type": "hidden", "name": "csrf_token", "value": ctxkeys.CSRFToken(ctx)})
		hw.Raw(">")

		hw.Raw(`<label class="block"><span class="text-sm font-semibold">Goal</span><input`)
		hw.Attrs(map[string]string{
			"id":          "goal-input",
			"name":        "goal",
			"type":        "text",
			"value":       goal.Goal,
			"placeholder": "What does the team want to achieve this sprint?",
			"class":       "mt-1 w-full rounded border border-gray-300 px-2 py-1",
		})
		hw.Raw("></label>")

		checkbox(hw, "sprint-goal-in-tab-label", "sprintGoalInTabLabel", "Show goal in tab label", goal.SprintGoalInTabLabel)
		hw.Raw("<p")
		hintAttrs := map[string]string{"id": "tab-label-hint", "class": "text-xs text-gray-500"}
		if !goal.SprintGoalInTabLabel {
			hintAttrs["hidden"] = ""
		}
		hw.Attrs(hintAttrs)
		hw.Raw(">The tab label is cached in your browser for a day, other team members may see the new goal later.</p>")

		checkbox(hw, "achieved", "goalAchieved", "Goal achieved", goal.GoalAchieved)

		hw.Raw(`<div><span class="text-sm font-semibold">Details</span>`)
		hw.Raw(`<div id="details-editor" contenteditable="true" class="mt-1 min-h-32 rounded border border-gray-300 p-2">`)
		hw.Raw(richtext.Sanitize(goal.Details))
		hw.Raw(`</div>`)
		hw.Raw("<input")
		hw.Attrs(map[string]string{"id": "details-input", "type": "hidden", "name": "details"})
		hw.Raw("></div>")

		hw.Raw("</form></div>")
		return hw.Err()
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layouts.Base(p.Title).Render(templ.WithChildren(ctx, content), w)
	})
}

// SaveStatus is the result area of a save. Empty renders nothing.
func SaveStatus(errMsg string) templ.Component {
	if errMsg == "" {
		return templ.NopComponent
	}
	return alert.Alert(alert.Props{
		Variant:     alert.VariantError,
		Title:       "Sprint goal not saved",
		Description: errMsg,
	})
}

func checkbox(hw *ui.Writer, id, name, label string, checked bool) {
	attrs := map[string]string{
		"id":    id,
		"name":  name,
		"type":  "checkbox",
		"value": "true",
	}
	if checked {
		attrs["checked"] = ""
	}
	hw.Raw(`<label class="flex items-center gap-2 text-sm"><input`)
	hw.Attrs(attrs)
	hw.Raw("><span>")
	hw.Text(label)
	hw.Raw("</span></label>")
}
