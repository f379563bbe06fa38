package alert

import (
	"context"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
	"github.com/keesschollaart/sprintgoal/internal/ui"
)

type Variant string

const (
	VariantInfo    Variant = "info"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
	VariantSuccess Variant = "success"
)

var variantClass = map[Variant]string{
	VariantInfo:    "border-blue-200 bg-blue-50 text-blue-900",
	VariantWarning: "border-amber-300 bg-amber-50 text-amber-900",
	VariantError:   "border-red-300 bg-red-50 text-red-900",
	VariantSuccess: "border-green-300 bg-green-50 text-green-900",
}

type Props struct {
	ID          string
	Title       string
	Description string
	Variant     Variant
	Class       string
	Hidden      bool // rendered with the hidden attribute, for scripts to reveal
}

func Alert(p Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		variant := p.Variant
		if variant == "" {
			variant = VariantInfo
		}

		attrs := map[string]string{
			"class": twmerge.Merge("rounded border px-3 py-2 text-sm", variantClass[variant], p.Class),
			"role":  "alert",
		}
		if p.ID != "" {
			attrs["id"] = p.ID
		}
		if p.Hidden {
			attrs["hidden"] = ""
		}

		hw := ui.NewWriter(w)
		hw.Raw("<div")
		hw.Attrs(attrs)
		hw.Raw(">")
		if p.Title != "" {
			hw.Raw(`<p class="font-semibold">`)
			hw.Text(p.Title)
			hw.Raw("</p>")
		}
		if p.Description != "" {
			hw.Raw("<p>")
			hw.Text(p.Description)
			hw.Raw("</p>")
		}
		hw.Raw("</div>")
		return hw.Err()
	})
}
