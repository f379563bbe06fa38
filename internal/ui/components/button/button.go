package button

import (
	"context"
	"io"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
	"github.com/keesschollaart/sprintgoal/internal/ui"
)

type Variant string

const (
	VariantPrimary   Variant = "primary"
	VariantSecondary Variant = "secondary"
	VariantGhost     Variant = "ghost"
)

const baseClass = "inline-flex items-center gap-1 rounded px-3 py-1.5 text-sm font-medium disabled:opacity-50"

var variantClass = map[Variant]string{
	VariantPrimary:   "bg-blue-600 text-white hover:bg-blue-700",
	VariantSecondary: "border border-gray-300 bg-white text-gray-800 hover:bg-gray-50",
	VariantGhost:     "bg-transparent text-gray-700 hover:bg-gray-100",
}

type Props struct {
	ID         string
	Label      string
	Variant    Variant
	Class      string
	Type       string // "button" when empty
	Href       string // renders a link styled as a button
	Disabled   bool
	Attributes map[string]string
}

// Button renders a button or, with Href set, a link that looks like one.
func Button(p Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		variant := p.Variant
		if variant == "" {
			variant = VariantSecondary
		}

		attrs := map[string]string{
			"class": twmerge.Merge(baseClass, variantClass[variant], p.Class),
		}
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		if p.ID != "" {
			attrs["id"] = p.ID
		}

		hw := ui.NewWriter(w)
		if p.Href != "" {
			attrs["href"] = p.Href
			hw.Raw("<a")
			hw.Attrs(attrs)
			hw.Raw(">")
			hw.Text(p.Label)
			hw.Raw("</a>")
			return hw.Err()
		}

		attrs["type"] = p.Type
		if p.Type == "" {
			attrs["type"] = "button"
		}
		if p.Disabled {
			attrs["disabled"] = ""
		}
		hw.Raw("<button")
		hw.Attrs(attrs)
		hw.Raw(">")
		hw.Text(p.Label)
		hw.Raw("</button>")
		return hw.Err()
	})
}
