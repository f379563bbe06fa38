package layouts

import (
	"context"
	"encoding/json"
	"io"

	"github.com/a-h/templ"
	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
	"github.com/keesschollaart/sprintgoal/internal/ui"
)

const (
	htmxSrc     = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"
	tailwindSrc = "https://cdn.jsdelivr.net/npm/@tailwindcss/browser@4"
)

// widgetScript keeps the rich text editor and the tab label hint in sync
// with the form, for htmx and plain submits alike. It also writes the test
// cookie and shows the cookie warning when the browser drops it.
const widgetScript = `
document.addEventListener("DOMContentLoaded", function () {
  var warning = document.getElementById("cookie-warning");
  if (!warning) { return; }
  var attrs = location.protocol === "https:" ? "; SameSite=None; Secure" : "; SameSite=Lax";
  document.cookie = "testcookie=true; path=/; max-age=86400" + attrs;
  warning.hidden = navigator.cookieEnabled && document.cookie.indexOf("testcookie=true") !== -1;
});
document.addEventListener("htmx:configRequest", function (e) {
  var editor = document.getElementById("details-editor");
  if (editor && e.detail.elt.id === "sprint-goal-form") {
    e.detail.parameters["details"] = editor.innerHTML;
  }
});
document.addEventListener("submit", function (e) {
  var editor = document.getElementById("details-editor");
  var input = document.getElementById("details-input");
  if (editor && input) { input.value = editor.innerHTML; }
});
document.addEventListener("change", function (e) {
  if (e.target.id === "sprint-goal-in-tab-label") {
    var hint = document.getElementById("tab-label-hint");
    if (hint) { hint.hidden = !e.target.checked; }
  }
});
`

// Base wraps its children in the widget document. htmx requests carry the
// CSRF token and the host app token as headers.
func Base(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		nonce := templ.GetNonce(ctx)

		headers := map[string]string{"X-CSRF-Token": ctxkeys.CSRFToken(ctx)}
		if token := ctxkeys.AppToken(ctx); token != "" {
			headers["Authorization"] = "Bearer " + token
		}
		hxHeaders, err := json.Marshal(headers)
		if err != nil {
			return err
		}

		hw := ui.NewWriter(w)
		hw.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Raw("<title>")
		hw.Text(title)
		hw.Raw("</title>")
		hw.Raw("<script")
		hw.Attrs(map[string]string{"src": htmxSrc, "nonce": nonce})
		hw.Raw("></script><script")
		hw.Attrs(map[string]string{"src": tailwindSrc, "nonce": nonce})
		hw.Raw("></script><script")
		hw.Attrs(map[string]string{"nonce": nonce})
		hw.Raw(">" + widgetScript + "</script></head>")

		hw.Raw("<body")
		hw.Attrs(map[string]string{
			"class":      "bg-white p-4 font-sans text-gray-900",
			"hx-headers": string(hxHeaders),
		})
		hw.Raw(">")
		hw.Component(ctx, templ.GetChildren(ctx))
		hw.Raw("</body></html>")
		return hw.Err()
	})
}
