// Package host asks the page embedding the widget to reload or navigate.
package host

import (
	"net/http"
)

// Navigator answers a request with a host navigation. htmx requests are
// told through response headers, plain requests are redirected.
type Navigator struct{}

func NewNavigator() *Navigator {
	return &Navigator{}
}

// Reload reloads the page that sent r. Plain requests without a Referer
// are sent to page, since r itself may be a POST only route.
func (n *Navigator) Reload(w http.ResponseWriter, r *http.Request, page string) {
	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	target := r.Referer()
	if target == "" {
		target = page
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Navigate sends the page to uri.
func (n *Navigator) Navigate(w http.ResponseWriter, r *http.Request, uri string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", uri)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, uri, http.StatusSeeOther)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
