package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
)

// hostFrameAncestors are the origins allowed to embed the widget
var hostFrameAncestors = []string{
	"https://dev.azure.com",
	"https://*.visualstudio.com",
}

// SecurityHeaders sets the CSP and related headers. The widget is rendered
// inside the host's iframe, so framing is limited to the host origins
// instead of being denied. Requires Config and NonceMiddleware before it.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy(r))
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		next.ServeHTTP(w, r)
	})
}

func contentSecurityPolicy(r *http.Request) string {
	scriptSrc := "'self'"
	if nonce := templ.GetNonce(r.Context()); nonce != "" {
		scriptSrc += fmt.Sprintf(" 'nonce-%s'", nonce)
	}

	ancestors := append([]string{"'self'"}, hostFrameAncestors...)
	if cfg := ctxkeys.Config(r.Context()); cfg != nil {
		if origin := originOf(cfg.DevOpsOrgURL); origin != "" && !slices.Contains(ancestors, origin) {
			ancestors = append(ancestors, origin)
		}
	}

	directives := []string{
		"default-src 'self'",
		"script-src " + scriptSrc,
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"frame-ancestors " + strings.Join(ancestors, " "),
		"base-uri 'self'",
		"form-action 'self'",
	}
	return strings.Join(directives, "; ")
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
