package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// NonceMiddleware stores a fresh CSP nonce in the templ context. Pages read it
// with templ.GetNonce for their script tags and SecurityHeaders adds it to
// script-src.
func NonceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			// the page still renders, the CSP blocks its scripts
			slog.Error("failed to generate csp nonce", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		nonce := base64.StdEncoding.EncodeToString(b)
		next.ServeHTTP(w, r.WithContext(templ.WithNonce(r.Context(), nonce)))
	})
}
