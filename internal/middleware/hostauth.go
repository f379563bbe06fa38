package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
)

const appTokenParam = "token"

// HostAuth verifies the app token the host issues to the extension. The
// token is signed with the extension secret and arrives as a bearer header
// on htmx requests or as a query parameter on navigations. An empty secret
// disables verification for local development.
func HostAuth(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw := appToken(r)
			ctx := ctxkeys.WithAppToken(r.Context(), raw)

			if secret == "" {
				next(w, r.WithContext(ctx))
				return
			}

			if raw == "" {
				http.Error(w, "missing app token", http.StatusUnauthorized)
				return
			}

			claims, err := verifyAppToken(raw, secret)
			if err != nil {
				slog.Warn("app token rejected", "error", err, "path", r.URL.Path, "ip", getClientIP(r))
				http.Error(w, "invalid app token", http.StatusUnauthorized)
				return
			}

			if wc := ctxkeys.WebContext(ctx); wc != nil {
				wc.UserID, _ = claims["nameid"].(string)
			}

			next(w, r.WithContext(ctx))
		}
	}
}

func appToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get(appTokenParam)
}

func verifyAppToken(raw, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
