// Package ctxkeys carries request scoped values set by middleware.
package ctxkeys

import (
	"context"

	"github.com/keesschollaart/sprintgoal/internal/config"
	"github.com/keesschollaart/sprintgoal/internal/model"
)

type (
	webContextKey struct{}
	appTokenKey   struct{}
	configKey     struct{}
	csrfTokenKey  struct{}
)

// WebContext is the host context of the request, nil outside the widget routes.
func WebContext(ctx context.Context) *model.WebContext {
	wc, _ := ctx.Value(webContextKey{}).(*model.WebContext)
	return wc
}

func WithWebContext(ctx context.Context, wc *model.WebContext) context.Context {
	return context.WithValue(ctx, webContextKey{}, wc)
}

// AppToken is the raw host app token of the request, forwarded on follow-up requests.
func AppToken(ctx context.Context) string {
	token, _ := ctx.Value(appTokenKey{}).(string)
	return token
}

func WithAppToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, appTokenKey{}, token)
}

// Config is the sanitized configuration.
func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey{}).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey{}, token)
}
