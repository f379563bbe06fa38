package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/keesschollaart/sprintgoal/internal/service"
)

// hostQuery is the query string follow-up requests need: the host context
// plus the app token.
func hostQuery(ctx context.Context, wc *model.WebContext) url.Values {
	q := wc.Query()
	if token := ctxkeys.AppToken(ctx); token != "" {
		q.Set("token", token)
	}
	return q
}

// tabPage is the tab URL for the host context of the request.
func tabPage(ctx context.Context, wc *model.WebContext) string {
	return "/tab?" + hostQuery(ctx, wc).Encode()
}

func formBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.PostFormValue(key))
	return err == nil && v
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// userMessage turns a service error into text for the page.
func userMessage(err error) string {
	switch service.KindOf(err) {
	case service.KindNoCurrentIteration:
		return "This team has no current iteration. Set the iteration dates in the team settings."
	case service.KindStorageUnavailable:
		return "The sprint goal storage is unavailable, try again later."
	default:
		return "Something went wrong, try again later."
	}
}
