package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/golang-jwt/jwt/v5"
	"github.com/keesschollaart/sprintgoal/internal/config"
	"github.com/keesschollaart/sprintgoal/internal/ctxkeys"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:          "development",
		AppURL:          "https://widget.example.com",
		ExtensionID:     "sprint-goal-dev",
		ExtensionSecret: "secret",
		DevOpsOrgURL:    "https://dev.azure.com/org",
	}
}

func hostQuery() url.Values {
	q := url.Values{}
	q.Set("hostUri", "https://dev.azure.com/org/")
	q.Set("projectId", "p1")
	q.Set("projectName", "Fabrikam")
	q.Set("teamId", "t1")
	q.Set("teamName", "Team One")
	return q
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestWebContext(t *testing.T) {
	q := hostQuery()
	q.Set("iterationId", "it1")
	q.Set("foreground", "false")

	var got *model.WebContext
	h := WebContext(testConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.WebContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tab?"+q.Encode(), nil))

	require.NotNil(t, got)
	assert.Equal(t, "https://dev.azure.com/org/", got.HostURI)
	assert.Equal(t, model.Project{ID: "p1", Name: "Fabrikam"}, got.Project)
	assert.Equal(t, model.Team{ID: "t1", Name: "Team One"}, got.Team)
	assert.Equal(t, "it1", got.IterationID)
	assert.Equal(t, "sprint-goal-dev", got.ExtensionID)
	assert.False(t, got.Foreground)
	assert.Equal(t, q.Encode(), got.Query().Encode())
}

func TestWebContext_ForegroundByDefault(t *testing.T) {
	var got *model.WebContext
	h := WebContext(testConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.WebContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tab", nil))

	require.NotNil(t, got)
	assert.True(t, got.Foreground)
}

func TestRequireTeam(t *testing.T) {
	cfg := testConfig()
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	h := WebContext(cfg)(RequireTeam(cfg)(ok))

	tests := []struct {
		name   string
		mutate func(url.Values)
		want   int
	}{
		{"complete", func(url.Values) {}, http.StatusOK},
		{"missing team", func(q url.Values) { q.Del("teamId") }, http.StatusBadRequest},
		{"missing project", func(q url.Values) { q.Del("projectId") }, http.StatusBadRequest},
		{"foreign host", func(q url.Values) { q.Set("hostUri", "https://evil.example.com/") }, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := hostQuery()
			tt.mutate(q)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab?"+q.Encode(), nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireProject_TeamOptional(t *testing.T) {
	cfg := testConfig()
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	h := WebContext(cfg)(RequireProject(cfg)(ok))

	q := hostQuery()
	q.Del("teamId")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?"+q.Encode(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func signAppToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"nameid": "user-1",
		"exp":    exp.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHostAuth(t *testing.T) {
	cfg := testConfig()
	var gotUser, gotToken string
	h := WebContext(cfg)(HostAuth(cfg.ExtensionSecret)(func(w http.ResponseWriter, r *http.Request) {
		gotUser = ctxkeys.WebContext(r.Context()).UserID
		gotToken = ctxkeys.AppToken(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	valid := signAppToken(t, "secret", time.Now().Add(time.Hour))

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tab/save", nil)
		r.Header.Set("Authorization", "Bearer "+valid)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-1", gotUser)
		assert.Equal(t, valid, gotToken)
	})

	t.Run("query parameter", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab?token="+valid, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab?token="+signAppToken(t, "other", time.Now().Add(time.Hour)), nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab?token="+signAppToken(t, "secret", time.Now().Add(-time.Hour)), nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHostAuth_DisabledWithoutSecret(t *testing.T) {
	h := HostAuth("")(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	h := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, templ.GetNonce(r.Context()))
		}),
		Config(testConfig()),
		NonceMiddleware,
		SecurityHeaders,
	)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab", nil))

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' 'nonce-")
	assert.Contains(t, csp, "frame-ancestors 'self' https://dev.azure.com https://*.visualstudio.com;")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("X-Frame-Options"))
}

func TestCSRFProtection(t *testing.T) {
	h := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(ctxkeys.CSRFToken(r.Context())))
		}),
		Config(testConfig()),
		CSRFProtection,
	)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab", nil))
	token := w.Body.String()
	require.NotEmpty(t, token)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	t.Run("valid header token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tab/save", nil)
		r.AddCookie(cookies[0])
		r.Header.Set(csrfHeader, token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("valid form token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tab/save", strings.NewReader(csrfFormField+"="+token))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.AddCookie(cookies[0])
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tab/save", nil)
		r.AddCookie(cookies[0])
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)

	now = now.Add(20 * time.Second)
	ok, retry := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, retry)

	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok, "other keys have their own window")

	now = now.Add(40 * time.Second)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok, "a new window starts after the period")
}

func TestRateLimiter_PrunesExpiredWindows(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	now = now.Add(2 * time.Minute)
	rl.Allow("c")

	assert.Len(t, rl.windows, 1)
	assert.Contains(t, rl.windows, "c")
}

func TestRateLimitExport(t *testing.T) {
	h := RateLimitExport()(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	serve := func(project string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/admin/export?projectId="+project, nil)
		r.Header.Set("X-Forwarded-For", "9.9.9.9")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	for range 10 {
		require.Equal(t, http.StatusOK, serve("p1").Code)
	}
	w := serve("p1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve("p2").Code)
}

func TestRequestLogging_RecordsStatus(t *testing.T) {
	var rec *statusRecorder
	h := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec = w.(*statusRecorder)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tab", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, http.StatusTeapot, rec.status)
	assert.Equal(t, 5, rec.bytes)
}

func TestRequestLogging_SkipsHealth(t *testing.T) {
	var wrapped bool
	h := RequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, wrapped = w.(*statusRecorder)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.False(t, wrapped)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", getClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(r))

	r.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getClientIP(r))

	ipv6 := httptest.NewRequest(http.MethodGet, "/", nil)
	ipv6.RemoteAddr = "[::1]:8090"
	assert.Equal(t, "::1", getClientIP(ipv6))
}
