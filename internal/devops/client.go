// Package devops is a client for the host's REST APIs: teams, team
// iterations and the extension data documents of the installed extension.
package devops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const apiVersion = "7.1"

// APIError is a non-2xx response from the host.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("devops api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("devops api: status %d: %s", e.StatusCode, e.Message)
}

type Options struct {
	OrgURL      string
	ExtMgmtURL  string
	Token       string // Optional: bearer token (PAT exchange, Entra or app token)
	Publisher   string
	ExtensionID string
	Timeout     time.Duration
	HTTPClient  *http.Client // Optional: base client, mainly for tests
}

type Client struct {
	orgURL     string
	extMgmtURL string
	publisher  string
	extension  string
	http       *http.Client
}

func New(opts Options) *Client {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}

	httpClient := &http.Client{Transport: base.Transport, Timeout: base.Timeout}
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
	}
	if opts.Timeout > 0 {
		httpClient.Timeout = opts.Timeout
	}

	extMgmtURL := opts.ExtMgmtURL
	if extMgmtURL == "" {
		extMgmtURL = opts.OrgURL
	}

	return &Client{
		orgURL:     strings.TrimSuffix(opts.OrgURL, "/"),
		extMgmtURL: strings.TrimSuffix(extMgmtURL, "/"),
		publisher:  opts.Publisher,
		extension:  opts.ExtensionID,
		http:       httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("devops api call",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func withVersion(base string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", apiVersion)
	return base + "?" + query.Encode()
}
