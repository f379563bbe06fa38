package devops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/keesschollaart/sprintgoal/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	extensionDataVersion = "7.1-preview.1"

	// settingsCollection is where the host keeps plain key/value settings
	settingsCollection = "$settings"

	maxParallelGets = 8
)

type document struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
	Etag  int             `json:"__etag"`
}

func (c *Client) documentsURL() string {
	return c.extMgmtURL + "/_apis/ExtensionManagement/InstalledExtensions/" +
		url.PathEscape(c.publisher) + "/" + url.PathEscape(c.extension) +
		"/Data/Scopes/Default/Current/Collections/" + url.PathEscape(settingsCollection) + "/Documents"
}

func documentVersion() url.Values {
	return url.Values{"api-version": {extensionDataVersion}}
}

// Value reads one settings document.
func (c *Client) Value(ctx context.Context, key string) (json.RawMessage, error) {
	rawURL := c.documentsURL() + "/" + url.PathEscape(key) + "?" + documentVersion().Encode()

	var doc document
	err := c.do(ctx, http.MethodGet, rawURL, nil, &doc)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, repository.ErrValueNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(doc.Value) == 0 || string(doc.Value) == "null" {
		return nil, repository.ErrValueNotFound
	}
	return doc.Value, nil
}

// Values reads several settings documents. The host has no bulk document
// read, so documents are fetched concurrently.
func (c *Client) Values(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	var mu sync.Mutex
	values := make(map[string]json.RawMessage, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelGets)
	for _, key := range keys {
		g.Go(func() error {
			value, err := c.Value(gctx, key)
			if errors.Is(err, repository.ErrValueNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			values[key] = value
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// SetValue overwrites a settings document. An etag of -1 disables the
// host's optimistic concurrency check.
func (c *Client) SetValue(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	body, err := json.Marshal(document{ID: key, Value: data, Etag: -1})
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	rawURL := c.documentsURL() + "?" + documentVersion().Encode()
	return c.do(ctx, http.MethodPut, rawURL, bytes.NewReader(body), nil)
}
