package cookie

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

// TTL bounds how stale a cached goal can be. It is fixed on purpose.
const TTL = 24 * time.Hour

const testKey = "testcookie"

// Store is a best-effort string cache. Missing values are reported with
// ok=false, never as errors.
type Store interface {
	Get(key string) (value string, ok bool)
	Set(key, value string)
	Available() bool
}

// Options scope the cookies of an HTTPStore.
type Options struct {
	Domain string
	// Secure marks cookies Secure and SameSite=None so they survive the
	// host's cross-site iframe. Plain http development hosts use Lax.
	Secure bool
}

// HTTPStore reads cookies from the incoming request and writes them to the
// response, scoped to the configured domain and the root path. Values set
// during the request are visible to later Gets of the same request.
type HTTPStore struct {
	w    http.ResponseWriter
	r    *http.Request
	opts Options
	now  func() time.Time

	mu       sync.Mutex
	written  map[string]string
	returned bool // the request carried one of our cookies
}

func NewHTTPStore(w http.ResponseWriter, r *http.Request, opts Options) *HTTPStore {
	return &HTTPStore{
		w:       w,
		r:       r,
		opts:    opts,
		now:     time.Now,
		written: make(map[string]string),
	}
}

func (s *HTTPStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.written[key]; ok {
		return v, true
	}

	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}
	s.returned = true

	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value, true
	}
	return v, true
}

func (s *HTTPStore) Set(key, value string) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Domain:   s.opts.Domain,
		Path:     "/",
		Expires:  s.now().Add(TTL),
		Secure:   s.opts.Secure,
		SameSite: sameSite,
	})

	s.mu.Lock()
	s.written[key] = value
	s.mu.Unlock()
}

// Available refreshes the test cookie and reports whether the browser
// returned it or any cookie read through this store. A request
// without cookies proves nothing, so the cookie warning of the tab page is
// decided by the page itself.
func (s *HTTPStore) Available() bool {
	s.Set(testKey, "true")
	if c, err := s.r.Cookie(testKey); err == nil && c.Value == "true" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.returned
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu          sync.RWMutex
	values      map[string]string
	unavailable bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Disable makes the store behave like a browser that rejects cookies.
func (s *MemoryStore) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = true
	s.values = make(map[string]string)
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return
	}
	s.values[key] = value
}

func (s *MemoryStore) Available() bool {
	s.Set(testKey, "true")
	v, ok := s.Get(testKey)
	return ok && v == "true"
}

// Keys lists what is currently stored.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
