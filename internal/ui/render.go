package ui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/a-h/templ"
)

func Render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	RenderStatus(w, r, http.StatusOK, c)
}

// RenderStatus renders c with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	err := c.Render(r.Context(), w)
	if err != nil {
		slog.Error("render failed", "error", err, "path", r.URL.Path)
	}
}

// Writer writes HTML and keeps the first error, so components can write
// markup without checking every call.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup.
func (hw *Writer) Raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// Text writes escaped text.
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Attrs writes attributes in key order. Values are escaped; an empty value
// writes a boolean attribute.
func (hw *Writer) Attrs(attrs map[string]string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		hw.Raw(" " + k)
		if v := attrs[k]; v != "" {
			hw.Raw(`="` + templ.EscapeString(v) + `"`)
		}
	}
}

// Component renders a nested component into the same writer.
func (hw *Writer) Component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

func (hw *Writer) Err() error {
	return hw.err
}
