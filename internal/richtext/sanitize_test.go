package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"keeps editor markup", "<div>Release <b>v2</b><br></div>", "<div>Release <b>v2</b><br></div>"},
		{"drops attributes", `<p style="color:red" onclick="x()">hi</p>`, "<p>hi</p>"},
		{"drops script", "<p>a</p><script>alert(1)</script><p>b</p>", "<p>a</p><p>b</p>"},
		{"unwraps unknown elements", "<p><font>text</font></p>", "<p>text</p>"},
		{"escapes text", "<p>1 &lt; 2</p>", "<p>1 &lt; 2</p>"},
		{"keeps safe links", `<a href="https://example.com">x</a>`, `<a href="https://example.com" rel="noopener noreferrer" target="_blank">x</a>`},
		{"drops javascript links", `<a href="javascript:alert(1)">x</a>`, "<a>x</a>"},
		{"drops iframes", `<iframe src="https://evil.example.com"></iframe>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_PlainTextUnchanged(t *testing.T) {
	in := `<div>Release <b>v2</b></div><img src=x onerror="alert(1)"><div>to production</div>`
	assert.Equal(t, PlainText(in), PlainText(Sanitize(in)))
}
