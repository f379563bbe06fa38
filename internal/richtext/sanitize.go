package richtext

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// allowedAtoms are the elements the details editor produces. Everything
// else is unwrapped to its text.
var allowedAtoms = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.Span:       true,
	atom.Br:         true,
	atom.B:          true,
	atom.Strong:     true,
	atom.I:          true,
	atom.Em:         true,
	atom.U:          true,
	atom.S:          true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Li:         true,
	atom.A:          true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
	atom.Code:       true,
}

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// Sanitize reduces an HTML fragment to the allowed elements. Attributes are
// dropped except for safe link targets; script and style content is removed.
func Sanitize(fragment string) string {
	if fragment == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.WriteString(html.EscapeString(string(z.Text())))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom == atom.Script || tok.DataAtom == atom.Style {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 || !allowedAtoms[tok.DataAtom] {
				continue
			}
			writeStartTag(&b, tok)
		case html.EndTagToken:
			tok := z.Token()
			if (tok.DataAtom == atom.Script || tok.DataAtom == atom.Style) && skip > 0 {
				skip--
				continue
			}
			if skip > 0 || !allowedAtoms[tok.DataAtom] || tok.DataAtom == atom.Br {
				continue
			}
			b.WriteString("</" + tok.DataAtom.String() + ">")
		}
	}
}

func writeStartTag(b *strings.Builder, tok html.Token) {
	b.WriteString("<" + tok.DataAtom.String())
	if tok.DataAtom == atom.A {
		for _, attr := range tok.Attr {
			if attr.Key == "href" && safeHref(attr.Val) {
				b.WriteString(` href="` + html.EscapeString(attr.Val) + `" rel="noopener noreferrer" target="_blank"`)
				break
			}
		}
	}
	b.WriteString(">")
}

func safeHref(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return allowedSchemes[strings.ToLower(u.Scheme)]
}
