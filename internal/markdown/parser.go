package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.abhg.dev/goldmark/frontmatter"
)

// Meta is the front matter of a help article.
type Meta struct {
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
}

// Document is a converted help article.
type Document struct {
	Meta Meta
	HTML []byte
}

type Parser struct {
	md goldmark.Markdown
}

// NewParser returns a GFM parser with front matter support. Raw HTML in the
// source is omitted from the output, which is embedded in the admin page as is.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				&frontmatter.Extender{},
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

func (p *Parser) Parse(source []byte) (*Document, error) {
	pctx := parser.NewContext()

	var buf bytes.Buffer
	if err := p.md.Convert(source, &buf, parser.WithContext(pctx)); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	doc := &Document{HTML: buf.Bytes()}
	if fm := frontmatter.Get(pctx); fm != nil {
		if err := fm.Decode(&doc.Meta); err != nil {
			return nil, fmt.Errorf("invalid front matter: %w", err)
		}
	}
	return doc, nil
}
