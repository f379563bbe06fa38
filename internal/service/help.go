package service

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/keesschollaart/sprintgoal/internal/markdown"
	"github.com/keesschollaart/sprintgoal/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HelpService renders the markdown help of the admin page.
type HelpService struct {
	parser  *markdown.Parser
	content fs.FS
	dir     string

	once  sync.Once
	pages []*model.HelpPage
	err   error
}

func NewHelpService(content fs.FS, dir string) *HelpService {
	return &HelpService{
		parser:  markdown.NewParser(),
		content: content,
		dir:     dir,
	}
}

// Pages returns the help pages ordered by their front matter order, then title.
func (s *HelpService) Pages() ([]*model.HelpPage, error) {
	s.once.Do(func() {
		s.pages, s.err = s.load()
	})
	return s.pages, s.err
}

func (s *HelpService) load() ([]*model.HelpPage, error) {
	entries, err := fs.ReadDir(s.content, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read help content: %w", err)
	}

	var pages []*model.HelpPage
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		source, err := fs.ReadFile(s.content, path.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		doc, err := s.parser.Parse(source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}

		slug := strings.TrimSuffix(entry.Name(), ".md")
		page := &model.HelpPage{
			Slug:        slug,
			Title:       doc.Meta.Title,
			Order:       doc.Meta.Order,
			HTMLContent: string(doc.HTML),
		}
		if page.Title == "" {
			page.Title = titleFromSlug(slug)
		}

		pages = append(pages, page)
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Order != pages[j].Order {
			return pages[i].Order < pages[j].Order
		}
		return pages[i].Title < pages[j].Title
	})
	return pages, nil
}

func titleFromSlug(slug string) string {
	slug = strings.ReplaceAll(slug, "-", " ")
	slug = strings.ReplaceAll(slug, "_", " ")

	words := strings.Fields(slug)
	caser := cases.Title(language.English)
	for i, word := range words {
		words[i] = caser.String(word)
	}
	return strings.Join(words, " ")
}
