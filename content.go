package pubcard

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/eringen/pubcard/socialimg"
)

// articlePattern selects the markdown files of a content directory.
const articlePattern = "**/*.md"

// frontMatter is the YAML header of an article file.
type frontMatter struct {
	Title    string `yaml:"title"`
	Datetime string `yaml:"datetime"`
	Summary  string `yaml:"summary"`
	Draft    bool   `yaml:"draft"`
}

// ParseArticle parses a markdown file with a YAML front matter block.
// The slug is the file name without its extension.
func ParseArticle(name string, data []byte) (Article, error) {
	header, ok := frontMatterBlock(data)
	if !ok {
		return Article{}, fmt.Errorf("%s: missing front matter delimiters", name)
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return Article{}, fmt.Errorf("%s: parse front matter: %w", name, err)
	}
	if strings.TrimSpace(fm.Title) == "" {
		return Article{}, fmt.Errorf("%s: missing required field: title", name)
	}
	published, err := parseDatetime(fm.Datetime)
	if err != nil {
		return Article{}, fmt.Errorf("%s: datetime: %w", name, err)
	}

	return Article{
		Slug:        strings.TrimSuffix(path.Base(name), path.Ext(name)),
		Title:       norm.NFC.String(strings.TrimSpace(fm.Title)),
		Summary:     strings.TrimSpace(fm.Summary),
		PublishedAt: published,
		Draft:       fm.Draft,
	}, nil
}

// frontMatterBlock returns the lines between an opening "---" line at the
// top of data and the next line that is exactly "---".
func frontMatterBlock(data []byte) ([]byte, bool) {
	data = bytes.TrimLeft(data, "\ufeff\r\n\t ")
	first, rest, found := bytes.Cut(data, []byte("\n"))
	if !found || string(bytes.TrimSpace(first)) != "---" {
		return nil, false
	}
	for i := 0; i < len(rest); {
		line := rest[i:]
		next := len(rest)
		if j := bytes.IndexByte(line, '\n'); j >= 0 {
			line = line[:j]
			next = i + j + 1
		}
		if string(bytes.TrimSpace(line)) == "---" {
			return rest[:i], true
		}
		i = next
	}
	return nil, false
}

// parseDatetime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing required field")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// LoadDir parses every article file under fsys. Files whose base name starts
// with "." or "_" are skipped.
func LoadDir(fsys fs.FS) ([]Article, error) {
	matches, err := doublestar.Glob(fsys, articlePattern)
	if err != nil {
		return nil, err
	}
	var articles []Article
	seen := make(map[string]string)
	for _, name := range matches {
		if base := path.Base(name); strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
			continue
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		a, err := ParseArticle(name, data)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[a.Slug]; ok {
			return nil, fmt.Errorf("%s: slug %q already used by %s", name, a.Slug, prev)
		}
		seen[a.Slug] = name
		articles = append(articles, a)
	}
	return articles, nil
}

// SyncResult summarizes a SyncDir run.
type SyncResult struct {
	Saved   int
	Deleted int
}

// SyncDir makes the store mirror the articles found in dir: every file is
// upserted and articles without a file are deleted.
func SyncDir(s *Store, dir string) (SyncResult, error) {
	articles, err := LoadDir(os.DirFS(dir))
	if err != nil {
		return SyncResult{}, fmt.Errorf("pubcard: load %s: %w", dir, err)
	}
	existing, err := s.ListAllArticles()
	if err != nil {
		return SyncResult{}, err
	}

	var res SyncResult
	keep := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		if err := s.SaveArticle(a); err != nil {
			return res, fmt.Errorf("pubcard: save %s: %w", a.Slug, err)
		}
		keep[a.Slug] = struct{}{}
		res.Saved++
	}
	for _, a := range existing {
		if _, ok := keep[a.Slug]; ok {
			continue
		}
		if err := s.DeleteArticle(a.Slug); err != nil {
			return res, fmt.Errorf("pubcard: delete %s: %w", a.Slug, err)
		}
		res.Deleted++
	}
	return res, nil
}

// ArticleIndex is a fixed, in-memory ArticleLookup. The CLI uses it to
// render cards straight from a content directory.
type ArticleIndex map[string]Article

// NewArticleIndex indexes the published articles by slug.
func NewArticleIndex(articles []Article) ArticleIndex {
	idx := make(ArticleIndex, len(articles))
	for _, a := range articles {
		if !a.Draft {
			idx[a.Slug] = a
		}
	}
	return idx
}

// ArticleBySlug implements socialimg.ArticleLookup.
func (idx ArticleIndex) ArticleBySlug(_ context.Context, slug string) (socialimg.ArticleMeta, error) {
	a, ok := idx[slug]
	if !ok {
		return socialimg.ArticleMeta{}, ErrNotFound
	}
	return a.Meta(), nil
}
