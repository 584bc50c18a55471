package pubcard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/eringen/pubcard/scaffold"
	"github.com/eringen/pubcard/socialimg"
)

const helloWorldMD = `---
title: "Astro: writing static websites like it's 2023"
datetime: 2023-01-01T00:00:00+01:00
summary: Static sites are back.
---

# Hello

Body text.
`

func TestParseArticle(t *testing.T) {
	got, err := ParseArticle("posts/hello-world.md", []byte(helloWorldMD))
	if err != nil {
		t.Fatalf("ParseArticle failed: %v", err)
	}
	if got.Slug != "hello-world" {
		t.Errorf("Slug = %q, want %q", got.Slug, "hello-world")
	}
	if got.Title != "Astro: writing static websites like it's 2023" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Summary != "Static sites are back." {
		t.Errorf("Summary = %q", got.Summary)
	}
	want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.FixedZone("", 3600))
	if !got.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, want)
	}
}

func TestParseArticleErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no front matter", "# Just markdown", "missing front matter"},
		{"no title", "---\ndatetime: 2023-01-01\n---\nbody", "title"},
		{"no datetime", "---\ntitle: Hi\n---\nbody", "datetime"},
		{"bad datetime", "---\ntitle: Hi\ndatetime: yesterday\n---\nbody", "datetime"},
		{"bad yaml", "---\ntitle: [unclosed\n---\nbody", "front matter"},
		{"unclosed block", "---\ntitle: Hi\ndatetime: 2023-01-01\n", "missing front matter"},
		{"opening not on first line", "intro\n---\ntitle: Hi\ndatetime: 2023-01-01\n---\n", "missing front matter"},
	}
	for _, tt := range tests {
		_, err := ParseArticle("x.md", []byte(tt.input))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q should mention %q", tt.name, err, tt.want)
		}
	}
}

func TestParseArticlePlainDate(t *testing.T) {
	got, err := ParseArticle("d.md", []byte("---\ntitle: Dated\ndatetime: 2024-03-05\ndraft: true\n---\n"))
	if err != nil {
		t.Fatalf("ParseArticle failed: %v", err)
	}
	if got.PublishedAt.Format("2006-01-02") != "2024-03-05" {
		t.Errorf("PublishedAt = %v", got.PublishedAt)
	}
	if !got.Draft {
		t.Error("Draft should be true")
	}
}

func TestParseArticleDashesInValues(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
	}{
		{
			"title after datetime",
			"---\ndatetime: 2023-01-01T00:00:00Z\ntitle: Before---after\n---\nbody\n",
			"Before---after",
		},
		{
			"title before datetime",
			"---\ntitle: A --- B\ndatetime: 2023-01-01\n---\n",
			"A --- B",
		},
		{
			"dashes in body",
			"---\ntitle: Rules\ndatetime: 2023-01-01\n---\nabove\n---\nbelow\n",
			"Rules",
		},
		{
			"crlf and padded delimiter",
			"---\r\ntitle: Windows\r\ndatetime: 2023-01-01\r\n---  \r\nbody\r\n",
			"Windows",
		},
	}
	for _, tt := range tests {
		got, err := ParseArticle("x.md", []byte(tt.input))
		if err != nil {
			t.Errorf("%s: ParseArticle failed: %v", tt.name, err)
			continue
		}
		if got.Title != tt.wantTitle {
			t.Errorf("%s: Title = %q, want %q", tt.name, got.Title, tt.wantTitle)
		}
	}
}

func TestLoadDir(t *testing.T) {
	fsys := fstest.MapFS{
		"hello-world.md":      {Data: []byte(helloWorldMD)},
		"2024/nested-post.md": {Data: []byte("---\ntitle: Nested\ndatetime: 2024-01-01\n---\n")},
		"_template.md":        {Data: []byte("not an article")},
		".hidden.md":          {Data: []byte("not an article")},
		"notes.txt":           {Data: []byte("ignored")},
	}
	articles, err := LoadDir(fsys)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	slugs := map[string]bool{}
	for _, a := range articles {
		slugs[a.Slug] = true
	}
	if len(articles) != 2 || !slugs["hello-world"] || !slugs["nested-post"] {
		t.Errorf("slugs = %v, want hello-world and nested-post", slugs)
	}
}

func TestLoadDirDuplicateSlug(t *testing.T) {
	fsys := fstest.MapFS{
		"a/post.md": {Data: []byte("---\ntitle: A\ndatetime: 2024-01-01\n---\n")},
		"b/post.md": {Data: []byte("---\ntitle: B\ndatetime: 2024-01-01\n---\n")},
	}
	if _, err := LoadDir(fsys); err == nil {
		t.Error("expected an error for duplicate slugs")
	}
}

func writeArticle(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSyncDir(t *testing.T) {
	s := setupTestStore(t)
	dir := t.TempDir()
	writeArticle(t, dir, "hello-world.md", helloWorldMD)
	writeArticle(t, dir, "second.md", "---\ntitle: Second\ndatetime: 2024-01-01\n---\n")

	res, err := SyncDir(s, dir)
	if err != nil {
		t.Fatalf("SyncDir failed: %v", err)
	}
	if res.Saved != 2 || res.Deleted != 0 {
		t.Errorf("SyncDir = %+v, want 2 saved", res)
	}

	if err := os.Remove(filepath.Join(dir, "second.md")); err != nil {
		t.Fatal(err)
	}
	res, err = SyncDir(s, dir)
	if err != nil {
		t.Fatalf("SyncDir failed: %v", err)
	}
	if res.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", res.Deleted)
	}
	if _, err := s.GetArticle("second"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second should be gone, got %v", err)
	}
}

func TestArticleIndex(t *testing.T) {
	idx := NewArticleIndex([]Article{
		{Slug: "live", Title: "Live", PublishedAt: date(2024, 1, 1)},
		{Slug: "draft", Title: "Draft", PublishedAt: date(2024, 1, 1), Draft: true},
	})

	meta, err := idx.ArticleBySlug(context.Background(), "live")
	if err != nil {
		t.Fatalf("ArticleBySlug failed: %v", err)
	}
	if meta.Title != "Live" {
		t.Errorf("Title = %q, want Live", meta.Title)
	}
	if _, err := idx.ArticleBySlug(context.Background(), "draft"); !errors.Is(err, socialimg.ErrNotFound) {
		t.Errorf("drafts should not resolve, got %v", err)
	}
}

func TestScaffoldedSiteImports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "field-notes")
	if _, err := scaffold.Write(dir, scaffold.NewData(dir, "Jane Doe")); err != nil {
		t.Fatalf("scaffold.Write failed: %v", err)
	}

	cfg, err := LoadConfig(filepath.Join(dir, "pubcard.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.CardRateLimit != 60 {
		t.Errorf("CardRateLimit = %d, want 60", cfg.CardRateLimit)
	}

	articles, err := LoadDir(os.DirFS(filepath.Join(dir, cfg.ContentDir)))
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Hello from Field Notes" {
		t.Errorf("articles = %+v", articles)
	}
}
