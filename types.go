package pubcard

import (
	"time"

	"github.com/eringen/pubcard/socialimg"
)

// Article is the content type indexed in SQLite. Its body stays in the
// markdown file it was imported from.
type Article struct {
	Slug        string
	Title       string
	Summary     string
	PublishedAt time.Time
	Draft       bool
}

// Link returns the site-relative path of the article page.
func (a Article) Link() string {
	return "/articles/" + a.Slug
}

// Meta returns the fields a social card is drawn from.
func (a Article) Meta() socialimg.ArticleMeta {
	return socialimg.ArticleMeta{Slug: a.Slug, Title: a.Title, PublishedAt: a.PublishedAt}
}
