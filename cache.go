package pubcard

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/pubcard/socialimg"
)

// ArticleCache is an in-memory, TTL-bound copy of the published article
// index. It is the ArticleLookup behind the social card service.
type ArticleCache struct {
	mu       sync.RWMutex
	articles []Article
	bySlug   map[string]Article
	fetched  time.Time
	ttl      time.Duration
	store    *Store
}

// NewArticleCache creates an ArticleCache backed by the given Store.
func NewArticleCache(s *Store, ttl time.Duration) *ArticleCache {
	return &ArticleCache{store: s, ttl: ttl}
}

func (c *ArticleCache) valid() bool {
	return c.articles != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ArticleCache) Invalidate() {
	c.mu.Lock()
	c.articles = nil
	c.bySlug = nil
	c.mu.Unlock()
}

func (c *ArticleCache) load() error {
	if c.valid() {
		return nil
	}
	articles, err := c.store.ListArticles()
	if err != nil {
		return err
	}
	if articles == nil {
		articles = []Article{}
	}
	bySlug := make(map[string]Article, len(articles))
	for _, a := range articles {
		bySlug[a.Slug] = a
	}
	c.articles = articles
	c.bySlug = bySlug
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached index after making sure it is fresh.
// It tries a read lock first and only takes the write lock to reload.
func (c *ArticleCache) ensureLoaded() ([]Article, map[string]Article, error) {
	c.mu.RLock()
	if c.valid() {
		articles, bySlug := c.articles, c.bySlug
		c.mu.RUnlock()
		return articles, bySlug, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.articles, c.bySlug, nil
}

// ListArticles returns published articles, newest first.
func (c *ArticleCache) ListArticles() ([]Article, error) {
	articles, _, err := c.ensureLoaded()
	return articles, err
}

// GetArticle returns a single published article by slug.
func (c *ArticleCache) GetArticle(slug string) (Article, error) {
	_, bySlug, err := c.ensureLoaded()
	if err != nil {
		return Article{}, err
	}
	a, ok := bySlug[slug]
	if !ok {
		return Article{}, ErrNotFound
	}
	return a, nil
}

// ArticleBySlug implements socialimg.ArticleLookup.
func (c *ArticleCache) ArticleBySlug(_ context.Context, slug string) (socialimg.ArticleMeta, error) {
	a, err := c.GetArticle(slug)
	if err != nil {
		return socialimg.ArticleMeta{}, err
	}
	return a.Meta(), nil
}
