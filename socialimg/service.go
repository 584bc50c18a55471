// Package socialimg renders the social preview card of an article: a fixed
// 1200x600 PNG with the wrapped title, the publish date, a faded watermark
// and a footer attribution bar.
//
// Cards are expensive to draw and cheap to keep, so a Service puts a small
// LRU cache in front of the compositor.
package socialimg

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrNotFound is returned when the slug does not resolve to an article.
	ErrNotFound = errors.New("socialimg: article not found")
	// ErrAssetLoad wraps failures to decode the embedded fonts or watermark.
	ErrAssetLoad = errors.New("socialimg: load assets")
	// ErrEncoding wraps PNG serialization failures.
	ErrEncoding = errors.New("socialimg: encode png")
)

// ArticleMeta is the part of an article a card is drawn from.
type ArticleMeta struct {
	Slug        string
	Title       string
	PublishedAt time.Time
}

// ArticleLookup resolves slugs to article metadata. Implementations return
// ErrNotFound (possibly wrapped) for unknown slugs.
type ArticleLookup interface {
	ArticleBySlug(ctx context.Context, slug string) (ArticleMeta, error)
}

// Image is an encoded card ready to be written to a response.
type Image struct {
	Data        []byte
	ContentType string
}

// Service turns slugs into encoded cards.
type Service struct {
	articles   ArticleLookup
	compositor *Compositor
	cache      *Cache
	renders    *semaphore.Weighted
}

// NewService wires a lookup, a compositor and a cache together. Rendering
// runs at most GOMAXPROCS cards at a time.
func NewService(articles ArticleLookup, compositor *Compositor, cache *Cache) *Service {
	return &Service{
		articles:   articles,
		compositor: compositor,
		cache:      cache,
		renders:    semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// Handle returns the card for slug. Unknown slugs fail with ErrNotFound
// before the cache is consulted.
func (s *Service) Handle(ctx context.Context, slug string) (Image, error) {
	meta, err := s.articles.ArticleBySlug(ctx, slug)
	if err != nil {
		return Image{}, err
	}

	data, err := s.cache.GetOrCompute(slug, func() ([]byte, error) {
		return s.render(meta)
	})
	if err != nil {
		return Image{}, err
	}
	return Image{Data: data, ContentType: ContentType}, nil
}

// render draws and encodes meta. It is shared by every caller waiting on the
// same slug, so it doesn't observe any single request's context.
func (s *Service) render(meta ArticleMeta) ([]byte, error) {
	if err := s.renders.Acquire(context.Background(), 1); err != nil {
		return nil, err
	}
	defer s.renders.Release(1)

	img, err := s.compositor.Render(meta)
	if err != nil {
		return nil, err
	}
	return Encode(img)
}

// Cache returns the cache backing s.
func (s *Service) Cache() *Cache {
	return s.cache
}
