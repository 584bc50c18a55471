package pubcard

import (
	"context"
	"fmt"
	"os"

	"github.com/eringen/pubcard/socialimg"
)

// RenderCard draws the social card for slug straight from the articles in
// dir, without a database or a server. It goes through the same service,
// and therefore the same lookup rules, as the HTTP endpoint.
func RenderCard(ctx context.Context, cfg SiteConfig, dir, slug string) (socialimg.Image, error) {
	cfg.setDefaults()

	articles, err := LoadDir(os.DirFS(dir))
	if err != nil {
		return socialimg.Image{}, fmt.Errorf("pubcard: load %s: %w", dir, err)
	}
	assets, err := socialimg.LoadAssets()
	if err != nil {
		return socialimg.Image{}, fmt.Errorf("pubcard: %w", err)
	}
	svc := socialimg.NewService(
		NewArticleIndex(articles),
		socialimg.NewCompositor(assets, socialimg.Attribution{Author: cfg.Author, SiteURL: cfg.URL}),
		socialimg.NewCache(1),
	)
	return svc.Handle(ctx, slug)
}
