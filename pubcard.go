// Package pubcard is the serving side of a markdown blog: it indexes
// articles from a content directory into SQLite and publishes a social
// preview card, a sitemap and an RSS feed for every article.
//
// The cards themselves are drawn by the socialimg package; pubcard wires it
// to the article store, the HTTP server, logging and configuration.
package pubcard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubcard/socialimg"
)

// App is the central pubcard application. It wires together the store,
// caches, card service, handlers and middleware.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Articles *ArticleCache
	Cards    *socialimg.Service
	Views    ViewFuncs
	Logger   *slog.Logger

	attribution  socialimg.Attribution
	watcher      *ContentWatcher
	cardLimiter  *IPLimiter
	logCloser    io.Closer
	customRoutes []func(*App)
}

// New creates a new pubcard App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  defaultViews(),
		attribution: socialimg.Attribution{
			Author:  cfg.Author,
			SiteURL: cfg.URL,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store, imports the content directory, loads the card
// assets and registers middleware and routes. Start calls it; tests call it
// directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.Logger == nil {
		a.Logger, a.logCloser = NewLogger(a.Config)
	}

	assets, err := socialimg.LoadAssets()
	if err != nil {
		return fmt.Errorf("pubcard: %w", err)
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("pubcard: init store: %w", err)
	}
	a.Store = store

	if _, err := os.Stat(a.Config.ContentDir); err == nil {
		res, err := SyncDir(a.Store, a.Config.ContentDir)
		if err != nil {
			return err
		}
		a.Logger.Info("content imported", "dir", a.Config.ContentDir, "saved", res.Saved, "deleted", res.Deleted)
	} else {
		a.Logger.Warn("content directory not found, serving the existing index", "dir", a.Config.ContentDir)
	}

	a.Articles = NewArticleCache(a.Store, a.Config.ArticleCacheTTL)
	a.Cards = socialimg.NewService(
		a.Articles,
		socialimg.NewCompositor(assets, a.attribution),
		socialimg.NewCache(socialimg.DefaultCapacity),
	)

	if a.Config.WatchContent {
		w, err := NewContentWatcher(a.Config.ContentDir, a.Store, a.Articles, a.Logger)
		if err != nil {
			return err
		}
		a.watcher = w
		w.Start()
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and runs the HTTP server until it stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("listening", "addr", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	var cardMiddleware []echo.MiddlewareFunc
	if a.Config.CardRateLimit > 0 {
		a.cardLimiter = NewIPLimiter(a.Config.CardRateLimit, time.Minute)
		cardMiddleware = append(cardMiddleware, a.cardLimiter.Middleware)
	}
	socialimg.NewHandler(a.Cards).RegisterRoutes(e, cardMiddleware...)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.cardLimiter != nil {
		a.cardLimiter.Close()
	}
	if a.Cards != nil && a.Logger != nil {
		st := a.Cards.Cache().Stats()
		a.Logger.Info("social card cache",
			"entries", st.Entries, "hits", st.Hits, "misses", st.Misses, "evictions", st.Evictions)
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return nil
}
