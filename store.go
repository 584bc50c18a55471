package pubcard

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eringen/pubcard/socialimg"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested article does not exist.
var ErrNotFound = socialimg.ErrNotFound

// Store wraps a SQLite database holding the article index.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the watcher import while requests read; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    published_at TEXT NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    draft INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);
`)
	return err
}

const articleColumns = `slug, title, published_at, summary, draft`

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (Article, error) {
	var a Article
	var publishedAt string
	var draft int
	if err := row.Scan(&a.Slug, &a.Title, &publishedAt, &a.Summary, &draft); err != nil {
		return Article{}, err
	}
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return Article{}, fmt.Errorf("article %s: published_at: %w", a.Slug, err)
	}
	a.PublishedAt = t
	a.Draft = draft == 1
	return a, nil
}

func (s *Store) queryArticles(query string, args ...any) ([]Article, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListArticles returns published articles, newest first.
func (s *Store) ListArticles() ([]Article, error) {
	return s.queryArticles(`SELECT ` + articleColumns + ` FROM articles WHERE draft = 0 ORDER BY published_at DESC`)
}

// ListAllArticles returns every article including drafts, newest first.
func (s *Store) ListAllArticles() ([]Article, error) {
	return s.queryArticles(`SELECT ` + articleColumns + ` FROM articles ORDER BY published_at DESC`)
}

// GetArticle returns a single published article by slug.
func (s *Store) GetArticle(slug string) (Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = ? AND draft = 0`, slug)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	return a, err
}

// SaveArticle upserts an article.
func (s *Store) SaveArticle(a Article) error {
	draft := 0
	if a.Draft {
		draft = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO articles (`+articleColumns+`) VALUES (?, ?, ?, ?, ?)`,
		a.Slug, a.Title, a.PublishedAt.Format(time.RFC3339), a.Summary, draft)
	return err
}

// DeleteArticle removes an article by slug.
func (s *Store) DeleteArticle(slug string) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE slug = ?`, slug)
	return err
}
