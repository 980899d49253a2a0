// Package store persists scraped article metadata in SQLite so repeated
// report loads within the cache window do not re-crawl the site.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lesleyera/cncreport/internal/scrape"
)

// Store wraps a SQLite database holding cached scrape results.
type Store struct {
	conn *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

// Open creates or opens the cache database at the given path.
func Open(dbPath string, ttl time.Duration) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{conn: conn, path: dbPath, ttl: ttl, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func migrate(conn *sql.DB) error {
	_, err := conn.Exec(`
CREATE TABLE IF NOT EXISTS scraped_articles (
    path TEXT PRIMARY KEY,
    author TEXT NOT NULL,
    likes INTEGER NOT NULL DEFAULT 0,
    comments INTEGER NOT NULL DEFAULT 0,
    category TEXT NOT NULL,
    subcategory TEXT NOT NULL,
    published_at TEXT NOT NULL,
    scraped_at TEXT NOT NULL
);`)
	return err
}

// Get returns the cached metadata for a path if present and fresh.
func (s *Store) Get(path string) (scrape.Metadata, bool) {
	var md scrape.Metadata
	var scrapedAt string
	err := s.conn.QueryRow(
		`SELECT author, likes, comments, category, subcategory, published_at, scraped_at
		FROM scraped_articles WHERE path = ?`, path,
	).Scan(&md.Author, &md.Likes, &md.Comments, &md.Category, &md.Subcategory, &md.PublishedAt, &scrapedAt)
	if err != nil {
		return scrape.Metadata{}, false
	}

	at, err := time.Parse(time.RFC3339, scrapedAt)
	if err != nil || s.now().Sub(at) > s.ttl {
		return scrape.Metadata{}, false
	}
	return md, true
}

// Put stores metadata for a path, replacing any previous entry.
func (s *Store) Put(path string, md scrape.Metadata) error {
	_, err := s.conn.Exec(
		`INSERT INTO scraped_articles (path, author, likes, comments, category, subcategory, published_at, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			author=excluded.author, likes=excluded.likes, comments=excluded.comments,
			category=excluded.category, subcategory=excluded.subcategory,
			published_at=excluded.published_at, scraped_at=excluded.scraped_at`,
		path, md.Author, md.Likes, md.Comments, md.Category, md.Subcategory, md.PublishedAt,
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("caching scrape result: %w", err)
	}
	return nil
}

// Purge removes entries older than the TTL. Returns the number removed.
func (s *Store) Purge() (int64, error) {
	cutoff := s.now().UTC().Add(-s.ttl).Format(time.RFC3339)
	res, err := s.conn.Exec(`DELETE FROM scraped_articles WHERE scraped_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached entries, fresh or stale.
func (s *Store) Count() (int, error) {
	var n int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM scraped_articles`).Scan(&n)
	return n, err
}
