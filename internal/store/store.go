// Package store records privacy-conscious page analytics in SQLite:
// hashed visitor IPs and how often each certificate is opened.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Visit is one tracked page view.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"` // never the raw IP
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// CertificateViews counts how often a certificate overlay was opened.
type CertificateViews struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Views int64  `json:"views"`
}

type Stats struct {
	TotalVisitors    int64              `json:"total_visitors"`
	UniqueVisitors   int64              `json:"unique_visitors"`
	VisitorsToday    int64              `json:"visitors_today"`
	VisitorsThisWeek int64              `json:"visitors_this_week"`
	TotalCertViews   int64              `json:"total_certificate_views"`
	TopCertificates  []CertificateViews `json:"top_certificates"`
	RecentVisitors   []Visit            `json:"recent_visitors"`
}

// DB wraps the analytics database.
type DB struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// Open creates or opens the database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return newDB(sqlDB)
}

// OpenMemory opens an in-memory database, for tests.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Each connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	return newDB(sqlDB)
}

func newDB(sqlDB *sql.DB) (*DB, error) {
	salt, err := RandomToken()
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	d := &DB{db: sqlDB, salt: salt, now: time.Now}
	if _, err := d.db.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return d, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT,
	timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp);

CREATE TABLE IF NOT EXISTS certificate_views (
	cert_index INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	views INTEGER NOT NULL DEFAULT 0
);
`

// Close closes the underlying database.
func (d *DB) Close() error { return d.db.Close() }

// RandomToken returns 32 random bytes, hex encoded.
func RandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashIP returns a salted, truncated hash of ip. The salt lives only in
// memory, so hashes are stable per process and unlinkable across restarts.
func (d *DB) HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(ip + d.salt))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// RecordVisit stores a page view.
func (d *DB) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, d.HashIP(ip), userAgent, path, d.now().UTC())
	if err != nil {
		return fmt.Errorf("recording visit: %w", err)
	}
	return nil
}

// RecordCertificateView bumps the open count for a certificate.
func (d *DB) RecordCertificateView(ctx context.Context, index int, title string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO certificate_views (cert_index, title, views) VALUES (?, ?, 1)
		ON CONFLICT(cert_index) DO UPDATE SET views = views + 1, title = excluded.title
	`, index, title)
	if err != nil {
		return fmt.Errorf("recording certificate view: %w", err)
	}
	return nil
}

// Cleanup deletes visits older than retention and returns how many rows
// were removed.
func (d *DB) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, d.now().UTC().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("cleaning up visitors: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats aggregates everything the admin dashboard shows.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	now := d.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{startOfDay}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{now.Add(-7 * 24 * time.Hour)}},
		{&stats.TotalCertViews, `SELECT COALESCE(SUM(views), 0) FROM certificate_views`, nil},
	}
	for _, c := range counts {
		if err := d.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("querying stats: %w", err)
		}
	}

	top, err := d.TopCertificates(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.TopCertificates = top

	recent, err := d.RecentVisits(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentVisitors = recent
	return stats, nil
}

// TopCertificates returns the most opened certificates, most viewed first.
func (d *DB) TopCertificates(ctx context.Context, limit int) ([]CertificateViews, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT cert_index, title, views FROM certificate_views
		ORDER BY views DESC, cert_index ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying certificate views: %w", err)
	}
	defer rows.Close()

	var out []CertificateViews
	for rows.Next() {
		var cv CertificateViews
		if err := rows.Scan(&cv.Index, &cv.Title, &cv.Views); err != nil {
			return nil, fmt.Errorf("scanning certificate views: %w", err)
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

// RecentVisits returns the latest visits, newest first.
func (d *DB) RecentVisits(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying visitors: %w", err)
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning visitor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
