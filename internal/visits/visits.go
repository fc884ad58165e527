// Package visits keeps a privacy-preserving log of page visits in SQLite.
// Remote addresses are never stored; only a salted, truncated SHA-256 of
// the host part is kept, enough to count unique visitors.
package visits

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrClosed is returned by every method called after Close.
	ErrClosed = errors.New("visits: store closed")
	// ErrNoVisits is returned by Last on an empty log.
	ErrNoVisits = errors.New("visits: no visits recorded")
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS visits (
		id        TEXT PRIMARY KEY,
		transport TEXT NOT NULL,
		addr_hash TEXT NOT NULL,
		username  TEXT NOT NULL DEFAULT '',
		at        INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS visits_at ON visits (at)`,
}

// Visit is one recorded page view.
type Visit struct {
	ID        string
	Transport string // "ssh", "web" or "local"
	Addr      string // Remote address; hashed on Record, empty when read back
	AddrHash  string
	User      string
	At        time.Time
}

// Store is a visit log backed by a SQLite database file.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	salt string
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSalt sets the salt mixed into address hashes.
func WithSalt(salt string) Option {
	return func(s *Store) { s.salt = salt }
}

// WithClock sets the clock used for visit times and pruning.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the visit log at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open visit log: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure visit log: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create visit log schema: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// HashAddr returns the stored form of a remote address: the first 16 hex
// digits of SHA-256(host + salt). Ports are dropped so reconnects from the
// same host hash the same.
func (s *Store) HashAddr(addr string) string {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	sum := sha256.Sum256([]byte(host + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Record stores v and returns it with its ID, time and hash filled in.
func (s *Store) Record(ctx context.Context, v Visit) (Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return Visit{}, ErrClosed
	}

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.At.IsZero() {
		v.At = s.now()
	}
	v.AddrHash = s.HashAddr(v.Addr)
	v.Addr = ""

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (id, transport, addr_hash, username, at) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.Transport, v.AddrHash, v.User, v.At.UnixMilli())
	if err != nil {
		return Visit{}, fmt.Errorf("record visit: %w", err)
	}
	return v, nil
}

// Count returns the total number of visits.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.scalar(ctx, `SELECT COUNT(*) FROM visits`)
}

// Unique returns the number of distinct visitor hashes.
func (s *Store) Unique(ctx context.Context) (int64, error) {
	return s.scalar(ctx, `SELECT COUNT(DISTINCT addr_hash) FROM visits`)
}

func (s *Store) scalar(ctx context.Context, query string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("query visit log: %w", err)
	}
	return n, nil
}

// Last returns the most recent visit, or ErrNoVisits.
func (s *Store) Last(ctx context.Context) (Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return Visit{}, ErrClosed
	}

	var v Visit
	var at int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, transport, addr_hash, username, at FROM visits ORDER BY at DESC, rowid DESC LIMIT 1`,
	).Scan(&v.ID, &v.Transport, &v.AddrHash, &v.User, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return Visit{}, ErrNoVisits
	}
	if err != nil {
		return Visit{}, fmt.Errorf("query last visit: %w", err)
	}
	v.At = time.UnixMilli(at)
	return v, nil
}

// Prune deletes visits older than maxAge and returns how many it removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}

	cutoff := s.now().Add(-maxAge).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune visit log: %w", err)
	}
	return res.RowsAffected()
}

// Total returns Count with a short timeout, or -1 if the log cannot be
// read. It fits page footers, which treat a negative count as unknown.
func (s *Store) Total() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := s.Count(ctx)
	if err != nil {
		return -1
	}
	return n
}

// Close closes the database. Later calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}
