// Package history is an append-only SQLite store of observed market prices.
// Positions opened on a signal are later marked to market from this store.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultPath = "data/lineshift.db"

// ErrNoSnapshots is returned when a token has no recorded prices in the
// requested range.
var ErrNoSnapshots = errors.New("no snapshots recorded")

// Snapshot is one observed price for one token at one instant.
type Snapshot struct {
	TokenID    string
	MarketID   string
	Price      float64
	Spread     float64
	ObservedAt time.Time
	Ended      bool
}

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return errors.New("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS price_snapshots (
	token_id    TEXT    NOT NULL,
	market_id   TEXT,
	price       REAL    NOT NULL,
	spread      REAL    NOT NULL DEFAULT 0,
	observed_at INTEGER NOT NULL,
	ended       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_snapshots_token_time
	ON price_snapshots (token_id, observed_at);
`

// CreateTables ensures the snapshot table and its index exist.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// Record appends one snapshot.
func (s *Store) Record(ctx context.Context, snap Snapshot) error {
	if snap.TokenID == "" {
		return errors.New("token id is required")
	}
	observed := snap.ObservedAt
	if observed.IsZero() {
		observed = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO price_snapshots (token_id, market_id, price, spread, observed_at, ended)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.TokenID, snap.MarketID, snap.Price, snap.Spread, observed.Unix(), snap.Ended,
	)
	return err
}

// RecordBatch appends snapshots in one transaction.
func (s *Store) RecordBatch(ctx context.Context, snaps []Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO price_snapshots (token_id, market_id, price, spread, observed_at, ended)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, snap := range snaps {
		if snap.TokenID == "" {
			return errors.New("token id is required")
		}
		observed := snap.ObservedAt
		if observed.IsZero() {
			observed = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, snap.TokenID, snap.MarketID, snap.Price, snap.Spread, observed.Unix(), snap.Ended); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Latest returns the most recent snapshot for a token.
func (s *Store) Latest(ctx context.Context, tokenID string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token_id, market_id, price, spread, observed_at, ended
		 FROM price_snapshots WHERE token_id = ?
		 ORDER BY observed_at DESC, rowid DESC LIMIT 1`, tokenID)
	return scanSnapshot(row)
}

// Range returns a token's snapshots within [from, to], oldest first.
func (s *Store) Range(ctx context.Context, tokenID string, from, to time.Time) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token_id, market_id, price, spread, observed_at, ended
		 FROM price_snapshots
		 WHERE token_id = ? AND observed_at >= ? AND observed_at <= ?
		 ORDER BY observed_at ASC, rowid ASC`,
		tokenID, from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var observed int64
		if err := rows.Scan(&snap.TokenID, &snap.MarketID, &snap.Price, &snap.Spread, &observed, &snap.Ended); err != nil {
			return nil, err
		}
		snap.ObservedAt = time.Unix(observed, 0).UTC()
		out = append(out, snap)
	}
	return out, rows.Err()
}

// PriceChange returns the absolute price change of a token across the window
// ending now: latest price minus the earliest price at or after since.
func (s *Store) PriceChange(ctx context.Context, tokenID string, since time.Time) (float64, error) {
	latest, err := s.Latest(ctx, tokenID)
	if err != nil {
		return 0, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT token_id, market_id, price, spread, observed_at, ended
		 FROM price_snapshots WHERE token_id = ? AND observed_at >= ?
		 ORDER BY observed_at ASC, rowid ASC LIMIT 1`, tokenID, since.Unix())
	earliest, err := scanSnapshot(row)
	if err != nil {
		return 0, err
	}
	return latest.Price - earliest.Price, nil
}

// MarkEnded flags every snapshot of a token as belonging to an ended market,
// so stale prices are not mistaken for live ones.
func (s *Store) MarkEnded(ctx context.Context, tokenID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE price_snapshots SET ended = 1 WHERE token_id = ?`, tokenID)
	return err
}

func scanSnapshot(row *sql.Row) (Snapshot, error) {
	var snap Snapshot
	var observed int64
	if err := row.Scan(&snap.TokenID, &snap.MarketID, &snap.Price, &snap.Spread, &observed, &snap.Ended); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshots
		}
		return Snapshot{}, err
	}
	snap.ObservedAt = time.Unix(observed, 0).UTC()
	return snap, nil
}
