// Package cache persists the last good API snapshots in a local SQLite
// database so the dashboard can render stale-but-useful data while the
// network is down or the first fetch is still in flight. It is a cache,
// never a source of truth: every snapshot carries its fetch time and the
// UI labels stale data as such.
//
// Card PANs and CVVs must never land here — only the masked listing
// payloads are cached.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/velocards/velocards-cli/internal/dbx"
)

// ErrMiss is returned by Get when no snapshot of the requested kind
// exists.
var ErrMiss = errors.New("cache: miss")

// Snapshot kinds.
const (
	KindCards        = "cards"
	KindTransactions = "transactions"
	KindBalance      = "balance"
	KindDeposits     = "deposits"
	KindInvoices     = "invoices"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
  kind       TEXT PRIMARY KEY,
  data       BLOB NOT NULL,
  fetched_at INTEGER NOT NULL
);`

// Store is a snapshot cache over a SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the cache database at path. Use
// ":memory:" for an ephemeral cache.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores v as the current snapshot for kind, stamped with the
// current time.
func (s *Store) Put(ctx context.Context, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: marshal %s snapshot: %w", kind, err)
	}
	return s.put(ctx, s.db, kind, data)
}

func (s *Store) put(ctx context.Context, db dbx.DBTX, kind string, data []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO snapshots (kind, data, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET data = excluded.data, fetched_at = excluded.fetched_at
	`, kind, data, s.now().Unix())
	if err != nil {
		return fmt.Errorf("cache: store %s snapshot: %w", kind, err)
	}
	return nil
}

// PutAll stores several snapshots atomically, so a crash mid-refresh
// never leaves the cache half old, half new.
func (s *Store) PutAll(ctx context.Context, snapshots map[string]any) error {
	encoded := make(map[string][]byte, len(snapshots))
	for kind, v := range snapshots {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cache: marshal %s snapshot: %w", kind, err)
		}
		encoded[kind] = data
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for kind, data := range encoded {
			if err := s.put(ctx, tx, kind, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get unmarshals the snapshot for kind into v and returns when it was
// fetched. Returns ErrMiss when no snapshot exists.
func (s *Store) Get(ctx context.Context, kind string, v any) (time.Time, error) {
	var data []byte
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT data, fetched_at FROM snapshots WHERE kind = ?`, kind,
	).Scan(&data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cache: load %s snapshot: %w", kind, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return time.Time{}, fmt.Errorf("cache: decode %s snapshot: %w", kind, err)
	}
	return time.Unix(fetchedAt, 0), nil
}

// Clear drops every snapshot. Called on logout so no account data
// survives a sign-out.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}
