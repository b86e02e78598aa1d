package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ebitech02/WanderWise/internal/climate"
)

//go:embed sql/get-label.sql
var getLabelSQL string

//go:embed sql/upsert-label.sql
var upsertLabelSQL string

//go:embed sql/delete-expired.sql
var deleteExpiredSQL string

//go:embed sql/evict-oldest.sql
var evictOldestSQL string

// SQLite is a ClimateCache persisted in the climate_cache table. The schema is
// created by the migrate package; expiry timestamps are unix milliseconds.
type SQLite struct {
	db         *sql.DB
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	logger     *slog.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewSQLite(db *sql.DB, ttl time.Duration, maxEntries int, logger *slog.Logger) *SQLite {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLite{
		db:         db,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     logger.With("component", "cache", "backend", "sqlite"),
	}
}

func (s *SQLite) Get(ctx context.Context, country string) (climate.Label, bool) {
	key := normalizeKey(country)

	var name string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, getLabelSQL, key).Scan(&name, &expiresAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("climate cache read failed", "country", country, "error", err)
		}
		s.misses.Add(1)
		return climate.Unknown, false
	}

	if s.now().UnixMilli() >= expiresAt {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM climate_cache WHERE country = ?`, key); err == nil {
			s.evictions.Add(1)
		}
		s.misses.Add(1)
		return climate.Unknown, false
	}

	label, ok := climate.LookupLabel(name)
	if !ok {
		s.logger.Warn("climate cache holds unknown label", "country", country, "label", name)
		s.misses.Add(1)
		return climate.Unknown, false
	}
	s.hits.Add(1)
	return label, true
}

// Set stores label for country. The capacity check, any eviction and the
// write run in one transaction so concurrent writers cannot overfill the table.
func (s *SQLite) Set(ctx context.Context, country string, label climate.Label) (err error) {
	key := normalizeKey(country)
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("climate cache begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("climate cache rollback failed", "error", rbErr)
			}
		}
	}()

	n, err := count(ctx, tx)
	if err != nil {
		return err
	}
	if n >= int64(s.maxEntries) {
		var exists int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM climate_cache WHERE country = ?`, key).Scan(&exists)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err = s.makeRoom(ctx, tx, now, n); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("climate cache lookup %q: %w", key, err)
		}
	}

	_, err = tx.ExecContext(ctx, upsertLabelSQL,
		key, label.String(), now.UnixMilli(), now.Add(s.ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("climate cache write %q: %w", key, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("climate cache commit %q: %w", key, err)
	}
	return nil
}

// makeRoom drops expired rows and, if the table is still full, the rows
// closest to expiry.
func (s *SQLite) makeRoom(ctx context.Context, q querier, now time.Time, n int64) error {
	removed, err := s.deleteExpired(ctx, q, now)
	if err != nil {
		return err
	}
	excess := n - int64(removed) - int64(s.maxEntries) + 1
	if excess <= 0 {
		return nil
	}
	res, err := q.ExecContext(ctx, evictOldestSQL, excess)
	if err != nil {
		return fmt.Errorf("climate cache evict: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil {
		s.evictions.Add(affected)
	}
	return nil
}

func (s *SQLite) Invalidate(ctx context.Context, country string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM climate_cache WHERE country = ?`, normalizeKey(country)); err != nil {
		return fmt.Errorf("climate cache invalidate %q: %w", country, err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM climate_cache`); err != nil {
		return fmt.Errorf("climate cache clear: %w", err)
	}
	return nil
}

func (s *SQLite) Prune(ctx context.Context) (int, error) {
	return s.deleteExpired(ctx, s.db, s.now())
}

func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	n, err := count(ctx, s.db)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Backend:   "sqlite",
		Entries:   n,
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
		TTL:       s.ttl,
	}, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func count(ctx context.Context, q querier) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM climate_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("climate cache count: %w", err)
	}
	return n, nil
}

func (s *SQLite) deleteExpired(ctx context.Context, q querier, now time.Time) (int, error) {
	res, err := q.ExecContext(ctx, deleteExpiredSQL, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("climate cache prune: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	s.evictions.Add(affected)
	return int(affected), nil
}
