// Package linkdb stores topics, categories and bookmarks in PostgreSQL and
// implements the transactional tagging protocol and filtered listings.
package linkdb

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/marshallshelly/linknova/internal/logger"
	"github.com/marshallshelly/linknova/pkg/builder"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

const (
	// DefaultPageSize is used when a listing asks for no size.
	DefaultPageSize = 10
	// MaxPageSize caps every listing page.
	MaxPageSize = 100
	// MaxPage is the highest page a listing serves; it keeps OFFSET in range.
	MaxPage = 1_000_000
)

// Store is the entity store. It is safe for concurrent use; all state lives
// in the database.
type Store struct {
	db          *runtime.DB
	log         *logger.Logger
	now         func() time.Time
	defaultSize int
	maxSize     int
}

// New returns a store over db.
func New(db *runtime.DB, log *logger.Logger) *Store {
	return &Store{
		db:          db,
		log:         log.With("component", "linkdb"),
		now:         func() time.Time { return time.Now().UTC() },
		defaultSize: DefaultPageSize,
		maxSize:     MaxPageSize,
	}
}

// WithPageSizes overrides the listing sizes. maxSize never exceeds MaxPageSize.
func (s *Store) WithPageSizes(defaultSize, maxSize int) *Store {
	if maxSize <= 0 || maxSize > MaxPageSize {
		maxSize = MaxPageSize
	}
	if defaultSize <= 0 || defaultSize > maxSize {
		defaultSize = min(DefaultPageSize, maxSize)
	}
	s.defaultSize, s.maxSize = defaultSize, maxSize
	return s
}

// collect runs q and scans every row into T by column name.
func collect[T any](ctx context.Context, db runtime.Querier, q builder.Query) ([]T, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// collectOne runs q and scans exactly one row; no row yields pgx.ErrNoRows.
func collectOne[T any](ctx context.Context, db runtime.Querier, q builder.Query) (*T, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
}

// exec runs q and returns the number of affected rows.
func exec(ctx context.Context, db runtime.Querier, q builder.Query) (int64, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// scalar runs q and scans the single returned value.
func scalar[T any](ctx context.Context, db runtime.Querier, q builder.Query) (T, error) {
	var v T
	sql, args, err := q.ToSQL()
	if err != nil {
		return v, err
	}
	err = db.QueryRow(ctx, sql, args...).Scan(&v)
	return v, err
}
