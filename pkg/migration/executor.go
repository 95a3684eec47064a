package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultLockID is the advisory lock key held while migrations run.
const DefaultLockID int64 = 7_362_910_118

// Executor executes and tracks database migrations.
type Executor struct {
	pool   *pgxpool.Pool
	lockID int64
}

// NewExecutor creates a new migration executor.
func NewExecutor(pool *pgxpool.Pool) *Executor {
	return &Executor{
		pool:   pool,
		lockID: DefaultLockID,
	}
}

// WithLockID sets a custom advisory lock ID.
func (e *Executor) WithLockID(lockID int64) *Executor {
	e.lockID = lockID
	return e
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (e *Executor) Initialize(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(32) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			applied_at TIMESTAMPTZ,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_schema_migrations_status
		ON schema_migrations(status);
	`

	if _, err := e.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	return nil
}

// Lock acquires the advisory lock on a dedicated connection and returns a
// function that releases it. Session-level advisory locks belong to one
// connection, so the same connection must unlock.
func (e *Executor) Lock(ctx context.Context) (func(context.Context) error, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for migration lock: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", e.lockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	unlock := func(ctx context.Context) error {
		defer conn.Release()
		var released bool
		if err := conn.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", e.lockID).Scan(&released); err != nil {
			return fmt.Errorf("failed to release migration lock: %w", err)
		}
		if !released {
			return fmt.Errorf("lock was not held")
		}
		return nil
	}
	return unlock, nil
}

// GetAllMigrations returns all migration records.
func (e *Executor) GetAllMigrations(ctx context.Context) ([]MigrationRecord, error) {
	query := `
		SELECT version, name, status, applied_at, error
		FROM schema_migrations
		ORDER BY version ASC
	`

	rows, err := e.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var record MigrationRecord
		err := rows.Scan(&record.Version, &record.Name, &record.Status, &record.AppliedAt, &record.Error)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// appliedVersions returns the set of versions recorded as applied.
func (e *Executor) appliedVersions(ctx context.Context) (map[string]bool, error) {
	records, err := e.GetAllMigrations(ctx)
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Status == StatusApplied {
			applied[r.Version] = true
		}
	}
	return applied, nil
}

// Apply executes a migration's up SQL in one transaction. A failing
// statement rolls back the migration and records it as failed.
func (e *Executor) Apply(ctx context.Context, migration Migration) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, name, status) VALUES ($1, $2, 'pending') ON CONFLICT (version) DO UPDATE SET status = 'pending', error = NULL",
		migration.Version, migration.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	for i, stmt := range splitSQL(migration.UpSQL) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			e.recordFailure(ctx, migration, fmt.Sprintf("statement %d failed: %v", i+1, err))
			return fmt.Errorf("migration failed at statement %d: %w", i+1, err)
		}
	}

	_, err = tx.Exec(ctx,
		"UPDATE schema_migrations SET status = 'applied', applied_at = $1, error = NULL WHERE version = $2",
		time.Now(), migration.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update migration status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

// recordFailure stores the failure outside the aborted transaction.
func (e *Executor) recordFailure(ctx context.Context, migration Migration, msg string) {
	_, _ = e.pool.Exec(ctx,
		`INSERT INTO schema_migrations (version, name, status, error) VALUES ($1, $2, 'failed', $3)
		 ON CONFLICT (version) DO UPDATE SET status = 'failed', error = EXCLUDED.error`,
		migration.Version, migration.Name, msg,
	)
}

// Rollback executes a migration's down SQL and removes its record.
func (e *Executor) Rollback(ctx context.Context, migration Migration) error {
	applied, err := e.appliedVersions(ctx)
	if err != nil {
		return err
	}
	if !applied[migration.Version] {
		return fmt.Errorf("migration %s is not applied", migration.Version)
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range splitSQL(migration.DownSQL) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("rollback failed at statement %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", migration.Version); err != nil {
		return fmt.Errorf("failed to delete migration record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rollback: %w", err)
	}

	return nil
}

// ApplyAll applies every pending migration in version order under the
// advisory lock and returns the versions it applied.
func (e *Executor) ApplyAll(ctx context.Context, migrations []Migration) ([]string, error) {
	sorted, err := Sort(migrations)
	if err != nil {
		return nil, err
	}

	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	unlock, err := e.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock(context.WithoutCancel(ctx))

	applied, err := e.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, migration := range sorted {
		if applied[migration.Version] {
			continue
		}
		if err := e.Apply(ctx, migration); err != nil {
			return done, fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
		done = append(done, migration.Version)
	}

	return done, nil
}

// RollbackLast rolls back the most recently applied migration, returning
// its version, or "" when nothing is applied.
func (e *Executor) RollbackLast(ctx context.Context, migrations []Migration) (string, error) {
	sorted, err := Sort(migrations)
	if err != nil {
		return "", err
	}

	if err := e.Initialize(ctx); err != nil {
		return "", err
	}

	unlock, err := e.Lock(ctx)
	if err != nil {
		return "", err
	}
	defer unlock(context.WithoutCancel(ctx))

	applied, err := e.appliedVersions(ctx)
	if err != nil {
		return "", err
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		if applied[sorted[i].Version] {
			if err := e.Rollback(ctx, sorted[i]); err != nil {
				return "", fmt.Errorf("failed to rollback migration %s: %w", sorted[i].Version, err)
			}
			return sorted[i].Version, nil
		}
	}
	return "", nil
}

// GetStatus returns the status of all migrations.
func (e *Executor) GetStatus(ctx context.Context, migrations []Migration) ([]MigrationRecord, error) {
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}

	recorded := make(map[string]MigrationRecord)
	all, err := e.GetAllMigrations(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		recorded[m.Version] = m
	}

	sorted, err := Sort(migrations)
	if err != nil {
		return nil, err
	}

	var records []MigrationRecord
	for _, migration := range sorted {
		if record, exists := recorded[migration.Version]; exists {
			records = append(records, record)
		} else {
			records = append(records, MigrationRecord{
				Version: migration.Version,
				Name:    migration.Name,
				Status:  StatusPending,
			})
		}
	}

	return records, nil
}

// splitSQL splits a SQL string into individual statements on semicolons,
// dropping comment lines and empty statements.
func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	var cleanedLines []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		cleanedLines = append(cleanedLines, line)
	}

	statements := strings.Split(strings.Join(cleanedLines, "\n"), ";")

	var result []string
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}
