//go:build integration

package migration

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func tableExists(t *testing.T, pool *pgxpool.Pool, name string) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(context.Background(),
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestExecutor_ApplyAndRollback(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	e := NewExecutor(pool)

	migs := []Migration{
		{Version: "20240101000000", Name: "create_a", UpSQL: "CREATE TABLE a (id int);", DownSQL: "DROP TABLE a;"},
		{Version: "20240102000000", Name: "create_b", UpSQL: "-- b\nCREATE TABLE b (id int);\nCREATE INDEX b_id ON b (id);", DownSQL: "DROP TABLE b;"},
	}

	applied, err := e.ApplyAll(ctx, migs)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240101000000", "20240102000000"}, applied)
	assert.True(t, tableExists(t, pool, "a"))
	assert.True(t, tableExists(t, pool, "b"))

	// a second run has nothing to do
	applied, err = e.ApplyAll(ctx, migs)
	require.NoError(t, err)
	assert.Empty(t, applied)

	version, err := e.RollbackLast(ctx, migs)
	require.NoError(t, err)
	assert.Equal(t, "20240102000000", version)
	assert.False(t, tableExists(t, pool, "b"))

	status, err := e.GetStatus(ctx, migs)
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.Equal(t, StatusApplied, status[0].Status)
	assert.Equal(t, StatusPending, status[1].Status)
}

func TestExecutor_FailedMigrationIsRecorded(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	e := NewExecutor(pool)

	broken := Migration{
		Version: "20240103000000",
		Name:    "broken",
		UpSQL:   "CREATE TABLE c (id int); INSERT INTO missing VALUES (1);",
		DownSQL: "DROP TABLE c;",
	}

	_, err := e.ApplyAll(ctx, []Migration{broken})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 2")

	// the first statement was rolled back with the rest
	assert.False(t, tableExists(t, pool, "c"))

	status, err := e.GetStatus(ctx, []Migration{broken})
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, StatusFailed, status[0].Status)
	require.NotNil(t, status[0].Error)

	version, err := e.RollbackLast(ctx, []Migration{broken})
	require.NoError(t, err)
	assert.Empty(t, version)
}

func TestExecutor_LockIsExclusive(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	e := NewExecutor(pool)

	unlock, err := e.Lock(ctx)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_, err = e.Lock(waitCtx)
	assert.Error(t, err, "second Lock should block until the context expires")

	require.NoError(t, unlock(ctx))

	unlock, err = e.Lock(ctx)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
}
