// Package testutil provides shared helpers for integration tests.
// SQLite helpers always run; Postgres helpers skip automatically unless
// TEST_DATABASE_URL is set or TEST_POSTGRES_CONTAINER=1 asks for a
// throwaway container, so unit tests never need a running database.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/pkordes/reactivities/backend/internal/repo"
)

// NewPool opens a *pgxpool.Pool connected to the test Postgres database.
// The pool is closed automatically when the test (and all its subtests) finish.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB opens a *sql.DB connected to the test Postgres database using the
// pgx database/sql driver. Use this when driving goose migrations directly.
// The connection is closed automatically when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// NewPostgresStore returns a migrated Postgres store with an empty
// activities table. Tests using it must not run in parallel with each other.
func NewPostgresStore(t *testing.T) *repo.PostgresStore {
	t.Helper()

	pool := NewPool(t)
	store := repo.NewPostgresStore(pool)

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("testutil.NewPostgresStore: migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE activities`); err != nil {
		t.Fatalf("testutil.NewPostgresStore: truncate: %v", err)
	}
	return store
}

// NewSQLiteStore returns a migrated SQLite store backed by a file in the
// test's temp dir. It is closed when the test finishes.
func NewSQLiteStore(tb testing.TB) *repo.SQLiteStore {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "reactivities.db")
	ctx := context.Background()

	store, err := repo.OpenSQLite(ctx, path)
	if err != nil {
		tb.Fatalf("testutil.NewSQLiteStore: open: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(ctx); err != nil {
		tb.Fatalf("testutil.NewSQLiteStore: migrate: %v", err)
	}
	return store
}

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// requireDSN returns the Postgres DSN for integration tests, skipping the
// test if none is configured.
func requireDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	if os.Getenv("TEST_POSTGRES_CONTAINER") != "1" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	// One container per test binary; the testcontainers reaper removes it
	// when the process exits.
	containerOnce.Do(func() {
		containerDSN, containerErr = startContainer(context.Background())
	})
	if containerErr != nil {
		t.Fatalf("testutil: start postgres container: %v", containerErr)
	}
	return containerDSN
}

func startContainer(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("reactivities"),
		postgrescontainer.WithUsername("reactivities"),
		postgrescontainer.WithPassword("reactivities"),
		postgrescontainer.BasicWaitStrategies(),
	)
	if err != nil {
		return "", err
	}
	return pg.ConnectionString(ctx, "sslmode=disable")
}
