package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/printdesk/pd-backend/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDatabase wraps a real PostgreSQL database for testing
type TestDatabase struct {
	container testcontainers.Container
	pool      *pgxpool.Pool
	store     *store.Store
}

// NewTestDatabase creates a new test database using testcontainers
func NewTestDatabase(t *testing.T) *TestDatabase {
	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	// Create database connection - testcontainers wait strategy ensures it's ready
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err, "Failed to create connection pool")

	require.NoError(t, pool.Ping(ctx), "Failed to ping database")

	testDB := &TestDatabase{
		container: postgresContainer,
		pool:      pool,
		store:     store.New(pool),
	}

	// Set up cleanup
	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	return testDB
}

// Store returns the data access layer bound to the test pool
func (tdb *TestDatabase) Store() *store.Store {
	return tdb.store
}

// Pool returns the underlying pgx pool
func (tdb *TestDatabase) Pool() *pgxpool.Pool {
	return tdb.pool
}

// RunMigrations runs the goose migrations against the test database
func (tdb *TestDatabase) RunMigrations(t *testing.T) {
	// Convert pgxpool connection to database/sql for goose
	sqlDB := stdlib.OpenDBFromPool(tdb.pool)
	defer sqlDB.Close()

	// Set the SQL dialect for goose
	goose.SetDialect("postgres")

	// Run migrations from the project db/migrations directory
	// Need to use relative path from the project root
	err := goose.Up(sqlDB, "../../db/migrations")
	require.NoError(t, err, "Failed to run goose migrations")
}

// Cleanup closes the database connection and terminates the container
func (tdb *TestDatabase) Cleanup() {
	ctx := context.Background()
	tdb.pool.Close()
	if err := tdb.container.Terminate(ctx); err != nil {
		// Log but don't fail tests on cleanup errors
	}
}

// CleanupDatabase truncates all tables for test isolation
func (tdb *TestDatabase) CleanupDatabase(t *testing.T) {
	ctx := context.Background()

	// Truncate in reverse dependency order based on the schema
	tables := []string{
		"notifications",
		"wiki_articles",
		"toner_stock",
		"toner_models",
		"rentals",
		"maintenance_records",
		"printers",
		"departments",
		"clients",
		"profiles",
		"app_settings",
	}

	for _, table := range tables {
		_, err := tdb.pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			t.Logf("Failed to truncate table %s: %v", table, err)
		}
	}
}
