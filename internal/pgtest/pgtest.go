// Package pgtest starts a migrated Postgres for integration tests.
package pgtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/GlebRadaev/influmarket/internal/pg"
)

const image = "postgres:16-alpine"

// Pool returns a pool over a database with the schema applied. POSTGRES_URL
// selects an existing database; otherwise a container is started and removed
// when the test ends. Skipped in -short mode and when neither is available.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	dsn := os.Getenv("POSTGRES_URL")
	if dsn == "" {
		dsn = startContainer(t)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.RunMigrations(pool))
	return pool
}

func startContainer(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("influmarket"),
		postgres.WithUsername("influmarket"),
		postgres.WithPassword("influmarket"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}
