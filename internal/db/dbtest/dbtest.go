// Package dbtest provides a migrated postgres pool for integration tests.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/2beens/gymlog/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
)

const testDBName = "gymlog_test"

// Pool returns a pool to a migrated database with all rows removed.
// POSTGRES_HOST (and optionally POSTGRES_PORT) point it at a running server,
// otherwise a throwaway postgres container is started with dockertest.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	host, port := os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	if host == "" {
		host, port = runContainer(t)
	}
	t.Logf("using postgres: %s:%s", host, port)

	var pool *pgxpool.Pool
	require.Eventually(t, func() bool {
		p, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost: host,
			DBPort: port,
			DBName: testDBName,
		})
		if err != nil {
			return false
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return false
		}
		pool = p
		return true
	}, time.Minute, 500*time.Millisecond)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	Truncate(t, pool)

	return pool
}

// Truncate removes all rows from all tables.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		TRUNCATE set_logs, exercise_logs, workouts,
		         routine_sets, routine_exercises, routines,
		         exercises, users
		CASCADE
	`)
	require.NoError(t, err)
}

func runContainer(t *testing.T) (string, string) {
	t.Helper()

	dockerPool, err := dockertest.NewPool("")
	require.NoError(t, err)
	require.NoError(t, dockerPool.Client.Ping())

	resource, err := dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=" + testDBName,
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := dockerPool.Purge(resource); err != nil {
			t.Logf("purge postgres container: %s", err)
		}
	})

	return "localhost", resource.GetPort("5432/tcp")
}
