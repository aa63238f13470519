package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func requireContainers(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("WODO_CONTAINER_TESTS") != "1" {
		t.Skip("set WODO_CONTAINER_TESTS=1 to run container-backed store tests")
	}
}

func TestSQLStore_Postgres(t *testing.T) {
	requireContainers(t)
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("wodo"),
		postgres.WithUsername("wodo"),
		postgres.WithPassword("wodo"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	defer func() { _ = testcontainers.TerminateContainer(ctr) }()

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	kv, err := NewSQLStore(DriverPostgres, dsn)
	require.NoError(t, err)
	defer kv.Close()

	populate(t, New(kv))
	assertSampleData(t, New(kv))
}

func TestSQLStore_MySQL(t *testing.T) {
	requireContainers(t)
	ctx := context.Background()

	ctr, err := mysql.Run(ctx, "mysql:8.0.36",
		mysql.WithDatabase("wodo"),
		mysql.WithUsername("root"),
		mysql.WithPassword("wodo"),
	)
	require.NoError(t, err)
	defer func() { _ = testcontainers.TerminateContainer(ctr) }()

	dsn, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	kv, err := NewSQLStore(DriverMySQL, dsn)
	require.NoError(t, err)
	defer kv.Close()

	populate(t, New(kv))
	assertSampleData(t, New(kv))
}
