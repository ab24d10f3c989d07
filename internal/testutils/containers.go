//go:build integration

// Package testutils starts the throwaway PostgreSQL, Redis and MongoDB
// containers used by the integration tests. Every container is terminated
// when the test that started it finishes.
package testutils

import (
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	tcmongodb "github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mikiasgoitom/likes/internal/infrastructure/database"
	"github.com/mikiasgoitom/likes/internal/infrastructure/logger"
)

// StartPostgres runs PostgreSQL, applies the migrations and returns its DSN.
func StartPostgres(t testing.TB) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("likes"),
		tcpostgres.WithUsername("likes"),
		tcpostgres.WithPassword("likes"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	m, err := database.NewMigrator(dsn, logger.New("error", io.Discard))
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return dsn
}

// StartRedis runs Redis and returns a redis:// URL for it.
func StartRedis(t testing.TB) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}
	return uri
}

// StartMongo runs a single node replica set, which multi-document
// transactions require, and returns its URI.
func StartMongo(t testing.TB) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcmongodb.Run(ctx, "mongo:7", tcmongodb.WithReplicaSet("rs0"))
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get mongodb connection string: %v", err)
	}
	u, err := url.Parse(uri)
	if err != nil {
		t.Fatalf("failed to parse mongodb connection string: %v", err)
	}
	q := u.Query()
	q.Set("directConnection", "true")
	u.RawQuery = q.Encode()
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
