//go:build integration

package containers

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	_ "github.com/lib/pq"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresContainer wraps a throwaway Postgres instance with the aidtrack
// schema applied.
type PostgresContainer struct {
	DSN string
	DB  *sql.DB
}

// NewPostgresContainer starts a Postgres container, applies db/schema.sql,
// and opens a database/sql handle. The container is terminated when the test
// finishes.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithInitScripts(schemaPath(t)),
		tcpostgres.WithDatabase("aidtrack"),
		tcpostgres.WithUsername("aidtrack"),
		tcpostgres.WithPassword("aidtrack"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}

	return &PostgresContainer{DSN: dsn, DB: db}
}

// schemaPath locates db/schema.sql relative to this source file.
func schemaPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate schema file")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "db", "schema.sql")
}
