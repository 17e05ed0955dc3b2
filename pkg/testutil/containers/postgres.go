//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema bootstraps the tables the Postgres stores expect.
const schema = `
CREATE TABLE IF NOT EXISTS dids (
    id                    UUID PRIMARY KEY,
    tenant_id             UUID NOT NULL,
    did_identifier        TEXT NOT NULL,
    method                TEXT NOT NULL,
    public_key            BYTEA NOT NULL,
    key_fingerprint       TEXT NOT NULL,
    encrypted_private_key BYTEA NOT NULL,
    did_document          JSONB NOT NULL,
    status                TEXT NOT NULL,
    created_at            TIMESTAMPTZ NOT NULL,
    last_used_at          TIMESTAMPTZ,
    UNIQUE (tenant_id, did_identifier),
    UNIQUE (tenant_id, key_fingerprint)
);

CREATE TABLE IF NOT EXISTS credentials (
    id               UUID PRIMARY KEY,
    tenant_id        UUID NOT NULL,
    issuer_did_id    UUID NOT NULL REFERENCES dids (id) ON DELETE RESTRICT,
    holder_did_id    UUID NOT NULL REFERENCES dids (id) ON DELETE RESTRICT,
    credential_type  TEXT NOT NULL,
    credential_token TEXT NOT NULL,
    status           TEXT NOT NULL,
    issued_at        TIMESTAMPTZ NOT NULL,
    expires_at       TIMESTAMPTZ,
    revoked_at       TIMESTAMPTZ,
    UNIQUE (tenant_id, credential_token)
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the
// attest schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and bootstraps the
// schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("attest_test"),
		tcpostgres.WithUsername("attest"),
		tcpostgres.WithPassword("attest"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = container.Terminate(context.Background())
	})

	return &PostgresContainer{Container: container, URL: url, DB: db}
}

// Truncate clears all rows. Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `TRUNCATE credentials, dids`)
	return err
}
