package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"attest/internal/credential/models"
	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// PostgresStore persists credential records in PostgreSQL.
//
// Expected schema (see pkg/testutil/containers for the test bootstrap):
//
//	CREATE TABLE credentials (
//	    id               UUID PRIMARY KEY,
//	    tenant_id        UUID NOT NULL,
//	    issuer_did_id    UUID NOT NULL REFERENCES dids (id) ON DELETE RESTRICT,
//	    holder_did_id    UUID NOT NULL REFERENCES dids (id) ON DELETE RESTRICT,
//	    credential_type  TEXT NOT NULL,
//	    credential_token TEXT NOT NULL,
//	    status           TEXT NOT NULL,
//	    issued_at        TIMESTAMPTZ NOT NULL,
//	    expires_at       TIMESTAMPTZ,
//	    revoked_at       TIMESTAMPTZ,
//	    UNIQUE (tenant_id, credential_token)
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, record models.CredentialRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (
			id, tenant_id, issuer_did_id, holder_did_id, credential_type,
			credential_token, status, issued_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(record.ID), uuid.UUID(record.TenantID),
		uuid.UUID(record.IssuerDidID), uuid.UUID(record.HolderDidID),
		record.CredentialType, record.Token, string(record.Status),
		record.IssuedAt, record.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

const credentialColumns = `id, tenant_id, issuer_did_id, holder_did_id, credential_type,
	credential_token, status, issued_at, expires_at, revoked_at`

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, credentialID id.CredentialID) (models.CredentialRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(credentialID),
	)
	return scanRecord(row)
}

func (s *PostgresStore) FindByToken(ctx context.Context, tenantID id.TenantID, token string) (models.CredentialRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE tenant_id = $1 AND credential_token = $2`,
		uuid.UUID(tenantID), token,
	)
	return scanRecord(row)
}

func (s *PostgresStore) List(ctx context.Context, tenantID id.TenantID, filter models.ListFilter) ([]models.CredentialRecord, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE tenant_id = $1`
	args := []any{uuid.UUID(tenantID)}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.CredentialType != "" {
		args = append(args, filter.CredentialType)
		query += fmt.Sprintf(" AND credential_type = $%d", len(args))
	}
	if filter.ExpiresBefore != nil {
		args = append(args, *filter.ExpiresBefore)
		query += fmt.Sprintf(" AND expires_at < $%d", len(args))
	}
	query += ` ORDER BY issued_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var records []models.CredentialRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, tenantID id.TenantID, credentialID id.CredentialID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE credentials SET status = $3, revoked_at = $4
		WHERE tenant_id = $1 AND id = $2 AND status <> $3`,
		uuid.UUID(tenantID), uuid.UUID(credentialID), string(models.StatusRevoked), at,
	)
	if err != nil {
		return fmt.Errorf("revoke credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		// Distinguish missing from already revoked.
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM credentials WHERE tenant_id = $1 AND id = $2)`,
			uuid.UUID(tenantID), uuid.UUID(credentialID),
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check credential existence: %w", err)
		}
		if exists {
			return sentinel.ErrInvalidState
		}
		return sentinel.ErrNotFound
	}
	return nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.CredentialRecord, error) {
	var (
		recordID, tenantID     uuid.UUID
		issuerDidID            uuid.UUID
		holderDidID            uuid.UUID
		credentialType, token  string
		status                 string
		issuedAt               time.Time
		expiresAt, revokedAt   sql.NullTime
	)
	err := row.Scan(&recordID, &tenantID, &issuerDidID, &holderDidID,
		&credentialType, &token, &status, &issuedAt, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CredentialRecord{}, sentinel.ErrNotFound
		}
		return models.CredentialRecord{}, fmt.Errorf("scan credential record: %w", err)
	}

	record := models.CredentialRecord{
		ID:             id.CredentialID(recordID),
		TenantID:       id.TenantID(tenantID),
		IssuerDidID:    id.DidID(issuerDidID),
		HolderDidID:    id.DidID(holderDidID),
		CredentialType: credentialType,
		Token:          token,
		Status:         models.Status(status),
		IssuedAt:       issuedAt,
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		record.ExpiresAt = &t
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		record.RevokedAt = &t
	}
	return record, nil
}
