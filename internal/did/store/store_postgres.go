package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"attest/internal/did/models"
	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// PostgresStore persists DID records in PostgreSQL.
//
// Expected schema (see pkg/testutil/containers for the test bootstrap):
//
//	CREATE TABLE dids (
//	    id                    UUID PRIMARY KEY,
//	    tenant_id             UUID NOT NULL,
//	    did_identifier        TEXT NOT NULL,
//	    method                TEXT NOT NULL,
//	    public_key            BYTEA NOT NULL,
//	    key_fingerprint       TEXT NOT NULL,
//	    encrypted_private_key BYTEA NOT NULL,
//	    did_document          JSONB NOT NULL,
//	    status                TEXT NOT NULL,
//	    created_at            TIMESTAMPTZ NOT NULL,
//	    last_used_at          TIMESTAMPTZ,
//	    UNIQUE (tenant_id, did_identifier),
//	    UNIQUE (tenant_id, key_fingerprint)
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed DID store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// uniqueViolation is the Postgres error code raised when an insert loses a
// race on one of the tenant-scoped unique constraints.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, record models.DidRecord) error {
	docBytes, err := json.Marshal(record.Document)
	if err != nil {
		return fmt.Errorf("marshal did document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dids (
			id, tenant_id, did_identifier, method, public_key, key_fingerprint,
			encrypted_private_key, did_document, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(record.ID), uuid.UUID(record.TenantID), record.Did, string(record.Method),
		record.PublicKey, record.KeyFingerprint, record.EncryptedPrivateKey,
		docBytes, string(record.Status), record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create did: %w", err)
	}
	return nil
}

const didColumns = `id, tenant_id, did_identifier, method, public_key, key_fingerprint,
	encrypted_private_key, did_document, status, created_at, last_used_at`

func (s *PostgresStore) FindByDid(ctx context.Context, tenantID id.TenantID, did string) (models.DidRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+didColumns+` FROM dids WHERE tenant_id = $1 AND did_identifier = $2`,
		uuid.UUID(tenantID), did,
	)
	return scanRecord(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, didID id.DidID) (models.DidRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+didColumns+` FROM dids WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(didID),
	)
	return scanRecord(row)
}

func (s *PostgresStore) List(ctx context.Context, tenantID id.TenantID, filter models.ListFilter) ([]models.DidRecord, error) {
	query := `SELECT ` + didColumns + ` FROM dids WHERE tenant_id = $1`
	args := []any{uuid.UUID(tenantID)}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dids: %w", err)
	}
	defer rows.Close()

	var records []models.DidRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dids: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) DidExists(ctx context.Context, tenantID id.TenantID, did string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM dids WHERE tenant_id = $1 AND did_identifier = $2)`,
		uuid.UUID(tenantID), did,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check did existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FingerprintExists(ctx context.Context, tenantID id.TenantID, fingerprint string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM dids WHERE tenant_id = $1 AND key_fingerprint = $2)`,
		uuid.UUID(tenantID), fingerprint,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check fingerprint existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, tenantID id.TenantID, didID id.DidID, status models.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE dids SET status = $3 WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(didID), string(status),
	)
	if err != nil {
		return fmt.Errorf("update did status: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) TouchLastUsed(ctx context.Context, tenantID id.TenantID, didID id.DidID, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE dids SET last_used_at = $3 WHERE tenant_id = $1 AND id = $2`,
		uuid.UUID(tenantID), uuid.UUID(didID), at,
	)
	if err != nil {
		return fmt.Errorf("touch did: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.DidRecord, error) {
	var (
		recordID, tenantID uuid.UUID
		did, method        string
		publicKey          []byte
		fingerprint        string
		encryptedKey       []byte
		docBytes           []byte
		status             string
		createdAt          time.Time
		lastUsedAt         sql.NullTime
	)
	err := row.Scan(&recordID, &tenantID, &did, &method, &publicKey, &fingerprint,
		&encryptedKey, &docBytes, &status, &createdAt, &lastUsedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DidRecord{}, sentinel.ErrNotFound
		}
		return models.DidRecord{}, fmt.Errorf("scan did record: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(docBytes, &doc); err != nil {
		return models.DidRecord{}, fmt.Errorf("unmarshal did document: %w", err)
	}

	record := models.DidRecord{
		ID:                  id.DidID(recordID),
		TenantID:            id.TenantID(tenantID),
		Did:                 did,
		Method:              models.Method(method),
		PublicKey:           publicKey,
		KeyFingerprint:      fingerprint,
		EncryptedPrivateKey: encryptedKey,
		Document:            doc,
		Status:              models.Status(status),
		CreatedAt:           createdAt,
	}
	if lastUsedAt.Valid {
		t := lastUsedAt.Time
		record.LastUsedAt = &t
	}
	return record, nil
}
