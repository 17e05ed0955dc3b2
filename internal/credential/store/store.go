package store

import (
	"context"
	"time"

	"attest/internal/credential/models"
	id "attest/pkg/domain"
)

// Store persists credential records. Lookups are tenant-scoped; a record
// owned by another tenant is indistinguishable from a missing one.
//
// Create enforces per-tenant token uniqueness and returns
// sentinel.ErrAlreadyUsed on violation.
type Store interface {
	Create(ctx context.Context, record models.CredentialRecord) error
	FindByID(ctx context.Context, tenantID id.TenantID, credentialID id.CredentialID) (models.CredentialRecord, error)
	// FindByToken is the revocation lookup in the verification pipeline.
	FindByToken(ctx context.Context, tenantID id.TenantID, token string) (models.CredentialRecord, error)
	// List returns the tenant's records matching the filter, oldest first.
	List(ctx context.Context, tenantID id.TenantID, filter models.ListFilter) ([]models.CredentialRecord, error)
	// Revoke flips the record to revoked and stamps revoked_at. One-way;
	// revoking an already revoked record returns sentinel.ErrInvalidState.
	Revoke(ctx context.Context, tenantID id.TenantID, credentialID id.CredentialID, at time.Time) error
}
