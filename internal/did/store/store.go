package store

import (
	"context"
	"time"

	"attest/internal/did/models"
	id "attest/pkg/domain"
)

// Store persists DID records. Every lookup is tenant-scoped; implementations
// must make a record owned by another tenant indistinguishable from a
// missing one (sentinel.ErrNotFound, never a permission error).
//
// Create enforces two per-tenant uniqueness constraints and returns
// sentinel.ErrAlreadyUsed when either is violated:
//   - (tenant_id, did_identifier)
//   - (tenant_id, key_fingerprint)
type Store interface {
	Create(ctx context.Context, record models.DidRecord) error
	FindByDid(ctx context.Context, tenantID id.TenantID, did string) (models.DidRecord, error)
	FindByID(ctx context.Context, tenantID id.TenantID, didID id.DidID) (models.DidRecord, error)
	// List returns the tenant's records matching the filter, oldest first.
	List(ctx context.Context, tenantID id.TenantID, filter models.ListFilter) ([]models.DidRecord, error)
	// DidExists and FingerprintExists are the pre-persist collision checks.
	DidExists(ctx context.Context, tenantID id.TenantID, did string) (bool, error)
	FingerprintExists(ctx context.Context, tenantID id.TenantID, fingerprint string) (bool, error)
	// UpdateStatus flips the lifecycle state. Records are never deleted.
	UpdateStatus(ctx context.Context, tenantID id.TenantID, didID id.DidID, status models.Status) error
	// TouchLastUsed records signing activity.
	TouchLastUsed(ctx context.Context, tenantID id.TenantID, didID id.DidID, at time.Time) error
}
