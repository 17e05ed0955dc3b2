package service

//go:generate mockgen -source=ports.go -destination=mocks/ports.go -package=mocks

import (
	"context"

	auditmodels "attest/internal/audit/models"
	didmodels "attest/internal/did/models"
	rlmodels "attest/internal/ratelimit/models"
	id "attest/pkg/domain"
)

// DidDirectory resolves DID records within a tenant. Satisfied by the DID
// resolution service (summaries) and the DID store (full records).
type DidDirectory interface {
	GetByID(ctx context.Context, tenantID id.TenantID, didID id.DidID) (didmodels.Summary, error)
}

// IssuerResolver loads full DID records for signature verification. The
// verification pipeline needs the stored public key, not just the summary.
type IssuerResolver interface {
	FindByDid(ctx context.Context, tenantID id.TenantID, did string) (didmodels.DidRecord, error)
}

// Signer produces signatures through the signing boundary; private keys
// never surface here.
type Signer interface {
	Sign(ctx context.Context, tenantID id.TenantID, did string, message []byte) ([]byte, error)
}

// AdmissionController gates quota-sensitive operations per tenant.
type AdmissionController interface {
	Admit(ctx context.Context, tenantID id.TenantID, op rlmodels.Operation) (*rlmodels.Result, error)
}

// Trail records audit events. Implementations must not block.
type Trail interface {
	Publish(ctx context.Context, tenantID id.TenantID, action auditmodels.Action, resource string, metadata map[string]string)
}
