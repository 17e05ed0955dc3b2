package service

//go:generate mockgen -source=ports.go -destination=mocks/ports.go -package=mocks

import (
	"context"

	auditmodels "attest/internal/audit/models"
	rlmodels "attest/internal/ratelimit/models"
	id "attest/pkg/domain"
)

// AdmissionController gates quota-sensitive operations per tenant.
type AdmissionController interface {
	Admit(ctx context.Context, tenantID id.TenantID, op rlmodels.Operation) (*rlmodels.Result, error)
}

// Trail records audit events. Implementations must not block.
type Trail interface {
	Publish(ctx context.Context, tenantID id.TenantID, action auditmodels.Action, resource string, metadata map[string]string)
}
