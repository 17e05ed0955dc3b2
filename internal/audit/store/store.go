package store

import (
	"context"

	"attest/internal/audit/models"
	id "attest/pkg/domain"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event models.Event) error
	ListByTenant(ctx context.Context, tenantID id.TenantID, limit int) ([]models.Event, error)
}
