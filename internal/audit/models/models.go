package models

import (
	"time"

	"github.com/google/uuid"

	id "attest/pkg/domain"
)

// Action identifies an auditable event type.
type Action string

const (
	ActionDidCreated         Action = "did.created"
	ActionDidDeactivated     Action = "did.deactivated"
	ActionCredentialIssued   Action = "credential.issued"
	ActionCredentialRevoked  Action = "credential.revoked"
	ActionVerificationFailed Action = "credential.verification_failed"
	ActionRateLimitExceeded  Action = "ratelimit.exceeded"
)

// Event is an immutable audit trail entry. Metadata carries event-specific
// details (DID identifier, credential type, failure status) and must never
// contain key material or raw tokens.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	TenantID  id.TenantID       `json:"tenant_id"`
	Action    Action            `json:"action"`
	Resource  string            `json:"resource"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewEvent stamps a fresh event with an id and timestamp.
func NewEvent(tenantID id.TenantID, action Action, resource string, metadata map[string]string) Event {
	return Event{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Action:    action,
		Resource:  resource,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}
