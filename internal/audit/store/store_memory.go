package store

import (
	"context"
	"sync"

	"attest/internal/audit/models"
	id "attest/pkg/domain"
)

// InMemoryStore keeps audit events in an append-only slice per tenant.
type InMemoryStore struct {
	mu       sync.RWMutex
	byTenant map[id.TenantID][]models.Event
}

// NewInMemoryStore creates a new in-memory audit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byTenant: make(map[id.TenantID][]models.Event),
	}
}

// Append records an event.
func (s *InMemoryStore) Append(_ context.Context, event models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTenant[event.TenantID] = append(s.byTenant[event.TenantID], event)
	return nil
}

// ListByTenant returns the most recent events for a tenant, newest last.
// A limit of 0 returns everything.
func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID id.TenantID, limit int) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byTenant[tenantID]
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]models.Event, len(events))
	copy(out, events)
	return out, nil
}
