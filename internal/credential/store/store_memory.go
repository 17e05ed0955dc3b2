package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"attest/internal/credential/models"
	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// InMemoryStore keeps credential records in maps guarded by a single
// RWMutex. Token uniqueness is checked and enforced under the write lock.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]models.CredentialRecord // tenant:recordID
	byToken map[string]string                  // tenant:token -> recordID key
}

// NewInMemoryStore creates an empty in-memory credential store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]models.CredentialRecord),
		byToken: make(map[string]string),
	}
}

func scopedKey(tenantID id.TenantID, suffix string) string {
	return tenantID.String() + ":" + suffix
}

func (s *InMemoryStore) Create(_ context.Context, record models.CredentialRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokenKey := scopedKey(record.TenantID, record.Token)
	if _, taken := s.byToken[tokenKey]; taken {
		return sentinel.ErrAlreadyUsed
	}

	idKey := scopedKey(record.TenantID, record.ID.String())
	s.byID[idKey] = cloneRecord(record)
	s.byToken[tokenKey] = idKey
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenantID id.TenantID, credentialID id.CredentialID) (models.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.byID[scopedKey(tenantID, credentialID.String())]
	if !ok {
		return models.CredentialRecord{}, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, tenantID id.TenantID, token string) (models.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idKey, ok := s.byToken[scopedKey(tenantID, token)]
	if !ok {
		return models.CredentialRecord{}, sentinel.ErrNotFound
	}
	return cloneRecord(s.byID[idKey]), nil
}

func (s *InMemoryStore) List(_ context.Context, tenantID id.TenantID, filter models.ListFilter) ([]models.CredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.CredentialRecord
	for _, record := range s.byID {
		if record.TenantID != tenantID || !matches(record, filter) {
			continue
		}
		records = append(records, cloneRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].IssuedAt.Equal(records[j].IssuedAt) {
			return records[i].ID.String() < records[j].ID.String()
		}
		return records[i].IssuedAt.Before(records[j].IssuedAt)
	})
	return records, nil
}

func matches(record models.CredentialRecord, filter models.ListFilter) bool {
	if filter.Status != "" && record.Status != filter.Status {
		return false
	}
	if filter.CredentialType != "" && record.CredentialType != filter.CredentialType {
		return false
	}
	if filter.ExpiresBefore != nil {
		if record.ExpiresAt == nil || !record.ExpiresAt.Before(*filter.ExpiresBefore) {
			return false
		}
	}
	return true
}

func (s *InMemoryStore) Revoke(_ context.Context, tenantID id.TenantID, credentialID id.CredentialID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idKey := scopedKey(tenantID, credentialID.String())
	record, ok := s.byID[idKey]
	if !ok {
		return sentinel.ErrNotFound
	}
	if record.Status == models.StatusRevoked {
		return sentinel.ErrInvalidState
	}
	record.Status = models.StatusRevoked
	record.RevokedAt = &at
	s.byID[idKey] = record
	return nil
}

func cloneRecord(r models.CredentialRecord) models.CredentialRecord {
	out := r
	if r.ExpiresAt != nil {
		t := *r.ExpiresAt
		out.ExpiresAt = &t
	}
	if r.RevokedAt != nil {
		t := *r.RevokedAt
		out.RevokedAt = &t
	}
	return out
}
