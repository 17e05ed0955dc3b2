package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"attest/internal/did/models"
	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// InMemoryStore keeps DID records in maps guarded by a single RWMutex.
// Uniqueness checks and inserts run under the write lock, so concurrent
// creators racing on the same identifier observe the same constraint
// behavior as the Postgres store.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]models.DidRecord // tenant:recordID
	byDid   map[string]string           // tenant:did -> recordID key
	byFP    map[string]string           // tenant:fingerprint -> recordID key
}

// NewInMemoryStore creates an empty in-memory DID store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:  make(map[string]models.DidRecord),
		byDid: make(map[string]string),
		byFP:  make(map[string]string),
	}
}

func scopedKey(tenantID id.TenantID, suffix string) string {
	return tenantID.String() + ":" + suffix
}

func (s *InMemoryStore) Create(_ context.Context, record models.DidRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	didKey := scopedKey(record.TenantID, record.Did)
	fpKey := scopedKey(record.TenantID, record.KeyFingerprint)
	if _, taken := s.byDid[didKey]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, taken := s.byFP[fpKey]; taken {
		return sentinel.ErrAlreadyUsed
	}

	idKey := scopedKey(record.TenantID, record.ID.String())
	s.byID[idKey] = cloneRecord(record)
	s.byDid[didKey] = idKey
	s.byFP[fpKey] = idKey
	return nil
}

func (s *InMemoryStore) FindByDid(_ context.Context, tenantID id.TenantID, did string) (models.DidRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idKey, ok := s.byDid[scopedKey(tenantID, did)]
	if !ok {
		return models.DidRecord{}, sentinel.ErrNotFound
	}
	return cloneRecord(s.byID[idKey]), nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenantID id.TenantID, didID id.DidID) (models.DidRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.byID[scopedKey(tenantID, didID.String())]
	if !ok {
		return models.DidRecord{}, sentinel.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *InMemoryStore) List(_ context.Context, tenantID id.TenantID, filter models.ListFilter) ([]models.DidRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.DidRecord
	for _, record := range s.byID {
		if record.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		records = append(records, cloneRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID.String() < records[j].ID.String()
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (s *InMemoryStore) DidExists(_ context.Context, tenantID id.TenantID, did string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byDid[scopedKey(tenantID, did)]
	return ok, nil
}

func (s *InMemoryStore) FingerprintExists(_ context.Context, tenantID id.TenantID, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byFP[scopedKey(tenantID, fingerprint)]
	return ok, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, tenantID id.TenantID, didID id.DidID, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idKey := scopedKey(tenantID, didID.String())
	record, ok := s.byID[idKey]
	if !ok {
		return sentinel.ErrNotFound
	}
	record.Status = status
	s.byID[idKey] = record
	return nil
}

func (s *InMemoryStore) TouchLastUsed(_ context.Context, tenantID id.TenantID, didID id.DidID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idKey := scopedKey(tenantID, didID.String())
	record, ok := s.byID[idKey]
	if !ok {
		return sentinel.ErrNotFound
	}
	record.LastUsedAt = &at
	s.byID[idKey] = record
	return nil
}

// cloneRecord copies byte slices so callers cannot mutate stored state (or
// zero it: the creation path wipes its local buffers after persisting).
func cloneRecord(r models.DidRecord) models.DidRecord {
	out := r
	out.PublicKey = append([]byte(nil), r.PublicKey...)
	out.EncryptedPrivateKey = append([]byte(nil), r.EncryptedPrivateKey...)
	if r.LastUsedAt != nil {
		t := *r.LastUsedAt
		out.LastUsedAt = &t
	}
	return out
}
