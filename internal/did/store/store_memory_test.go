package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"attest/internal/did/models"
	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

type DidStoreSuite struct {
	suite.Suite
	store  *InMemoryStore
	ctx    context.Context
	tenant id.TenantID
}

func (s *DidStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.tenant = id.TenantID(uuid.New())
}

func TestDidStoreSuite(t *testing.T) {
	suite.Run(t, new(DidStoreSuite))
}

func (s *DidStoreSuite) newRecord(tenantID id.TenantID, did, fingerprint string) models.DidRecord {
	return models.DidRecord{
		ID:                  id.NewDidID(),
		TenantID:            tenantID,
		Did:                 did,
		Method:              models.MethodKey,
		PublicKey:           []byte("public-key-bytes"),
		KeyFingerprint:      fingerprint,
		EncryptedPrivateKey: []byte("sealed-key-bytes"),
		Status:              models.StatusActive,
		CreatedAt:           time.Now().UTC(),
	}
}

func (s *DidStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds by did and by id", func() {
		record := s.newRecord(s.tenant, "did:key:zAAA", "fp-a")
		s.Require().NoError(s.store.Create(s.ctx, record))

		byDid, err := s.store.FindByDid(s.ctx, s.tenant, record.Did)
		s.Require().NoError(err)
		s.Equal(record.ID, byDid.ID)

		byID, err := s.store.FindByID(s.ctx, s.tenant, record.ID)
		s.Require().NoError(err)
		s.Equal(record.Did, byID.Did)
	})

	s.Run("unknown did is ErrNotFound", func() {
		_, err := s.store.FindByDid(s.ctx, s.tenant, "did:key:zMissing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stored record is isolated from caller mutation", func() {
		record := s.newRecord(s.tenant, "did:key:zBBB", "fp-b")
		s.Require().NoError(s.store.Create(s.ctx, record))

		// Simulates the creation path wiping its buffers after persisting.
		for i := range record.EncryptedPrivateKey {
			record.EncryptedPrivateKey[i] = 0
		}

		loaded, err := s.store.FindByDid(s.ctx, s.tenant, "did:key:zBBB")
		s.Require().NoError(err)
		s.Equal([]byte("sealed-key-bytes"), loaded.EncryptedPrivateKey)
	})
}

func (s *DidStoreSuite) TestUniqueness() {
	s.Run("rejects duplicate did identifier", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newRecord(s.tenant, "did:key:zDup", "fp-1")))
		err := s.store.Create(s.ctx, s.newRecord(s.tenant, "did:key:zDup", "fp-2"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("rejects duplicate key fingerprint", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newRecord(s.tenant, "did:key:zOne", "fp-same")))
		err := s.store.Create(s.ctx, s.newRecord(s.tenant, "did:key:zTwo", "fp-same"))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("existence checks see both uniques", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newRecord(s.tenant, "did:key:zHere", "fp-here")))

		exists, err := s.store.DidExists(s.ctx, s.tenant, "did:key:zHere")
		s.Require().NoError(err)
		s.True(exists)

		exists, err = s.store.FingerprintExists(s.ctx, s.tenant, "fp-here")
		s.Require().NoError(err)
		s.True(exists)

		exists, err = s.store.DidExists(s.ctx, s.tenant, "did:key:zElsewhere")
		s.Require().NoError(err)
		s.False(exists)
	})
}

func (s *DidStoreSuite) TestTenantIsolation() {
	other := id.TenantID(uuid.New())

	s.Run("same did can exist under different tenants", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newRecord(s.tenant, "did:key:zShared", "fp-t1")))
		s.Require().NoError(s.store.Create(s.ctx, s.newRecord(other, "did:key:zShared", "fp-t2")))
	})

	s.Run("lookups never cross tenants", func() {
		record := s.newRecord(s.tenant, "did:key:zMine", "fp-mine")
		s.Require().NoError(s.store.Create(s.ctx, record))

		_, err := s.store.FindByDid(s.ctx, other, "did:key:zMine")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByID(s.ctx, other, record.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		exists, err := s.store.FingerprintExists(s.ctx, other, "fp-mine")
		s.Require().NoError(err)
		s.False(exists)
	})
}

func (s *DidStoreSuite) TestList() {
	base := time.Now().UTC()

	first := s.newRecord(s.tenant, "did:key:zFirst", "fp-first")
	first.CreatedAt = base
	second := s.newRecord(s.tenant, "did:key:zSecond", "fp-second")
	second.CreatedAt = base.Add(time.Second)
	second.Status = models.StatusDeactivated
	s.Require().NoError(s.store.Create(s.ctx, first))
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Require().NoError(s.store.Create(s.ctx, s.newRecord(id.TenantID(uuid.New()), "did:key:zForeign", "fp-foreign")))

	s.Run("returns the tenant's records oldest first", func() {
		records, err := s.store.List(s.ctx, s.tenant, models.ListFilter{})
		s.Require().NoError(err)
		s.Require().Len(records, 2)
		s.Equal(first.ID, records[0].ID)
		s.Equal(second.ID, records[1].ID)
	})

	s.Run("filters by status", func() {
		records, err := s.store.List(s.ctx, s.tenant, models.ListFilter{Status: models.StatusActive})
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(first.ID, records[0].ID)
	})

	s.Run("unknown tenant lists empty", func() {
		records, err := s.store.List(s.ctx, id.TenantID(uuid.New()), models.ListFilter{})
		s.Require().NoError(err)
		s.Empty(records)
	})
}

func (s *DidStoreSuite) TestLifecycle() {
	s.Run("updates status in place", func() {
		record := s.newRecord(s.tenant, "did:key:zLife", "fp-life")
		s.Require().NoError(s.store.Create(s.ctx, record))

		s.Require().NoError(s.store.UpdateStatus(s.ctx, s.tenant, record.ID, models.StatusDeactivated))

		loaded, err := s.store.FindByID(s.ctx, s.tenant, record.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDeactivated, loaded.Status)
	})

	s.Run("touch records signing activity", func() {
		record := s.newRecord(s.tenant, "did:key:zTouch", "fp-touch")
		s.Require().NoError(s.store.Create(s.ctx, record))

		at := time.Now().UTC()
		s.Require().NoError(s.store.TouchLastUsed(s.ctx, s.tenant, record.ID, at))

		loaded, err := s.store.FindByID(s.ctx, s.tenant, record.ID)
		s.Require().NoError(err)
		s.Require().NotNil(loaded.LastUsedAt)
		s.True(loaded.LastUsedAt.Equal(at))
	})

	s.Run("status update on unknown record is ErrNotFound", func() {
		err := s.store.UpdateStatus(s.ctx, s.tenant, id.NewDidID(), models.StatusDeactivated)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
