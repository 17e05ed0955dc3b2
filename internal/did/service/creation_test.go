package service

import (
	"bytes"
	"crypto/ed25519"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	auditmodels "attest/internal/audit/models"
	"attest/internal/did/keygen"
	"attest/internal/did/models"
	"attest/internal/did/service/mocks"
	rlmodels "attest/internal/ratelimit/models"
	rlservice "attest/internal/ratelimit/service"
	"attest/internal/ratelimit/store/bucket"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

type CreationSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	f    *fixture
}

func (s *CreationSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.f = newFixture(s.ctrl)
}

func TestCreationSuite(t *testing.T) {
	suite.Run(t, new(CreationSuite))
}

func (s *CreationSuite) TestCreateDid() {
	s.f.admitAll()
	svc := s.f.creation(keygen.New())

	s.Run("creates an active did:key", func() {
		summary, err := svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
		s.Require().NoError(err)
		s.True(strings.HasPrefix(summary.Did, "did:key:z"))
		s.Equal(models.StatusActive, summary.Status)
		s.Equal(s.f.tenant, summary.TenantID)
	})

	s.Run("result carries key material and the document", func() {
		created, err := svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
		s.Require().NoError(err)
		s.Len(created.PublicKey, ed25519.PublicKeySize)
		s.NotEmpty(created.EncryptedPrivateKey)
		s.Equal(created.Did, created.Document.ID)
		s.Require().Len(created.Document.VerificationMethod, 1)
		s.NotEmpty(created.Document.VerificationMethod[0].PublicKeyMultibase)

		record, err := s.f.store.FindByDid(s.f.ctx, s.f.tenant, created.Did)
		s.Require().NoError(err)
		s.Equal(record.PublicKey, created.PublicKey)
		s.Equal(record.EncryptedPrivateKey, created.EncryptedPrivateKey)
	})

	s.Run("persists the private key only as ciphertext", func() {
		summary, err := svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
		s.Require().NoError(err)

		record, err := s.f.store.FindByDid(s.f.ctx, s.f.tenant, summary.Did)
		s.Require().NoError(err)
		s.NotEmpty(record.EncryptedPrivateKey)

		decrypted, err := s.f.vault.Decrypt(s.f.ctx, record.EncryptedPrivateKey)
		s.Require().NoError(err)
		s.Len(decrypted, ed25519.PrivateKeySize)
		s.False(bytes.Equal(decrypted, record.EncryptedPrivateKey))
	})

	s.Run("unsupported method is rejected before key generation", func() {
		_, err := svc.CreateDid(s.f.ctx, s.f.tenant, models.Method("peer"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeMethodNotSupported))
	})

	s.Run("missing tenant is a contract violation", func() {
		_, err := svc.CreateDid(s.f.ctx, id.TenantID{}, models.MethodKey)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *CreationSuite) TestUniquenessAtScale() {
	s.f.admitAll()
	svc := s.f.creation(keygen.New())

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		summary, err := svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
		s.Require().NoError(err)
		s.False(seen[summary.Did], "duplicate did %s", summary.Did)
		seen[summary.Did] = true
	}
}

func (s *CreationSuite) TestCollisionRetry() {
	s.f.admitAll()

	s.Run("regenerates after a collision and succeeds", func() {
		// First creation consumes the start of a deterministic stream. A
		// second generator over the same stream reproduces that key on its
		// first attempt, collides, and recovers with the next draw.
		first := s.f.creation(keygen.New(keygen.WithSource(&detStream{seed: 7})))
		original, err := first.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
		s.Require().NoError(err)

		second := s.f.creation(keygen.New(keygen.WithSource(&detStream{seed: 7})))
		recovered, err := second.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
		s.Require().NoError(err)
		s.NotEqual(original.Did, recovered.Did)
	})

	s.Run("gives up after bounded attempts when every key collides", func() {
		first := s.f.creation(keygen.New(keygen.WithSource(&detStream{seed: 11})))
		for i := 0; i < createAttempts; i++ {
			_, err := first.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
			s.Require().NoError(err)
		}

		// Replaying the same stream collides on every bounded attempt.
		replay := s.f.creation(keygen.New(keygen.WithSource(&detStream{seed: 11})))
		_, err := replay.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeExhaustedRetries))
	})
}

func (s *CreationSuite) TestEntropyFailure() {
	s.f.admitAll()
	svc := s.f.creation(keygen.New(keygen.WithSource(bytes.NewReader(make([]byte, 4096)))))

	_, err := svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeEntropyFailure))
}

func (s *CreationSuite) TestRateLimiting() {
	limiter, err := rlservice.New(bucket.NewInMemoryBucketStore(),
		rlservice.WithPolicy(rlmodels.OpDidCreate, rlmodels.Policy{Limit: 2, Window: time.Minute}),
	)
	s.Require().NoError(err)

	svc, err := NewCreationService(s.f.store, s.f.registry, keygen.New(), s.f.vault, limiter)
	s.Require().NoError(err)

	for i := 0; i < 2; i++ {
		_, err := svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
		s.Require().NoError(err)
	}

	_, err = svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))

	var limitErr *rlservice.LimitError
	s.Require().ErrorAs(err, &limitErr)
	s.Equal(2, limitErr.Result.Limit)
	s.GreaterOrEqual(limitErr.Result.RetryAfter, 1)
}

func (s *CreationSuite) TestDeactivate() {
	s.f.admitAll()
	svc := s.f.creation(keygen.New())

	summary, err := svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
	s.Require().NoError(err)

	s.Run("flips the record to deactivated", func() {
		s.Require().NoError(svc.Deactivate(s.f.ctx, s.f.tenant, summary.ID))
		record, err := s.f.store.FindByID(s.f.ctx, s.f.tenant, summary.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDeactivated, record.Status)
	})

	s.Run("second deactivation is an invalid state", func() {
		err := svc.Deactivate(s.f.ctx, s.f.tenant, summary.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown did is not found", func() {
		err := svc.Deactivate(s.f.ctx, s.f.tenant, id.NewDidID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CreationSuite) TestAuditTrail() {
	s.f.admitAll()
	trail := mocks.NewMockTrail(s.ctrl)
	trail.EXPECT().
		Publish(gomock.Any(), s.f.tenant, auditmodels.ActionDidCreated, gomock.Any(), gomock.Any()).
		Times(1)

	svc, err := NewCreationService(s.f.store, s.f.registry, keygen.New(), s.f.vault, s.f.admission,
		WithCreationTrail(trail))
	s.Require().NoError(err)

	_, err = svc.CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
	s.Require().NoError(err)
}
