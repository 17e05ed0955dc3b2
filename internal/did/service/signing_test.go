package service

import (
	"crypto/ed25519"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"attest/internal/did/keygen"
	"attest/internal/did/models"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

type SigningSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	f       *fixture
	created models.Created
}

func (s *SigningSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.f = newFixture(s.ctrl)
	s.f.admitAll()

	summary, err := s.f.creation(keygen.New()).CreateDid(s.f.ctx, s.f.tenant, models.MethodKey)
	s.Require().NoError(err)
	s.created = summary
}

func TestSigningSuite(t *testing.T) {
	suite.Run(t, new(SigningSuite))
}

func (s *SigningSuite) TestSignVerifyRoundTrip() {
	svc := s.f.signing()

	messages := [][]byte{
		[]byte("a"),
		[]byte("a longer payload with structure {\"k\":1}"),
		make([]byte, 4096),
	}
	for _, msg := range messages {
		sig, err := svc.Sign(s.f.ctx, s.f.tenant, s.created.Did, msg)
		s.Require().NoError(err)
		s.Len(sig, ed25519.SignatureSize)
		s.True(svc.Verify(s.f.ctx, s.f.tenant, s.created.Did, msg, sig))
	}
}

func (s *SigningSuite) TestTamperSensitivity() {
	svc := s.f.signing()
	msg := []byte("payload under signature")
	sig, err := svc.Sign(s.f.ctx, s.f.tenant, s.created.Did, msg)
	s.Require().NoError(err)

	s.Run("any flipped message bit fails verification", func() {
		for pos := 0; pos < len(msg); pos++ {
			tampered := append([]byte(nil), msg...)
			tampered[pos] ^= 0x01
			s.Require().False(svc.Verify(s.f.ctx, s.f.tenant, s.created.Did, tampered, sig), "bit flip at %d", pos)
		}
	})

	s.Run("any flipped signature bit fails verification", func() {
		for pos := 0; pos < len(sig); pos++ {
			tampered := append([]byte(nil), sig...)
			tampered[pos] ^= 0x01
			s.Require().False(svc.Verify(s.f.ctx, s.f.tenant, s.created.Did, msg, tampered), "bit flip at %d", pos)
		}
	})
}

func (s *SigningSuite) TestSignContract() {
	svc := s.f.signing()

	s.Run("empty message is rejected", func() {
		_, err := svc.Sign(s.f.ctx, s.f.tenant, s.created.Did, nil)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown did is not found", func() {
		_, err := svc.Sign(s.f.ctx, s.f.tenant, "did:key:z6MkUnknownUnknownUnknown", []byte("m"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("cross-tenant did is not found", func() {
		otherTenant := id.TenantID(uuid.New())
		_, err := svc.Sign(s.f.ctx, otherTenant, s.created.Did, []byte("m"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("deactivated did cannot sign", func() {
		s.Require().NoError(s.f.creation(keygen.New()).Deactivate(s.f.ctx, s.f.tenant, s.created.ID))
		_, err := svc.Sign(s.f.ctx, s.f.tenant, s.created.Did, []byte("m"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *SigningSuite) TestVerifyNeverErrors() {
	svc := s.f.signing()

	s.Run("unknown did verifies false", func() {
		s.False(svc.Verify(s.f.ctx, s.f.tenant, "did:key:zNope", []byte("m"), make([]byte, ed25519.SignatureSize)))
	})

	s.Run("malformed inputs verify false", func() {
		s.False(svc.Verify(s.f.ctx, s.f.tenant, "", []byte("m"), make([]byte, ed25519.SignatureSize)))
		s.False(svc.Verify(s.f.ctx, s.f.tenant, s.created.Did, nil, make([]byte, ed25519.SignatureSize)))
		s.False(svc.Verify(s.f.ctx, s.f.tenant, s.created.Did, []byte("m"), []byte("short")))
	})
}

func (s *SigningSuite) TestSignRecordsActivity() {
	svc := s.f.signing()

	before, err := s.f.store.FindByID(s.f.ctx, s.f.tenant, s.created.ID)
	s.Require().NoError(err)
	s.Nil(before.LastUsedAt)

	_, err = svc.Sign(s.f.ctx, s.f.tenant, s.created.Did, []byte("m"))
	s.Require().NoError(err)

	after, err := s.f.store.FindByID(s.f.ctx, s.f.tenant, s.created.ID)
	s.Require().NoError(err)
	s.NotNil(after.LastUsedAt)
}

func (s *SigningSuite) TestUseKeyScope() {
	svc := s.f.signing()

	var captured []byte
	err := svc.UseKey(s.f.ctx, s.f.tenant, s.created.Did, func(priv ed25519.PrivateKey) error {
		s.Len(priv, ed25519.PrivateKeySize)
		captured = priv
		return nil
	})
	s.Require().NoError(err)

	// The buffer is wiped once the callback returns; retaining it yields
	// zeroed bytes, not key material.
	s.Equal(make([]byte, ed25519.PrivateKeySize), captured)
}
