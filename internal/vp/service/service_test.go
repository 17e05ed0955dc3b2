package service

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	credmodels "attest/internal/credential/models"
	credservice "attest/internal/credential/service"
	credmocks "attest/internal/credential/service/mocks"
	credstore "attest/internal/credential/store"
	"attest/internal/did/codec"
	"attest/internal/did/keygen"
	"attest/internal/did/keyvault"
	didmodels "attest/internal/did/models"
	didservice "attest/internal/did/service"
	didstore "attest/internal/did/store"
	rlmodels "attest/internal/ratelimit/models"
	"attest/internal/vp/models"
	vpmocks "attest/internal/vp/service/mocks"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

// PresentationSuite runs the full stack: real DIDs, a really issued
// credential, and real selective-disclosure cryptography. Only admission is
// mocked.
type PresentationSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	ctx        context.Context
	tenant     id.TenantID
	dids       *didstore.InMemoryStore
	creation   *didservice.CreationService
	resolution *didservice.ResolutionService
	signing    *didservice.SigningService
	issuance   *credservice.IssuanceService
	svc        *Service

	issuer     didmodels.Summary
	holder     didmodels.Summary
	credential credmodels.CredentialRecord
}

func (s *PresentationSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ctx = context.Background()
	s.tenant = id.TenantID(uuid.New())

	key := make([]byte, 32)
	_, err := rand.Read(key)
	s.Require().NoError(err)
	vault, err := keyvault.New(key)
	s.Require().NoError(err)

	s.dids = didstore.NewInMemoryStore()
	registry := codec.NewRegistry(codec.NewKeyCodec())
	credentials := credstore.NewInMemoryStore()

	admission := credmocks.NewMockAdmissionController(s.ctrl)
	admission.EXPECT().
		Admit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&rlmodels.Result{Allowed: true, Limit: 100, Remaining: 99}, nil).
		AnyTimes()

	s.creation, err = didservice.NewCreationService(s.dids, registry, keygen.New(), vault, admission)
	s.Require().NoError(err)
	s.resolution, err = didservice.NewResolutionService(s.dids, registry)
	s.Require().NoError(err)
	s.signing, err = didservice.NewSigningService(s.dids, vault)
	s.Require().NoError(err)

	s.issuance, err = credservice.NewIssuanceService(credentials, s.resolution, s.signing, admission)
	s.Require().NoError(err)
	verification, err := credservice.NewVerificationService(credentials, s.dids, admission)
	s.Require().NoError(err)

	s.svc, err = New(SDJWT{}, verification, s.signing, s.resolution, s.dids)
	s.Require().NoError(err)

	issuer, err := s.creation.CreateDid(s.ctx, s.tenant, didmodels.MethodKey)
	s.Require().NoError(err)
	s.issuer = issuer.Summary()
	holder, err := s.creation.CreateDid(s.ctx, s.tenant, didmodels.MethodKey)
	s.Require().NoError(err)
	s.holder = holder.Summary()

	s.credential, err = s.issuance.Issue(s.ctx, s.tenant, s.issuer.ID, s.holder.ID, "EmployeeCredential",
		map[string]any{"name": "Ada", "role": "engineer", "level": "senior"}, nil)
	s.Require().NoError(err)
}

func TestPresentationSuite(t *testing.T) {
	suite.Run(t, new(PresentationSuite))
}

func (s *PresentationSuite) TestCreateAndVerify() {
	s.Run("subset presentation discloses exactly the subset", func() {
		p, err := s.svc.CreatePresentation(s.ctx, s.tenant, s.credential.Token, []string{"role"}, s.holder.ID, "verifier.example", "nonce-1")
		s.Require().NoError(err)
		s.Len(p.DisclosureTokens, 1)
		s.Equal([]string{"role"}, p.DisclosedClaimNames)

		result, err := s.svc.VerifyPresentation(s.ctx, s.tenant, p.PresentationToken, p.DisclosureTokens)
		s.Require().NoError(err)
		s.True(result.IsValid)
		s.Equal(models.StatusValid, result.Status)
		s.Equal(map[string]any{"role": "engineer"}, result.DisclosedClaims)
	})

	s.Run("nil selection discloses every claim", func() {
		p, err := s.svc.CreatePresentation(s.ctx, s.tenant, s.credential.Token, nil, s.holder.ID, "", "")
		s.Require().NoError(err)
		s.Len(p.DisclosureTokens, 3)

		result, err := s.svc.VerifyPresentation(s.ctx, s.tenant, p.PresentationToken, p.DisclosureTokens)
		s.Require().NoError(err)
		s.True(result.IsValid)
		s.Len(result.DisclosedClaims, 3)
		s.Equal("Ada", result.DisclosedClaims["name"])
	})

	s.Run("holder can withhold disclosures after the fact", func() {
		p, err := s.svc.CreatePresentation(s.ctx, s.tenant, s.credential.Token, nil, s.holder.ID, "", "")
		s.Require().NoError(err)

		result, err := s.svc.VerifyPresentation(s.ctx, s.tenant, p.PresentationToken, p.DisclosureTokens[:1])
		s.Require().NoError(err)
		s.True(result.IsValid)
		s.Len(result.DisclosedClaims, 1)
	})
}

func (s *PresentationSuite) TestCreateRejections() {
	s.Run("claim outside the credential", func() {
		_, err := s.svc.CreatePresentation(s.ctx, s.tenant, s.credential.Token, []string{"salary"}, s.holder.ID, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("revoked credential is not presentable", func() {
		revoked, err := s.issuance.Issue(s.ctx, s.tenant, s.issuer.ID, s.holder.ID, "t", map[string]any{"a": 1}, nil)
		s.Require().NoError(err)
		s.Require().NoError(s.issuance.Revoke(s.ctx, s.tenant, revoked.ID))

		_, err = s.svc.CreatePresentation(s.ctx, s.tenant, revoked.Token, nil, s.holder.ID, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("malformed credential token is not presentable", func() {
		_, err := s.svc.CreatePresentation(s.ctx, s.tenant, "garbage", nil, s.holder.ID, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("empty credential token is a contract violation", func() {
		_, err := s.svc.CreatePresentation(s.ctx, s.tenant, "", nil, s.holder.ID, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown holder", func() {
		_, err := s.svc.CreatePresentation(s.ctx, s.tenant, s.credential.Token, nil, id.NewDidID(), "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("deactivated holder cannot present", func() {
		retired, err := s.creation.CreateDid(s.ctx, s.tenant, didmodels.MethodKey)
		s.Require().NoError(err)
		s.Require().NoError(s.creation.Deactivate(s.ctx, s.tenant, retired.ID))

		_, err = s.svc.CreatePresentation(s.ctx, s.tenant, s.credential.Token, nil, retired.ID, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("nil tenant", func() {
		_, err := s.svc.CreatePresentation(s.ctx, id.TenantID{}, s.credential.Token, nil, s.holder.ID, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *PresentationSuite) TestVerifyRejections() {
	p, err := s.svc.CreatePresentation(s.ctx, s.tenant, s.credential.Token, nil, s.holder.ID, "", "")
	s.Require().NoError(err)

	s.Run("malformed presentation token", func() {
		for _, raw := range []string{"", "one", "a.b", "a.%%%.c"} {
			result, err := s.svc.VerifyPresentation(s.ctx, s.tenant, raw, nil)
			s.Require().NoError(err)
			s.False(result.IsValid)
			s.Equal(models.StatusInvalidPresentation, result.Status)
		}
	})

	s.Run("holder outside the tenant", func() {
		result, err := s.svc.VerifyPresentation(s.ctx, id.TenantID(uuid.New()), p.PresentationToken, p.DisclosureTokens)
		s.Require().NoError(err)
		s.False(result.IsValid)
		s.Equal(models.StatusHolderNotFound, result.Status)
	})

	s.Run("tampered token fails against the registered key", func() {
		result, err := s.svc.VerifyPresentation(s.ctx, s.tenant, p.PresentationToken+"AA", p.DisclosureTokens)
		s.Require().NoError(err)
		s.False(result.IsValid)
		s.Equal(models.StatusInvalidPresentation, result.Status)
	})

	s.Run("foreign disclosure invalidates the presentation", func() {
		other, err := s.issuance.Issue(s.ctx, s.tenant, s.issuer.ID, s.holder.ID, "t2", map[string]any{"x": "y"}, nil)
		s.Require().NoError(err)
		otherP, err := s.svc.CreatePresentation(s.ctx, s.tenant, other.Token, nil, s.holder.ID, "", "")
		s.Require().NoError(err)

		result, err := s.svc.VerifyPresentation(s.ctx, s.tenant, p.PresentationToken, otherP.DisclosureTokens)
		s.Require().NoError(err)
		s.False(result.IsValid)
		s.Equal(models.StatusInvalidPresentation, result.Status)
	})

	s.Run("nil tenant is an error", func() {
		_, err := s.svc.VerifyPresentation(s.ctx, id.TenantID{}, p.PresentationToken, p.DisclosureTokens)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *PresentationSuite) TestVerifierErrorsPropagate() {
	verifier := vpmocks.NewMockCredentialVerifier(s.ctrl)
	verifier.EXPECT().
		Verify(gomock.Any(), s.tenant, s.credential.Token).
		Return(credmodels.VerifyResult{}, dErrors.New(dErrors.CodeRateLimited, "rate limit exceeded"))

	svc, err := New(SDJWT{}, verifier, s.signing, s.resolution, s.dids)
	s.Require().NoError(err)

	_, err = svc.CreatePresentation(s.ctx, s.tenant, s.credential.Token, nil, s.holder.ID, "", "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
}
