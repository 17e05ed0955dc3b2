// Package service orchestrates selective-disclosure presentations: a holder
// proves a subset of a verified credential's claims without revealing the
// rest.
package service

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	didmodels "attest/internal/did/models"
	"attest/internal/vp/models"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
)

// Service creates and verifies selective-disclosure presentations.
type Service struct {
	primitive   Primitive
	credentials CredentialVerifier
	keys        KeyUser
	directory   DidDirectory
	records     DidRecords
	logger      *slog.Logger
	tracer      trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a presentation Service.
func New(
	primitive Primitive,
	credentials CredentialVerifier,
	keys KeyUser,
	directory DidDirectory,
	records DidRecords,
	opts ...Option,
) (*Service, error) {
	if primitive == nil {
		return nil, fmt.Errorf("sd-jwt primitive is required")
	}
	if credentials == nil {
		return nil, fmt.Errorf("credential verifier is required")
	}
	if keys == nil {
		return nil, fmt.Errorf("key user is required")
	}
	if directory == nil {
		return nil, fmt.Errorf("did directory is required")
	}
	if records == nil {
		return nil, fmt.Errorf("did records is required")
	}
	s := &Service{
		primitive:   primitive,
		credentials: credentials,
		keys:        keys,
		directory:   directory,
		records:     records,
		logger:      slog.Default(),
		tracer:      otel.Tracer("attest/internal/vp/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreatePresentation verifies the credential, selects the claim subset, and
// has the holder DID sign a selective-disclosure token over it. A nil
// claimsToDisclose discloses every subject claim.
func (s *Service) CreatePresentation(
	ctx context.Context,
	tenantID id.TenantID,
	credentialToken string,
	claimsToDisclose []string,
	holderDidID id.DidID,
	audience, nonce string,
) (models.Presentation, error) {
	ctx, span := s.tracer.Start(ctx, "presentation.create")
	defer span.End()

	if tenantID.IsNil() {
		return models.Presentation{}, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if credentialToken == "" {
		return models.Presentation{}, dErrors.New(dErrors.CodeInvalidInput, "credential token is required")
	}

	verdict, err := s.credentials.Verify(ctx, tenantID, credentialToken)
	if err != nil {
		return models.Presentation{}, err
	}
	if !verdict.IsValid {
		return models.Presentation{}, dErrors.Newf(dErrors.CodeInvalidState, "credential is not presentable: %s", verdict.Status)
	}

	for _, name := range claimsToDisclose {
		if _, ok := verdict.SubjectClaims[name]; !ok {
			return models.Presentation{}, dErrors.Newf(dErrors.CodeInvalidInput, "claim %q is not in the credential", name)
		}
	}

	holder, err := s.directory.GetByID(ctx, tenantID, holderDidID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return models.Presentation{}, dErrors.Wrap(err, dErrors.CodeNotFound, "holder did not found")
		}
		return models.Presentation{}, err
	}
	if holder.Status != didmodels.StatusActive {
		return models.Presentation{}, dErrors.New(dErrors.CodeInvalidState, "holder did is deactivated")
	}

	var built models.Presentation
	err = s.keys.UseKey(ctx, tenantID, holder.Did, func(priv ed25519.PrivateKey) error {
		p, err := s.primitive.Build(verdict.SubjectClaims, claimsToDisclose, priv, verdict.IssuerDid, holder.Did, audience, nonce)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "build presentation")
		}
		names := make([]string, 0, len(p.ClaimDigestMap))
		for name := range p.ClaimDigestMap {
			names = append(names, name)
		}
		built = models.Presentation{
			PresentationToken:   p.CompactToken,
			DisclosureTokens:    p.DisclosureTokens,
			DisclosedClaimNames: names,
		}
		return nil
	})
	if err != nil {
		return models.Presentation{}, err
	}

	s.logger.InfoContext(ctx, "presentation created",
		"tenant_id", tenantID.String(),
		"holder_did_id", holderDidID.String(),
		"disclosed_claims", len(built.DisclosedClaimNames),
	)
	return built, nil
}

// VerifyPresentation resolves the holder named in the token within the
// caller's tenant and checks the presentation plus disclosures against the
// holder's registered key.
func (s *Service) VerifyPresentation(ctx context.Context, tenantID id.TenantID, presentationToken string, disclosures []string) (models.VerifyResult, error) {
	ctx, span := s.tracer.Start(ctx, "presentation.verify")
	defer span.End()

	if tenantID.IsNil() {
		return models.VerifyResult{}, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}

	holderDid, err := unverifiedHolder(presentationToken)
	if err != nil {
		return models.VerifyResult{IsValid: false, Status: models.StatusInvalidPresentation}, nil
	}

	holder, err := s.records.FindByDid(ctx, tenantID, holderDid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.VerifyResult{IsValid: false, Status: models.StatusHolderNotFound}, nil
		}
		return models.VerifyResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve holder")
	}

	result, err := s.primitive.Verify(presentationToken, disclosures, holder.PublicKey)
	if err != nil {
		return models.VerifyResult{IsValid: false, Status: models.StatusInvalidPresentation}, nil
	}
	if !result.Valid {
		return models.VerifyResult{IsValid: false, Status: models.StatusInvalidPresentation}, nil
	}
	return models.VerifyResult{
		IsValid:         true,
		Status:          models.StatusValid,
		DisclosedClaims: result.DisclosedClaims,
	}, nil
}

// unverifiedHolder peeks the sub claim before any signature check, purely to
// pick which registered key to verify against. Nothing else is trusted from
// the unverified payload.
func unverifiedHolder(compact string) (string, error) {
	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("token has %d segments, want 3", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("payload is not base64url: %w", err)
	}
	var payload struct {
		Subject string `json:"sub"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if payload.Subject == "" {
		return "", fmt.Errorf("sub claim is required")
	}
	return payload.Subject, nil
}
