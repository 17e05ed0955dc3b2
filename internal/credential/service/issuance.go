// Package service implements credential issuance, revocation, and the
// adversarial-input verification pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	auditmodels "attest/internal/audit/models"
	"attest/internal/credential/metrics"
	"attest/internal/credential/models"
	"attest/internal/credential/store"
	"attest/internal/credential/token"
	didmodels "attest/internal/did/models"
	rlmodels "attest/internal/ratelimit/models"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
	"attest/pkg/requestcontext"
)

// IssuanceService issues and revokes credentials. Issued tokens are EdDSA
// JWTs signed with the issuer DID's key via the signing boundary.
type IssuanceService struct {
	store     store.Store
	directory DidDirectory
	signer    Signer
	admission AdmissionController
	trail     Trail
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// IssuanceOption configures an IssuanceService.
type IssuanceOption func(*IssuanceService)

// WithIssuanceLogger sets the structured logger.
func WithIssuanceLogger(logger *slog.Logger) IssuanceOption {
	return func(s *IssuanceService) {
		s.logger = logger
	}
}

// WithIssuanceMetrics attaches prometheus metrics.
func WithIssuanceMetrics(m *metrics.Metrics) IssuanceOption {
	return func(s *IssuanceService) {
		s.metrics = m
	}
}

// WithIssuanceTrail attaches the audit trail.
func WithIssuanceTrail(t Trail) IssuanceOption {
	return func(s *IssuanceService) {
		s.trail = t
	}
}

// NewIssuanceService constructs an IssuanceService.
func NewIssuanceService(
	st store.Store,
	directory DidDirectory,
	signer Signer,
	admission AdmissionController,
	opts ...IssuanceOption,
) (*IssuanceService, error) {
	if st == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if directory == nil {
		return nil, fmt.Errorf("did directory is required")
	}
	if signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	if admission == nil {
		return nil, fmt.Errorf("admission controller is required")
	}
	s := &IssuanceService{
		store:     st,
		directory: directory,
		signer:    signer,
		admission: admission,
		logger:    slog.Default(),
		tracer:    otel.Tracer("attest/internal/credential/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue builds, signs, and persists a credential binding holder to issuer.
// Both DIDs must resolve within the caller's tenant; a cross-tenant
// reference fails with a tenant-isolation error, never a silent rescope.
func (s *IssuanceService) Issue(
	ctx context.Context,
	tenantID id.TenantID,
	issuerDidID, holderDidID id.DidID,
	credentialType string,
	claims map[string]any,
	expiresAt *time.Time,
) (models.CredentialRecord, error) {
	ctx, span := s.tracer.Start(ctx, "credential.issue",
		trace.WithAttributes(attribute.String("credential.type", credentialType)))
	defer span.End()

	if tenantID.IsNil() {
		return models.CredentialRecord{}, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if credentialType == "" {
		return models.CredentialRecord{}, dErrors.New(dErrors.CodeInvalidInput, "credential type is required")
	}
	if len(claims) > token.MaxSubjectClaims {
		return models.CredentialRecord{}, dErrors.Newf(dErrors.CodeInvalidInput, "subject claims exceed %d entries", token.MaxSubjectClaims)
	}

	if _, err := s.admission.Admit(ctx, tenantID, rlmodels.OpCredentialIssue); err != nil {
		s.countIssueFailure(err, "rate_limited")
		return models.CredentialRecord{}, err
	}

	issuer, err := s.resolveParty(ctx, tenantID, issuerDidID, "issuer")
	if err != nil {
		s.countIssueFailure(err, "issuer")
		return models.CredentialRecord{}, err
	}
	holder, err := s.resolveParty(ctx, tenantID, holderDidID, "holder")
	if err != nil {
		s.countIssueFailure(err, "holder")
		return models.CredentialRecord{}, err
	}

	issuedAt := requestcontext.Now(ctx)
	if expiresAt != nil && !expiresAt.After(issuedAt) {
		return models.CredentialRecord{}, dErrors.New(dErrors.CodeInvalidInput, "expires_at must be after the issuance time")
	}

	signingInput, err := token.BuildSigningInput(issuer.Did, holder.Did, credentialType, claims, issuedAt, expiresAt)
	if err != nil {
		return models.CredentialRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "build credential token")
	}
	signature, err := s.signer.Sign(ctx, tenantID, issuer.Did, []byte(signingInput))
	if err != nil {
		return models.CredentialRecord{}, err
	}

	record := models.CredentialRecord{
		ID:             id.NewCredentialID(),
		TenantID:       tenantID,
		IssuerDidID:    issuerDidID,
		HolderDidID:    holderDidID,
		CredentialType: credentialType,
		Token:          token.Assemble(signingInput, signature),
		Status:         models.StatusActive,
		IssuedAt:       issuedAt,
		ExpiresAt:      expiresAt,
	}
	if err := s.store.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return models.CredentialRecord{}, dErrors.Wrap(err, dErrors.CodeConflict, "credential token already exists")
		}
		return models.CredentialRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist credential record")
	}

	if s.metrics != nil {
		s.metrics.Issued.WithLabelValues(credentialType).Inc()
	}
	if s.trail != nil {
		s.trail.Publish(ctx, tenantID, auditmodels.ActionCredentialIssued, record.ID.String(), map[string]string{
			"credential_type": credentialType,
			"issuer_did":      issuer.Did,
		})
	}
	s.logger.InfoContext(ctx, "credential issued",
		"tenant_id", tenantID.String(),
		"credential_id", record.ID.String(),
		"credential_type", credentialType,
	)
	return record, nil
}

// List returns the tenant's credential records, oldest first, optionally
// narrowed by status, credential type, or an expiry cutoff.
func (s *IssuanceService) List(ctx context.Context, tenantID id.TenantID, filter models.ListFilter) ([]models.CredentialRecord, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", filter.Status)
	}
	records, err := s.store.List(ctx, tenantID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list credential records")
	}
	return records, nil
}

// Revoke marks a credential revoked. One-way: a revoked credential stays
// revoked and verifies as Revoked from that point on.
func (s *IssuanceService) Revoke(ctx context.Context, tenantID id.TenantID, credentialID id.CredentialID) error {
	ctx, span := s.tracer.Start(ctx, "credential.revoke")
	defer span.End()

	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	err := s.store.Revoke(ctx, tenantID, credentialID, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeNotFound, "credential not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.Wrap(err, dErrors.CodeInvalidState, "credential is already revoked")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "revoke credential")
		}
	}

	if s.metrics != nil {
		s.metrics.Revoked.Inc()
	}
	if s.trail != nil {
		s.trail.Publish(ctx, tenantID, auditmodels.ActionCredentialRevoked, credentialID.String(), nil)
	}
	s.logger.InfoContext(ctx, "credential revoked",
		"tenant_id", tenantID.String(),
		"credential_id", credentialID.String(),
	)
	return nil
}

// resolveParty loads a DID summary and requires it to be active. A DID
// missing from the tenant (including one owned by another tenant) is a
// tenant-isolation failure.
func (s *IssuanceService) resolveParty(ctx context.Context, tenantID id.TenantID, didID id.DidID, role string) (didmodels.Summary, error) {
	summary, err := s.directory.GetByID(ctx, tenantID, didID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return didmodels.Summary{}, dErrors.Newf(dErrors.CodeTenantMismatch, "%s did does not belong to the tenant", role)
		}
		return didmodels.Summary{}, err
	}
	if summary.Status != didmodels.StatusActive {
		return didmodels.Summary{}, dErrors.Newf(dErrors.CodeInvalidState, "%s did is deactivated", role)
	}
	return summary, nil
}

func (s *IssuanceService) countIssueFailure(err error, reason string) {
	if s.metrics == nil {
		return
	}
	if reason == "rate_limited" && !dErrors.HasCode(err, dErrors.CodeRateLimited) {
		reason = "admission"
	}
	s.metrics.IssueFailed.WithLabelValues(reason).Inc()
}
