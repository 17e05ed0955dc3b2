package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	auditmodels "attest/internal/audit/models"
	"attest/internal/credential/metrics"
	"attest/internal/credential/models"
	"attest/internal/credential/store"
	"attest/internal/credential/token"
	didmodels "attest/internal/did/models"
	didservice "attest/internal/did/service"
	rlmodels "attest/internal/ratelimit/models"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
	"attest/pkg/requestcontext"
)

// VerificationService runs the staged verification pipeline over untrusted
// tokens. Every stage short-circuits to a typed status; errors are reserved
// for caller-contract violations and infrastructure failures, never for
// adversarial content.
type VerificationService struct {
	credentials store.Store
	issuers     IssuerResolver
	admission   AdmissionController
	trail       Trail
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// VerificationOption configures a VerificationService.
type VerificationOption func(*VerificationService)

// WithVerificationLogger sets the structured logger.
func WithVerificationLogger(logger *slog.Logger) VerificationOption {
	return func(s *VerificationService) {
		s.logger = logger
	}
}

// WithVerificationMetrics attaches prometheus metrics.
func WithVerificationMetrics(m *metrics.Metrics) VerificationOption {
	return func(s *VerificationService) {
		s.metrics = m
	}
}

// WithVerificationTrail attaches the audit trail.
func WithVerificationTrail(t Trail) VerificationOption {
	return func(s *VerificationService) {
		s.trail = t
	}
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(
	credentials store.Store,
	issuers IssuerResolver,
	admission AdmissionController,
	opts ...VerificationOption,
) (*VerificationService, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if issuers == nil {
		return nil, fmt.Errorf("issuer resolver is required")
	}
	if admission == nil {
		return nil, fmt.Errorf("admission controller is required")
	}
	s := &VerificationService{
		credentials: credentials,
		issuers:     issuers,
		admission:   admission,
		logger:      slog.Default(),
		tracer:      otel.Tracer("attest/internal/credential/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Verify runs the full pipeline: size cap, structure, strict header, payload
// validation, expiry, tenant-scoped issuer resolution, signature check, and
// revocation lookup. Only a token passing every stage is Valid.
func (s *VerificationService) Verify(ctx context.Context, tenantID id.TenantID, raw string) (models.VerifyResult, error) {
	ctx, span := s.tracer.Start(ctx, "credential.verify")
	defer span.End()

	if tenantID.IsNil() {
		return models.VerifyResult{}, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if _, err := s.admission.Admit(ctx, tenantID, rlmodels.OpCredentialVerify); err != nil {
		return models.VerifyResult{}, err
	}

	result, err := s.runPipeline(ctx, tenantID, raw)
	if err != nil {
		return models.VerifyResult{}, err
	}
	s.observe(ctx, tenantID, result)
	return result, nil
}

func (s *VerificationService) runPipeline(ctx context.Context, tenantID id.TenantID, raw string) (models.VerifyResult, error) {
	// Stage 1: size cap before any parsing.
	if err := token.CheckSize(raw); err != nil {
		return models.Failure(models.StatusMalformedToken, err.Error()), nil
	}

	// Stage 2: structure.
	headerSeg, payloadSeg, signatureSeg, err := token.Split(raw)
	if err != nil {
		return models.Failure(models.StatusMalformedToken, err.Error()), nil
	}

	// Stage 3: strict header. Key-identification headers are a reject.
	if err := token.DecodeHeader(headerSeg); err != nil {
		return models.Failure(models.StatusMalformedToken, err.Error()), nil
	}

	// Stage 4: payload and signature decoding.
	payload, err := token.DecodePayload(payloadSeg)
	if err != nil {
		return models.Failure(models.StatusMalformedToken, err.Error()), nil
	}
	signature, err := token.DecodeSignature(signatureSeg)
	if err != nil {
		return models.Failure(models.StatusMalformedToken, err.Error()), nil
	}

	// Stage 5: expiry. A nil exp never expires.
	if payload.ExpiresAt != nil && !payload.ExpiresAt.After(requestcontext.Now(ctx)) {
		result := models.Failure(models.StatusExpired, "credential is expired")
		result.IssuerDid = payload.Issuer
		result.ExpiresAt = payload.ExpiresAt
		return result, nil
	}

	// Stage 6: issuer resolution, tenant-scoped. A deactivated issuer is
	// indistinguishable from a missing one.
	issuer, err := s.issuers.FindByDid(ctx, tenantID, payload.Issuer)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Failure(models.StatusIssuerNotFound, "issuer did not found"), nil
		}
		return models.VerifyResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve issuer")
	}
	if issuer.Status != didmodels.StatusActive {
		return models.Failure(models.StatusIssuerNotFound, "issuer did not found"), nil
	}

	// Stage 7: signature over the first two segments.
	signingInput := headerSeg + "." + payloadSeg
	if !didservice.VerifyWithPublicKey(issuer.PublicKey, []byte(signingInput), signature) {
		return models.Failure(models.StatusSignatureInvalid, "signature does not verify against the issuer key"), nil
	}

	// Stage 8: revocation. A token with no persisted record has nothing to
	// be revoked against and passes through.
	record, err := s.credentials.FindByToken(ctx, tenantID, raw)
	switch {
	case err == nil:
		if record.Status == models.StatusRevoked {
			result := models.Failure(models.StatusCredentialRevoked, "credential is revoked")
			result.IssuerDid = payload.Issuer
			return result, nil
		}
	case errors.Is(err, sentinel.ErrNotFound):
	default:
		return models.VerifyResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "revocation lookup")
	}

	// Stage 9: all stages passed.
	return models.VerifyResult{
		IsValid:       true,
		Status:        models.StatusValid,
		IssuerDid:     payload.Issuer,
		ExpiresAt:     payload.ExpiresAt,
		SubjectClaims: payload.SubjectClaims,
	}, nil
}

func (s *VerificationService) observe(ctx context.Context, tenantID id.TenantID, result models.VerifyResult) {
	if s.metrics != nil {
		s.metrics.Verifications.WithLabelValues(string(result.Status)).Inc()
	}
	if result.IsValid {
		return
	}
	if s.trail != nil {
		s.trail.Publish(ctx, tenantID, auditmodels.ActionVerificationFailed, "credential", map[string]string{
			"status": string(result.Status),
		})
	}
	s.logger.InfoContext(ctx, "credential verification failed",
		"tenant_id", tenantID.String(),
		"status", string(result.Status),
	)
}
