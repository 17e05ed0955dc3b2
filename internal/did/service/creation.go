// Package service implements the DID lifecycle: creation, resolution,
// deactivation, and the signing boundary. Private key material never leaves
// this package in plaintext.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	auditmodels "attest/internal/audit/models"
	"attest/internal/did/codec"
	"attest/internal/did/keygen"
	"attest/internal/did/keyvault"
	"attest/internal/did/metrics"
	"attest/internal/did/models"
	"attest/internal/did/store"
	rlmodels "attest/internal/ratelimit/models"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/retry"
	"attest/pkg/platform/sentinel"
	"attest/pkg/requestcontext"
)

// createAttempts bounds how many times creation regenerates a keypair after
// an identifier or fingerprint collision before giving up.
const createAttempts = 3

// CreationService creates and deactivates tenant-scoped DIDs.
type CreationService struct {
	store     store.Store
	codecs    *codec.Registry
	generator *keygen.Generator
	vault     keyvault.Encryptor
	admission AdmissionController
	trail     Trail
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// CreationOption configures a CreationService.
type CreationOption func(*CreationService)

// WithCreationLogger sets the structured logger.
func WithCreationLogger(logger *slog.Logger) CreationOption {
	return func(s *CreationService) {
		s.logger = logger
	}
}

// WithCreationMetrics attaches prometheus metrics.
func WithCreationMetrics(m *metrics.Metrics) CreationOption {
	return func(s *CreationService) {
		s.metrics = m
	}
}

// WithCreationTrail attaches the audit trail.
func WithCreationTrail(t Trail) CreationOption {
	return func(s *CreationService) {
		s.trail = t
	}
}

// NewCreationService constructs a CreationService.
func NewCreationService(
	st store.Store,
	codecs *codec.Registry,
	generator *keygen.Generator,
	vault keyvault.Encryptor,
	admission AdmissionController,
	opts ...CreationOption,
) (*CreationService, error) {
	if st == nil {
		return nil, fmt.Errorf("did store is required")
	}
	if codecs == nil {
		return nil, fmt.Errorf("codec registry is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("key generator is required")
	}
	if vault == nil {
		return nil, fmt.Errorf("key vault is required")
	}
	if admission == nil {
		return nil, fmt.Errorf("admission controller is required")
	}
	s := &CreationService{
		store:     st,
		codecs:    codecs,
		generator: generator,
		vault:     vault,
		admission: admission,
		logger:    slog.Default(),
		tracer:    otel.Tracer("attest/internal/did/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateDid generates a fresh keypair, derives the DID for the requested
// method, and persists the record with the private key encrypted at rest.
// Identifier or fingerprint collisions trigger regeneration with a fresh
// keypair, bounded by createAttempts. The result carries the public key, the
// key ciphertext, and the document; the plaintext private key never leaves
// the creation frame.
func (s *CreationService) CreateDid(ctx context.Context, tenantID id.TenantID, method models.Method) (models.Created, error) {
	ctx, span := s.tracer.Start(ctx, "did.create",
		trace.WithAttributes(attribute.String("did.method", method.String())))
	defer span.End()

	if tenantID.IsNil() {
		return models.Created{}, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	c, err := s.codecs.ForMethod(method)
	if err != nil {
		s.countFailure("method_not_supported")
		return models.Created{}, err
	}

	if _, err := s.admission.Admit(ctx, tenantID, rlmodels.OpDidCreate); err != nil {
		if dErrors.HasCode(err, dErrors.CodeRateLimited) {
			s.countFailure("rate_limited")
			if s.trail != nil {
				s.trail.Publish(ctx, tenantID, auditmodels.ActionRateLimitExceeded, "did", map[string]string{
					"operation": rlmodels.OpDidCreate.String(),
				})
			}
		}
		return models.Created{}, err
	}

	start := time.Now()
	var created models.DidRecord
	err = retry.Do(createAttempts, func(attempt int) error {
		if attempt > 0 && s.metrics != nil {
			s.metrics.RetriedCreates.Inc()
		}
		return s.attemptCreate(ctx, tenantID, c, &created)
	})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			s.countFailure("retries_exhausted")
			return models.Created{}, dErrors.Wrap(err, dErrors.CodeExhaustedRetries, "did creation failed after repeated collisions")
		}
		if dErrors.HasCode(err, dErrors.CodeEntropyFailure) {
			s.countFailure("entropy")
		} else {
			s.countFailure("internal")
		}
		return models.Created{}, err
	}

	if s.metrics != nil {
		s.metrics.Created.WithLabelValues(method.String()).Inc()
		s.metrics.CreateDuration.Observe(time.Since(start).Seconds())
	}
	if s.trail != nil {
		s.trail.Publish(ctx, tenantID, auditmodels.ActionDidCreated, created.Did, map[string]string{
			"method": method.String(),
			"did_id": created.ID.String(),
		})
	}
	s.logger.InfoContext(ctx, "did created",
		"tenant_id", tenantID.String(),
		"did_id", created.ID.String(),
		"method", method.String(),
	)
	return created.Created(), nil
}

// attemptCreate runs one full generate-encode-encrypt-persist cycle. The
// plaintext private key lives only inside this frame and is wiped on exit.
func (s *CreationService) attemptCreate(ctx context.Context, tenantID id.TenantID, c codec.Codec, out *models.DidRecord) error {
	pair, err := s.generator.Generate()
	if err != nil {
		return err
	}
	guard := keygen.NewGuard()
	guard.Track(pair.Private)
	defer guard.Wipe()

	didStr, err := c.EncodeIdentifier(pair.Public)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode did identifier")
	}
	fingerprint := models.Fingerprint(pair.Public)

	// Pre-persist collision checks. Both uniques are also enforced by the
	// store; these checks let a collision trigger regeneration before the
	// private key is ever encrypted.
	if exists, err := s.store.DidExists(ctx, tenantID, didStr); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "did existence check")
	} else if exists {
		return retry.Retryable(dErrors.New(dErrors.CodeConflict, "did identifier already exists"))
	}
	if exists, err := s.store.FingerprintExists(ctx, tenantID, fingerprint); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "fingerprint existence check")
	} else if exists {
		return retry.Retryable(dErrors.New(dErrors.CodeConflict, "key fingerprint already registered"))
	}

	encrypted, err := s.vault.Encrypt(ctx, pair.Private)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encrypt private key")
	}
	if len(encrypted) == 0 || bytes.Equal(encrypted, pair.Private) {
		return dErrors.New(dErrors.CodeInternal, "key vault produced unusable ciphertext")
	}

	document, err := c.BuildDocument(didStr, pair.Public)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build did document")
	}

	record := models.DidRecord{
		ID:                  id.NewDidID(),
		TenantID:            tenantID,
		Did:                 didStr,
		Method:              c.Method(),
		PublicKey:           append([]byte(nil), pair.Public...),
		KeyFingerprint:      fingerprint,
		EncryptedPrivateKey: encrypted,
		Document:            document,
		Status:              models.StatusActive,
		CreatedAt:           requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Lost the race between the pre-check and the insert.
			return retry.Retryable(dErrors.Wrap(err, dErrors.CodeConflict, "did uniqueness race"))
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist did record")
	}
	*out = record
	return nil
}

// Deactivate flips a DID to deactivated. The record and its document remain
// resolvable; only signing is disabled. Deactivation is one-way.
func (s *CreationService) Deactivate(ctx context.Context, tenantID id.TenantID, didID id.DidID) error {
	ctx, span := s.tracer.Start(ctx, "did.deactivate")
	defer span.End()

	record, err := s.store.FindByID(ctx, tenantID, didID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "did not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load did record")
	}
	if record.Status == models.StatusDeactivated {
		return dErrors.New(dErrors.CodeInvalidState, "did is already deactivated")
	}
	if err := s.store.UpdateStatus(ctx, tenantID, didID, models.StatusDeactivated); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update did status")
	}

	if s.metrics != nil {
		s.metrics.Deactivated.Inc()
	}
	if s.trail != nil {
		s.trail.Publish(ctx, tenantID, auditmodels.ActionDidDeactivated, record.Did, map[string]string{
			"did_id": didID.String(),
		})
	}
	s.logger.InfoContext(ctx, "did deactivated",
		"tenant_id", tenantID.String(),
		"did_id", didID.String(),
	)
	return nil
}

func (s *CreationService) countFailure(reason string) {
	if s.metrics != nil {
		s.metrics.CreateFailed.WithLabelValues(reason).Inc()
	}
}
