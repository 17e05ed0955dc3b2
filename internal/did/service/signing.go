package service

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"attest/internal/did/keygen"
	"attest/internal/did/keyvault"
	"attest/internal/did/metrics"
	"attest/internal/did/models"
	"attest/internal/did/store"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
	"attest/pkg/requestcontext"
)

// SigningService is the only component that ever sees plaintext private
// keys. Keys are decrypted per operation, used, and wiped; nothing returns
// key material to callers.
type SigningService struct {
	store   store.Store
	vault   keyvault.Encryptor
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// SigningOption configures a SigningService.
type SigningOption func(*SigningService)

// WithSigningLogger sets the structured logger.
func WithSigningLogger(logger *slog.Logger) SigningOption {
	return func(s *SigningService) {
		s.logger = logger
	}
}

// WithSigningMetrics attaches prometheus metrics.
func WithSigningMetrics(m *metrics.Metrics) SigningOption {
	return func(s *SigningService) {
		s.metrics = m
	}
}

// NewSigningService constructs a SigningService.
func NewSigningService(st store.Store, vault keyvault.Encryptor, opts ...SigningOption) (*SigningService, error) {
	if st == nil {
		return nil, fmt.Errorf("did store is required")
	}
	if vault == nil {
		return nil, fmt.Errorf("key vault is required")
	}
	s := &SigningService{
		store:  st,
		vault:  vault,
		logger: slog.Default(),
		tracer: otel.Tracer("attest/internal/did/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign produces an ed25519 signature over message with the DID's private
// key. The DID must exist in the tenant and be active. Signing records
// last-used activity on the DID.
func (s *SigningService) Sign(ctx context.Context, tenantID id.TenantID, did string, message []byte) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "did.sign")
	defer span.End()

	if len(message) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "message is required")
	}

	var signature []byte
	err := s.UseKey(ctx, tenantID, did, func(priv ed25519.PrivateKey) error {
		signature = ed25519.Sign(priv, message)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SignOperations.Inc()
	}
	return signature, nil
}

// Verify checks a signature against the DID's registered public key. It
// never returns an error: any failure (unknown DID, malformed input, bad
// signature) verifies as false. Deactivated DIDs still verify; signatures
// made before deactivation stay checkable.
func (s *SigningService) Verify(ctx context.Context, tenantID id.TenantID, did string, message, signature []byte) bool {
	if tenantID.IsNil() || did == "" || len(message) == 0 || len(signature) != ed25519.SignatureSize {
		return false
	}
	record, err := s.store.FindByDid(ctx, tenantID, did)
	if err != nil {
		return false
	}
	return VerifyWithPublicKey(record.PublicKey, message, signature)
}

// VerifyWithPublicKey checks a signature against a raw public key without a
// store lookup. Malformed inputs verify as false.
func VerifyWithPublicKey(publicKey, message, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(message) == 0 || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// UseKey decrypts the DID's private key and passes it to fn. The key is
// wiped when fn returns; fn must not retain it. The DID must be active.
func (s *SigningService) UseKey(ctx context.Context, tenantID id.TenantID, did string, fn func(priv ed25519.PrivateKey) error) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if did == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "did is required")
	}
	record, err := s.store.FindByDid(ctx, tenantID, did)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "did not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load did record")
	}
	if record.Status != models.StatusActive {
		return dErrors.New(dErrors.CodeInvalidState, "did is deactivated")
	}

	raw, err := s.vault.Decrypt(ctx, record.EncryptedPrivateKey)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decrypt private key")
	}
	guard := keygen.NewGuard()
	guard.Track(raw)
	defer guard.Wipe()

	if len(raw) != ed25519.PrivateKeySize {
		return dErrors.Newf(dErrors.CodeInternal, "decrypted key has %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
	}
	if err := fn(ed25519.PrivateKey(raw)); err != nil {
		return err
	}

	if err := s.store.TouchLastUsed(ctx, tenantID, record.ID, requestcontext.Now(ctx)); err != nil {
		// Activity tracking is best effort; the signature already happened.
		s.logger.WarnContext(ctx, "failed to record did activity",
			"did_id", record.ID.String(),
			"error", err,
		)
	}
	return nil
}
