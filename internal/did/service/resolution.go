package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"attest/internal/did/codec"
	"attest/internal/did/metrics"
	"attest/internal/did/models"
	"attest/internal/did/store"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/platform/sentinel"
)

// ResolutionService resolves DID strings to documents within a tenant.
type ResolutionService struct {
	store   store.Store
	codecs  *codec.Registry
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// ResolutionOption configures a ResolutionService.
type ResolutionOption func(*ResolutionService)

// WithResolutionLogger sets the structured logger.
func WithResolutionLogger(logger *slog.Logger) ResolutionOption {
	return func(s *ResolutionService) {
		s.logger = logger
	}
}

// WithResolutionMetrics attaches prometheus metrics.
func WithResolutionMetrics(m *metrics.Metrics) ResolutionOption {
	return func(s *ResolutionService) {
		s.metrics = m
	}
}

// NewResolutionService constructs a ResolutionService.
func NewResolutionService(st store.Store, codecs *codec.Registry, opts ...ResolutionOption) (*ResolutionService, error) {
	if st == nil {
		return nil, fmt.Errorf("did store is required")
	}
	if codecs == nil {
		return nil, fmt.Errorf("codec registry is required")
	}
	s := &ResolutionService{
		store:  st,
		codecs: codecs,
		logger: slog.Default(),
		tracer: otel.Tracer("attest/internal/did/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Resolve returns the document for a DID owned by the tenant. Deactivated
// DIDs still resolve; only signing is disabled for them. A DID owned by
// another tenant resolves exactly like a missing one.
func (s *ResolutionService) Resolve(ctx context.Context, tenantID id.TenantID, did string) (models.Document, error) {
	ctx, span := s.tracer.Start(ctx, "did.resolve")
	defer span.End()

	record, err := s.lookup(ctx, tenantID, did)
	if err != nil {
		return models.Document{}, err
	}
	s.countResolution("ok")
	return record.Document, nil
}

// GetByID returns the key-material-free summary of a DID record.
func (s *ResolutionService) GetByID(ctx context.Context, tenantID id.TenantID, didID id.DidID) (models.Summary, error) {
	if tenantID.IsNil() {
		return models.Summary{}, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	record, err := s.store.FindByID(ctx, tenantID, didID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Summary{}, dErrors.Wrap(err, dErrors.CodeNotFound, "did not found")
		}
		return models.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "load did record")
	}
	return record.Summary(), nil
}

// List returns key-material-free summaries of the tenant's DIDs, oldest
// first, optionally narrowed to a lifecycle status.
func (s *ResolutionService) List(ctx context.Context, tenantID id.TenantID, filter models.ListFilter) ([]models.Summary, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", filter.Status)
	}
	records, err := s.store.List(ctx, tenantID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list did records")
	}
	summaries := make([]models.Summary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, record.Summary())
	}
	return summaries, nil
}

// Exists reports whether a syntactically valid DID is registered for the
// tenant. Malformed input is an error, not a false.
func (s *ResolutionService) Exists(ctx context.Context, tenantID id.TenantID, did string) (bool, error) {
	if err := s.validate(did); err != nil {
		return false, err
	}
	exists, err := s.store.DidExists(ctx, tenantID, did)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "did existence check")
	}
	return exists, nil
}

// lookup validates the DID syntax against its codec and loads the record.
func (s *ResolutionService) lookup(ctx context.Context, tenantID id.TenantID, did string) (models.DidRecord, error) {
	if tenantID.IsNil() {
		return models.DidRecord{}, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if err := s.validate(did); err != nil {
		return models.DidRecord{}, err
	}
	record, err := s.store.FindByDid(ctx, tenantID, did)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countResolution("not_found")
			return models.DidRecord{}, dErrors.Wrap(err, dErrors.CodeNotFound, "did not found")
		}
		return models.DidRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "load did record")
	}
	return record, nil
}

func (s *ResolutionService) validate(did string) error {
	method, _, err := codec.ParseDid(did)
	if err != nil {
		s.countResolution("invalid")
		return err
	}
	c, err := s.codecs.ForMethod(method)
	if err != nil {
		s.countResolution("method_not_supported")
		return err
	}
	if err := c.ValidateIdentifier(did); err != nil {
		s.countResolution("invalid")
		return err
	}
	return nil
}

func (s *ResolutionService) countResolution(outcome string) {
	if s.metrics != nil {
		s.metrics.Resolutions.WithLabelValues(outcome).Inc()
	}
}
