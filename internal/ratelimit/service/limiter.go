// Package service exposes the admission-control facade consumed by the DID
// and credential services.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"attest/internal/platform/config"
	"attest/internal/ratelimit/metrics"
	"attest/internal/ratelimit/models"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
)

// LimitError is the denial returned by Admit. It unwraps to a
// CodeRateLimited domain error and carries the window state so transports
// can emit rate limit headers.
type LimitError struct {
	Result *models.Result
	cause  error
}

func (e *LimitError) Error() string { return e.cause.Error() }
func (e *LimitError) Unwrap() error { return e.cause }

// BucketStore is the sliding-window counter behind the limiter.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
	Reset(ctx context.Context, key string) error
}

// Limiter applies per-(tenant, operation) sliding-window admission control.
type Limiter struct {
	store    BucketStore
	policies map[models.Operation]models.Policy
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithPolicy overrides the policy for one operation.
func WithPolicy(op models.Operation, policy models.Policy) Option {
	return func(l *Limiter) {
		l.policies[op] = policy
	}
}

// DefaultPolicies returns the standard ceilings: 100 ops per 60s window for
// regular operations, 3 per 5 minutes for short-code redemption.
func DefaultPolicies() map[models.Operation]models.Policy {
	return map[models.Operation]models.Policy{
		models.OpDidCreate:        {Limit: 100, Window: time.Minute},
		models.OpCredentialIssue:  {Limit: 100, Window: time.Minute},
		models.OpCredentialVerify: {Limit: 100, Window: time.Minute},
		models.OpCodeRedeem:       {Limit: 3, Window: 5 * time.Minute},
	}
}

// PoliciesFromConfig maps the configured ceilings onto operations.
func PoliciesFromConfig(cfg config.RateLimitConfig) map[models.Operation]models.Policy {
	standard := models.Policy{Limit: cfg.OperationLimit, Window: cfg.OperationWindow}
	return map[models.Operation]models.Policy{
		models.OpDidCreate:        standard,
		models.OpCredentialIssue:  standard,
		models.OpCredentialVerify: standard,
		models.OpCodeRedeem:       {Limit: cfg.RedeemLimit, Window: cfg.RedeemWindow},
	}
}

// WithPolicies replaces the whole policy table, typically from config.
func WithPolicies(policies map[models.Operation]models.Policy) Option {
	return func(l *Limiter) {
		if len(policies) > 0 {
			l.policies = policies
		}
	}
}

// New constructs a Limiter over a bucket store.
func New(store BucketStore, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("bucket store is required")
	}
	l := &Limiter{
		store:    store,
		policies: DefaultPolicies(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	// A missing policy would read as Limit 0 and silently deny (or worse);
	// reject incomplete tables at construction instead.
	for _, op := range models.Operations() {
		if _, ok := l.policies[op]; !ok {
			return nil, fmt.Errorf("rate limit policy missing for operation %s", op)
		}
	}
	return l, nil
}

// Admit checks the (tenant, operation) window. A denial returns the check
// result together with a CodeRateLimited error so callers can distinguish
// exhaustion from every other failure and back off.
func (l *Limiter) Admit(ctx context.Context, tenantID id.TenantID, op models.Operation) (*models.Result, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant id is required")
	}
	if !op.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown operation %q", op)
	}

	policy := l.policies[op]
	result, err := l.store.Allow(ctx, models.Key(tenantID, op), policy.Limit, policy.Window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "rate limit check failed")
	}
	if !result.Allowed {
		if l.metrics != nil {
			l.metrics.IncrementRejected(string(op))
		}
		l.logger.WarnContext(ctx, "rate limit exceeded",
			"tenant_id", tenantID.String(),
			"operation", string(op),
			"retry_after_s", result.RetryAfter,
		)
		return result, &LimitError{
			Result: result,
			cause:  dErrors.Newf(dErrors.CodeRateLimited, "rate limit exceeded for %s", op),
		}
	}
	if l.metrics != nil {
		l.metrics.IncrementAdmitted(string(op))
	}
	return result, nil
}

// Reset clears the window for a (tenant, operation) pair. Test and admin use.
func (l *Limiter) Reset(ctx context.Context, tenantID id.TenantID, op models.Operation) error {
	return l.store.Reset(ctx, models.Key(tenantID, op))
}
