// Package audit records an append-only trail of security-relevant events.
// Publishing is asynchronous so the hot paths (creation, issuance,
// verification) never block on the trail.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"attest/internal/audit/models"
	"attest/internal/audit/store"
	id "attest/pkg/domain"
)

const defaultBufferSize = 256

// Publisher accepts events on a buffered channel and drains them to the
// store from a single worker goroutine.
type Publisher struct {
	store  store.Store
	events chan models.Event
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithBufferSize sets the channel capacity.
func WithBufferSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.events = make(chan models.Event, n)
		}
	}
}

// New constructs a Publisher over an audit store.
func New(s store.Store, opts ...Option) (*Publisher, error) {
	if s == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	p := &Publisher{
		store:  s,
		events: make(chan models.Event, defaultBufferSize),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish enqueues an event without blocking. When the buffer is full the
// event is dropped and logged; the trail is best-effort, not a write-ahead
// log.
func (p *Publisher) Publish(ctx context.Context, tenantID id.TenantID, action models.Action, resource string, metadata map[string]string) {
	event := models.NewEvent(tenantID, action, resource, metadata)
	select {
	case p.events <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", string(action),
			"tenant_id", tenantID.String(),
		)
	}
}

// Run drains the event channel until ctx is cancelled, then flushes
// whatever remains in the buffer before returning.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return ctx.Err()
		case event := <-p.events:
			p.persist(event)
		}
	}
}

func (p *Publisher) flush() {
	for {
		select {
		case event := <-p.events:
			p.persist(event)
		default:
			return
		}
	}
}

func (p *Publisher) persist(event models.Event) {
	if err := p.store.Append(context.Background(), event); err != nil {
		p.logger.Error("audit append failed",
			"action", string(event.Action),
			"error", err,
		)
	}
}
