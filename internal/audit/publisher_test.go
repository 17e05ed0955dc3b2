package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"attest/internal/audit/models"
	"attest/internal/audit/store"
	id "attest/pkg/domain"
)

type PublisherSuite struct {
	suite.Suite
	ctx    context.Context
	store  *store.InMemoryStore
	tenant id.TenantID
}

func (s *PublisherSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()
	s.tenant = id.TenantID(uuid.New())
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

// drain runs the publisher until cancelled and waits for the final flush.
func (s *PublisherSuite) drain(p *Publisher, publish func()) {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()

	publish()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.FailNow("publisher did not stop")
	}
}

func (s *PublisherSuite) TestPublishDelivers() {
	p, err := New(s.store)
	s.Require().NoError(err)

	s.drain(p, func() {
		p.Publish(s.ctx, s.tenant, models.ActionDidCreated, "did-1", map[string]string{"method": "key"})
		p.Publish(s.ctx, s.tenant, models.ActionCredentialIssued, "cred-1", nil)
	})

	events, err := s.store.ListByTenant(s.ctx, s.tenant, 0)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(models.ActionDidCreated, events[0].Action)
	s.Equal("did-1", events[0].Resource)
	s.Equal("key", events[0].Metadata["method"])
	s.NotEqual(uuid.Nil, events[0].ID)
	s.False(events[0].Timestamp.IsZero())
}

func (s *PublisherSuite) TestFullBufferDropsInsteadOfBlocking() {
	p, err := New(s.store, WithBufferSize(2))
	s.Require().NoError(err)

	// No worker running: the third publish must return instead of blocking.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			p.Publish(s.ctx, s.tenant, models.ActionRateLimitExceeded, "op", nil)
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.FailNow("publish blocked on a full buffer")
	}

	s.drain(p, func() {})

	events, err := s.store.ListByTenant(s.ctx, s.tenant, 0)
	s.Require().NoError(err)
	s.Len(events, 2)
}

func (s *PublisherSuite) TestCancelFlushesTheBuffer() {
	p, err := New(s.store)
	s.Require().NoError(err)

	// Enqueue before the worker ever runs, then let Run flush on its way out.
	for i := 0; i < 10; i++ {
		p.Publish(s.ctx, s.tenant, models.ActionCredentialRevoked, "cred", nil)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	s.Require().ErrorIs(p.Run(ctx), context.Canceled)

	events, err := s.store.ListByTenant(s.ctx, s.tenant, 0)
	s.Require().NoError(err)
	s.Len(events, 10)
}

func (s *PublisherSuite) TestTenantScopedListing() {
	other := id.TenantID(uuid.New())
	p, err := New(s.store)
	s.Require().NoError(err)

	s.drain(p, func() {
		p.Publish(s.ctx, s.tenant, models.ActionDidCreated, "a", nil)
		p.Publish(s.ctx, other, models.ActionDidCreated, "b", nil)
		p.Publish(s.ctx, s.tenant, models.ActionDidDeactivated, "a", nil)
	})

	mine, err := s.store.ListByTenant(s.ctx, s.tenant, 0)
	s.Require().NoError(err)
	s.Len(mine, 2)

	s.Run("limit keeps the newest events", func() {
		limited, err := s.store.ListByTenant(s.ctx, s.tenant, 1)
		s.Require().NoError(err)
		s.Require().Len(limited, 1)
		s.Equal(models.ActionDidDeactivated, limited[0].Action)
	})

	s.Run("unknown tenant lists empty", func() {
		none, err := s.store.ListByTenant(s.ctx, id.TenantID(uuid.New()), 0)
		s.Require().NoError(err)
		s.Empty(none)
	})
}
