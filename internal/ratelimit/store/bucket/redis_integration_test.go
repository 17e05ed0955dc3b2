//go:build integration

package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attest/pkg/testutil/containers"
)

type RedisBucketSuite struct {
	suite.Suite
	rc    *containers.RedisContainer
	store *RedisBucketStore
	ctx   context.Context
}

func (s *RedisBucketSuite) SetupSuite() {
	s.rc = containers.NewRedisContainer(s.T())
	s.store = NewRedisBucketStore(s.rc.Client)
	s.ctx = context.Background()
}

func (s *RedisBucketSuite) SetupTest() {
	s.Require().NoError(s.rc.FlushAll(s.ctx))
}

func TestRedisBucketSuite(t *testing.T) {
	suite.Run(t, new(RedisBucketSuite))
}

func (s *RedisBucketSuite) TestAdmissionAndDenial() {
	for i := 0; i < 3; i++ {
		result, err := s.store.Allow(s.ctx, "tenant:op", 3, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(3, result.Limit)
		s.Equal(2-i, result.Remaining)
	}

	result, err := s.store.Allow(s.ctx, "tenant:op", 3, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(0, result.Remaining)
	s.GreaterOrEqual(result.RetryAfter, 1)
	s.False(result.ResetAt.IsZero())
}

func (s *RedisBucketSuite) TestWindowSlides() {
	for i := 0; i < 2; i++ {
		_, err := s.store.Allow(s.ctx, "k", 2, time.Second)
		s.Require().NoError(err)
	}
	denied, err := s.store.Allow(s.ctx, "k", 2, time.Second)
	s.Require().NoError(err)
	s.False(denied.Allowed)

	time.Sleep(1100 * time.Millisecond)

	result, err := s.store.Allow(s.ctx, "k", 2, time.Second)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisBucketSuite) TestKeysAreIndependent() {
	_, err := s.store.Allow(s.ctx, "tenant-a:did_create", 1, time.Minute)
	s.Require().NoError(err)

	denied, err := s.store.Allow(s.ctx, "tenant-a:did_create", 1, time.Minute)
	s.Require().NoError(err)
	s.False(denied.Allowed)

	other, err := s.store.Allow(s.ctx, "tenant-b:did_create", 1, time.Minute)
	s.Require().NoError(err)
	s.True(other.Allowed)
}

func (s *RedisBucketSuite) TestReset() {
	_, err := s.store.Allow(s.ctx, "k", 1, time.Minute)
	s.Require().NoError(err)
	denied, err := s.store.Allow(s.ctx, "k", 1, time.Minute)
	s.Require().NoError(err)
	s.False(denied.Allowed)

	s.Require().NoError(s.store.Reset(s.ctx, "k"))

	result, err := s.store.Allow(s.ctx, "k", 1, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisBucketSuite) TestCountersExpire() {
	_, err := s.store.Allow(s.ctx, "ephemeral", 5, time.Second)
	s.Require().NoError(err)

	// The key carries a TTL of window plus a grace second; idle buckets
	// disappear on their own.
	time.Sleep(2500 * time.Millisecond)

	n, err := s.rc.Client.Exists(s.ctx, "ratelimit:ephemeral").Result()
	s.Require().NoError(err)
	s.Zero(n)
}
