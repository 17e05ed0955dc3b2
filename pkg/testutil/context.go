// Package testutil provides helpers for building request contexts in tests.
package testutil

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	id "attest/pkg/domain"
	"attest/pkg/requestcontext"
)

// NewTenantID generates a fresh tenant ID for a test.
func NewTenantID() id.TenantID {
	return id.TenantID(uuid.New())
}

// ContextWithTenant returns a background context carrying the tenant ID,
// matching what the transport middleware injects.
func ContextWithTenant(tenantID id.TenantID) context.Context {
	return requestcontext.WithTenantID(context.Background(), tenantID)
}

// ContextWithTenantAndTime carries both the tenant and a frozen clock, for
// expiry and rate-window tests.
func ContextWithTenantAndTime(tenantID id.TenantID, now time.Time) context.Context {
	return requestcontext.WithTime(ContextWithTenant(tenantID), now)
}

// WithTenant adds a tenant ID to the request context. This simulates what
// the transport middleware does for a request with a valid X-Tenant-ID.
func WithTenant(req *http.Request, tenantID id.TenantID) *http.Request {
	return req.WithContext(requestcontext.WithTenantID(req.Context(), tenantID))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), key, value))
}
