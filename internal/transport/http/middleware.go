package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/requestcontext"
)

// tenantHeader carries the caller's tenant. Upstream authentication is
// expected to have validated it; this service trusts the header as the
// ambient tenant identity and scopes every query by it.
const tenantHeader = "X-Tenant-ID"

const requestIDHeader = "X-Request-ID"

// RequestContext stamps each request with an id, a fixed request time, and
// the tenant from the X-Tenant-ID header. Requests without a parseable
// tenant are rejected before reaching any handler.
func RequestContext(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			tenantID, err := id.ParseTenantID(r.Header.Get(tenantHeader))
			if err != nil || tenantID.IsNil() {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
					Code:    string(dErrors.CodeInvalidInput),
					Message: "a valid " + tenantHeader + " header is required",
				}})
				return
			}

			ctx := r.Context()
			ctx = requestcontext.WithRequestID(ctx, requestID)
			ctx = requestcontext.WithTime(ctx, time.Now())
			ctx = requestcontext.WithTenantID(ctx, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestcontext.RequestID(r.Context()),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
