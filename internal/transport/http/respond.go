package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	rlservice "attest/internal/ratelimit/service"
	dErrors "attest/pkg/domain-errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps domain error codes onto HTTP statuses. Rate limit
// denials additionally carry the window state as response headers.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var limitErr *rlservice.LimitError
	if errors.As(err, &limitErr) && limitErr.Result != nil {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitErr.Result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limitErr.Result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(limitErr.Result.ResetAt.Unix(), 10))
		w.Header().Set("Retry-After", strconv.Itoa(limitErr.Result.RetryAfter))
	}

	code := dErrors.CodeOf(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "code", string(code), "error", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(code),
		Message: publicMessage(err, status),
	}})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeMethodNotSupported:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeTenantMismatch:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInvalidState:
		return http.StatusConflict
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	case dErrors.CodeEntropyFailure, dErrors.CodeExhaustedRetries:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failure detail from responses.
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "internal error"
	}
	var dErr *dErrors.Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return err.Error()
}
