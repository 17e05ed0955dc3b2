package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	credmodels "attest/internal/credential/models"
	credservice "attest/internal/credential/service"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/requestcontext"
)

// CredentialHandler exposes credential issuance, verification, and
// revocation over HTTP.
type CredentialHandler struct {
	issuance     *credservice.IssuanceService
	verification *credservice.VerificationService
	logger       *slog.Logger
}

// NewCredentialHandler constructs a CredentialHandler.
func NewCredentialHandler(
	issuance *credservice.IssuanceService,
	verification *credservice.VerificationService,
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{issuance: issuance, verification: verification, logger: logger}
}

// Routes mounts the credential endpoints.
func (h *CredentialHandler) Routes(r chi.Router) {
	r.Post("/", h.issue)
	r.Get("/", h.list)
	r.Post("/verify", h.verify)
	r.Post("/{credentialID}/revoke", h.revoke)
}

type issueRequest struct {
	IssuerDidID    string         `json:"issuer_did_id"`
	HolderDidID    string         `json:"holder_did_id"`
	CredentialType string         `json:"credential_type"`
	Claims         map[string]any `json:"claims,omitempty"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
}

type issueResponse struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	Status    string     `json:"status"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (h *CredentialHandler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	issuerDidID, err := id.ParseDidID(req.IssuerDidID)
	if err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid issuer did id"))
		return
	}
	holderDidID, err := id.ParseDidID(req.HolderDidID)
	if err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid holder did id"))
		return
	}

	record, err := h.issuance.Issue(r.Context(), requestcontext.TenantID(r.Context()),
		issuerDidID, holderDidID, req.CredentialType, req.Claims, req.ExpiresAt)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueResponse{
		ID:        record.ID.String(),
		Token:     record.Token,
		Status:    string(record.Status),
		IssuedAt:  record.IssuedAt,
		ExpiresAt: record.ExpiresAt,
	})
}

type credentialSummaryResponse struct {
	ID             string     `json:"id"`
	IssuerDidID    string     `json:"issuer_did_id"`
	HolderDidID    string     `json:"holder_did_id"`
	CredentialType string     `json:"credential_type"`
	Status         string     `json:"status"`
	IssuedAt       time.Time  `json:"issued_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
}

func (h *CredentialHandler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := credmodels.ListFilter{
		Status:         credmodels.Status(query.Get("status")),
		CredentialType: query.Get("type"),
	}
	if raw := query.Get("expires_before"); raw != "" {
		cutoff, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "expires_before must be RFC 3339"))
			return
		}
		filter.ExpiresBefore = &cutoff
	}

	records, err := h.issuance.List(r.Context(), requestcontext.TenantID(r.Context()), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	out := make([]credentialSummaryResponse, 0, len(records))
	for _, record := range records {
		out = append(out, credentialSummaryResponse{
			ID:             record.ID.String(),
			IssuerDidID:    record.IssuerDidID.String(),
			HolderDidID:    record.HolderDidID.String(),
			CredentialType: record.CredentialType,
			Status:         string(record.Status),
			IssuedAt:       record.IssuedAt,
			ExpiresAt:      record.ExpiresAt,
			RevokedAt:      record.RevokedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (h *CredentialHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	result, err := h.verification.Verify(r.Context(), requestcontext.TenantID(r.Context()), req.Token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CredentialHandler) revoke(w http.ResponseWriter, r *http.Request) {
	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid credential id"))
		return
	}
	if err := h.issuance.Revoke(r.Context(), requestcontext.TenantID(r.Context()), credentialID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
