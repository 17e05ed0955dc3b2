package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	vpservice "attest/internal/vp/service"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/requestcontext"
)

// PresentationHandler exposes selective-disclosure presentations over HTTP.
type PresentationHandler struct {
	presentations *vpservice.Service
	logger        *slog.Logger
}

// NewPresentationHandler constructs a PresentationHandler.
func NewPresentationHandler(presentations *vpservice.Service, logger *slog.Logger) *PresentationHandler {
	return &PresentationHandler{presentations: presentations, logger: logger}
}

// Routes mounts the presentation endpoints.
func (h *PresentationHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/verify", h.verify)
}

type createPresentationRequest struct {
	CredentialToken  string   `json:"credential_token"`
	ClaimsToDisclose []string `json:"claims_to_disclose,omitempty"`
	HolderDidID      string   `json:"holder_did_id"`
	Audience         string   `json:"audience,omitempty"`
	Nonce            string   `json:"nonce,omitempty"`
}

func (h *PresentationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPresentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	holderDidID, err := id.ParseDidID(req.HolderDidID)
	if err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid holder did id"))
		return
	}
	presentation, err := h.presentations.CreatePresentation(r.Context(), requestcontext.TenantID(r.Context()),
		req.CredentialToken, req.ClaimsToDisclose, holderDidID, req.Audience, req.Nonce)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, presentation)
}

type verifyPresentationRequest struct {
	PresentationToken string   `json:"presentation_token"`
	Disclosures       []string `json:"disclosures"`
}

func (h *PresentationHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyPresentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	result, err := h.presentations.VerifyPresentation(r.Context(), requestcontext.TenantID(r.Context()),
		req.PresentationToken, req.Disclosures)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
