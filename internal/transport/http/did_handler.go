package http

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	didmodels "attest/internal/did/models"
	didservice "attest/internal/did/service"
	id "attest/pkg/domain"
	dErrors "attest/pkg/domain-errors"
	"attest/pkg/requestcontext"
)

// DidHandler exposes the DID lifecycle over HTTP.
type DidHandler struct {
	creation   *didservice.CreationService
	resolution *didservice.ResolutionService
	signing    *didservice.SigningService
	logger     *slog.Logger
}

// NewDidHandler constructs a DidHandler.
func NewDidHandler(
	creation *didservice.CreationService,
	resolution *didservice.ResolutionService,
	signing *didservice.SigningService,
	logger *slog.Logger,
) *DidHandler {
	return &DidHandler{creation: creation, resolution: resolution, signing: signing, logger: logger}
}

// Routes mounts the DID endpoints.
func (h *DidHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{did}", h.resolve)
	r.Get("/id/{didID}", h.getByID)
	r.Post("/id/{didID}/deactivate", h.deactivate)
	r.Post("/{did}/signatures", h.sign)
	r.Post("/{did}/signatures/verify", h.verifySignature)
}

type createDidRequest struct {
	Method string `json:"method"`
}

type didSummaryResponse struct {
	ID        string    `json:"id"`
	Did       string    `json:"did"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func summaryResponse(s didmodels.Summary) didSummaryResponse {
	return didSummaryResponse{
		ID:        s.ID.String(),
		Did:       s.Did,
		Method:    s.Method.String(),
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
	}
}

// didCreatedResponse is the full creation result: key material (public key
// and ciphertext, both base64url) and the document, on top of the summary
// fields.
type didCreatedResponse struct {
	ID                  string             `json:"id"`
	Did                 string             `json:"did"`
	Method              string             `json:"method"`
	PublicKey           string             `json:"public_key"`
	EncryptedPrivateKey string             `json:"encrypted_private_key"`
	Document            didmodels.Document `json:"document"`
	Status              string             `json:"status"`
	CreatedAt           time.Time          `json:"created_at"`
}

func (h *DidHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createDidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	created, err := h.creation.CreateDid(r.Context(), requestcontext.TenantID(r.Context()), didmodels.Method(req.Method))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, didCreatedResponse{
		ID:                  created.ID.String(),
		Did:                 created.Did,
		Method:              created.Method.String(),
		PublicKey:           base64.RawURLEncoding.EncodeToString(created.PublicKey),
		EncryptedPrivateKey: base64.RawURLEncoding.EncodeToString(created.EncryptedPrivateKey),
		Document:            created.Document,
		Status:              string(created.Status),
		CreatedAt:           created.CreatedAt,
	})
}

func (h *DidHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := didmodels.ListFilter{Status: didmodels.Status(r.URL.Query().Get("status"))}
	summaries, err := h.resolution.List(r.Context(), requestcontext.TenantID(r.Context()), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	out := make([]didSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, summaryResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *DidHandler) resolve(w http.ResponseWriter, r *http.Request) {
	document, err := h.resolution.Resolve(r.Context(), requestcontext.TenantID(r.Context()), chi.URLParam(r, "did"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

func (h *DidHandler) getByID(w http.ResponseWriter, r *http.Request) {
	didID, err := id.ParseDidID(chi.URLParam(r, "didID"))
	if err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid did id"))
		return
	}
	summary, err := h.resolution.GetByID(r.Context(), requestcontext.TenantID(r.Context()), didID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse(summary))
}

func (h *DidHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	didID, err := id.ParseDidID(chi.URLParam(r, "didID"))
	if err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid did id"))
		return
	}
	if err := h.creation.Deactivate(r.Context(), requestcontext.TenantID(r.Context()), didID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type signRequest struct {
	// Message is base64url (raw) encoded.
	Message string `json:"message"`
}

type signResponse struct {
	Signature string `json:"signature"`
}

func (h *DidHandler) sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	message, err := base64.RawURLEncoding.DecodeString(req.Message)
	if err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "message must be base64url"))
		return
	}
	signature, err := h.signing.Sign(r.Context(), requestcontext.TenantID(r.Context()), chi.URLParam(r, "did"), message)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, signResponse{Signature: base64.RawURLEncoding.EncodeToString(signature)})
}

type verifySignatureRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

type verifySignatureResponse struct {
	Valid bool `json:"valid"`
}

func (h *DidHandler) verifySignature(w http.ResponseWriter, r *http.Request) {
	var req verifySignatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	message, msgErr := base64.RawURLEncoding.DecodeString(req.Message)
	signature, sigErr := base64.RawURLEncoding.DecodeString(req.Signature)
	valid := msgErr == nil && sigErr == nil &&
		h.signing.Verify(r.Context(), requestcontext.TenantID(r.Context()), chi.URLParam(r, "did"), message, signature)
	writeJSON(w, http.StatusOK, verifySignatureResponse{Valid: valid})
}
