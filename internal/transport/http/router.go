// Package http wires the service layer to a chi router. Handlers own
// request decoding and error mapping; everything domain-shaped stays in the
// services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the full route tree. The /healthz and /metrics
// endpoints are tenant-free; everything under /v1 requires X-Tenant-ID.
func NewRouter(
	logger *slog.Logger,
	dids *DidHandler,
	credentials *CredentialHandler,
	presentations *PresentationHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(RequestContext(logger))
		r.Use(RequestLogger(logger))
		r.Route("/dids", dids.Routes)
		r.Route("/credentials", credentials.Routes)
		r.Route("/presentations", presentations.Routes)
	})
	return r
}
