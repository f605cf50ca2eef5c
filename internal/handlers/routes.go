package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register adds the API routes to r.
func (h *Handlers) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/next", h.GetNext).Methods(http.MethodGet)
	api.HandleFunc("/photo", h.GetPhoto).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/relocate", h.Relocate).Methods(http.MethodPost)
	api.HandleFunc("/omit", h.Omit).Methods(http.MethodPost)
	api.HandleFunc("/delete", h.Delete).Methods(http.MethodPost)
	api.HandleFunc("/reindex", h.Reindex).Methods(http.MethodPost)
	api.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
}
