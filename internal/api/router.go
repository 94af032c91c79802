// Package api - router setup
package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router.
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	r.Use(RecoveryMiddleware)
	r.Use(CORSMiddleware)
	r.Use(h.LoggingMiddleware)

	// Public routes
	r.HandleFunc("/", h.ServerInfo).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Session bootstrap (public)
	api.HandleFunc("/session", h.StartSession).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(h.AuthMiddleware)

	protected.HandleFunc("/session", h.EndSession).Methods("DELETE")
	protected.HandleFunc("/state", h.State).Methods("GET")
	protected.HandleFunc("/history", h.History).Methods("GET")
	protected.HandleFunc("/reset", h.Reset).Methods("POST")

	protected.HandleFunc("/slots/spin", h.SpinSlots).Methods("POST")
	protected.HandleFunc("/roulette/spin", h.SpinRoulette).Methods("POST")
	protected.HandleFunc("/crash/bet", h.PlaceCrashBet).Methods("POST")
	protected.HandleFunc("/crash/cashout", h.CashOut).Methods("POST")

	// WebSocket stream of live crash ticks
	protected.HandleFunc("/crash/stream", h.CrashStream).Methods("GET")

	return r
}

// NotFoundHandler handles 404 errors.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}
