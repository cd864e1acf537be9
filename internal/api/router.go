// v0
// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"nrgchamp/noc-dashboard/internal/auth"
	"nrgchamp/noc-dashboard/internal/observability"
)

// NewRouter wires the public login route, the bearer-protected telemetry
// and export routes, and the operational endpoints.
func NewRouter(logger *slog.Logger, h *Handlers, authn *auth.Authenticator, health *HealthState, metrics *observability.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument(metrics))

	r.HandleFunc("/health", healthLiveHandler).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", healthReadyHandler(health)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/login", h.Login).Methods(http.MethodPost)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(requireAuth(authn, logger, metrics))
	protected.HandleFunc("/sensor1", h.Sensor1).Methods(http.MethodGet)
	protected.HandleFunc("/sensor2", h.Sensor2).Methods(http.MethodGet)
	protected.HandleFunc("/fire-smoke", h.FireSmoke).Methods(http.MethodGet)
	protected.HandleFunc("/electricity", h.Electricity).Methods(http.MethodGet)
	protected.HandleFunc("/export/{channel}", h.Export).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "Not found"})
	})
	return r
}

// Wrap applies access logging, panic recovery and CORS around router.
func Wrap(logger *slog.Logger, router http.Handler, allowedOrigins []string) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: logger}),
		handlers.PrintRecoveryStack(true),
	)
	return WrapWithLogging(logger, recovery(cors(router)))
}
