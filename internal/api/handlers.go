// v0
// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"nrgchamp/noc-dashboard/internal/auth"
	"nrgchamp/noc-dashboard/internal/observability"
	"nrgchamp/noc-dashboard/internal/telemetry"
)

type credentialVerifier interface {
	Authenticate(ctx context.Context, username, secret string) (string, error)
}

type telemetrySource interface {
	LatestPrimaryClimate(ctx context.Context) (telemetry.ClimateSample, error)
	LatestSecondaryClimate(ctx context.Context) (telemetry.ClimateSample, error)
	LatestHazard(ctx context.Context) (telemetry.HazardSample, error)
	LatestElectrical(ctx context.Context) (telemetry.ElectricalSample, error)
}

type seriesExporter interface {
	ExportSeries(ctx context.Context, ch telemetry.Channel) ([]telemetry.Record, error)
}

type Handlers struct {
	Log       *slog.Logger
	Verifier  credentialVerifier
	Telemetry telemetrySource
	Exporter  seriesExporter
	Metrics   *observability.Metrics
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Secret is accepted as an alias of Password.
	Secret string `json:"secret"`
}

type loginUser struct {
	Username string `json:"username"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

const (
	msgInvalidCredentials = "Invalid credentials"
	msgAuthFailed         = "Failed to authenticate"
	msgNoSensorData       = "No sensor data found"
	msgSensorFailed       = "Failed to fetch sensor data"
	msgHazardFailed       = "Failed to fetch fire/smoke data"
	msgElectricalFailed   = "Failed to fetch electricity data"
	msgExportFailed       = "Failed to export data"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return
	}
	secret := req.Password
	if secret == "" {
		secret = req.Secret
	}

	token, err := h.Verifier.Authenticate(r.Context(), req.Username, secret)
	switch {
	case err == nil:
		h.Metrics.LoginAttempt("ok")
		h.Log.Info("login_ok", slog.String("user", req.Username), slog.String("request_id", RequestID(r.Context())))
		writeJSON(w, http.StatusOK, loginResponse{Token: token, User: loginUser{Username: req.Username}})
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.Metrics.LoginAttempt("invalid")
		h.Log.Warn("login_failed", slog.String("user", req.Username), slog.String("request_id", RequestID(r.Context())))
		writeJSON(w, http.StatusUnauthorized, errorBody{Message: msgInvalidCredentials})
	default:
		h.Metrics.LoginAttempt("error")
		h.Log.Error("login_error", slog.String("user", req.Username), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: msgAuthFailed, Error: err.Error()})
	}
}

func (h *Handlers) Sensor1(w http.ResponseWriter, r *http.Request) {
	s, err := h.Telemetry.LatestPrimaryClimate(r.Context())
	h.respond(w, r, "sensor1", s, err, msgSensorFailed)
}

func (h *Handlers) Sensor2(w http.ResponseWriter, r *http.Request) {
	s, err := h.Telemetry.LatestSecondaryClimate(r.Context())
	h.respond(w, r, "sensor2", s, err, msgSensorFailed)
}

func (h *Handlers) FireSmoke(w http.ResponseWriter, r *http.Request) {
	s, err := h.Telemetry.LatestHazard(r.Context())
	h.respond(w, r, "fire-smoke", s, err, msgHazardFailed)
}

func (h *Handlers) Electricity(w http.ResponseWriter, r *http.Request) {
	s, err := h.Telemetry.LatestElectrical(r.Context())
	h.respond(w, r, "electricity", s, err, msgElectricalFailed)
}

// Export serves the full series of the channel named in the path.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	ch := telemetry.Channel(mux.Vars(r)["channel"])
	if !ch.Valid() {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "Unknown channel"})
		return
	}
	rows, err := h.Exporter.ExportSeries(r.Context(), ch)
	if err != nil {
		h.Log.Error("export_failed", slog.String("channel", string(ch)), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: msgExportFailed, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, channel string, v any, err error, failure string) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, v)
	case errors.Is(err, telemetry.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: msgNoSensorData})
	default:
		h.Log.Error("telemetry_fetch_failed",
			slog.String("channel", channel),
			slog.String("request_id", RequestID(r.Context())),
			slog.Any("err", err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: failure, Error: err.Error()})
	}
}

// writeJSON encodes v before committing the status so an unencodable
// body becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Message: "Failed to encode response", Error: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
