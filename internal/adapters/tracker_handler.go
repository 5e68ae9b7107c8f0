package adapters

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/service"
	"github.com/geofleet/svc-location-tracker/internal/usecases"
	"github.com/geofleet/svc-location-tracker/internal/usecases/commands"
	"github.com/geofleet/svc-location-tracker/internal/usecases/queries"
)

type (
	// StartTrackingRequest is the control API payload for starting tracking.
	StartTrackingRequest struct {
		IntervalSeconds float64           `json:"interval_seconds"`
		URL             string            `json:"url"`
		HTTPHeaders     map[string]string `json:"http_headers,omitempty"`
		Transport       string            `json:"transport,omitempty"`
	}

	// ErrorResponse is the standard control API error envelope.
	ErrorResponse struct {
		Error      string    `json:"error"`
		Message    string    `json:"message"`
		Details    string    `json:"details,omitempty"`
		StatusCode int       `json:"status_code"`
		Timestamp  time.Time `json:"timestamp"`
	}

	TrackerHandler struct {
		app    *usecases.TrackerApplication
		logger infrastructure.Logger
	}
)

func NewTrackerHandler(
	app *usecases.TrackerApplication,
	logger infrastructure.Logger,
) *TrackerHandler {
	return &TrackerHandler{
		app:    app,
		logger: logger,
	}
}

// StartTracking handles POST /v1/tracking. Starting while a session is
// active replaces the session.
func (h *TrackerHandler) StartTracking(w http.ResponseWriter, r *http.Request) {
	var req StartTrackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid request body", err.Error())

		return
	}

	if req.URL == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "bad_request", "URL is required", "url field cannot be empty")

		return
	}

	session, err := h.app.Commands.StartTrackingHandler.Handle(
		r.Context(),
		commands.StartTrackingCommand{
			Params: service.StartTrackingParams{
				ReportInterval: time.Duration(req.IntervalSeconds * float64(time.Second)),
				EndpointURL:    req.URL,
				HTTPHeaders:    req.HTTPHeaders,
				Transport:      domain.Transport(req.Transport),
			},
		},
	)
	if err != nil {
		h.writeDomainError(w, err, "Failed to start tracking")

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

// StopTracking handles DELETE /v1/tracking. Stopping an inactive tracker
// succeeds with nothing to do.
func (h *TrackerHandler) StopTracking(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Commands.StopTrackingHandler.Handle(r.Context(), commands.StopTrackingCommand{})
	if err != nil {
		h.writeDomainError(w, err, "Failed to stop tracking")

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// GetTrackingStatus handles GET /v1/tracking.
func (h *TrackerHandler) GetTrackingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.app.Queries.FetchTrackingStatusQueryHandler.Execute(
		r.Context(),
		queries.FetchTrackingStatusQuery{},
	)
	if err != nil {
		h.writeDomainError(w, err, "Failed to fetch tracking status")

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// ReadinessCheck handles GET /ready.
func (h *TrackerHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchReadinessReportQueryHandler.Execute(
		r.Context(),
		queries.FetchReadinessReportQuery{},
	)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "internal_server_error", "Failed to check readiness", err.Error())

		return
	}

	statusCode := http.StatusOK
	if result.OverallStatus == domain.ReadinessResponseStatusNotReady {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(result)
}

// LivenessCheck handles GET /live.
func (h *TrackerHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchLivenessReportQueryHandler.Execute(
		r.Context(),
		queries.FetchLivenessReportQuery{},
	)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "internal_server_error", "Failed to check liveness", err.Error())

		return
	}

	statusCode := http.StatusOK
	if result.OverallStatus == domain.LivenessResponseStatusDead {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(result)
}

// HealthCheck handles GET /health.
func (h *TrackerHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchHealthReportQueryHandler.Execute(
		r.Context(),
		queries.FetchHealthReportQuery{},
	)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "internal_server_error", "Failed to check health", err.Error())

		return
	}

	statusCode := http.StatusOK
	if result.OverallStatus == domain.HealthResponseStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(result)
}

func (h *TrackerHandler) writeDomainError(w http.ResponseWriter, err error, message string) {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		h.writeErrorResponse(w, domainErr.StatusCode, domainErr.Code, domainErr.Message, domainErr.Error())

		return
	}

	h.writeErrorResponse(w, http.StatusInternalServerError, "internal_server_error", message, err.Error())
}

// writeErrorResponse writes a standardized error response
func (h *TrackerHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, errorType, message, details string) {
	errorResp := ErrorResponse{
		Error:      errorType,
		Message:    message,
		Details:    details,
		StatusCode: statusCode,
		Timestamp:  time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResp)
}
