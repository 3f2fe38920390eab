package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/clearmeat/assessment/internal/assessment"
	"github.com/clearmeat/assessment/internal/logger"
	"github.com/clearmeat/assessment/internal/models"

	"github.com/gorilla/mux"
)

// Handler contains the HTTP handlers for the API
type Handler struct {
	access assessment.AccessService
	logger logger.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(access assessment.AccessService, logger logger.Service) *Handler {
	return &Handler{
		access: access,
		logger: logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// GetAssessment handles GET /api/products/{id}/assessment
func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	productID := vars["id"]
	if productID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "product id is required", "")
		return
	}

	result, err := h.access.FetchAssessment(ctx, productID)
	if err != nil {
		statusCode, userMessage := h.statusForFetchError(err)
		h.writeErrorResponse(w, r, statusCode, "assessment unavailable", userMessage)
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, result); err != nil {
		h.logger.LogError(ctx, logger.OpFetchAssessment, productID, "Failed to encode response", err, models.LogSeverityLow, nil)
	}
}

// ClearCache handles DELETE /api/cache
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.access.ClearAllCachedAssessments(ctx); err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "cache clear failed", err.Error())
		return
	}

	_ = h.writeJSONResponse(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// CacheStats handles GET /api/cache/stats
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.access.CacheStatistics(r.Context())
	_ = h.writeJSONResponse(w, r, http.StatusOK, stats)
}

// AuthStatus handles GET /api/auth/status
func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	status := models.AuthStatus{Authenticated: h.access.IsAuthenticated(r.Context())}
	_ = h.writeJSONResponse(w, r, http.StatusOK, status)
}

// StoreCredential handles PUT /api/auth/credential
func (h *Handler) StoreCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var request models.StoreCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if request.Token == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "token is required", "")
		return
	}

	if err := h.access.StoreCredential(ctx, request.Token); err != nil {
		if errors.Is(err, models.ErrInvalidCredential) {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid credential", "The provided token is not structurally valid")
			return
		}
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "credential store failed", err.Error())
		return
	}

	_ = h.writeJSONResponse(w, r, http.StatusOK, map[string]string{"status": "stored"})
}

// ClearCredential handles DELETE /api/auth/credential
func (h *Handler) ClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.access.ClearCredential(r.Context()); err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "credential clear failed", err.Error())
		return
	}

	_ = h.writeJSONResponse(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}

// statusForFetchError maps terminal fetch errors to facade status codes,
// passing the user-facing message through to the body
func (h *Handler) statusForFetchError(err error) (int, string) {
	var fetchErr *models.FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.Kind {
		case models.FetchErrTimeoutExhausted:
			return http.StatusGatewayTimeout, fetchErr.UserMessage
		case models.FetchErrServiceUnavailable:
			return http.StatusBadGateway, fetchErr.UserMessage
		case models.FetchErrNotFound:
			return http.StatusNotFound, fetchErr.UserMessage
		case models.FetchErrTemporarilyUnavailable:
			return http.StatusServiceUnavailable, fetchErr.UserMessage
		case models.FetchErrDecodeFailure:
			return http.StatusBadGateway, fetchErr.UserMessage
		}
	}
	if errors.Is(err, models.ErrInvalidProductID) {
		return http.StatusBadRequest, "A product identifier is required."
	}
	return http.StatusInternalServerError, err.Error()
}
