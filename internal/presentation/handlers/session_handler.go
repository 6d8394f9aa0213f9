package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/services"
)

// SessionHandler handles HTTP requests for dashboard sessions
type SessionHandler struct {
	service *services.SessionService
	logger  *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service *services.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the session routes on a chi router
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Post("/sessions/{id}/select", h.SelectToken)
	r.Get("/sessions/{id}/summary", h.GetSummary)
}

type createSessionRequest struct {
	WalletAddress string `json:"wallet_address"`
}

type selectTokenRequest struct {
	Symbol string `json:"symbol"`
}

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !isValidAddress(req.WalletAddress) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	response, err := h.service.CreateSession(strings.ToLower(req.WalletAddress))
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondJSON(w, http.StatusCreated, response)
}

// SelectToken handles POST /api/v1/sessions/{id}/select
func (h *SessionHandler) SelectToken(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req selectTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !isValidSymbol(req.Symbol) {
		respondError(w, http.StatusBadRequest, "Invalid symbol")
		return
	}

	err := h.service.SelectToken(r.Context(), sessionID, req.Symbol)
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "Session not found")
		return
	case errors.Is(err, services.ErrUnknownToken):
		respondError(w, http.StatusNotFound, "Token not found")
		return
	case err != nil:
		h.logger.Error("Failed to select token",
			zap.Error(err),
			zap.String("session_id", sessionID),
			zap.String("symbol", req.Symbol),
		)
		respondError(w, http.StatusInternalServerError, "Failed to select token")
		return
	}

	// The summary is generated asynchronously; clients poll the summary
	// endpoint for the outcome.
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
}

// GetSummary handles GET /api/v1/sessions/{id}/summary
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	response, err := h.service.GetSummary(sessionID)
	if errors.Is(err, services.ErrSessionNotFound) {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get summary",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		respondError(w, http.StatusInternalServerError, "Failed to get summary")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
