package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/services"
)

// HistoryHandler handles HTTP requests for rate history endpoints
type HistoryHandler struct {
	service *services.HistoryService
	logger  *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *services.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the history routes on a chi router
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tokens/{symbol}/history", h.GetHistory)
	r.Get("/tokens/{symbol}/history/stats", h.GetStats)
}

// GetHistory handles GET /api/v1/tokens/{symbol}/history?hours=N
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if !isValidSymbol(symbol) {
		respondError(w, http.StatusBadRequest, "Invalid symbol")
		return
	}

	hours := parseHours(r)

	response, err := h.service.GetHistory(r.Context(), symbol, hours)
	if err != nil {
		h.logger.Error("Failed to get rate history",
			zap.Error(err),
			zap.String("symbol", symbol),
		)
		respondError(w, http.StatusInternalServerError, "Failed to get rate history")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "Token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetStats handles GET /api/v1/tokens/{symbol}/history/stats?hours=N
func (h *HistoryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if !isValidSymbol(symbol) {
		respondError(w, http.StatusBadRequest, "Invalid symbol")
		return
	}

	hours := parseHours(r)

	response, err := h.service.GetStats(r.Context(), symbol, hours)
	if err != nil {
		h.logger.Error("Failed to get history stats",
			zap.Error(err),
			zap.String("symbol", symbol),
		)
		respondError(w, http.StatusInternalServerError, "Failed to get history stats")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "Token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// parseHours reads the hours query parameter; zero lets the service apply
// its default window.
func parseHours(r *http.Request) int {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return 0
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return hours
}
