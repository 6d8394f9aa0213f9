package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/services"
)

// TokenHandler handles HTTP requests for the token catalog
type TokenHandler struct {
	service *services.TokenService
	logger  *zap.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(service *services.TokenService, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the token routes on a chi router
func (h *TokenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tokens", h.ListTokens)
	r.Get("/tokens/{symbol}", h.GetToken)
}

// ListTokens handles GET /api/v1/tokens
func (h *TokenHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list tokens", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list tokens")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetToken handles GET /api/v1/tokens/{symbol}
func (h *TokenHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	if !isValidSymbol(symbol) {
		respondError(w, http.StatusBadRequest, "Invalid symbol")
		return
	}

	response, err := h.service.Get(r.Context(), symbol)
	if err != nil {
		h.logger.Error("Failed to get token",
			zap.Error(err),
			zap.String("symbol", symbol),
		)
		respondError(w, http.StatusInternalServerError, "Failed to get token")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "Token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
