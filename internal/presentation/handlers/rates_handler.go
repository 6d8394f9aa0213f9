package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/services"
)

// RatesHandler handles HTTP requests for exchange rates and rankings
type RatesHandler struct {
	service *services.RatesService
	logger  *zap.Logger
}

// NewRatesHandler creates a new rates handler
func NewRatesHandler(service *services.RatesService, logger *zap.Logger) *RatesHandler {
	return &RatesHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the rates routes on a chi router
func (h *RatesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/rates", h.GetRates)
	r.Get("/wallets/{address}/tokens/{symbol}/ranking", h.GetRanking)
}

// GetRates handles GET /api/v1/rates?symbol=X
func (h *RatesHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := r.URL.Query().Get("symbol")

	if !isValidSymbol(symbol) {
		respondError(w, http.StatusBadRequest, "Invalid or missing symbol")
		return
	}

	response, err := h.service.GetRates(ctx, symbol)
	if err != nil {
		h.logger.Error("Failed to get rates",
			zap.Error(err),
			zap.String("symbol", symbol),
		)
		respondError(w, http.StatusInternalServerError, "Failed to get rates")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "Token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetRanking handles GET /api/v1/wallets/{address}/tokens/{symbol}/ranking
func (h *RatesHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")
	symbol := chi.URLParam(r, "symbol")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}
	if !isValidSymbol(symbol) {
		respondError(w, http.StatusBadRequest, "Invalid symbol")
		return
	}

	address = strings.ToLower(address)

	response, err := h.service.GetRanking(ctx, address, symbol)
	if err != nil {
		h.logger.Error("Failed to get ranking",
			zap.Error(err),
			zap.String("address", address),
			zap.String("symbol", symbol),
		)
		respondError(w, http.StatusInternalServerError, "Failed to get ranking")
		return
	}

	if response == nil {
		respondError(w, http.StatusNotFound, "Token not found")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
