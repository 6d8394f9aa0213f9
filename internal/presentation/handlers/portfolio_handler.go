package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/services"
)

// PortfolioHandler handles HTTP requests for wallet portfolio endpoints
type PortfolioHandler struct {
	service *services.PortfolioService
	logger  *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service *services.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the portfolio routes on a chi router
func (h *PortfolioHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}/portfolio", h.GetPortfolio)
}

// GetPortfolio handles GET /api/v1/wallets/{address}/portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	address = strings.ToLower(address)

	response, err := h.service.GetPortfolio(ctx, address)
	if err != nil {
		h.logger.Error("Failed to get portfolio",
			zap.Error(err),
			zap.String("address", address),
		)
		respondError(w, http.StatusInternalServerError, "Failed to get portfolio")
		return
	}

	respondJSON(w, http.StatusOK, response)
}
