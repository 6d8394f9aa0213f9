package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/services"
	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/testutil"
)

func setupPortfolioHandler(tokenRepo *testutil.MockTokenRepository, balances *testutil.MockBalanceReader) *PortfolioHandler {
	logger := zap.NewNop()
	service := services.NewPortfolioService(tokenRepo, balances, nil, logger)
	return NewPortfolioHandler(service, logger)
}

func TestPortfolioHandler_GetPortfolio(t *testing.T) {
	t.Run("returns portfolio successfully", func(t *testing.T) {
		tokenRepo := testutil.NewMockTokenRepository()
		tokenRepo.AddToken(testutil.CreateTestToken())

		balances := testutil.NewMockBalanceReader()
		balances.BalanceFunc = func(ctx context.Context, token entities.Token, account string) (decimal.Decimal, error) {
			return testutil.Dec("0.5"), nil
		}

		handler := setupPortfolioHandler(tokenRepo, balances)

		r := chi.NewRouter()
		handler.RegisterRoutes(r)

		req := httptest.NewRequest("GET", "/wallets/"+testutil.WalletAddress+"/portfolio", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}

		var response services.PortfolioResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if len(response.Data.Holdings) != 1 {
			t.Errorf("expected 1 holding, got %d", len(response.Data.Holdings))
		}
		if response.Data.TotalValue != 1400 {
			t.Errorf("expected total value 1400, got %f", response.Data.TotalValue)
		}
	})

	t.Run("returns error for invalid address", func(t *testing.T) {
		handler := setupPortfolioHandler(testutil.NewMockTokenRepository(), testutil.NewMockBalanceReader())

		r := chi.NewRouter()
		handler.RegisterRoutes(r)

		req := httptest.NewRequest("GET", "/wallets/invalid-address/portfolio", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("returns 500 when catalog load fails", func(t *testing.T) {
		tokenRepo := testutil.NewMockTokenRepository()
		tokenRepo.GetAllFunc = func(ctx context.Context) ([]entities.Token, error) {
			return nil, errors.New("database down")
		}

		handler := setupPortfolioHandler(tokenRepo, testutil.NewMockBalanceReader())

		r := chi.NewRouter()
		handler.RegisterRoutes(r)

		req := httptest.NewRequest("GET", "/wallets/"+testutil.WalletAddress+"/portfolio", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", w.Code)
		}
	})
}
