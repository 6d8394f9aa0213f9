package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/services"
	"github.com/kashandark/cryptomonetizer/internal/testutil"
)

func setupTokenHandler(tokenRepo *testutil.MockTokenRepository) *TokenHandler {
	logger := zap.NewNop()
	service := services.NewTokenService(tokenRepo, nil, nil, logger)
	return NewTokenHandler(service, logger)
}

func TestTokenHandler_ListTokens(t *testing.T) {
	tokenRepo := testutil.NewMockTokenRepository()
	tokenRepo.AddToken(testutil.CreateTestToken())
	tokenRepo.AddToken(testutil.CreateTestToken(testutil.WithSymbol("USDC")))

	handler := setupTokenHandler(tokenRepo)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	req := httptest.NewRequest("GET", "/tokens", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response services.TokensResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Total != 2 {
		t.Errorf("expected 2 tokens, got %d", response.Total)
	}
}

func TestTokenHandler_GetToken(t *testing.T) {
	t.Run("returns token successfully", func(t *testing.T) {
		tokenRepo := testutil.NewMockTokenRepository()
		tokenRepo.AddToken(testutil.CreateTestToken())

		handler := setupTokenHandler(tokenRepo)

		r := chi.NewRouter()
		handler.RegisterRoutes(r)

		req := httptest.NewRequest("GET", "/tokens/ETH", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		var response services.TokenResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Data.Symbol != "ETH" {
			t.Errorf("expected ETH, got %s", response.Data.Symbol)
		}
	})

	t.Run("returns 404 for unknown token", func(t *testing.T) {
		handler := setupTokenHandler(testutil.NewMockTokenRepository())

		r := chi.NewRouter()
		handler.RegisterRoutes(r)

		req := httptest.NewRequest("GET", "/tokens/NOPE", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("returns 400 for malformed symbol", func(t *testing.T) {
		handler := setupTokenHandler(testutil.NewMockTokenRepository())

		r := chi.NewRouter()
		handler.RegisterRoutes(r)

		req := httptest.NewRequest("GET", "/tokens/bad%20symbol", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})
}
