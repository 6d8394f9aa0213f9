package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
	"github.com/kashandark/cryptomonetizer/internal/testutil"
)

func setupHistoryServiceTest() (*HistoryService, *testutil.MockTokenRepository, *testutil.MockSnapshotRepository) {
	tokenRepo := testutil.NewMockTokenRepository()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	logger := zap.NewNop()

	service := NewHistoryService(tokenRepo, snapshotRepo, nil, logger)
	return service, tokenRepo, snapshotRepo
}

func TestHistoryService_GetHistory_Success(t *testing.T) {
	service, tokenRepo, snapshotRepo := setupHistoryServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())

	now := time.Now().UTC()
	snapshotRepo.BatchInsert(ctx, []entities.RateSnapshot{
		{TokenSymbol: "ETH", Exchange: "exchange-a", Price: testutil.Dec("2805"), Fee: testutil.Dec("0.01"), CollectedAt: now.Add(-time.Minute)},
		{TokenSymbol: "ETH", Exchange: "exchange-b", Price: testutil.Dec("2790"), Fee: testutil.Dec("0.005"), CollectedAt: now.Add(-2 * time.Minute)},
	})

	response, err := service.GetHistory(ctx, "eth", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response == nil {
		t.Fatal("expected response for known token")
	}

	if response.Data.Symbol != "ETH" {
		t.Errorf("expected uppercased symbol, got %s", response.Data.Symbol)
	}
	if response.Data.WindowHours != 24 {
		t.Errorf("expected window 24, got %d", response.Data.WindowHours)
	}
	if len(response.Data.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(response.Data.Points))
	}
}

func TestHistoryService_GetHistory_UnknownToken(t *testing.T) {
	service, _, _ := setupHistoryServiceTest()
	ctx := context.Background()

	response, err := service.GetHistory(ctx, "NOPE", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response != nil {
		t.Fatal("expected nil response for unknown token")
	}
}

func TestHistoryService_GetHistory_ClampsWindow(t *testing.T) {
	service, tokenRepo, _ := setupHistoryServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())

	tests := []struct {
		name  string
		hours int
		want  int
	}{
		{"zero defaults", 0, defaultHistoryHours},
		{"negative defaults", -5, defaultHistoryHours},
		{"over cap clamps", 10000, maxHistoryHours},
		{"in range passes", 48, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := service.GetHistory(ctx, "ETH", tt.hours)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if response.Data.WindowHours != tt.want {
				t.Errorf("expected window %d, got %d", tt.want, response.Data.WindowHours)
			}
		})
	}
}

func TestHistoryService_GetStats_Success(t *testing.T) {
	service, tokenRepo, snapshotRepo := setupHistoryServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())

	snapshotRepo.GetStatsFunc = func(ctx context.Context, tokenSymbol string, since time.Time) (*repositories.SnapshotStats, error) {
		return &repositories.SnapshotStats{
			SampleCount:  42,
			MinPrice:     testutil.Dec("2750"),
			MaxPrice:     testutil.Dec("2850"),
			AvgPrice:     testutil.Dec("2800"),
			BestExchange: "exchange-a",
		}, nil
	}

	response, err := service.GetStats(ctx, "ETH", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.Data.SampleCount != 42 {
		t.Errorf("expected 42 samples, got %d", response.Data.SampleCount)
	}
	if response.Data.BestExchange != "exchange-a" {
		t.Errorf("expected best exchange exchange-a, got %s", response.Data.BestExchange)
	}
	if response.Data.AvgPrice != 2800 {
		t.Errorf("expected avg 2800, got %f", response.Data.AvgPrice)
	}
}

func TestHistoryService_GetStats_EmptyWindow(t *testing.T) {
	service, tokenRepo, _ := setupHistoryServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())

	response, err := service.GetStats(ctx, "ETH", 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.Data.SampleCount != 0 {
		t.Errorf("expected zero samples, got %d", response.Data.SampleCount)
	}
	if response.Data.BestExchange != "" {
		t.Errorf("expected no best exchange, got %s", response.Data.BestExchange)
	}
}

func TestHistoryService_GetStats_RepositoryError(t *testing.T) {
	service, tokenRepo, snapshotRepo := setupHistoryServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())
	snapshotRepo.GetStatsFunc = func(ctx context.Context, tokenSymbol string, since time.Time) (*repositories.SnapshotStats, error) {
		return nil, errors.New("database down")
	}

	if _, err := service.GetStats(ctx, "ETH", 24); err == nil {
		t.Fatal("expected error when aggregation fails")
	}
}
