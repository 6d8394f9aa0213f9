package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/config"
	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/testutil"
)

func setupCollectorServiceTest() (*CollectorService, *testutil.MockProvider, *testutil.MockTokenRepository, *testutil.MockExchangeRepository, *testutil.MockSnapshotRepository, *testutil.MockCollectorStateRepository) {
	provider := testutil.NewMockProvider()
	tokenRepo := testutil.NewMockTokenRepository()
	exchangeRepo := testutil.NewMockExchangeRepository()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	stateRepo := testutil.NewMockCollectorStateRepository()

	cfg := config.CollectorConfig{
		PollInterval: time.Minute,
		WorkerCount:  2,
		Retention:    72 * time.Hour,
	}

	service := NewCollectorService(provider, tokenRepo, exchangeRepo, snapshotRepo, stateRepo, cfg, zap.NewNop())
	return service, provider, tokenRepo, exchangeRepo, snapshotRepo, stateRepo
}

func TestCollectorService_CollectAll_WritesSnapshots(t *testing.T) {
	service, provider, tokenRepo, exchangeRepo, snapshotRepo, stateRepo := setupCollectorServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())
	tokenRepo.AddToken(testutil.CreateTestToken(testutil.WithSymbol("USDC"), testutil.WithReferencePrice("1")))
	exchangeRepo.AddExchange(testutil.CreateTestExchange())
	exchangeRepo.AddExchange(testutil.CreateTestExchange(testutil.WithExchangeID("exchange-b")))

	provider.QuotesFunc = func(ctx context.Context, token entities.Token, exchanges []entities.Exchange) ([]entities.Quote, error) {
		quotes := make([]entities.Quote, len(exchanges))
		for i, e := range exchanges {
			quotes[i] = entities.Quote{Exchange: e.ID, Price: token.ReferencePrice, Fee: e.Fee}
		}
		return quotes, nil
	}

	service.collectAll(ctx)

	// 2 tokens x 2 exchanges
	if got := len(snapshotRepo.Snapshots()); got != 4 {
		t.Fatalf("expected 4 snapshots, got %d", got)
	}

	state, err := stateRepo.Get(ctx, "ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state == nil {
		t.Fatal("expected collector state for ETH")
	}
	if state.LastCollectedAt.IsZero() {
		t.Error("expected last collected timestamp to be set")
	}
	// The first run must already count; the database only increments on
	// later conflict-updates.
	if state.TotalRuns != 1 {
		t.Errorf("expected total runs 1 after first collection, got %d", state.TotalRuns)
	}
}

func TestCollectorService_CollectAll_ProviderError(t *testing.T) {
	service, provider, tokenRepo, exchangeRepo, snapshotRepo, _ := setupCollectorServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())
	exchangeRepo.AddExchange(testutil.CreateTestExchange())

	provider.QuotesFunc = func(ctx context.Context, token entities.Token, exchanges []entities.Exchange) ([]entities.Quote, error) {
		return nil, errors.New("feed unavailable")
	}

	// Errors are logged and counted, never panic the loop.
	service.collectAll(ctx)

	if got := len(snapshotRepo.Snapshots()); got != 0 {
		t.Errorf("expected no snapshots on provider error, got %d", got)
	}
}

func TestCollectorService_CollectAll_NothingToCollect(t *testing.T) {
	service, provider, _, _, _, _ := setupCollectorServiceTest()
	ctx := context.Background()

	service.collectAll(ctx)

	if len(provider.Calls) != 0 {
		t.Errorf("expected no provider calls with empty catalog, got %d", len(provider.Calls))
	}
}

func TestCollectorService_CollectAll_PrunesOldSnapshots(t *testing.T) {
	service, provider, tokenRepo, exchangeRepo, snapshotRepo, _ := setupCollectorServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())
	exchangeRepo.AddExchange(testutil.CreateTestExchange())

	provider.QuotesFunc = func(ctx context.Context, token entities.Token, exchanges []entities.Exchange) ([]entities.Quote, error) {
		return []entities.Quote{{Exchange: "exchange-a", Price: token.ReferencePrice, Fee: testutil.Dec("0.01")}}, nil
	}

	// Seed one snapshot past the retention window.
	snapshotRepo.BatchInsert(ctx, []entities.RateSnapshot{{
		TokenSymbol: "ETH",
		Exchange:    "exchange-a",
		Price:       testutil.Dec("2800"),
		Fee:         testutil.Dec("0.01"),
		CollectedAt: time.Now().UTC().Add(-100 * time.Hour),
	}})

	service.collectAll(ctx)

	for _, s := range snapshotRepo.Snapshots() {
		if time.Since(s.CollectedAt) > 73*time.Hour {
			t.Errorf("snapshot from %s survived retention", s.CollectedAt)
		}
	}
}

func TestCollectorService_StartStop(t *testing.T) {
	service, provider, tokenRepo, exchangeRepo, _, _ := setupCollectorServiceTest()
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken())
	exchangeRepo.AddExchange(testutil.CreateTestExchange())

	done := make(chan struct{})
	provider.QuotesFunc = func(ctx context.Context, token entities.Token, exchanges []entities.Exchange) ([]entities.Quote, error) {
		select {
		case <-done:
		default:
			close(done)
		}
		return nil, nil
	}

	if err := service.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The first pass runs immediately on start.
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("collector never ran")
	}

	service.Stop()
}
