package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/session"
	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/testutil"
)

type fakeRanker struct {
	RankFunc func(ctx context.Context, walletAddress, symbol string) (*RankResult, error)
}

func (f *fakeRanker) Rank(ctx context.Context, walletAddress, symbol string) (*RankResult, error) {
	if f.RankFunc != nil {
		return f.RankFunc(ctx, walletAddress, symbol)
	}
	return &RankResult{
		Holding: testutil.CreateTestHolding(testutil.WithBalance("1")),
		Ranked:  rankedQuotesFixture(),
	}, nil
}

type fakeSummarizer struct {
	SummarizeFunc func(ctx context.Context, holding entities.Holding, ranked []entities.RankedQuote) (string, error)
}

func (f *fakeSummarizer) Summarize(ctx context.Context, holding entities.Holding, ranked []entities.RankedQuote) (string, error) {
	if f.SummarizeFunc != nil {
		return f.SummarizeFunc(ctx, holding, ranked)
	}
	return "summary for " + holding.Symbol, nil
}

func setupSessionServiceTest(ranker Ranker, summarizer Summarizer) (*SessionService, *testutil.MockTokenRepository) {
	tokenRepo := testutil.NewMockTokenRepository()
	tokenRepo.AddToken(testutil.CreateTestToken())
	tokenRepo.AddToken(testutil.CreateTestToken(testutil.WithSymbol("USDC"), testutil.WithReferencePrice("1")))

	if ranker == nil {
		ranker = &fakeRanker{}
	}
	if summarizer == nil {
		summarizer = &fakeSummarizer{}
	}

	manager := session.NewManager(30 * time.Minute)
	service := NewSessionService(manager, tokenRepo, ranker, summarizer, 10*time.Second, zap.NewNop())
	return service, tokenRepo
}

func TestSessionService_CreateSession(t *testing.T) {
	service, _ := setupSessionServiceTest(nil, nil)

	response, err := service.CreateSession(testutil.WalletAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.Data.ID == "" {
		t.Error("expected non-empty session id")
	}
	if response.Data.WalletAddress != testutil.WalletAddress {
		t.Errorf("expected wallet %s, got %s", testutil.WalletAddress, response.Data.WalletAddress)
	}
}

func TestSessionService_SelectToken_RunsPipeline(t *testing.T) {
	service, _ := setupSessionServiceTest(nil, nil)
	ctx := context.Background()

	created, err := service.CreateSession(testutil.WalletAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.SelectToken(ctx, created.Data.ID, "ETH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.Wait()

	summary, err := service.GetSummary(created.Data.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Data.Status != string(session.StatusReady) {
		t.Fatalf("expected ready status, got %s", summary.Data.Status)
	}
	if summary.Data.Symbol != "ETH" {
		t.Errorf("expected symbol ETH, got %s", summary.Data.Symbol)
	}
	if summary.Data.Text != "summary for ETH" {
		t.Errorf("unexpected summary text: %s", summary.Data.Text)
	}
	if summary.Data.GeneratedAt == "" {
		t.Error("expected generated timestamp")
	}
}

func TestSessionService_SelectToken_UnknownSession(t *testing.T) {
	service, _ := setupSessionServiceTest(nil, nil)

	err := service.SelectToken(context.Background(), "no-such-session", "ETH")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_SelectToken_UnknownToken(t *testing.T) {
	service, _ := setupSessionServiceTest(nil, nil)

	created, err := service.CreateSession(testutil.WalletAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = service.SelectToken(context.Background(), created.Data.ID, "NOPE")
	if !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
}

func TestSessionService_GetSummary_NoSelection(t *testing.T) {
	service, _ := setupSessionServiceTest(nil, nil)

	created, err := service.CreateSession(testutil.WalletAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := service.GetSummary(created.Data.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Data.Status != string(session.StatusNone) {
		t.Errorf("expected none status, got %s", summary.Data.Status)
	}
}

func TestSessionService_GetSummary_UnknownSession(t *testing.T) {
	service, _ := setupSessionServiceTest(nil, nil)

	_, err := service.GetSummary("no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_PipelineFailure_MarksUnavailable(t *testing.T) {
	ranker := &fakeRanker{
		RankFunc: func(ctx context.Context, walletAddress, symbol string) (*RankResult, error) {
			return nil, errors.New("balance read failed")
		},
	}
	service, _ := setupSessionServiceTest(ranker, nil)

	created, err := service.CreateSession(testutil.WalletAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.SelectToken(context.Background(), created.Data.ID, "ETH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.Wait()

	summary, err := service.GetSummary(created.Data.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Data.Status != string(session.StatusUnavailable) {
		t.Errorf("expected unavailable status, got %s", summary.Data.Status)
	}
}

func TestSessionService_SummariesDisabled_MarksUnavailable(t *testing.T) {
	summarizer := &fakeSummarizer{
		SummarizeFunc: func(ctx context.Context, holding entities.Holding, ranked []entities.RankedQuote) (string, error) {
			return "", ErrSummariesDisabled
		},
	}
	service, _ := setupSessionServiceTest(nil, summarizer)

	created, err := service.CreateSession(testutil.WalletAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.SelectToken(context.Background(), created.Data.ID, "ETH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.Wait()

	summary, err := service.GetSummary(created.Data.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Data.Status != string(session.StatusUnavailable) {
		t.Errorf("expected unavailable status, got %s", summary.Data.Status)
	}
}

// A slow pipeline for an earlier selection must never overwrite the summary
// of a later one.
func TestSessionService_StaleResultDiscarded(t *testing.T) {
	ethBlocked := make(chan struct{})
	usdcDone := make(chan struct{})

	summarizer := &fakeSummarizer{
		SummarizeFunc: func(ctx context.Context, holding entities.Holding, ranked []entities.RankedQuote) (string, error) {
			if holding.Symbol == "ETH" {
				// Simulate a slow response that arrives after the next
				// selection has already completed.
				<-ethBlocked
				return "stale summary for ETH", nil
			}
			defer close(usdcDone)
			return "summary for USDC", nil
		},
	}
	ranker := &fakeRanker{
		RankFunc: func(ctx context.Context, walletAddress, symbol string) (*RankResult, error) {
			holding := testutil.CreateTestHolding()
			holding.Symbol = symbol
			return &RankResult{Holding: holding, Ranked: rankedQuotesFixture()}, nil
		},
	}
	service, _ := setupSessionServiceTest(ranker, summarizer)

	created, err := service.CreateSession(testutil.WalletAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := service.SelectToken(ctx, created.Data.ID, "ETH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.SelectToken(ctx, created.Data.ID, "USDC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Let the USDC pipeline land first, then release the stale ETH one.
	select {
	case <-usdcDone:
	case <-time.After(5 * time.Second):
		t.Fatal("USDC pipeline never finished")
	}
	close(ethBlocked)
	service.Wait()

	summary, err := service.GetSummary(created.Data.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Data.Symbol != "USDC" {
		t.Errorf("expected summary for USDC, got %s", summary.Data.Symbol)
	}
	if summary.Data.Status != string(session.StatusReady) {
		t.Errorf("expected ready status, got %s", summary.Data.Status)
	}
	if summary.Data.Text != "summary for USDC" {
		t.Errorf("stale result overwrote current summary: %s", summary.Data.Text)
	}
}
