package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/wallet"
	"github.com/kashandark/cryptomonetizer/internal/testutil"
)

type fakeMetadataReader struct {
	MetadataFunc func(ctx context.Context, contractAddress string) (*wallet.TokenMetadata, error)
	calls        int
}

func (f *fakeMetadataReader) Metadata(ctx context.Context, contractAddress string) (*wallet.TokenMetadata, error) {
	f.calls++
	if f.MetadataFunc != nil {
		return f.MetadataFunc(ctx, contractAddress)
	}
	return &wallet.TokenMetadata{Symbol: "ETH", Decimals: 18}, nil
}

func TestTokenService_List_Success(t *testing.T) {
	tokenRepo := testutil.NewMockTokenRepository()
	tokenRepo.AddToken(testutil.CreateTestToken())
	tokenRepo.AddToken(testutil.CreateTestToken(
		testutil.WithSymbol("USDC"),
		testutil.WithReferencePrice("1"),
	))

	service := NewTokenService(tokenRepo, nil, nil, zap.NewNop())

	response, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.Total != 2 {
		t.Errorf("expected 2 tokens, got %d", response.Total)
	}
	if len(response.Data) != 2 {
		t.Errorf("expected 2 entries, got %d", len(response.Data))
	}
}

func TestTokenService_Get_Success(t *testing.T) {
	tokenRepo := testutil.NewMockTokenRepository()
	tokenRepo.AddToken(testutil.CreateTestToken())

	service := NewTokenService(tokenRepo, nil, nil, zap.NewNop())

	response, err := service.Get(context.Background(), "eth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response == nil {
		t.Fatal("expected response for known token")
	}

	if response.Data.Symbol != "ETH" {
		t.Errorf("expected ETH, got %s", response.Data.Symbol)
	}
	if response.Data.ReferencePrice != 2800 {
		t.Errorf("expected reference price 2800, got %f", response.Data.ReferencePrice)
	}
}

func TestTokenService_Get_Unknown(t *testing.T) {
	service := NewTokenService(testutil.NewMockTokenRepository(), nil, nil, zap.NewNop())

	response, err := service.Get(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response != nil {
		t.Fatal("expected nil response for unknown token")
	}
}

func TestTokenService_VerifyOnChain_NoReader(t *testing.T) {
	service := NewTokenService(testutil.NewMockTokenRepository(), nil, nil, zap.NewNop())

	if err := service.VerifyOnChain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenService_VerifyOnChain_ChecksEveryToken(t *testing.T) {
	tokenRepo := testutil.NewMockTokenRepository()
	tokenRepo.AddToken(testutil.CreateTestToken())
	tokenRepo.AddToken(testutil.CreateTestToken(testutil.WithSymbol("USDC")))

	reader := &fakeMetadataReader{}
	service := NewTokenService(tokenRepo, reader, nil, zap.NewNop())

	if err := service.VerifyOnChain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.calls != 2 {
		t.Errorf("expected 2 metadata reads, got %d", reader.calls)
	}
}

func TestTokenService_VerifyOnChain_ToleratesReadErrors(t *testing.T) {
	tokenRepo := testutil.NewMockTokenRepository()
	tokenRepo.AddToken(testutil.CreateTestToken())

	reader := &fakeMetadataReader{
		MetadataFunc: func(ctx context.Context, contractAddress string) (*wallet.TokenMetadata, error) {
			return nil, errors.New("rpc timeout")
		},
	}
	service := NewTokenService(tokenRepo, reader, nil, zap.NewNop())

	// A failed read is logged, not fatal.
	if err := service.VerifyOnChain(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenService_List_RepositoryError(t *testing.T) {
	tokenRepo := testutil.NewMockTokenRepository()
	tokenRepo.GetAllFunc = func(ctx context.Context) ([]entities.Token, error) {
		return nil, errors.New("database down")
	}

	service := NewTokenService(tokenRepo, nil, nil, zap.NewNop())

	if _, err := service.List(context.Background()); err == nil {
		t.Fatal("expected error when catalog load fails")
	}
}
