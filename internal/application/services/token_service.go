package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/cache"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/wallet"
)

// MetadataReader reads on-chain ERC-20 metadata for a contract.
type MetadataReader interface {
	Metadata(ctx context.Context, contractAddress string) (*wallet.TokenMetadata, error)
}

// TokenService provides the sellable token catalog
type TokenService struct {
	tokenRepo repositories.TokenRepository
	metadata  MetadataReader // nil when no chain node is configured
	cache     *cache.RedisCache
	logger    *zap.Logger
}

// NewTokenService creates a new token service
func NewTokenService(
	tokenRepo repositories.TokenRepository,
	metadata MetadataReader,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *TokenService {
	return &TokenService{
		tokenRepo: tokenRepo,
		metadata:  metadata,
		cache:     cache,
		logger:    logger,
	}
}

// TokenDTO is the API representation of a catalog token
type TokenDTO struct {
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	Decimals        int     `json:"decimals"`
	ContractAddress string  `json:"contract_address"`
	ReferencePrice  float64 `json:"reference_price"`
}

// TokensResponse wraps the catalog for API response
type TokensResponse struct {
	Data  []TokenDTO `json:"data"`
	Total int        `json:"total"`
}

// TokenResponse wraps a single token for API response
type TokenResponse struct {
	Data TokenDTO `json:"data"`
}

// List returns the full catalog
func (s *TokenService) List(ctx context.Context) (*TokensResponse, error) {
	cacheKey := "tokens:all"

	var cached TokensResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	tokens, err := s.tokenRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load token catalog: %w", err)
	}

	response := &TokensResponse{
		Data:  make([]TokenDTO, len(tokens)),
		Total: len(tokens),
	}
	for i, t := range tokens {
		response.Data[i] = TokenDTO{
			Symbol:          t.Symbol,
			Name:            t.Name,
			Decimals:        t.Decimals,
			ContractAddress: t.ContractAddress,
			ReferencePrice:  t.ReferencePrice.InexactFloat64(),
		}
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, response, 5*time.Minute); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// Get returns one catalog token. Returns nil when unknown.
func (s *TokenService) Get(ctx context.Context, symbol string) (*TokenResponse, error) {
	symbol = strings.ToUpper(symbol)

	token, err := s.tokenRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return nil, nil
	}

	return &TokenResponse{Data: TokenDTO{
		Symbol:          token.Symbol,
		Name:            token.Name,
		Decimals:        token.Decimals,
		ContractAddress: token.ContractAddress,
		ReferencePrice:  token.ReferencePrice.InexactFloat64(),
	}}, nil
}

// VerifyOnChain compares each catalog entry against its contract's on-chain
// metadata and logs mismatches. Catalog entries are not mutated; a mismatch
// is an operator problem, not something to paper over at runtime.
func (s *TokenService) VerifyOnChain(ctx context.Context) error {
	if s.metadata == nil {
		return nil
	}

	tokens, err := s.tokenRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load token catalog: %w", err)
	}

	for _, token := range tokens {
		meta, err := s.metadata.Metadata(ctx, token.ContractAddress)
		if err != nil {
			s.logger.Warn("Failed to verify token on chain",
				zap.String("symbol", token.Symbol),
				zap.Error(err),
			)
			continue
		}

		if meta.Symbol != token.Symbol || int(meta.Decimals) != token.Decimals {
			s.logger.Warn("Catalog entry disagrees with on-chain metadata",
				zap.String("symbol", token.Symbol),
				zap.String("chain_symbol", meta.Symbol),
				zap.Int("decimals", token.Decimals),
				zap.Uint8("chain_decimals", meta.Decimals),
			)
		}
	}

	return nil
}
