package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/cache"
)

// balanceReadConcurrency bounds parallel eth_calls per portfolio request.
const balanceReadConcurrency = 4

// BalanceReader reads a wallet's balance of a catalog token.
type BalanceReader interface {
	Balance(ctx context.Context, token entities.Token, account string) (decimal.Decimal, error)
}

// PortfolioService assembles wallet holdings from chain balances and
// catalog reference prices
type PortfolioService struct {
	tokenRepo repositories.TokenRepository
	balances  BalanceReader
	cache     *cache.RedisCache
	logger    *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	tokenRepo repositories.TokenRepository,
	balances BalanceReader,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *PortfolioService {
	return &PortfolioService{
		tokenRepo: tokenRepo,
		balances:  balances,
		cache:     cache,
		logger:    logger,
	}
}

// HoldingDTO is the API representation of a token holding. The balance is a
// decimal string; prices cross into floats only here, at the presentation
// boundary.
type HoldingDTO struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Balance    string  `json:"balance"`
	UnitPrice  float64 `json:"unit_price"`
	TotalValue float64 `json:"total_value"`
}

// PortfolioDTO is the API representation of a wallet portfolio. Unavailable
// lists tokens whose balance read failed; they are reported inline rather
// than failing the whole portfolio.
type PortfolioDTO struct {
	WalletAddress string       `json:"wallet_address"`
	Holdings      []HoldingDTO `json:"holdings"`
	TotalValue    float64      `json:"total_value"`
	TokenCount    int          `json:"token_count"`
	Unavailable   []string     `json:"unavailable,omitempty"`
	UpdatedAt     string       `json:"updated_at"`
}

// PortfolioResponse wraps portfolio data for API response
type PortfolioResponse struct {
	Data PortfolioDTO `json:"data"`
}

// GetPortfolio reads the wallet's balance of every catalog token and values
// each holding at the catalog reference price
func (s *PortfolioService) GetPortfolio(ctx context.Context, walletAddress string) (*PortfolioResponse, error) {
	walletAddress = strings.ToLower(walletAddress)

	cacheKey := fmt.Sprintf("portfolio:%s", walletAddress)

	var cached PortfolioResponse
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

	holdings := make([]*entities.Holding, len(tokens))
	failed := make([]bool, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(balanceReadConcurrency)
	for i, token := range tokens {
		i, token := i, token
		g.Go(func() error {
			balance, err := s.balances.Balance(gctx, token, walletAddress)
			if err != nil {
				// A single unreadable token degrades the portfolio, it
				// does not fail it.
				s.logger.Warn("Failed to read balance",
					zap.String("token", token.Symbol),
					zap.String("wallet", walletAddress),
					zap.Error(err),
				)
				failed[i] = true
				return nil
			}
			holdings[i] = &entities.Holding{
				Symbol:    token.Symbol,
				Name:      token.Name,
				Balance:   balance,
				UnitPrice: token.ReferencePrice,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}

	dto := PortfolioDTO{
		WalletAddress: walletAddress,
		Holdings:      make([]HoldingDTO, 0, len(tokens)),
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	total := decimal.Zero
	for i, h := range holdings {
		if failed[i] {
			dto.Unavailable = append(dto.Unavailable, tokens[i].Symbol)
			continue
		}
		if h == nil {
			continue
		}
		total = total.Add(h.TotalValue())
		dto.Holdings = append(dto.Holdings, holdingToDTO(*h))
	}
	dto.TotalValue = total.InexactFloat64()
	dto.TokenCount = len(dto.Holdings)

	response := &PortfolioResponse{Data: dto}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, response, 30*time.Second); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

func holdingToDTO(h entities.Holding) HoldingDTO {
	return HoldingDTO{
		Symbol:     h.Symbol,
		Name:       h.Name,
		Balance:    h.Balance.String(),
		UnitPrice:  h.UnitPrice.InexactFloat64(),
		TotalValue: h.TotalValue().InexactFloat64(),
	}
}
