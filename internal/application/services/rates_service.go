package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/ranking"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/cache"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/rates"
)

// RatesService fetches exchange quotes and ranks them by net proceeds for a
// wallet's holding
type RatesService struct {
	tokenRepo    repositories.TokenRepository
	exchangeRepo repositories.ExchangeRepository
	provider     rates.Provider
	balances     BalanceReader
	cache        *cache.RedisCache
	logger       *zap.Logger
}

// NewRatesService creates a new rates service
func NewRatesService(
	tokenRepo repositories.TokenRepository,
	exchangeRepo repositories.ExchangeRepository,
	provider rates.Provider,
	balances BalanceReader,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *RatesService {
	return &RatesService{
		tokenRepo:    tokenRepo,
		exchangeRepo: exchangeRepo,
		provider:     provider,
		balances:     balances,
		cache:        cache,
		logger:       logger,
	}
}

// QuoteDTO is the wire representation of a raw exchange quote
type QuoteDTO struct {
	Exchange string  `json:"exchange"`
	Price    float64 `json:"price"`
	Fee      float64 `json:"fee"`
}

// RatesResponse wraps raw quotes for API response
type RatesResponse struct {
	Data []QuoteDTO `json:"data"`
}

// RankedQuoteDTO is the wire representation of a ranked quote. FeePercent
// is the display form; the fee itself stays a fraction.
type RankedQuoteDTO struct {
	Exchange    string  `json:"exchange"`
	Price       float64 `json:"price"`
	Fee         float64 `json:"fee"`
	FeePercent  string  `json:"fee_percent"`
	NetProceeds float64 `json:"net_proceeds"`
}

// RankingDTO is the wire representation of a full ranking
type RankingDTO struct {
	WalletAddress string           `json:"wallet_address"`
	Symbol        string           `json:"symbol"`
	Holding       HoldingDTO       `json:"holding"`
	Quotes        []RankedQuoteDTO `json:"quotes"`
	Rejected      []string         `json:"rejected,omitempty"`
	UpdatedAt     string           `json:"updated_at"`
}

// RankingResponse wraps a ranking for API response
type RankingResponse struct {
	Data RankingDTO `json:"data"`
}

// RankResult carries the domain-level outcome of a ranking run
type RankResult struct {
	Holding  entities.Holding
	Ranked   []entities.RankedQuote
	Rejected []*ranking.InvalidQuoteError
}

// GetRates returns the raw quote set for a token. Returns nil when the
// token is unknown.
func (s *RatesService) GetRates(ctx context.Context, symbol string) (*RatesResponse, error) {
	symbol = strings.ToUpper(symbol)

	cacheKey := fmt.Sprintf("rates:%s", symbol)

	var cached RatesResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	quotes, token, err := s.fetchQuotes(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		dtos[i] = QuoteDTO{
			Exchange: q.Exchange,
			Price:    q.Price.InexactFloat64(),
			Fee:      q.Fee.InexactFloat64(),
		}
	}

	response := &RatesResponse{Data: dtos}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, response, 15*time.Second); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// Rank builds the wallet's holding for the token, fetches live quotes and
// ranks them by net proceeds. Returns nil when the token is unknown.
func (s *RatesService) Rank(ctx context.Context, walletAddress, symbol string) (*RankResult, error) {
	walletAddress = strings.ToLower(walletAddress)
	symbol = strings.ToUpper(symbol)

	token, err := s.tokenRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return nil, nil
	}

	balance, err := s.balances.Balance(ctx, *token, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	holding := entities.Holding{
		Symbol:    token.Symbol,
		Name:      token.Name,
		Balance:   balance,
		UnitPrice: token.ReferencePrice,
	}

	exchanges, err := s.exchangeRepo.GetEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange registry: %w", err)
	}

	quotes, err := s.provider.Quotes(ctx, *token, exchanges)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	ranked, rejected, err := ranking.Rank(holding, quotes)
	if err != nil {
		return nil, fmt.Errorf("failed to rank quotes: %w", err)
	}

	for _, rej := range rejected {
		s.logger.Warn("Dropped malformed quote",
			zap.String("symbol", symbol),
			zap.String("exchange", rej.Exchange),
			zap.String("reason", rej.Reason),
		)
	}

	return &RankResult{Holding: holding, Ranked: ranked, Rejected: rejected}, nil
}

// GetRanking runs Rank and shapes the result for the API. Returns nil when
// the token is unknown.
func (s *RatesService) GetRanking(ctx context.Context, walletAddress, symbol string) (*RankingResponse, error) {
	result, err := s.Rank(ctx, walletAddress, symbol)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	dto := RankingDTO{
		WalletAddress: strings.ToLower(walletAddress),
		Symbol:        strings.ToUpper(symbol),
		Holding:       holdingToDTO(result.Holding),
		Quotes:        make([]RankedQuoteDTO, len(result.Ranked)),
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	for i, rq := range result.Ranked {
		dto.Quotes[i] = RankedQuoteDTO{
			Exchange:    rq.Exchange,
			Price:       rq.Price.InexactFloat64(),
			Fee:         rq.Fee.InexactFloat64(),
			FeePercent:  formatFeePercent(rq.Fee),
			NetProceeds: rq.NetProceeds.InexactFloat64(),
		}
	}
	for _, rej := range result.Rejected {
		dto.Rejected = append(dto.Rejected, rej.Error())
	}

	return &RankingResponse{Data: dto}, nil
}

// fetchQuotes loads the token and produces its current quote set. The token
// is nil when unknown.
func (s *RatesService) fetchQuotes(ctx context.Context, symbol string) ([]entities.Quote, *entities.Token, error) {
	token, err := s.tokenRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return nil, nil, nil
	}

	exchanges, err := s.exchangeRepo.GetEnabled(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load exchange registry: %w", err)
	}

	quotes, err := s.provider.Quotes(ctx, *token, exchanges)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	return quotes, token, nil
}

// formatFeePercent converts a fee fraction into its display percentage.
func formatFeePercent(fee decimal.Decimal) string {
	return fee.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
