package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/cache"
)

const (
	defaultHistoryHours = 24
	maxHistoryHours     = 168
	maxHistoryPoints    = 1000
)

// HistoryService serves rate history collected by the snapshot collector
type HistoryService struct {
	tokenRepo    repositories.TokenRepository
	snapshotRepo repositories.SnapshotRepository
	cache        *cache.RedisCache
	logger       *zap.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(
	tokenRepo repositories.TokenRepository,
	snapshotRepo repositories.SnapshotRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *HistoryService {
	return &HistoryService{
		tokenRepo:    tokenRepo,
		snapshotRepo: snapshotRepo,
		cache:        cache,
		logger:       logger,
	}
}

// RatePointDTO is one historical quote sample
type RatePointDTO struct {
	Exchange    string  `json:"exchange"`
	Price       float64 `json:"price"`
	Fee         float64 `json:"fee"`
	CollectedAt string  `json:"collected_at"`
}

// HistoryDTO is the API representation of a token's rate history
type HistoryDTO struct {
	Symbol      string         `json:"symbol"`
	WindowHours int            `json:"window_hours"`
	Points      []RatePointDTO `json:"points"`
}

// HistoryResponse wraps history data for API response
type HistoryResponse struct {
	Data HistoryDTO `json:"data"`
}

// HistoryStatsDTO summarizes a token's rate history over a window
type HistoryStatsDTO struct {
	Symbol       string  `json:"symbol"`
	WindowHours  int     `json:"window_hours"`
	SampleCount  int64   `json:"sample_count"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	AvgPrice     float64 `json:"avg_price"`
	BestExchange string  `json:"best_exchange,omitempty"`
}

// HistoryStatsResponse wraps history stats for API response
type HistoryStatsResponse struct {
	Data HistoryStatsDTO `json:"data"`
}

// GetHistory returns snapshot samples for a token over the window. Returns
// nil when the token is unknown.
func (s *HistoryService) GetHistory(ctx context.Context, symbol string, hours int) (*HistoryResponse, error) {
	symbol = strings.ToUpper(symbol)
	hours = clampHours(hours)

	cacheKey := fmt.Sprintf("history:%s:%d", symbol, hours)

	var cached HistoryResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	token, err := s.tokenRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return nil, nil
	}

	snapshots, err := s.snapshotRepo.GetByFilter(ctx, entities.SnapshotFilter{
		TokenSymbol: symbol,
		Since:       time.Now().UTC().Add(-time.Duration(hours) * time.Hour),
		Limit:       maxHistoryPoints,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	dto := HistoryDTO{
		Symbol:      symbol,
		WindowHours: hours,
		Points:      make([]RatePointDTO, len(snapshots)),
	}
	for i, snap := range snapshots {
		dto.Points[i] = RatePointDTO{
			Exchange:    snap.Exchange,
			Price:       snap.Price.InexactFloat64(),
			Fee:         snap.Fee.InexactFloat64(),
			CollectedAt: snap.CollectedAt.UTC().Format(time.RFC3339),
		}
	}

	response := &HistoryResponse{Data: dto}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, response, time.Minute); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// GetStats aggregates a token's rate history over the window. Returns nil
// when the token is unknown.
func (s *HistoryService) GetStats(ctx context.Context, symbol string, hours int) (*HistoryStatsResponse, error) {
	symbol = strings.ToUpper(symbol)
	hours = clampHours(hours)

	cacheKey := fmt.Sprintf("history_stats:%s:%d", symbol, hours)

	var cached HistoryStatsResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	token, err := s.tokenRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return nil, nil
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	stats, err := s.snapshotRepo.GetStats(ctx, symbol, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate snapshots: %w", err)
	}

	dto := HistoryStatsDTO{
		Symbol:      symbol,
		WindowHours: hours,
	}
	if stats != nil {
		dto.SampleCount = stats.SampleCount
		dto.MinPrice = stats.MinPrice.InexactFloat64()
		dto.MaxPrice = stats.MaxPrice.InexactFloat64()
		dto.AvgPrice = stats.AvgPrice.InexactFloat64()
		dto.BestExchange = stats.BestExchange
	}

	response := &HistoryStatsResponse{Data: dto}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, response, time.Minute); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

func clampHours(hours int) int {
	if hours <= 0 {
		return defaultHistoryHours
	}
	if hours > maxHistoryHours {
		return maxHistoryHours
	}
	return hours
}
