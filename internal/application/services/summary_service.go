package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/cache"
)

// ErrSummariesDisabled is returned when no completion backend is configured.
var ErrSummariesDisabled = errors.New("summary generation is disabled")

const summarySystemPrompt = `You are the assistant of a crypto sell-rate dashboard. ` +
	`Given a user's token holding and exchange quotes ranked by net proceeds, write a short, ` +
	`plain-language recommendation (2-3 sentences) naming the best exchange and the net amount ` +
	`the user would receive after fees. Mention the runner-up only when the difference is small. ` +
	`Do not give financial advice beyond comparing the listed quotes.`

// Completer generates text from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// SummaryService turns ranked quotes into a natural-language recommendation
type SummaryService struct {
	completer Completer // nil when summaries are disabled
	cache     *cache.RedisCache
	logger    *zap.Logger
}

// NewSummaryService creates a new summary service. A nil completer disables
// generation; Summarize then reports ErrSummariesDisabled.
func NewSummaryService(completer Completer, cache *cache.RedisCache, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		completer: completer,
		cache:     cache,
		logger:    logger,
	}
}

// Summarize produces a recommendation for the holding and its ranked
// quotes. Identical rankings are served from cache.
func (s *SummaryService) Summarize(ctx context.Context, holding entities.Holding, ranked []entities.RankedQuote) (string, error) {
	if s.completer == nil {
		return "", ErrSummariesDisabled
	}

	if len(ranked) == 0 {
		return fmt.Sprintf("No exchange quotes are currently available for %s. Try again shortly.", holding.Symbol), nil
	}

	best := ranked[0]
	cacheKey := fmt.Sprintf("summary:%s:%s:%s", holding.Symbol, best.Exchange, best.NetProceeds.StringFixed(2))

	if s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
	}

	text, err := s.completer.Complete(ctx, summarySystemPrompt, buildSummaryPrompt(holding, ranked))
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, text, 10*time.Minute); err != nil {
			s.logger.Warn("Failed to cache summary", zap.Error(err))
		}
	}

	return text, nil
}

// buildSummaryPrompt renders the holding and ranking as plain text for the
// model. Fees become percentages here, at the presentation boundary.
func buildSummaryPrompt(holding entities.Holding, ranked []entities.RankedQuote) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Holding: %s %s (%s), valued at %s.\n",
		holding.Balance.String(), holding.Symbol, holding.Name, holding.TotalValue().StringFixed(2))
	b.WriteString("Exchanges ranked by net proceeds after fees:\n")

	for i, rq := range ranked {
		fmt.Fprintf(&b, "%d. %s: price %s, fee %s, net proceeds %s\n",
			i+1, rq.Exchange, rq.Price.StringFixed(2), formatFeePercent(rq.Fee), rq.NetProceeds.StringFixed(2))
	}

	b.WriteString("Recommend where to sell.")
	return b.String()
}
