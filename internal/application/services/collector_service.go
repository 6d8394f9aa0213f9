package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kashandark/cryptomonetizer/internal/config"
	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
	"github.com/kashandark/cryptomonetizer/internal/infrastructure/rates"
)

var (
	snapshotsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_snapshots_total",
		Help: "Total number of rate snapshots written",
	})

	collectionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_errors_total",
		Help: "Total number of collection errors",
	})

	collectionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "collector_run_duration_seconds",
		Help:    "Time taken for one collection pass over all tokens",
		Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
	})

	snapshotsPruned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_snapshots_pruned_total",
		Help: "Total number of rate snapshots removed by retention",
	})
)

// CollectorService periodically samples exchange quotes for every catalog
// token and persists them as rate snapshots
type CollectorService struct {
	provider     rates.Provider
	tokenRepo    repositories.TokenRepository
	exchangeRepo repositories.ExchangeRepository
	snapshotRepo repositories.SnapshotRepository
	stateRepo    repositories.CollectorStateRepository
	config       config.CollectorConfig
	logger       *zap.Logger
	stopCh       chan struct{}
	wg           sync.WaitGroup
}

// NewCollectorService creates a new collector service
func NewCollectorService(
	provider rates.Provider,
	tokenRepo repositories.TokenRepository,
	exchangeRepo repositories.ExchangeRepository,
	snapshotRepo repositories.SnapshotRepository,
	stateRepo repositories.CollectorStateRepository,
	cfg config.CollectorConfig,
	logger *zap.Logger,
) *CollectorService {
	return &CollectorService{
		provider:     provider,
		tokenRepo:    tokenRepo,
		exchangeRepo: exchangeRepo,
		snapshotRepo: snapshotRepo,
		stateRepo:    stateRepo,
		config:       cfg,
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the collection loop
func (s *CollectorService) Start(ctx context.Context) error {
	s.logger.Info("Starting collector service",
		zap.String("provider", s.provider.Name()),
		zap.Duration("poll_interval", s.config.PollInterval),
	)

	s.wg.Add(1)
	go s.runCollectionLoop(ctx)

	return nil
}

// Stop gracefully stops the collector
func (s *CollectorService) Stop() {
	s.logger.Info("Stopping collector service")
	close(s.stopCh)
	s.wg.Wait()
}

// runCollectionLoop samples quotes on every tick until stopped
func (s *CollectorService) runCollectionLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	s.collectAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.collectAll(ctx)
		}
	}
}

// collectAll runs one collection pass over the full token catalog
func (s *CollectorService) collectAll(ctx context.Context) {
	startTime := time.Now()

	tokens, err := s.tokenRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load token catalog", zap.Error(err))
		collectionErrors.Inc()
		return
	}

	exchanges, err := s.exchangeRepo.GetEnabled(ctx)
	if err != nil {
		s.logger.Error("Failed to load exchanges", zap.Error(err))
		collectionErrors.Inc()
		return
	}

	if len(tokens) == 0 || len(exchanges) == 0 {
		s.logger.Warn("Nothing to collect",
			zap.Int("tokens", len(tokens)),
			zap.Int("exchanges", len(exchanges)),
		)
		return
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.WorkerCount)

	for _, token := range tokens {
		token := token
		g.Go(func() error {
			return s.collectToken(gCtx, token, exchanges)
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("Error collecting snapshots", zap.Error(err))
		collectionErrors.Inc()
	}

	s.pruneOld(ctx)

	collectionLatency.Observe(time.Since(startTime).Seconds())
}

// collectToken samples quotes for a single token and persists them
func (s *CollectorService) collectToken(ctx context.Context, token entities.Token, exchanges []entities.Exchange) error {
	quotes, err := s.provider.Quotes(ctx, token, exchanges)
	if err != nil {
		return fmt.Errorf("failed to fetch quotes for %s: %w", token.Symbol, err)
	}

	if len(quotes) == 0 {
		s.logger.Debug("No quotes for token", zap.String("symbol", token.Symbol))
		return nil
	}

	now := time.Now().UTC()
	snapshots := make([]entities.RateSnapshot, len(quotes))
	for i, q := range quotes {
		snapshots[i] = entities.RateSnapshot{
			TokenSymbol: token.Symbol,
			Exchange:    q.Exchange,
			Price:       q.Price,
			Fee:         q.Fee,
			CollectedAt: now,
		}
	}

	if err := s.snapshotRepo.BatchInsert(ctx, snapshots); err != nil {
		return fmt.Errorf("failed to insert snapshots for %s: %w", token.Symbol, err)
	}

	// TotalRuns seeds the counter on first insert; conflicts increment the
	// stored value instead.
	if err := s.stateRepo.Upsert(ctx, &entities.CollectorState{
		TokenSymbol:     token.Symbol,
		LastCollectedAt: now,
		TotalRuns:       1,
	}); err != nil {
		s.logger.Warn("Failed to update collector state",
			zap.String("symbol", token.Symbol),
			zap.Error(err),
		)
	}

	snapshotsCollected.Add(float64(len(snapshots)))

	s.logger.Debug("Collected snapshots",
		zap.String("symbol", token.Symbol),
		zap.Int("count", len(snapshots)),
	)

	return nil
}

// pruneOld removes snapshots past the retention window
func (s *CollectorService) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.config.Retention)

	removed, err := s.snapshotRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to prune old snapshots", zap.Error(err))
		collectionErrors.Inc()
		return
	}

	if removed > 0 {
		snapshotsPruned.Add(float64(removed))
		s.logger.Info("Pruned old snapshots",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff),
		)
	}
}
