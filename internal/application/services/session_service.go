package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/application/session"
	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownToken is returned when a selected symbol is not in the catalog.
	ErrUnknownToken = errors.New("unknown token")
)

var (
	pipelinesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_pipelines_started_total",
		Help: "Total number of summary pipelines started",
	})

	pipelinesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_pipelines_discarded_total",
		Help: "Total number of pipeline results discarded as stale",
	})

	pipelinesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_pipelines_failed_total",
		Help: "Total number of summary pipelines that failed",
	})
)

// Ranker produces a ranked quote set for a wallet's token holding.
type Ranker interface {
	Rank(ctx context.Context, walletAddress, symbol string) (*RankResult, error)
}

// Summarizer turns a ranking outcome into prose.
type Summarizer interface {
	Summarize(ctx context.Context, holding entities.Holding, ranked []entities.RankedQuote) (string, error)
}

// SessionService manages dashboard sessions and runs the rank-and-summarize
// pipeline when a token is selected. Each selection bumps the session epoch;
// a pipeline result only lands if its epoch is still current, so a slow
// response for a previously selected token can never overwrite the summary
// for the current one.
type SessionService struct {
	sessions        *session.Manager
	tokenRepo       repositories.TokenRepository
	ranker          Ranker
	summarizer      Summarizer
	pipelineTimeout time.Duration
	logger          *zap.Logger
	pipelines       sync.WaitGroup
}

// NewSessionService creates a new session service
func NewSessionService(
	sessions *session.Manager,
	tokenRepo repositories.TokenRepository,
	ranker Ranker,
	summarizer Summarizer,
	pipelineTimeout time.Duration,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessions:        sessions,
		tokenRepo:       tokenRepo,
		ranker:          ranker,
		summarizer:      summarizer,
		pipelineTimeout: pipelineTimeout,
		logger:          logger,
	}
}

// SessionDTO is the API representation of a session
type SessionDTO struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
}

// SessionResponse wraps a session for API response
type SessionResponse struct {
	Data SessionDTO `json:"data"`
}

// SummaryDTO is the API representation of a session's summary slot
type SummaryDTO struct {
	Symbol      string `json:"symbol,omitempty"`
	Status      string `json:"status"`
	Text        string `json:"text,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
}

// SummaryResponse wraps a summary for API response
type SummaryResponse struct {
	Data SummaryDTO `json:"data"`
}

// CreateSession opens a new session for a wallet
func (s *SessionService) CreateSession(walletAddress string) (*SessionResponse, error) {
	sess, err := s.sessions.Create(walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Session created",
		zap.String("session_id", sess.ID()),
		zap.String("wallet", walletAddress),
	)

	return &SessionResponse{Data: SessionDTO{
		ID:            sess.ID(),
		WalletAddress: sess.Wallet(),
	}}, nil
}

// SelectToken records a token selection on a session and kicks off the
// summary pipeline for it in the background
func (s *SessionService) SelectToken(ctx context.Context, sessionID, symbol string) error {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	token, err := s.tokenRepo.GetBySymbol(ctx, symbol)
	if err != nil {
		return fmt.Errorf("failed to look up token: %w", err)
	}
	if token == nil {
		return ErrUnknownToken
	}

	epoch := sess.Select(token.Symbol)

	s.logger.Info("Token selected",
		zap.String("session_id", sess.ID()),
		zap.String("symbol", token.Symbol),
		zap.Uint64("epoch", epoch),
	)

	pipelinesStarted.Inc()
	s.pipelines.Add(1)
	go s.runPipeline(sess, epoch, token.Symbol)

	return nil
}

// GetSummary returns the current summary slot for a session
func (s *SessionService) GetSummary(sessionID string) (*SummaryResponse, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	summary := sess.Summary()

	dto := SummaryDTO{
		Symbol: summary.Symbol,
		Status: string(summary.Status),
		Text:   summary.Text,
	}
	if !summary.GeneratedAt.IsZero() {
		dto.GeneratedAt = summary.GeneratedAt.UTC().Format(time.RFC3339)
	}

	return &SummaryResponse{Data: dto}, nil
}

// Wait blocks until all in-flight pipelines have finished. Used during
// shutdown and in tests.
func (s *SessionService) Wait() {
	s.pipelines.Wait()
}

// runPipeline ranks and summarizes for one selection. The epoch taken at
// selection time gates every publish: if a newer selection happened while
// this pipeline was running, its result is dropped on the floor.
func (s *SessionService) runPipeline(sess *session.Session, epoch uint64, symbol string) {
	defer s.pipelines.Done()

	// Detached from the request context: the selection response returns
	// immediately while the pipeline keeps running.
	ctx, cancel := context.WithTimeout(context.Background(), s.pipelineTimeout)
	defer cancel()

	result, err := s.ranker.Rank(ctx, sess.Wallet(), symbol)
	if err != nil {
		s.failPipeline(sess, epoch, symbol, err)
		return
	}

	// A newer selection makes the summary call pointless, skip it.
	if !sess.Current(epoch) {
		pipelinesDiscarded.Inc()
		s.logger.Debug("Dropping stale ranking result",
			zap.String("session_id", sess.ID()),
			zap.String("symbol", symbol),
			zap.Uint64("epoch", epoch),
		)
		return
	}

	text, err := s.summarizer.Summarize(ctx, result.Holding, result.Ranked)
	if err != nil {
		s.failPipeline(sess, epoch, symbol, err)
		return
	}

	if !sess.Publish(epoch, text) {
		pipelinesDiscarded.Inc()
		s.logger.Debug("Dropping stale summary",
			zap.String("session_id", sess.ID()),
			zap.String("symbol", symbol),
			zap.Uint64("epoch", epoch),
		)
		return
	}

	s.logger.Info("Summary published",
		zap.String("session_id", sess.ID()),
		zap.String("symbol", symbol),
		zap.Uint64("epoch", epoch),
	)
}

func (s *SessionService) failPipeline(sess *session.Session, epoch uint64, symbol string, err error) {
	pipelinesFailed.Inc()

	if errors.Is(err, ErrSummariesDisabled) {
		s.logger.Debug("Summary generation disabled",
			zap.String("session_id", sess.ID()),
			zap.String("symbol", symbol),
		)
	} else {
		s.logger.Warn("Summary pipeline failed",
			zap.String("session_id", sess.ID()),
			zap.String("symbol", symbol),
			zap.Uint64("epoch", epoch),
			zap.Error(err),
		)
	}

	if !sess.Fail(epoch) {
		pipelinesDiscarded.Inc()
	}
}
