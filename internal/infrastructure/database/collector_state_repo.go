package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
)

// Ensure CollectorStateRepo implements CollectorStateRepository
var _ repositories.CollectorStateRepository = (*CollectorStateRepo)(nil)

// CollectorStateRepo implements CollectorStateRepository using PostgreSQL
type CollectorStateRepo struct {
	db *sqlx.DB
}

// NewCollectorStateRepo creates a new collector state repository
func NewCollectorStateRepo(db *sqlx.DB) *CollectorStateRepo {
	return &CollectorStateRepo{db: db}
}

// Get retrieves the state for a token
func (r *CollectorStateRepo) Get(ctx context.Context, tokenSymbol string) (*entities.CollectorState, error) {
	var state entities.CollectorState
	query := `SELECT * FROM collector_state WHERE token_symbol = $1`

	if err := r.db.GetContext(ctx, &state, query, tokenSymbol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get collector state: %w", err)
	}

	return &state, nil
}

// Upsert creates or updates the state for a token
func (r *CollectorStateRepo) Upsert(ctx context.Context, state *entities.CollectorState) error {
	query := `
		INSERT INTO collector_state (token_symbol, last_collected_at, total_runs)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_symbol) DO UPDATE SET
			last_collected_at = EXCLUDED.last_collected_at,
			total_runs = collector_state.total_runs + 1,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		state.TokenSymbol,
		state.LastCollectedAt,
		state.TotalRuns,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert collector state: %w", err)
	}

	return nil
}
