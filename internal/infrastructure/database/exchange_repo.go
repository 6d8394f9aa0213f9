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

// Ensure ExchangeRepo implements ExchangeRepository
var _ repositories.ExchangeRepository = (*ExchangeRepo)(nil)

// ExchangeRepo implements ExchangeRepository using PostgreSQL
type ExchangeRepo struct {
	db *sqlx.DB
}

// NewExchangeRepo creates a new exchange repository
func NewExchangeRepo(db *sqlx.DB) *ExchangeRepo {
	return &ExchangeRepo{db: db}
}

// GetByID retrieves an exchange by its identifier
func (r *ExchangeRepo) GetByID(ctx context.Context, id string) (*entities.Exchange, error) {
	var exchange entities.Exchange
	query := `SELECT * FROM exchanges WHERE id = $1`

	if err := r.db.GetContext(ctx, &exchange, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}

	return &exchange, nil
}

// GetAll retrieves every registered exchange
func (r *ExchangeRepo) GetAll(ctx context.Context) ([]entities.Exchange, error) {
	var exchanges []entities.Exchange
	query := `SELECT * FROM exchanges ORDER BY id`

	if err := r.db.SelectContext(ctx, &exchanges, query); err != nil {
		return nil, fmt.Errorf("failed to get exchanges: %w", err)
	}

	return exchanges, nil
}

// GetEnabled retrieves exchanges currently quoting
func (r *ExchangeRepo) GetEnabled(ctx context.Context) ([]entities.Exchange, error) {
	var exchanges []entities.Exchange
	query := `SELECT * FROM exchanges WHERE enabled = TRUE ORDER BY id`

	if err := r.db.SelectContext(ctx, &exchanges, query); err != nil {
		return nil, fmt.Errorf("failed to get enabled exchanges: %w", err)
	}

	return exchanges, nil
}

// Upsert creates or updates a registry entry
func (r *ExchangeRepo) Upsert(ctx context.Context, exchange *entities.Exchange) error {
	query := `
		INSERT INTO exchanges (id, name, fee, spread_bps, enabled)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			fee = EXCLUDED.fee,
			spread_bps = EXCLUDED.spread_bps,
			enabled = EXCLUDED.enabled
	`

	_, err := r.db.ExecContext(ctx, query,
		exchange.ID,
		exchange.Name,
		exchange.Fee,
		exchange.SpreadBps,
		exchange.Enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange: %w", err)
	}

	return nil
}
