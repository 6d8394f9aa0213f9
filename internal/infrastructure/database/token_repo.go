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

// Ensure TokenRepo implements TokenRepository
var _ repositories.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements TokenRepository using PostgreSQL
type TokenRepo struct {
	db *sqlx.DB
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// GetBySymbol retrieves a token by its symbol
func (r *TokenRepo) GetBySymbol(ctx context.Context, symbol string) (*entities.Token, error) {
	var token entities.Token
	query := `SELECT * FROM tokens WHERE symbol = $1`

	if err := r.db.GetContext(ctx, &token, query, symbol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}

// GetAll retrieves the full catalog
func (r *TokenRepo) GetAll(ctx context.Context) ([]entities.Token, error) {
	var tokens []entities.Token
	query := `SELECT * FROM tokens ORDER BY symbol`

	if err := r.db.SelectContext(ctx, &tokens, query); err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	return tokens, nil
}

// Count returns the number of catalog entries
func (r *TokenRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM tokens`

	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	return count, nil
}

// Upsert creates or updates a catalog entry
func (r *TokenRepo) Upsert(ctx context.Context, token *entities.Token) error {
	query := `
		INSERT INTO tokens (symbol, name, decimals, contract_address, reference_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			contract_address = EXCLUDED.contract_address,
			reference_price = EXCLUDED.reference_price,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query,
		token.Symbol,
		token.Name,
		token.Decimals,
		token.ContractAddress,
		token.ReferencePrice,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert token: %w", err)
	}

	return nil
}
