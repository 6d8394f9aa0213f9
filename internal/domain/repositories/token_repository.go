package repositories

import (
	"context"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

// TokenRepository defines the interface for token catalog operations
type TokenRepository interface {
	// GetBySymbol retrieves a token by its symbol, nil when unknown
	GetBySymbol(ctx context.Context, symbol string) (*entities.Token, error)

	// GetAll retrieves the full catalog ordered by symbol
	GetAll(ctx context.Context) ([]entities.Token, error)

	// Count returns the number of catalog entries
	Count(ctx context.Context) (int64, error)

	// Upsert creates or updates a catalog entry
	Upsert(ctx context.Context, token *entities.Token) error
}
