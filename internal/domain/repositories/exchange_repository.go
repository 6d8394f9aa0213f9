package repositories

import (
	"context"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

// ExchangeRepository defines the interface for the exchange registry
type ExchangeRepository interface {
	// GetByID retrieves an exchange by its identifier, nil when unknown
	GetByID(ctx context.Context, id string) (*entities.Exchange, error)

	// GetAll retrieves every registered exchange
	GetAll(ctx context.Context) ([]entities.Exchange, error)

	// GetEnabled retrieves exchanges currently quoting
	GetEnabled(ctx context.Context) ([]entities.Exchange, error)

	// Upsert creates or updates a registry entry
	Upsert(ctx context.Context, exchange *entities.Exchange) error
}
