package repositories

import (
	"context"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

// CollectorStateRepository defines the interface for collector checkpoints
type CollectorStateRepository interface {
	// Get retrieves the state for a token, nil when never collected
	Get(ctx context.Context, tokenSymbol string) (*entities.CollectorState, error)

	// Upsert creates or updates the state for a token
	Upsert(ctx context.Context, state *entities.CollectorState) error
}
