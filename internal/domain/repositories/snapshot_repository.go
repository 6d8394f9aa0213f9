package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

// SnapshotStats aggregates snapshot history for a token over a window.
// BestExchange is the venue with the highest average net rate
// (price * (1 - fee)) over the window.
type SnapshotStats struct {
	SampleCount  int64           `db:"sample_count"`
	MinPrice     decimal.Decimal `db:"min_price"`
	MaxPrice     decimal.Decimal `db:"max_price"`
	AvgPrice     decimal.Decimal `db:"avg_price"`
	BestExchange string          `db:"best_exchange"`
}

// SnapshotRepository defines the interface for rate snapshot storage
type SnapshotRepository interface {
	// BatchInsert stores a batch of snapshots
	BatchInsert(ctx context.Context, snapshots []entities.RateSnapshot) error

	// GetByFilter retrieves snapshots matching the filter, newest first
	GetByFilter(ctx context.Context, filter entities.SnapshotFilter) ([]entities.RateSnapshot, error)

	// GetStats aggregates snapshots for a token since the given time.
	// Returns nil when no snapshots exist in the window.
	GetStats(ctx context.Context, tokenSymbol string, since time.Time) (*SnapshotStats, error)

	// DeleteOlderThan prunes snapshots collected before the cutoff and
	// returns the number of rows removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
