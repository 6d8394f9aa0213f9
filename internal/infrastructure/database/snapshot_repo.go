package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
)

// Ensure SnapshotRepo implements SnapshotRepository
var _ repositories.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implements SnapshotRepository using PostgreSQL
type SnapshotRepo struct {
	db *sqlx.DB
}

// NewSnapshotRepo creates a new snapshot repository
func NewSnapshotRepo(db *sqlx.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// BatchInsert stores a batch of snapshots in a single statement
func (r *SnapshotRepo) BatchInsert(ctx context.Context, snapshots []entities.RateSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(snapshots))
	valueArgs := make([]interface{}, 0, len(snapshots)*5)
	for i, s := range snapshots {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, s.TokenSymbol, s.Exchange, s.Price, s.Fee, s.CollectedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO rate_snapshots (token_symbol, exchange, price, fee, collected_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := r.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert snapshots: %w", err)
	}

	return nil
}

// GetByFilter retrieves snapshots matching the filter, newest first
func (r *SnapshotRepo) GetByFilter(ctx context.Context, filter entities.SnapshotFilter) ([]entities.RateSnapshot, error) {
	conditions := []string{"token_symbol = $1"}
	args := []interface{}{filter.TokenSymbol}
	argIdx := 2

	if filter.Exchange != nil {
		conditions = append(conditions, fmt.Sprintf("exchange = $%d", argIdx))
		args = append(args, *filter.Exchange)
		argIdx++
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("collected_at >= $%d", argIdx))
		args = append(args, filter.Since)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT * FROM rate_snapshots
		WHERE %s
		ORDER BY collected_at DESC
	`, strings.Join(conditions, " AND "))

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	var snapshots []entities.RateSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %w", err)
	}

	return snapshots, nil
}

// GetStats aggregates snapshots for a token since the given time
func (r *SnapshotRepo) GetStats(ctx context.Context, tokenSymbol string, since time.Time) (*repositories.SnapshotStats, error) {
	query := `
		SELECT
			COUNT(*) AS sample_count,
			MIN(price) AS min_price,
			MAX(price) AS max_price,
			AVG(price) AS avg_price
		FROM rate_snapshots
		WHERE token_symbol = $1 AND collected_at >= $2
		HAVING COUNT(*) > 0
	`

	var stats repositories.SnapshotStats
	if err := r.db.GetContext(ctx, &stats, query, tokenSymbol, since); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot stats: %w", err)
	}

	// Best venue by average net rate (price after fee) over the window.
	bestQuery := `
		SELECT exchange
		FROM rate_snapshots
		WHERE token_symbol = $1 AND collected_at >= $2
		GROUP BY exchange
		ORDER BY AVG(price * (1 - fee)) DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &stats.BestExchange, bestQuery, tokenSymbol, since); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get best exchange: %w", err)
	}

	return &stats, nil
}

// DeleteOlderThan prunes snapshots collected before the cutoff
func (r *SnapshotRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rate_snapshots WHERE collected_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}

	return deleted, nil
}
