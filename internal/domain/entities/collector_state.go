package entities

import "time"

// CollectorState tracks collection progress per token.
type CollectorState struct {
	TokenSymbol     string    `db:"token_symbol"`
	LastCollectedAt time.Time `db:"last_collected_at"`
	TotalRuns       int64     `db:"total_runs"`
	UpdatedAt       time.Time `db:"updated_at"`
}
