package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot is a historical record of one exchange quote for a token,
// written by the collector and queried for rate history.
type RateSnapshot struct {
	ID          int64           `db:"id"`
	TokenSymbol string          `db:"token_symbol"`
	Exchange    string          `db:"exchange"`
	Price       decimal.Decimal `db:"price"`
	Fee         decimal.Decimal `db:"fee"`
	CollectedAt time.Time       `db:"collected_at"`
}

// SnapshotFilter narrows snapshot queries.
type SnapshotFilter struct {
	TokenSymbol string
	Exchange    *string // optional: single exchange
	Since       time.Time
	Limit       int
}
