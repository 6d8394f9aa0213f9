package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange is a registry entry for a venue that quotes sell rates. Fee is a
// fraction (0 <= fee < 1). SpreadBps bounds how far the venue's quoted price
// may deviate from the reference price, in basis points.
type Exchange struct {
	ID        string          `db:"id"`
	Name      string          `db:"name"`
	Fee       decimal.Decimal `db:"fee"`
	SpreadBps int             `db:"spread_bps"`
	Enabled   bool            `db:"enabled"`
	CreatedAt time.Time       `db:"created_at"`
}
