package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token is a catalog entry for a sellable token: on-chain identity plus the
// reference unit price that holdings are valued against.
type Token struct {
	Symbol          string          `db:"symbol"`
	Name            string          `db:"name"`
	Decimals        int             `db:"decimals"`
	ContractAddress string          `db:"contract_address"`
	ReferencePrice  decimal.Decimal `db:"reference_price"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}
