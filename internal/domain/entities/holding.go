package entities

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Holding represents a token balance owned by a wallet, valued at the
// current reference unit price.
type Holding struct {
	Symbol    string
	Name      string
	Balance   decimal.Decimal
	UnitPrice decimal.Decimal
}

// TotalValue is always derived from balance and unit price. It is a method
// rather than a field so the total can never drift from its inputs.
func (h Holding) TotalValue() decimal.Decimal {
	return h.Balance.Mul(h.UnitPrice)
}

// ErrNotFinite is returned when a float crossing into the decimal domain is
// NaN or infinite.
var ErrNotFinite = errors.New("value is not a finite number")

// DecimalFromFloat converts a float into a decimal, rejecting NaN and
// infinities. All float inputs must pass through here before entering
// domain types.
func DecimalFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, ErrNotFinite
	}
	return decimal.NewFromFloat(f), nil
}

// NewHolding builds a holding from wire-level float values.
func NewHolding(symbol, name string, balance, unitPrice float64) (Holding, error) {
	b, err := DecimalFromFloat(balance)
	if err != nil {
		return Holding{}, err
	}
	p, err := DecimalFromFloat(unitPrice)
	if err != nil {
		return Holding{}, err
	}
	return Holding{Symbol: symbol, Name: name, Balance: b, UnitPrice: p}, nil
}
