package entities

import (
	"github.com/shopspring/decimal"
)

// Quote is a single exchange's sell offer for a token: a unit price and a
// fee expressed as a fraction (0 <= fee < 1). Fees are percentages only at
// the presentation boundary. Quotes are immutable once received.
type Quote struct {
	Exchange string
	Price    decimal.Decimal
	Fee      decimal.Decimal
}

// RankedQuote is a quote enriched with the net proceeds a holder would
// receive after fees, in the value unit of the holding. It is
// derived at ranking time and never persisted.
type RankedQuote struct {
	Quote
	NetProceeds decimal.Decimal
}

// NewQuote builds a quote from wire-level float values.
func NewQuote(exchange string, price, fee float64) (Quote, error) {
	p, err := DecimalFromFloat(price)
	if err != nil {
		return Quote{}, err
	}
	f, err := DecimalFromFloat(fee)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Exchange: exchange, Price: p, Fee: f}, nil
}
