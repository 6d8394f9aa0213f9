// Package ranking computes net sell proceeds per exchange and orders quotes
// best payout first. It is pure: no I/O, no state, identical inputs produce
// identical output.
package ranking

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

var one = decimal.NewFromInt(1)

// Rank computes, for every valid quote,
//
//	netProceeds = holding.TotalValue() * (quote.Price / holding.UnitPrice) * (1 - quote.Fee)
//
// and returns the quotes sorted descending by net proceeds. The sort is
// stable: quotes with equal proceeds keep their input order.
//
// A malformed holding fails the call with *InvalidHoldingError. A malformed
// quote is excluded and reported in the second return value; the ranking is
// still produced from the remaining quotes. An empty result is valid, not an
// error.
func Rank(holding entities.Holding, quotes []entities.Quote) ([]entities.RankedQuote, []*InvalidQuoteError, error) {
	if reason := holdingReason(holding); reason != "" {
		return nil, nil, &InvalidHoldingError{Symbol: holding.Symbol, Reason: reason}
	}

	total := holding.TotalValue()
	ranked := make([]entities.RankedQuote, 0, len(quotes))
	var rejected []*InvalidQuoteError

	for i, q := range quotes {
		if reason := quoteReason(q); reason != "" {
			rejected = append(rejected, &InvalidQuoteError{
				Exchange: q.Exchange,
				Index:    i,
				Reason:   reason,
			})
			continue
		}

		net := total.Mul(q.Price.Div(holding.UnitPrice)).Mul(one.Sub(q.Fee))
		ranked = append(ranked, entities.RankedQuote{Quote: q, NetProceeds: net})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NetProceeds.GreaterThan(ranked[j].NetProceeds)
	})

	return ranked, rejected, nil
}

func holdingReason(h entities.Holding) string {
	switch {
	case h.UnitPrice.Sign() <= 0:
		return "unit price must be positive"
	case h.Balance.Sign() < 0:
		return "balance must not be negative"
	}
	return ""
}

func quoteReason(q entities.Quote) string {
	switch {
	case q.Exchange == "":
		return "exchange identifier is empty"
	case q.Price.Sign() <= 0:
		return "price must be positive"
	case q.Fee.Sign() < 0:
		return "fee must not be negative"
	case q.Fee.GreaterThanOrEqual(one):
		return "fee must be below 1"
	}
	return ""
}
