package rates

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

var one = decimal.NewFromInt(1)

// Simulated generates deterministic quotes around each token's reference
// price. The offset for a (token, exchange) pair is derived from a hash of
// the pair and the current time window, so repeated reads within one window
// return identical quotes and prices drift between windows.
type Simulated struct {
	window time.Duration
	now    func() time.Time
}

// NewSimulated creates a simulated provider with the given quote window
func NewSimulated(window time.Duration) *Simulated {
	if window <= 0 {
		window = 30 * time.Second
	}
	return &Simulated{
		window: window,
		now:    time.Now,
	}
}

// Name identifies the provider
func (p *Simulated) Name() string {
	return "simulated"
}

// Quotes returns one quote per enabled exchange. The quoted price deviates
// from the reference price by at most the exchange's spread; the fee comes
// from the registry.
func (p *Simulated) Quotes(ctx context.Context, token entities.Token, exchanges []entities.Exchange) ([]entities.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if token.ReferencePrice.Sign() <= 0 {
		return nil, fmt.Errorf("token %s has no positive reference price", token.Symbol)
	}

	bucket := p.now().UTC().Truncate(p.window).Unix()

	quotes := make([]entities.Quote, 0, len(exchanges))
	for _, ex := range exchanges {
		if !ex.Enabled {
			continue
		}

		offset := spreadOffset(token.Symbol, ex.ID, bucket, ex.SpreadBps)
		quotes = append(quotes, entities.Quote{
			Exchange: ex.ID,
			Price:    token.ReferencePrice.Mul(one.Add(offset)),
			Fee:      ex.Fee,
		})
	}

	return quotes, nil
}

// spreadOffset maps (symbol, exchange, window) onto a fraction in
// [-bps, +bps] basis points.
func spreadOffset(symbol, exchange string, bucket int64, bps int) decimal.Decimal {
	if bps <= 0 {
		return decimal.Zero
	}

	h := fnv.New64a()
	io.WriteString(h, symbol)
	h.Write([]byte{0})
	io.WriteString(h, exchange)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(bucket))
	h.Write(buf[:])

	span := uint64(2*bps + 1)
	offsetBps := int64(h.Sum64()%span) - int64(bps)

	// Basis points to fraction: 1 bps = 1e-4.
	return decimal.New(offsetBps, -4)
}
