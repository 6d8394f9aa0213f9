// Package rates produces per-exchange sell quotes for catalog tokens.
package rates

import (
	"context"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

// Provider produces raw sell quotes for a token across exchanges. Quotes
// carry the fee as a fraction; only enabled exchanges are quoted.
type Provider interface {
	// Name identifies the provider
	Name() string

	// Quotes returns one quote per enabled exchange
	Quotes(ctx context.Context, token entities.Token, exchanges []entities.Exchange) ([]entities.Quote, error)
}
