package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

// Common test addresses and symbols
const (
	WalletAddress = "0x1111111111111111111111111111111111111111"
	OtherWallet   = "0x2222222222222222222222222222222222222222"
	WETHContract  = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	USDCContract  = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

// Dec parses a decimal literal, panicking on malformed input. Test-only.
func Dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// CreateTestToken creates a test token with default values
func CreateTestToken(opts ...TokenOption) *entities.Token {
	t := &entities.Token{
		Symbol:          "ETH",
		Name:            "Ethereum",
		Decimals:        18,
		ContractAddress: WETHContract,
		ReferencePrice:  Dec("2800"),
		CreatedAt:       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

type TokenOption func(*entities.Token)

func WithSymbol(symbol string) TokenOption {
	return func(t *entities.Token) {
		t.Symbol = symbol
	}
}

func WithName(name string) TokenOption {
	return func(t *entities.Token) {
		t.Name = name
	}
}

func WithDecimals(decimals int) TokenOption {
	return func(t *entities.Token) {
		t.Decimals = decimals
	}
}

func WithContractAddress(addr string) TokenOption {
	return func(t *entities.Token) {
		t.ContractAddress = addr
	}
}

func WithReferencePrice(price string) TokenOption {
	return func(t *entities.Token) {
		t.ReferencePrice = Dec(price)
	}
}

// CreateTestExchange creates a test exchange with default values
func CreateTestExchange(opts ...ExchangeOption) entities.Exchange {
	e := entities.Exchange{
		ID:        "exchange-a",
		Name:      "Exchange A",
		Fee:       Dec("0.01"),
		SpreadBps: 50,
		Enabled:   true,
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

type ExchangeOption func(*entities.Exchange)

func WithExchangeID(id string) ExchangeOption {
	return func(e *entities.Exchange) {
		e.ID = id
		e.Name = id
	}
}

func WithFee(fee string) ExchangeOption {
	return func(e *entities.Exchange) {
		e.Fee = Dec(fee)
	}
}

func WithSpreadBps(bps int) ExchangeOption {
	return func(e *entities.Exchange) {
		e.SpreadBps = bps
	}
}

func WithEnabled(enabled bool) ExchangeOption {
	return func(e *entities.Exchange) {
		e.Enabled = enabled
	}
}

// CreateTestHolding creates a test holding with default values
func CreateTestHolding(opts ...HoldingOption) entities.Holding {
	h := entities.Holding{
		Symbol:    "ETH",
		Name:      "Ethereum",
		Balance:   Dec("0.5"),
		UnitPrice: Dec("2800"),
	}

	for _, opt := range opts {
		opt(&h)
	}

	return h
}

type HoldingOption func(*entities.Holding)

func WithBalance(balance string) HoldingOption {
	return func(h *entities.Holding) {
		h.Balance = Dec(balance)
	}
}

func WithUnitPrice(price string) HoldingOption {
	return func(h *entities.Holding) {
		h.UnitPrice = Dec(price)
	}
}

// CreateTestQuote creates a test quote with default values
func CreateTestQuote(exchange, price, fee string) entities.Quote {
	return entities.Quote{
		Exchange: exchange,
		Price:    Dec(price),
		Fee:      Dec(fee),
	}
}
