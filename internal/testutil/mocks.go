package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
	"github.com/kashandark/cryptomonetizer/internal/domain/repositories"
)

// MockCall records one invocation of a mock method
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entities.Token

	// Function hooks for custom behavior
	GetBySymbolFunc func(ctx context.Context, symbol string) (*entities.Token, error)
	GetAllFunc      func(ctx context.Context) ([]entities.Token, error)
	CountFunc       func(ctx context.Context) (int64, error)
	UpsertFunc      func(ctx context.Context, token *entities.Token) error

	// Call tracking
	Calls []MockCall
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{
		tokens: make(map[string]*entities.Token),
		Calls:  make([]MockCall, 0),
	}
}

// AddToken seeds the in-memory catalog
func (m *MockTokenRepository) AddToken(token *entities.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Symbol] = token
}

func (m *MockTokenRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

func (m *MockTokenRepository) GetBySymbol(ctx context.Context, symbol string) (*entities.Token, error) {
	m.record("GetBySymbol", symbol)

	if m.GetBySymbolFunc != nil {
		return m.GetBySymbolFunc(ctx, symbol)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[symbol], nil
}

func (m *MockTokenRepository) GetAll(ctx context.Context) ([]entities.Token, error) {
	m.record("GetAll")

	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Token, 0, len(m.tokens))
	for _, t := range m.tokens {
		result = append(result, *t)
	}
	return result, nil
}

func (m *MockTokenRepository) Count(ctx context.Context) (int64, error) {
	m.record("Count")

	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.tokens)), nil
}

func (m *MockTokenRepository) Upsert(ctx context.Context, token *entities.Token) error {
	m.record("Upsert", token)

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Symbol] = token
	return nil
}

// MockExchangeRepository is a mock implementation of ExchangeRepository
type MockExchangeRepository struct {
	mu        sync.RWMutex
	exchanges []entities.Exchange

	GetByIDFunc    func(ctx context.Context, id string) (*entities.Exchange, error)
	GetAllFunc     func(ctx context.Context) ([]entities.Exchange, error)
	GetEnabledFunc func(ctx context.Context) ([]entities.Exchange, error)
	UpsertFunc     func(ctx context.Context, exchange *entities.Exchange) error

	Calls []MockCall
}

func NewMockExchangeRepository() *MockExchangeRepository {
	return &MockExchangeRepository{
		exchanges: make([]entities.Exchange, 0),
		Calls:     make([]MockCall, 0),
	}
}

// AddExchange seeds the in-memory registry
func (m *MockExchangeRepository) AddExchange(exchange entities.Exchange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchanges = append(m.exchanges, exchange)
}

func (m *MockExchangeRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

func (m *MockExchangeRepository) GetByID(ctx context.Context, id string) (*entities.Exchange, error) {
	m.record("GetByID", id)

	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.exchanges {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockExchangeRepository) GetAll(ctx context.Context) ([]entities.Exchange, error) {
	m.record("GetAll")

	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Exchange, len(m.exchanges))
	copy(result, m.exchanges)
	return result, nil
}

func (m *MockExchangeRepository) GetEnabled(ctx context.Context) ([]entities.Exchange, error) {
	m.record("GetEnabled")

	if m.GetEnabledFunc != nil {
		return m.GetEnabledFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Exchange, 0, len(m.exchanges))
	for _, e := range m.exchanges {
		if e.Enabled {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MockExchangeRepository) Upsert(ctx context.Context, exchange *entities.Exchange) error {
	m.record("Upsert", exchange)

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, exchange)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.exchanges {
		if e.ID == exchange.ID {
			m.exchanges[i] = *exchange
			return nil
		}
	}
	m.exchanges = append(m.exchanges, *exchange)
	return nil
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots []entities.RateSnapshot

	BatchInsertFunc     func(ctx context.Context, snapshots []entities.RateSnapshot) error
	GetByFilterFunc     func(ctx context.Context, filter entities.SnapshotFilter) ([]entities.RateSnapshot, error)
	GetStatsFunc        func(ctx context.Context, tokenSymbol string, since time.Time) (*repositories.SnapshotStats, error)
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)

	Calls []MockCall
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		snapshots: make([]entities.RateSnapshot, 0),
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockSnapshotRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// Snapshots returns a copy of everything inserted so far
func (m *MockSnapshotRepository) Snapshots() []entities.RateSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.RateSnapshot, len(m.snapshots))
	copy(result, m.snapshots)
	return result
}

func (m *MockSnapshotRepository) BatchInsert(ctx context.Context, snapshots []entities.RateSnapshot) error {
	m.record("BatchInsert", snapshots)

	if m.BatchInsertFunc != nil {
		return m.BatchInsertFunc(ctx, snapshots)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshots...)
	return nil
}

func (m *MockSnapshotRepository) GetByFilter(ctx context.Context, filter entities.SnapshotFilter) ([]entities.RateSnapshot, error) {
	m.record("GetByFilter", filter)

	if m.GetByFilterFunc != nil {
		return m.GetByFilterFunc(ctx, filter)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.RateSnapshot, 0)
	for _, s := range m.snapshots {
		if s.TokenSymbol != filter.TokenSymbol {
			continue
		}
		if filter.Exchange != nil && s.Exchange != *filter.Exchange {
			continue
		}
		if !filter.Since.IsZero() && s.CollectedAt.Before(filter.Since) {
			continue
		}
		result = append(result, s)
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}

func (m *MockSnapshotRepository) GetStats(ctx context.Context, tokenSymbol string, since time.Time) (*repositories.SnapshotStats, error) {
	m.record("GetStats", tokenSymbol, since)

	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx, tokenSymbol, since)
	}

	return nil, nil
}

func (m *MockSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.record("DeleteOlderThan", cutoff)

	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]entities.RateSnapshot, 0, len(m.snapshots))
	var removed int64
	for _, s := range m.snapshots {
		if s.CollectedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.snapshots = kept
	return removed, nil
}

// MockCollectorStateRepository is a mock implementation of CollectorStateRepository
type MockCollectorStateRepository struct {
	mu     sync.RWMutex
	states map[string]*entities.CollectorState

	GetFunc    func(ctx context.Context, tokenSymbol string) (*entities.CollectorState, error)
	UpsertFunc func(ctx context.Context, state *entities.CollectorState) error

	Calls []MockCall
}

func NewMockCollectorStateRepository() *MockCollectorStateRepository {
	return &MockCollectorStateRepository{
		states: make(map[string]*entities.CollectorState),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockCollectorStateRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

func (m *MockCollectorStateRepository) Get(ctx context.Context, tokenSymbol string) (*entities.CollectorState, error) {
	m.record("Get", tokenSymbol)

	if m.GetFunc != nil {
		return m.GetFunc(ctx, tokenSymbol)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[tokenSymbol], nil
}

func (m *MockCollectorStateRepository) Upsert(ctx context.Context, state *entities.CollectorState) error {
	m.record("Upsert", state)

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, state)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.TokenSymbol] = state
	return nil
}

// MockBalanceReader is a mock on-chain balance source
type MockBalanceReader struct {
	mu sync.Mutex

	BalanceFunc func(ctx context.Context, token entities.Token, account string) (decimal.Decimal, error)

	Calls []MockCall
}

func NewMockBalanceReader() *MockBalanceReader {
	return &MockBalanceReader{Calls: make([]MockCall, 0)}
}

func (m *MockBalanceReader) Balance(ctx context.Context, token entities.Token, account string) (decimal.Decimal, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Balance", Args: []interface{}{token.Symbol, account}})
	m.mu.Unlock()

	if m.BalanceFunc != nil {
		return m.BalanceFunc(ctx, token, account)
	}
	return decimal.Zero, nil
}

// MockProvider is a mock quote provider
type MockProvider struct {
	mu sync.Mutex

	QuotesFunc func(ctx context.Context, token entities.Token, exchanges []entities.Exchange) ([]entities.Quote, error)

	Calls []MockCall
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Calls: make([]MockCall, 0)}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Quotes(ctx context.Context, token entities.Token, exchanges []entities.Exchange) ([]entities.Quote, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Quotes", Args: []interface{}{token.Symbol}})
	m.mu.Unlock()

	if m.QuotesFunc != nil {
		return m.QuotesFunc(ctx, token, exchanges)
	}
	return nil, nil
}

// MockCompleter is a mock LLM completion backend
type MockCompleter struct {
	mu sync.Mutex

	CompleteFunc func(ctx context.Context, system, user string) (string, error)

	Calls []MockCall
}

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{Calls: make([]MockCall, 0)}
}

func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Complete", Args: []interface{}{system, user}})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, user)
	}
	return "summary text", nil
}

// CallCount returns how many recorded calls match the method name
func CallCount(calls []MockCall, method string) int {
	count := 0
	for _, c := range calls {
		if c.Method == method {
			count++
		}
	}
	return count
}
