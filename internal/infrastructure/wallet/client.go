// Package wallet reads token balances and metadata for a wallet address
// straight from an EVM node over JSON-RPC.
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/config"
)

// Client wraps the EVM JSON-RPC client with retry logic
type Client struct {
	client  *ethclient.Client
	config  config.ChainConfig
	logger  *zap.Logger
	chainID *big.Int
}

// NewClient connects to the configured node and verifies its chain ID
func NewClient(cfg config.ChainConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain node: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	if chainID.Int64() != cfg.ChainID {
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", cfg.ChainID, chainID.Int64())
	}

	logger.Info("Connected to chain node",
		zap.String("rpc_url", cfg.RPCURL),
		zap.Int64("chain_id", chainID.Int64()),
	)

	return &Client{
		client:  client,
		config:  cfg,
		logger:  logger,
		chainID: chainID,
	}, nil
}

// Close closes the underlying connection
func (c *Client) Close() {
	c.client.Close()
}

// ChainID returns the connected chain's ID
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// HealthCheck verifies the node is still reachable and serving the
// expected chain
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	chainID, err := c.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain node unreachable: %w", err)
	}
	if chainID.Cmp(c.chainID) != 0 {
		return fmt.Errorf("chain ID changed: expected %s, got %s", c.chainID, chainID)
	}
	return nil
}

// CallContract executes a read-only eth_call against the given contract,
// retrying transient failures with exponential backoff.
func (c *Client) CallContract(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	operation := func() ([]byte, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()

		return c.client.CallContract(callCtx, ethereum.CallMsg{
			To:   &contract,
			Data: data,
		}, nil)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.config.RetryDelay

	notify := func(err error, d time.Duration) {
		c.logger.Warn("eth_call failed, retrying",
			zap.String("contract", contract.Hex()),
			zap.Duration("backoff", d),
			zap.Error(err),
		)
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.config.MaxRetries)+1),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return nil, fmt.Errorf("eth_call to %s failed after %d retries: %w",
			contract.Hex(), c.config.MaxRetries, err)
	}

	return result, nil
}
