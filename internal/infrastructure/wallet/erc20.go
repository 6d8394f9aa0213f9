package wallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kashandark/cryptomonetizer/internal/domain/entities"
)

// ERC-20 function selectors (first 4 bytes of keccak256 hash)
var (
	// balanceOf(address) -> 0x70a08231
	balanceOfSig = common.FromHex("0x70a08231")
	// symbol() -> 0x95d89b41
	symbolSig = common.FromHex("0x95d89b41")
	// decimals() -> 0x313ce567
	decimalsSig = common.FromHex("0x313ce567")
)

// TokenMetadata holds on-chain ERC-20 metadata
type TokenMetadata struct {
	Symbol   string
	Decimals uint8
}

// ContractCaller abstracts the eth_call transport.
type ContractCaller interface {
	CallContract(ctx context.Context, contract common.Address, data []byte) ([]byte, error)
}

// BalanceReader reads ERC-20 balances and metadata via eth_call
type BalanceReader struct {
	caller ContractCaller
	logger *zap.Logger
}

// NewBalanceReader creates a new balance reader
func NewBalanceReader(caller ContractCaller, logger *zap.Logger) *BalanceReader {
	return &BalanceReader{
		caller: caller,
		logger: logger,
	}
}

// Balance reads the wallet's balance of the given token and scales it by the
// token's decimals into a human unit amount.
func (r *BalanceReader) Balance(ctx context.Context, token entities.Token, account string) (decimal.Decimal, error) {
	contract := common.HexToAddress(token.ContractAddress)
	holder := common.HexToAddress(account)

	calldata := make([]byte, 0, 36)
	calldata = append(calldata, balanceOfSig...)
	calldata = append(calldata, common.LeftPadBytes(holder.Bytes(), 32)...)

	result, err := r.caller.CallContract(ctx, contract, calldata)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to read balance of %s for %s: %w",
			token.Symbol, account, err)
	}

	if len(result) < 32 {
		return decimal.Decimal{}, fmt.Errorf("invalid balanceOf response length: %d", len(result))
	}

	raw := new(big.Int).SetBytes(result[:32])
	return decimal.NewFromBigInt(raw, -int32(token.Decimals)), nil
}

// Metadata reads the contract's symbol and decimals
func (r *BalanceReader) Metadata(ctx context.Context, contractAddress string) (*TokenMetadata, error) {
	contract := common.HexToAddress(contractAddress)

	symbolRaw, err := r.caller.CallContract(ctx, contract, symbolSig)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol: %w", err)
	}
	symbol, err := decodeStringOrBytes32(symbolRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode symbol: %w", err)
	}

	decimalsRaw, err := r.caller.CallContract(ctx, contract, decimalsSig)
	if err != nil {
		return nil, fmt.Errorf("failed to read decimals: %w", err)
	}
	decimals, err := decodeUint8(decimalsRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode decimals: %w", err)
	}

	return &TokenMetadata{Symbol: symbol, Decimals: decimals}, nil
}

func decodeUint8(data []byte) (uint8, error) {
	if len(data) < 32 {
		return 0, fmt.Errorf("response too short: %d bytes", len(data))
	}
	// uint8 padded to 32 bytes; the value is the last byte
	return data[31], nil
}

// decodeStringOrBytes32 decodes a response that could be either:
// 1. ABI-encoded string: offset (32 bytes) + length (32 bytes) + data (padded)
// 2. bytes32: raw 32 bytes (some legacy tokens)
func decodeStringOrBytes32(data []byte) (string, error) {
	if len(data) < 32 {
		return "", fmt.Errorf("data too short: %d bytes", len(data))
	}

	if len(data) >= 64 {
		offset := new(big.Int).SetBytes(data[:32])
		if offset.Uint64() == 32 {
			length := new(big.Int).SetBytes(data[32:64])
			strLen := int(length.Uint64())

			if strLen == 0 {
				return "", nil
			}
			if len(data) >= 64+strLen {
				return strings.TrimRight(string(data[64:64+strLen]), "\x00"), nil
			}
		}
	}

	// Fallback: treat as bytes32
	result := bytes.TrimRight(data[:32], "\x00")
	if isPrintableASCII(result) {
		return string(result), nil
	}

	return "0x" + hex.EncodeToString(data[:32]), nil
}

func isPrintableASCII(data []byte) bool {
	for _, b := range data {
		if b < 32 || b > 126 {
			return false
		}
	}
	return len(data) > 0
}
