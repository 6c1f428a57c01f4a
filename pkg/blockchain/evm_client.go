package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"hotwallet_monitor/internal/entity"
	"hotwallet_monitor/pkg/utils"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ERC20 ABI minimal part for the three read-only calls the monitor issues.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}
]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			// This is a critical error during initialization, panic is appropriate
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
}

// tokenMetadata is the immutable symbol/decimals pair of one token contract.
// Balances are always fetched fresh; only metadata is cached.
type tokenMetadata struct {
	Symbol   string
	Decimals uint8
}

func metadataKey(chain, contractAddress string) string {
	return chain + ":" + strings.ToLower(contractAddress)
}

// EVMClient wraps one JSON-RPC connection for a single chain.
type EVMClient struct {
	ethClient   *ethclient.Client
	chain       string
	callTimeout time.Duration
	metadata    *cache.Cache
	logger      *zap.Logger
}

// NewEVMClient dials the RPC endpoint for the given chain.
func NewEVMClient(chain, rpcURL string, connectionTimeout, callTimeout time.Duration, metadata *cache.Cache, logger *zap.Logger) (*EVMClient, error) {
	initParsedERC20ABI()

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return &EVMClient{
		ethClient:   client,
		chain:       chain,
		callTimeout: callTimeout,
		metadata:    metadata,
		logger:      logger.Named("EVMClient").With(zap.String("chain", chain)),
	}, nil
}

// Chain returns the chain identifier this client is connected to.
func (c *EVMClient) Chain() string {
	return c.chain
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}

// ReadBalance fetches symbol(), decimals() and balanceOf(wallet) for the given
// token contract in one JSON-RPC batch and returns the scaled token quantity.
// When the contract's metadata is already cached, only balanceOf is fetched.
func (c *EVMClient) ReadBalance(ctx context.Context, walletAddress, contractAddress string) (*entity.TokenBalance, error) {
	contract := common.HexToAddress(contractAddress)

	meta, metaCached := c.cachedMetadata(contractAddress)

	balanceData, err := parsedERC20ABI.Pack("balanceOf", common.HexToAddress(walletAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf calldata: %w", err)
	}

	elems := make([]rpc.BatchElem, 0, 3)
	symbolIdx, decimalsIdx := -1, -1
	if !metaCached {
		symbolData, err := parsedERC20ABI.Pack("symbol")
		if err != nil {
			return nil, fmt.Errorf("failed to pack symbol calldata: %w", err)
		}
		decimalsData, err := parsedERC20ABI.Pack("decimals")
		if err != nil {
			return nil, fmt.Errorf("failed to pack decimals calldata: %w", err)
		}
		symbolIdx = len(elems)
		elems = append(elems, newEthCallElem(contract, symbolData))
		decimalsIdx = len(elems)
		elems = append(elems, newEthCallElem(contract, decimalsData))
	}
	balanceIdx := len(elems)
	elems = append(elems, newEthCallElem(contract, balanceData))

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	if err := c.ethClient.Client().BatchCallContext(callCtx, elems); err != nil {
		return nil, fmt.Errorf("RPC batch call failed: %w", err)
	}
	for i := range elems {
		if elems[i].Error != nil {
			return nil, fmt.Errorf("eth_call against contract %s failed: %w", contractAddress, elems[i].Error)
		}
	}

	if !metaCached {
		symbol, err := unpackSymbol(*elems[symbolIdx].Result.(*hexutil.Bytes))
		if err != nil {
			return nil, fmt.Errorf("failed to decode symbol() for %s: %w", contractAddress, err)
		}
		decimals, err := unpackDecimals(*elems[decimalsIdx].Result.(*hexutil.Bytes))
		if err != nil {
			return nil, fmt.Errorf("failed to decode decimals() for %s: %w", contractAddress, err)
		}
		meta = tokenMetadata{Symbol: symbol, Decimals: decimals}
		c.metadata.Set(metadataKey(c.chain, contractAddress), meta, cache.DefaultExpiration)
		c.logger.Debug("Cached token metadata",
			zap.String("contract", contractAddress),
			zap.String("symbol", meta.Symbol),
			zap.Uint8("decimals", meta.Decimals))
	}

	raw, err := unpackBalanceOf(*elems[balanceIdx].Result.(*hexutil.Bytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode balanceOf() for %s: %w", contractAddress, err)
	}

	return &entity.TokenBalance{
		Symbol:   meta.Symbol,
		Amount:   utils.ScaleTokenAmount(raw, meta.Decimals),
		Decimals: meta.Decimals,
	}, nil
}

func (c *EVMClient) cachedMetadata(contractAddress string) (tokenMetadata, bool) {
	if c.metadata == nil {
		return tokenMetadata{}, false
	}
	if cached, ok := c.metadata.Get(metadataKey(c.chain, contractAddress)); ok {
		if meta, ok := cached.(tokenMetadata); ok {
			return meta, true
		}
	}
	return tokenMetadata{}, false
}

func newEthCallElem(to common.Address, data []byte) rpc.BatchElem {
	callArgs := map[string]interface{}{
		"to":   to,
		"data": hexutil.Bytes(data),
	}
	return rpc.BatchElem{
		Method: "eth_call",
		Args:   []interface{}{callArgs, "latest"},
		Result: new(hexutil.Bytes),
	}
}

func unpackBalanceOf(raw hexutil.Bytes) (*big.Int, error) {
	// Some nodes return empty data for a zero balance on proxy contracts.
	if len(raw) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsedERC20ABI.Unpack("balanceOf", raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result: %w. Raw: %s", err, hexutil.Encode(raw))
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf unpack returned no data")
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int. Got: %T", unpacked[0])
	}
	return balance, nil
}

func unpackSymbol(raw hexutil.Bytes) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty symbol() response, address is likely not a token contract")
	}
	unpacked, err := parsedERC20ABI.Unpack("symbol", raw)
	if err != nil {
		return "", fmt.Errorf("failed to unpack symbol result: %w. Raw: %s", err, hexutil.Encode(raw))
	}
	if len(unpacked) == 0 {
		return "", fmt.Errorf("symbol unpack returned no data")
	}
	symbol, ok := unpacked[0].(string)
	if !ok {
		return "", fmt.Errorf("failed to assert unpacked symbol result to string. Got: %T", unpacked[0])
	}
	return symbol, nil
}

func unpackDecimals(raw hexutil.Bytes) (uint8, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("empty decimals() response, address is likely not a token contract")
	}
	unpacked, err := parsedERC20ABI.Unpack("decimals", raw)
	if err != nil {
		return 0, fmt.Errorf("failed to unpack decimals result: %w. Raw: %s", err, hexutil.Encode(raw))
	}
	if len(unpacked) == 0 {
		return 0, fmt.Errorf("decimals unpack returned no data")
	}
	decimals, ok := unpacked[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("failed to assert unpacked decimals result to uint8. Got: %T", unpacked[0])
	}
	return decimals, nil
}
