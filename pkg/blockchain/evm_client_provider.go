package blockchain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hotwallet_monitor/internal/config"
	"hotwallet_monitor/internal/entity"
	"hotwallet_monitor/pkg/metrics"

	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ChainReader reads the current balance of one token contract for one wallet.
type ChainReader interface {
	ReadBalance(ctx context.Context, walletAddress, contractAddress, chain string) (*entity.TokenBalance, error)
}

// EVMClientProvider resolves chain identifiers to cached EVM clients. Clients
// are dialed lazily on first use and reused for the process lifetime.
type EVMClientProvider struct {
	endpoints         map[string]string
	clients           map[string]*EVMClient
	mu                sync.Mutex
	connectionTimeout time.Duration
	callTimeout       time.Duration
	metadata          *cache.Cache
	logger            *zap.Logger
}

// NewEVMClientProvider creates a provider over the configured chain endpoint table.
func NewEVMClientProvider(cfg *config.Config, logger *zap.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		endpoints:         cfg.Chains,
		clients:           make(map[string]*EVMClient),
		connectionTimeout: time.Duration(cfg.RpcClient.ConnectionTimeoutSeconds) * time.Second,
		callTimeout:       time.Duration(cfg.RpcClient.CallTimeoutSeconds) * time.Second,
		metadata: cache.New(
			time.Duration(cfg.Cache.MetadataTTLMinutes)*time.Minute,
			time.Duration(cfg.Cache.CleanupIntervalMinutes)*time.Minute,
		),
		logger: logger.Named("EVMClientProvider"),
	}
}

// ClientFor returns the cached client for chain, dialing it on first use.
// A chain outside the configured endpoint table is an UnsupportedChainError.
func (p *EVMClientProvider) ClientFor(chain string) (*EVMClient, error) {
	canonical := entity.CanonicalChain(chain)
	endpoint, ok := p.endpoints[canonical]
	if !ok || endpoint == "" {
		return nil, &entity.UnsupportedChainError{Chain: chain}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[canonical]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", zap.String("chain", canonical))
	client, err := NewEVMClient(canonical, endpoint, p.connectionTimeout, p.callTimeout, p.metadata, p.logger)
	if err != nil {
		p.logger.Error("Failed to create EVM client", zap.String("chain", canonical), zap.Error(err))
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", canonical, err)
	}

	p.clients[canonical] = client
	return client, nil
}

// ReadBalance implements ChainReader. Any failure past chain resolution is
// wrapped into a ChainReadError so callers can degrade per wallet.
func (p *EVMClientProvider) ReadBalance(ctx context.Context, walletAddress, contractAddress, chain string) (*entity.TokenBalance, error) {
	canonical := entity.CanonicalChain(chain)

	client, err := p.ClientFor(chain)
	if err != nil {
		metrics.ObserveChainRead(canonical, "error", 0)
		return nil, err
	}

	start := time.Now()
	balance, err := client.ReadBalance(ctx, walletAddress, contractAddress)
	if err != nil {
		metrics.ObserveChainRead(canonical, "error", time.Since(start))
		return nil, &entity.ChainReadError{Chain: canonical, WalletAddress: walletAddress, Err: err}
	}

	metrics.ObserveChainRead(canonical, "ok", time.Since(start))
	return balance, nil
}

// Close releases every dialed client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, client := range p.clients {
		client.Close()
	}
	p.clients = make(map[string]*EVMClient)
}
