package service

import (
	"context"
	"strings"

	"hotwallet_monitor/internal/config"
	"hotwallet_monitor/internal/entity"
	"hotwallet_monitor/pkg/blockchain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// balanceReadFailedMarker is the per-wallet failure marker surfaced to clients
// when a chain read fails. The wallet then reports zero amount and zero value.
const balanceReadFailedMarker = "balance lookup failed"

// BalanceAggregator turns a mono-symbol wallet batch into balance snapshots
// with a shared USD valuation.
type BalanceAggregator interface {
	// Aggregate reads every wallet's balance and values it with a single
	// price lookup keyed by the first wallet's symbol. Callers must pass
	// wallets sharing one symbol. A failed chain read never aborts the
	// batch: the wallet degrades to a zero snapshot with an error marker.
	Aggregate(ctx context.Context, wallets []entity.WalletRecord) (*entity.AggregateResult, error)
}

// balanceServiceImpl implements the BalanceAggregator interface.
type balanceServiceImpl struct {
	reader   blockchain.ChainReader
	priceSvc PriceService
	logger   *zap.Logger
	limiter  *rate.Limiter
	maxReads int
}

// NewBalanceService creates a new instance of BalanceAggregator.
func NewBalanceService(
	reader blockchain.ChainReader,
	priceSvc PriceService,
	cfg *config.Config,
	logger *zap.Logger,
) BalanceAggregator {
	return &balanceServiceImpl{
		reader:   reader,
		priceSvc: priceSvc,
		logger:   logger.Named("BalanceService"),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RpcClient.RateLimit), cfg.RpcClient.BurstLimit),
		maxReads: cfg.Aggregator.MaxConcurrentReads,
	}
}

// Aggregate implements the BalanceAggregator interface. Chain reads fan out
// with bounded concurrency; each result lands in its input-order slot so the
// response order matches the request order.
func (s *balanceServiceImpl) Aggregate(ctx context.Context, wallets []entity.WalletRecord) (*entity.AggregateResult, error) {
	if len(wallets) == 0 {
		return &entity.AggregateResult{
			Wallets: []entity.BalanceSnapshot{},
			Total:   entity.BalanceTotal{Amount: decimal.Zero},
		}, nil
	}

	symbol := strings.ToUpper(strings.TrimSpace(wallets[0].Symbol))
	price, priceFound := s.priceSvc.USDPrice(ctx, wallets[0].Symbol)
	if !priceFound {
		s.logger.Info("Aggregating without USD valuation", zap.String("symbol", symbol))
	}

	snapshots := make([]entity.BalanceSnapshot, len(wallets))

	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxReads)

	for i, wallet := range wallets {
		i, wallet := i, wallet
		eg.Go(func() error {
			if err := s.limiter.Wait(childCtx); err != nil {
				snapshots[i] = failedSnapshot(wallet)
				return nil
			}

			balance, err := s.reader.ReadBalance(childCtx, wallet.WalletAddress, wallet.ContractAddress, wallet.Chain)
			if err != nil {
				s.logger.Warn("Chain read failed for wallet",
					zap.String("wallet_address", wallet.WalletAddress),
					zap.String("chain", wallet.Chain),
					zap.Error(err))
				snapshots[i] = failedSnapshot(wallet)
				return nil
			}

			snapshot := entity.BalanceSnapshot{WalletRecord: wallet, Amount: balance.Amount}
			if priceFound {
				value := balance.Amount.Mul(price)
				snapshot.USDValue = &value
			}
			snapshots[i] = snapshot
			return nil
		})
	}

	// Every goroutine returns nil; per-wallet failures are recorded in their
	// snapshot slot instead.
	_ = eg.Wait()

	total := entity.BalanceTotal{Amount: decimal.Zero}
	totalUSD := decimal.Zero
	for _, snapshot := range snapshots {
		total.Amount = total.Amount.Add(snapshot.Amount)
		if snapshot.USDValue != nil {
			totalUSD = totalUSD.Add(*snapshot.USDValue)
		}
	}
	if priceFound {
		total.USDValue = &totalUSD
	}

	result := &entity.AggregateResult{
		Symbol:  symbol,
		Wallets: snapshots,
		Total:   total,
	}
	if priceFound {
		result.Price = &price
	}
	return result, nil
}

func failedSnapshot(wallet entity.WalletRecord) entity.BalanceSnapshot {
	zero := decimal.Zero
	return entity.BalanceSnapshot{
		WalletRecord: wallet,
		Amount:       decimal.Zero,
		USDValue:     &zero,
		Error:        balanceReadFailedMarker,
	}
}
