package service

import (
	"context"
	"strings"

	"hotwallet_monitor/internal/entity"
	"hotwallet_monitor/internal/repository"
	"hotwallet_monitor/pkg/metrics"

	"go.uber.org/zap"
)

// CoinService orchestrates the wallet store and the balance aggregator. It is
// the only component consuming both collaborators.
type CoinService interface {
	// GetSummary aggregates all registered wallets for a symbol. A nil
	// summary with a nil error means no wallets are registered for the
	// symbol — callers use that to offer registration, it is not a failure.
	GetSummary(ctx context.Context, symbol string) (*entity.CoinSummary, error)
	// RegisterWallet validates and persists one hot wallet registration.
	RegisterWallet(ctx context.Context, params RegisterWalletParams) (*entity.WalletRecord, error)
}

// RegisterWalletParams carries one registration request.
type RegisterWalletParams struct {
	Symbol          string
	Chain           string
	ContractAddress string
	WalletAddress   string
	WalletName      string
}

// coinServiceImpl implements the CoinService interface.
type coinServiceImpl struct {
	repo       repository.WalletRepository
	aggregator BalanceAggregator
	logger     *zap.Logger
}

// NewCoinService creates a new instance of CoinService.
func NewCoinService(repo repository.WalletRepository, aggregator BalanceAggregator, logger *zap.Logger) CoinService {
	return &coinServiceImpl{
		repo:       repo,
		aggregator: aggregator,
		logger:     logger.Named("CoinService"),
	}
}

// GetSummary implements the CoinService interface.
func (s *coinServiceImpl) GetSummary(ctx context.Context, symbol string) (*entity.CoinSummary, error) {
	canonical := strings.ToUpper(strings.TrimSpace(symbol))
	if canonical == "" {
		return nil, &entity.ValidationError{Field: "symbol", Reason: "is required"}
	}

	records, err := s.repo.ListBySymbol(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		s.logger.Debug("No wallets registered for symbol", zap.String("symbol", canonical))
		return nil, nil
	}

	// The aggregator prices the whole batch off its first record, so assert
	// the mono-symbol precondition here, the only place that controls batch
	// composition. Mismatches can only come from a future caller or a
	// corrupted store.
	batch := records[:0]
	for _, record := range records {
		if !strings.EqualFold(record.Symbol, canonical) {
			s.logger.Warn("Dropping wallet with mismatched symbol from batch",
				zap.String("expected", canonical),
				zap.String("got", record.Symbol),
				zap.Int64("id", record.ID))
			continue
		}
		batch = append(batch, record)
	}

	result, err := s.aggregator.Aggregate(ctx, batch)
	if err != nil {
		return nil, err
	}

	return &entity.CoinSummary{
		Symbol:  canonical,
		Wallets: result.Wallets,
		Total:   result.Total,
	}, nil
}

// RegisterWallet implements the CoinService interface.
func (s *coinServiceImpl) RegisterWallet(ctx context.Context, params RegisterWalletParams) (*entity.WalletRecord, error) {
	symbol := strings.ToUpper(strings.TrimSpace(params.Symbol))
	if symbol == "" {
		metrics.WalletRegistrations.WithLabelValues("rejected").Inc()
		return nil, &entity.ValidationError{Field: "symbol", Reason: "is required"}
	}

	chain := entity.CanonicalChain(params.Chain)
	if chain == "" {
		metrics.WalletRegistrations.WithLabelValues("rejected").Inc()
		return nil, &entity.ValidationError{Field: "chain", Reason: "is required"}
	}
	if !entity.IsSupportedChain(chain) {
		metrics.WalletRegistrations.WithLabelValues("rejected").Inc()
		return nil, &entity.UnsupportedChainError{Chain: params.Chain}
	}

	walletAddress := strings.TrimSpace(params.WalletAddress)
	if walletAddress == "" {
		metrics.WalletRegistrations.WithLabelValues("rejected").Inc()
		return nil, &entity.ValidationError{Field: "wallet_address", Reason: "is required"}
	}

	contractAddress := strings.TrimSpace(params.ContractAddress)
	if entity.RequiresHexAddress(chain) {
		if !strings.HasPrefix(walletAddress, "0x") {
			metrics.WalletRegistrations.WithLabelValues("rejected").Inc()
			return nil, &entity.ValidationError{Field: "wallet_address", Reason: "must start with 0x on chain " + chain}
		}
		if contractAddress != "" && !strings.HasPrefix(contractAddress, "0x") {
			metrics.WalletRegistrations.WithLabelValues("rejected").Inc()
			return nil, &entity.ValidationError{Field: "contract_address", Reason: "must start with 0x on chain " + chain}
		}
	}

	walletName := strings.TrimSpace(params.WalletName)
	if walletName == "" {
		walletName = entity.DefaultWalletName
	}

	record, err := s.repo.Insert(ctx, repository.InsertWalletParams{
		Symbol:          symbol,
		Chain:           chain,
		ContractAddress: contractAddress,
		WalletAddress:   walletAddress,
		WalletName:      walletName,
	})
	if err != nil {
		metrics.WalletRegistrations.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.WalletRegistrations.WithLabelValues("created").Inc()
	s.logger.Info("Registered hot wallet",
		zap.String("symbol", record.Symbol),
		zap.String("chain", record.Chain),
		zap.Int64("id", record.ID))
	return record, nil
}
