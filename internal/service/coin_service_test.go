package service

import (
	"context"
	"errors"
	"testing"

	"hotwallet_monitor/internal/entity"
	"hotwallet_monitor/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWalletRepo struct {
	records   []entity.WalletRecord
	listErr   error
	insertErr error
	inserted  []repository.InsertWalletParams
}

func (r *fakeWalletRepo) Insert(_ context.Context, params repository.InsertWalletParams) (*entity.WalletRecord, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	r.inserted = append(r.inserted, params)
	return &entity.WalletRecord{
		ID:              int64(len(r.inserted)),
		Symbol:          params.Symbol,
		Chain:           params.Chain,
		ContractAddress: params.ContractAddress,
		WalletAddress:   params.WalletAddress,
		WalletName:      params.WalletName,
	}, nil
}

func (r *fakeWalletRepo) ListBySymbol(_ context.Context, _ string) ([]entity.WalletRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.records, nil
}

type fakeAggregator struct {
	calls   int
	batches [][]entity.WalletRecord
	result  *entity.AggregateResult
}

func (a *fakeAggregator) Aggregate(_ context.Context, wallets []entity.WalletRecord) (*entity.AggregateResult, error) {
	a.calls++
	a.batches = append(a.batches, wallets)
	if a.result != nil {
		return a.result, nil
	}
	return &entity.AggregateResult{
		Wallets: make([]entity.BalanceSnapshot, len(wallets)),
		Total:   entity.BalanceTotal{Amount: decimal.Zero},
	}, nil
}

func TestGetSummaryAbsentWhenNoWalletsRegistered(t *testing.T) {
	repo := &fakeWalletRepo{}
	aggregator := &fakeAggregator{}
	svc := NewCoinService(repo, aggregator, zap.NewNop())

	summary, err := svc.GetSummary(context.Background(), "foo")
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Equal(t, 0, aggregator.calls)
}

func TestGetSummaryStoreFailureIsHardError(t *testing.T) {
	repo := &fakeWalletRepo{listErr: &entity.StoreReadError{Err: errors.New("connection lost")}}
	aggregator := &fakeAggregator{}
	svc := NewCoinService(repo, aggregator, zap.NewNop())

	summary, err := svc.GetSummary(context.Background(), "FOO")
	require.Error(t, err)
	assert.Nil(t, summary)

	var storeErr *entity.StoreReadError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, 0, aggregator.calls)
}

func TestGetSummaryCanonicalizesSymbol(t *testing.T) {
	repo := &fakeWalletRepo{records: []entity.WalletRecord{
		{ID: 1, Symbol: "FOO", Chain: "ETH", WalletAddress: "0xaaa"},
	}}
	aggregator := &fakeAggregator{}
	svc := NewCoinService(repo, aggregator, zap.NewNop())

	summary, err := svc.GetSummary(context.Background(), " foo ")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "FOO", summary.Symbol)
	assert.Equal(t, 1, aggregator.calls)
}

func TestGetSummaryDropsMismatchedSymbols(t *testing.T) {
	repo := &fakeWalletRepo{records: []entity.WalletRecord{
		{ID: 1, Symbol: "FOO", Chain: "ETH", WalletAddress: "0xaaa"},
		{ID: 2, Symbol: "BAR", Chain: "ETH", WalletAddress: "0xbbb"},
		{ID: 3, Symbol: "foo", Chain: "BASE", WalletAddress: "0xccc"},
	}}
	aggregator := &fakeAggregator{}
	svc := NewCoinService(repo, aggregator, zap.NewNop())

	_, err := svc.GetSummary(context.Background(), "FOO")
	require.NoError(t, err)
	require.Len(t, aggregator.batches, 1)

	batch := aggregator.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, int64(1), batch[0].ID)
	assert.Equal(t, int64(3), batch[1].ID)
}

func TestRegisterWalletValidation(t *testing.T) {
	tests := []struct {
		name      string
		params    RegisterWalletParams
		wantField string
	}{
		{
			name:      "missing symbol",
			params:    RegisterWalletParams{Chain: "ETH", WalletAddress: "0xaaa"},
			wantField: "symbol",
		},
		{
			name:      "missing chain",
			params:    RegisterWalletParams{Symbol: "FOO", WalletAddress: "0xaaa"},
			wantField: "chain",
		},
		{
			name:      "missing wallet address",
			params:    RegisterWalletParams{Symbol: "FOO", Chain: "ETH"},
			wantField: "wallet_address",
		},
		{
			name:      "wallet address without hex prefix on hex chain",
			params:    RegisterWalletParams{Symbol: "FOO", Chain: "ETH", WalletAddress: "abc123"},
			wantField: "wallet_address",
		},
		{
			name: "contract address without hex prefix on hex chain",
			params: RegisterWalletParams{
				Symbol: "FOO", Chain: "MANTLE",
				WalletAddress: "0xaaa", ContractAddress: "deadbeef",
			},
			wantField: "contract_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeWalletRepo{}
			svc := NewCoinService(repo, &fakeAggregator{}, zap.NewNop())

			_, err := svc.RegisterWallet(context.Background(), tt.params)
			require.Error(t, err)

			var validationErr *entity.ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.wantField, validationErr.Field)
			assert.Empty(t, repo.inserted, "no store mutation may be attempted")
		})
	}
}

func TestRegisterWalletRejectsUnknownChain(t *testing.T) {
	repo := &fakeWalletRepo{}
	svc := NewCoinService(repo, &fakeAggregator{}, zap.NewNop())

	_, err := svc.RegisterWallet(context.Background(), RegisterWalletParams{
		Symbol: "FOO", Chain: "DOGECHAIN", WalletAddress: "0xaaa",
	})
	require.Error(t, err)

	var unsupported *entity.UnsupportedChainError
	assert.True(t, errors.As(err, &unsupported))
	assert.Empty(t, repo.inserted)
}

func TestRegisterWalletAllowsNonHexChainAddresses(t *testing.T) {
	// BSC is outside the hex-prefix validation set.
	repo := &fakeWalletRepo{}
	svc := NewCoinService(repo, &fakeAggregator{}, zap.NewNop())

	record, err := svc.RegisterWallet(context.Background(), RegisterWalletParams{
		Symbol: "FOO", Chain: "BSC", WalletAddress: "bnb1abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "bnb1abc", record.WalletAddress)
}

func TestRegisterWalletDefaultsWalletName(t *testing.T) {
	tests := []struct {
		name       string
		walletName string
	}{
		{"omitted", ""},
		{"blank after trim", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeWalletRepo{}
			svc := NewCoinService(repo, &fakeAggregator{}, zap.NewNop())

			record, err := svc.RegisterWallet(context.Background(), RegisterWalletParams{
				Symbol: "foo", Chain: "eth", WalletAddress: "0xaaa", WalletName: tt.walletName,
			})
			require.NoError(t, err)
			assert.Equal(t, "-", record.WalletName)
		})
	}
}

func TestRegisterWalletCanonicalizesSymbolAndChain(t *testing.T) {
	repo := &fakeWalletRepo{}
	svc := NewCoinService(repo, &fakeAggregator{}, zap.NewNop())

	record, err := svc.RegisterWallet(context.Background(), RegisterWalletParams{
		Symbol: "foo", Chain: "eth", WalletAddress: "0xaaa", WalletName: "cold backup",
	})
	require.NoError(t, err)
	assert.Equal(t, "FOO", record.Symbol)
	assert.Equal(t, "ETH", record.Chain)
	assert.Equal(t, "cold backup", record.WalletName)
}

func TestRegisterWalletSurfacesStoreWriteError(t *testing.T) {
	repo := &fakeWalletRepo{insertErr: &entity.StoreWriteError{Err: errors.New("disk full")}}
	svc := NewCoinService(repo, &fakeAggregator{}, zap.NewNop())

	_, err := svc.RegisterWallet(context.Background(), RegisterWalletParams{
		Symbol: "FOO", Chain: "ETH", WalletAddress: "0xaaa",
	})
	require.Error(t, err)

	var storeErr *entity.StoreWriteError
	assert.True(t, errors.As(err, &storeErr))
}
