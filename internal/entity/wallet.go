package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWalletName is stored when a wallet is registered without a label.
const DefaultWalletName = "-"

// WalletRecord is one registered hot wallet row from the hotwallet table.
type WalletRecord struct {
	ID              int64     `json:"id,omitempty"`
	Symbol          string    `json:"symbol"`
	Chain           string    `json:"chain"`
	ContractAddress string    `json:"contract_address"`
	WalletAddress   string    `json:"wallet_address"`
	WalletName      string    `json:"wallet_name"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// TokenBalance is the result of reading one ERC-20 balance on chain.
type TokenBalance struct {
	Symbol   string
	Amount   decimal.Decimal
	Decimals uint8
}

// BalanceSnapshot is a WalletRecord enriched with the on-chain balance read at
// request time. USDValue is nil when no USD quote was available for the symbol.
// Error carries the failure marker when the chain read failed; a failed wallet
// reports a zero amount and zero USD value.
type BalanceSnapshot struct {
	WalletRecord
	Amount   decimal.Decimal  `json:"amount"`
	USDValue *decimal.Decimal `json:"usd_value"`
	Error    string           `json:"error,omitempty"`
}

// BalanceTotal is the pointwise sum over a snapshot list. Failed wallets
// contribute zero to Amount; USDValue is nil when the price was unavailable.
type BalanceTotal struct {
	Amount   decimal.Decimal  `json:"amount"`
	USDValue *decimal.Decimal `json:"usd_value"`
}

// AggregateResult is the outcome of one balance aggregation over a mono-symbol
// wallet batch.
type AggregateResult struct {
	Symbol  string
	Wallets []BalanceSnapshot
	Total   BalanceTotal
	// Price is the USD unit price shared by every snapshot in the batch,
	// nil when neither quote source resolved the symbol.
	Price *decimal.Decimal
}

// CoinSummary aggregates all registered wallets for one symbol.
type CoinSummary struct {
	Symbol  string            `json:"symbol"`
	Wallets []BalanceSnapshot `json:"wallets"`
	Total   BalanceTotal      `json:"total"`
}
