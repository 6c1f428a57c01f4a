package entity

import "fmt"

// ValidationError rejects malformed or missing caller input before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnsupportedChainError marks a chain identifier outside the enumerated set.
type UnsupportedChainError struct {
	Chain string
}

func (e *UnsupportedChainError) Error() string {
	return fmt.Sprintf("unsupported chain: %s", e.Chain)
}

// ChainReadError wraps any failure while reading one wallet balance on chain.
// The aggregator catches it per wallet and degrades to a zero snapshot.
type ChainReadError struct {
	Chain         string
	WalletAddress string
	Err           error
}

func (e *ChainReadError) Error() string {
	return fmt.Sprintf("chain read failed for %s on %s: %v", e.WalletAddress, e.Chain, e.Err)
}

func (e *ChainReadError) Unwrap() error { return e.Err }

// StoreReadError is a hard persistence failure on the read path, distinct from
// "zero rows" which is a valid empty result.
type StoreReadError struct {
	Err error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("wallet store read failed: %v", e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreWriteError is a hard persistence failure while inserting a wallet row.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("wallet store write failed: %v", e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }
