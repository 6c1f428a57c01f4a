package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ScaleTokenAmount converts a raw on-chain integer amount to a decimal token
// quantity using the token's decimals.
// Example: raw=1234500000000000000, decimals=18 => 1.2345
func ScaleTokenAmount(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
