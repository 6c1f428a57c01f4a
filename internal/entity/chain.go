package entity

import "strings"

// Chain identifiers accepted by the monitor. Every chain is queried through the
// same JSON-RPC path; the RPC endpoint per chain comes from configuration.
const (
	ChainETH    = "ETH"
	ChainBase   = "BASE"
	ChainARB    = "ARB"
	ChainOP     = "OP"
	ChainPOL    = "POL"
	ChainAVAX   = "AVAX"
	ChainBSC    = "BSC"
	ChainStark  = "STARK"
	ChainMantle = "MANTLE"
	ChainLinea  = "LINEA"
)

// SupportedChains lists the enumerated chain set in display order.
var SupportedChains = []string{
	ChainETH, ChainBase, ChainARB, ChainOP, ChainPOL,
	ChainAVAX, ChainBSC, ChainStark, ChainMantle, ChainLinea,
}

var supportedChainSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(SupportedChains))
	for _, chain := range SupportedChains {
		set[chain] = struct{}{}
	}
	return set
}()

// Chains whose wallet and contract addresses must carry a 0x prefix.
var hexAddressChains = map[string]struct{}{
	ChainETH:    {},
	ChainBase:   {},
	ChainARB:    {},
	ChainOP:     {},
	ChainLinea:  {},
	ChainMantle: {},
}

// CanonicalChain uppercases a chain identifier for lookups and storage.
func CanonicalChain(chain string) string {
	return strings.ToUpper(strings.TrimSpace(chain))
}

// IsSupportedChain reports whether chain belongs to the enumerated set.
func IsSupportedChain(chain string) bool {
	_, ok := supportedChainSet[CanonicalChain(chain)]
	return ok
}

// RequiresHexAddress reports whether addresses on chain must start with "0x".
func RequiresHexAddress(chain string) bool {
	_, ok := hexAddressChains[CanonicalChain(chain)]
	return ok
}
