// Package domain contains the core domain types for the market context.
package domain

// Instrument represents one tradable asset, identified by its mint address.
// Immutable once created; the symbol is display metadata, not identity.
type Instrument struct {
	Address  string
	Symbol   string
	Decimals uint8
}

// Well-known instruments used as cycle starts and allowlist defaults.
var (
	SOL  = Instrument{Address: "So11111111111111111111111111111111111111112", Symbol: "SOL", Decimals: 9}
	USDC = Instrument{Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Decimals: 6}
	USDT = Instrument{Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Symbol: "USDT", Decimals: 6}
)

// String returns the symbol when set, otherwise a shortened address.
func (i Instrument) String() string {
	if i.Symbol != "" {
		return i.Symbol
	}
	if len(i.Address) > 8 {
		return i.Address[:4] + ".." + i.Address[len(i.Address)-4:]
	}
	return i.Address
}
