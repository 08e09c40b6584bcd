package domain

import "time"

// VenueKind identifies the AMM variant a venue runs on. The set is closed:
// each kind has exactly one pricing capability registered for it.
type VenueKind string

const (
	KindRaydiumAMM    VenueKind = "raydium_amm"
	KindRaydiumCLMM   VenueKind = "raydium_clmm"
	KindOrcaWhirlpool VenueKind = "orca_whirlpool"
	KindMeteoraDLMM   VenueKind = "meteora_dlmm"
)

// AllVenueKinds returns every known kind in a stable order.
func AllVenueKinds() []VenueKind {
	return []VenueKind{KindRaydiumAMM, KindRaydiumCLMM, KindOrcaWhirlpool, KindMeteoraDLMM}
}

// Display returns a human-readable label for the kind.
func (k VenueKind) Display() string {
	switch k {
	case KindRaydiumAMM:
		return "Raydium"
	case KindRaydiumCLMM:
		return "Raydium CLMM"
	case KindOrcaWhirlpool:
		return "Orca (Whirlpools)"
	case KindMeteoraDLMM:
		return "Meteora DLMM"
	default:
		return string(k)
	}
}

// VenueState is the venue-kind-specific state blob. Implementations are plain
// value types; a state is never mutated after its venue enters a snapshot.
type VenueState interface {
	venueState()
}

// ReserveState is the state of a constant-product pool.
type ReserveState struct {
	BaseReserve  uint64
	QuoteReserve uint64
}

func (ReserveState) venueState() {}

// ConcentratedState is the state of a concentrated-liquidity pool. SqrtPriceQ32
// is sqrt(quote/base price) in Q32.32 fixed point, adjusted for decimals.
type ConcentratedState struct {
	Liquidity    uint64
	SqrtPriceQ32 uint64
	TickSpacing  uint16
	CurrentTick  int32
}

func (ConcentratedState) venueState() {}

// BinState is the state of a DLMM pool: the active bin's reserves plus the
// parameters needed to derive the bin price.
type BinState struct {
	ActiveBin    int32
	BinStep      uint16 // price step between bins, in basis points
	BaseReserve  uint64
	QuoteReserve uint64
}

func (BinState) venueState() {}

// Venue is one liquidity pool on one exchange protocol. Venues are owned by
// the registry: everything outside it holds read-only copies inside an
// immutable snapshot.
type Venue struct {
	Address   string
	Kind      VenueKind
	Base      Instrument
	Quote     Instrument
	FeeBps    uint32
	State     VenueState
	UpdatedAt time.Time
}

// Other returns the instrument on the opposite side of mint, and whether mint
// belongs to this venue at all.
func (v *Venue) Other(mint string) (Instrument, bool) {
	switch mint {
	case v.Base.Address:
		return v.Quote, true
	case v.Quote.Address:
		return v.Base, true
	default:
		return Instrument{}, false
	}
}

// Pair returns a display label like "SOL-USDC".
func (v *Venue) Pair() string {
	return v.Base.String() + "-" + v.Quote.String()
}
