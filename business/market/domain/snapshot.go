package domain

// Snapshot is an immutable, generation-versioned view of every venue the
// registry knows about. Once built it is never mutated; the registry swaps in
// a whole new snapshot on refresh while readers keep iterating the old one.
type Snapshot struct {
	generation  uint64
	venues      []Venue
	byAddress   map[string]int
	instruments map[string]Instrument
	order       []string // instrument addresses in first-seen order
}

// NewSnapshot builds a snapshot from venues. Venue order is preserved; it
// drives the deterministic iteration order of everything downstream.
func NewSnapshot(generation uint64, venues []Venue) *Snapshot {
	s := &Snapshot{
		generation:  generation,
		venues:      venues,
		byAddress:   make(map[string]int, len(venues)),
		instruments: make(map[string]Instrument, len(venues)),
	}

	for i := range venues {
		v := &venues[i]
		s.byAddress[v.Address] = i
		for _, inst := range []Instrument{v.Base, v.Quote} {
			if _, ok := s.instruments[inst.Address]; !ok {
				s.instruments[inst.Address] = inst
				s.order = append(s.order, inst.Address)
			}
		}
	}

	return s
}

// Generation returns the snapshot's generation number. Generations are
// strictly increasing across refreshes.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Len returns the number of venues.
func (s *Snapshot) Len() int { return len(s.venues) }

// Venues returns the underlying venue slice. Callers must treat it as
// read-only.
func (s *Snapshot) Venues() []Venue { return s.venues }

// Venue looks up a venue by address.
func (s *Snapshot) Venue(address string) (*Venue, bool) {
	i, ok := s.byAddress[address]
	if !ok {
		return nil, false
	}
	return &s.venues[i], true
}

// Instrument looks up an instrument by mint address.
func (s *Snapshot) Instrument(address string) (Instrument, bool) {
	inst, ok := s.instruments[address]
	return inst, ok
}

// Instruments returns all instrument addresses in first-seen order.
func (s *Snapshot) Instruments() []string { return s.order }
