package domain

// Edge is one directed trading step: swap From into To through Venue. Every
// venue contributes two edges, one per direction, so the graph is a directed
// multigraph (parallel edges exist when several venues serve the same pair).
type Edge struct {
	From  string // input mint address
	To    string // output mint address
	Venue *Venue // points into the snapshot's venue slice
}

// Graph is the instrument graph derived from one snapshot. Like the snapshot
// it is immutable after construction; a refresh produces a new graph.
type Graph struct {
	snapshot  *Snapshot
	adjacency map[string][]Edge
}

// BuildGraph derives the directed multigraph from snap. Adjacency lists follow
// snapshot venue order, which keeps traversal deterministic for a given
// generation.
func BuildGraph(snap *Snapshot) *Graph {
	g := &Graph{
		snapshot:  snap,
		adjacency: make(map[string][]Edge, len(snap.Instruments())),
	}

	venues := snap.Venues()
	for i := range venues {
		v := &venues[i]
		g.adjacency[v.Base.Address] = append(g.adjacency[v.Base.Address],
			Edge{From: v.Base.Address, To: v.Quote.Address, Venue: v})
		g.adjacency[v.Quote.Address] = append(g.adjacency[v.Quote.Address],
			Edge{From: v.Quote.Address, To: v.Base.Address, Venue: v})
	}

	return g
}

// Snapshot returns the snapshot this graph was built from.
func (g *Graph) Snapshot() *Snapshot { return g.snapshot }

// Outbound returns the outgoing edges of an instrument, in venue order.
// Callers must treat the slice as read-only.
func (g *Graph) Outbound(mint string) []Edge { return g.adjacency[mint] }

// Instruments returns all instrument addresses in first-seen order.
func (g *Graph) Instruments() []string { return g.snapshot.Instruments() }

// EdgeCount returns the total number of directed edges.
func (g *Graph) EdgeCount() int { return 2 * g.snapshot.Len() }
