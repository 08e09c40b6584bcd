package app

import (
	"slices"

	"github.com/fd1az/solarb/business/arbitrage/domain"
	market "github.com/fd1az/solarb/business/market/domain"
)

// EdgeFilter decides whether the enumerator may take edge at the given depth
// (0-based hop index). All registered filters must accept an edge.
type EdgeFilter func(edge market.Edge, depth int) bool

// IntermediateAllowlist restricts which instruments a path may pass through.
// Edges returning to start are always allowed; everything else must land on
// an allowlisted instrument.
func IntermediateAllowlist(start string, allowed []string) EdgeFilter {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	return func(e market.Edge, _ int) bool {
		return e.To == start || set[e.To]
	}
}

// PathSeq is a restartable enumeration of cycles. It holds no traversal
// state; every Each call walks the graph from scratch in the same order.
type PathSeq struct {
	graph   *market.Graph
	start   string
	minHops int
	maxHops int
	filters []EdgeFilter
}

// Enumerate prepares a depth-first enumeration of all simple cycles that
// start and end at start, with hop counts in [minHops, maxHops]. Simple means
// no venue and no intermediate instrument is visited twice; skipping
// mint revisits keeps the search space polynomial in venue count at deeper
// hop limits, at the cost of routes that cross the same instrument twice
// over distinct venues. Traversal follows adjacency order, so for a fixed
// graph the sequence is deterministic and each cycle appears exactly once.
func Enumerate(g *market.Graph, start string, minHops, maxHops int, filters ...EdgeFilter) *PathSeq {
	if minHops < 1 {
		minHops = 1
	}
	return &PathSeq{
		graph:   g,
		start:   start,
		minHops: minHops,
		maxHops: maxHops,
		filters: filters,
	}
}

// Each yields cycles until the sequence ends or yield returns false.
func (s *PathSeq) Each(yield func(domain.Path) bool) {
	if s.maxHops < s.minHops {
		return
	}

	edges := make([]market.Edge, 0, s.maxHops)
	usedVenues := make(map[string]bool, s.maxHops)
	usedMints := map[string]bool{s.start: true}

	var dfs func(from string, depth int) bool
	dfs = func(from string, depth int) bool {
		for _, e := range s.graph.Outbound(from) {
			if usedVenues[e.Venue.Address] {
				continue
			}
			if !s.allowed(e, depth) {
				continue
			}

			if e.To == s.start {
				if depth+1 >= s.minHops {
					edges = append(edges, e)
					p := domain.Path{Edges: slices.Clone(edges)}
					edges = edges[:len(edges)-1]
					if !yield(p) {
						return false
					}
				}
				continue
			}

			if usedMints[e.To] {
				continue // no intermediate revisits
			}
			if depth+1 >= s.maxHops {
				continue // no room left to close the cycle
			}

			edges = append(edges, e)
			usedVenues[e.Venue.Address] = true
			usedMints[e.To] = true

			if !dfs(e.To, depth+1) {
				return false
			}

			edges = edges[:len(edges)-1]
			delete(usedVenues, e.Venue.Address)
			delete(usedMints, e.To)
		}
		return true
	}

	dfs(s.start, 0)
}

// Collect drains the sequence into a slice.
func (s *PathSeq) Collect() []domain.Path {
	var paths []domain.Path
	s.Each(func(p domain.Path) bool {
		paths = append(paths, p)
		return true
	})
	return paths
}

// Count returns the number of cycles without materializing them.
func (s *PathSeq) Count() int {
	n := 0
	s.Each(func(domain.Path) bool {
		n++
		return true
	})
	return n
}

func (s *PathSeq) allowed(e market.Edge, depth int) bool {
	for _, f := range s.filters {
		if !f(e, depth) {
			return false
		}
	}
	return true
}
