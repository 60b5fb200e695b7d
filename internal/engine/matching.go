// Request broadcast — every unmatched rider ranks affordable drivers by
// distance-decayed weight and registers with the top few.
package engine

import (
	"cmp"
	"math"
	"slices"

	"github.com/talgya/ridegrid/internal/agents"
	"github.com/talgya/ridegrid/internal/grid"
)

// requestFanout is how many drivers a rider registers with per tick.
const requestFanout = 3

// matchRiders re-broadcasts requests for every still-unmatched rider.
// Requests accumulate in driver inboxes across ticks until acceptance or
// departure clears them.
func (s *Simulation) matchRiders() {
	for _, id := range sortedIDs(s.riders) {
		r := s.riders[id]
		if r.Matched {
			continue
		}
		s.sendRequests(r)
	}
}

// sendRequests scans unmatched drivers whose ask the rider can afford,
// weights each by exponential decay of Manhattan distance, and registers
// the rider with the top candidates. Ties keep ascending driver id order
// (the scan order), so candidate selection is stable.
func (s *Simulation) sendRequests(r *agents.Rider) {
	type candidate struct {
		weight float64
		driver *agents.Driver
	}

	var candidates []candidate
	for _, id := range sortedIDs(s.drivers) {
		d := s.drivers[id]
		if d.Matched || d.Ask > r.Bid {
			continue
		}
		dist := grid.Manhattan(d.Loc, r.Loc)
		w := math.Exp(-s.cfg.DistanceDecay * float64(dist))
		candidates = append(candidates, candidate{weight: w, driver: d})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.weight, a.weight)
	})

	limit := min(requestFanout, len(candidates))
	for _, c := range candidates[:limit] {
		c.driver.Inbox[r.ID] = r
		r.Requests[c.driver.ID] = struct{}{}
	}
}
