// Driver acceptance — patience-gated selection among pending requests,
// evaluated cheapest ask first, and match finalization.
package engine

import (
	"cmp"
	"slices"

	"github.com/talgya/ridegrid/internal/agents"
)

// driverChoices processes every driver holding requests, in ascending ask
// order so low-ask drivers get first pick. A driver whose inbox age has
// reached its patience selects the highest-bid rider in its inbox; if that
// rider has already matched elsewhere or expired, the entry is stale and the
// driver keeps aging without clearing its inbox, re-checking next tick.
func (s *Simulation) driverChoices() {
	ids := sortedIDs(s.drivers)
	byAsk := make([]*agents.Driver, 0, len(ids))
	for _, id := range ids {
		byAsk = append(byAsk, s.drivers[id])
	}
	// Stable sort over ascending-id order: equal asks resolve to lower id.
	slices.SortStableFunc(byAsk, func(a, b *agents.Driver) int {
		return cmp.Compare(a.Ask, b.Ask)
	})

	for _, d := range byAsk {
		if d.Matched || len(d.Inbox) == 0 {
			continue
		}

		d.InboxAge++
		if d.InboxAge < d.Patience {
			continue
		}

		best := bestInboxBid(d.Inbox)
		live, ok := s.riders[best.ID]
		if !ok || live.Matched {
			continue
		}
		s.completeMatch(d, live)
	}
}

// bestInboxBid returns the highest-bid rider in the inbox, resolving equal
// bids to the lower rider id. The inbox is non-empty when called.
func bestInboxBid(inbox map[agents.ID]*agents.Rider) *agents.Rider {
	var best *agents.Rider
	for _, id := range sortedIDs(inbox) {
		r := inbox[id]
		if best == nil || r.Bid > best.Bid {
			best = r
		}
	}
	return best
}

// completeMatch finalizes a driver/rider pair: both are marked matched, the
// trade is recorded in the market cell at the driver's location, and both
// leave the registries and the grid counters. Leftover inbox and request
// entries referencing them become tombstones for other agents to skip.
func (s *Simulation) completeMatch(d *agents.Driver, r *agents.Rider) {
	d.Matched = true
	r.Matched = true

	s.board.Cell(d.Loc.I, d.Loc.J).RecordTrade(r.Bid, d.Ask)

	delete(s.drivers, d.ID)
	delete(s.riders, r.ID)
	s.grid.RemoveDriver(d.Loc)
	s.grid.RemoveRider(r.Loc)
	s.matched++
}
