// Package agents provides the rider and driver data model and the spawner
// that constructs them with locally derived prices.
package agents

import (
	"github.com/talgya/ridegrid/internal/grid"
)

// ID is a unique identifier for a rider or driver. IDs are issued
// monotonically by the Spawner; each role has its own sequence.
type ID uint64

// Rider is a demand-side agent waiting for a driver.
type Rider struct {
	ID        ID        `json:"id"`
	Loc       grid.Cell `json:"loc"`
	SpawnTick int       `json:"spawn_tick"`
	Wait      int       `json:"wait"` // Ticks elapsed unmatched
	Matched   bool      `json:"matched"`

	// Bid is fixed at spawn time from the local reference price and
	// pressure, floored at the configured minimum.
	Bid float64 `json:"bid"`

	// Requests holds the driver ids this rider has outstanding requests
	// with. Entries are non-owning and may outlive the driver; they are
	// never dereferenced, only recorded.
	Requests map[ID]struct{} `json:"-"`
}

// Driver is a supply-side agent collecting rider requests in its inbox.
type Driver struct {
	ID        ID        `json:"id"`
	Loc       grid.Cell `json:"loc"`
	SpawnTick int       `json:"spawn_tick"`
	Wait      int       `json:"wait"`
	Matched   bool      `json:"matched"`

	// Ask is fixed at spawn time, symmetric to the rider bid derivation.
	Ask float64 `json:"ask"`

	// Inbox maps rider id to a non-owning rider reference. Entries go stale
	// when the rider matches elsewhere or expires; stale entries are ignored
	// at acceptance time rather than eagerly pruned.
	Inbox map[ID]*Rider `json:"-"`

	// InboxAge counts ticks since the driver started holding requests.
	// It is not reset when a selection fails; the driver simply re-checks
	// every following tick.
	InboxAge int `json:"inbox_age"`

	// Patience is the inbox age at which the driver forces a selection.
	// High local pressure (driver abundance) makes drivers less patient.
	Patience int `json:"patience"`
}

// Expired reports whether the rider has waited out the expiry threshold.
func (r *Rider) Expired(maxWait int) bool {
	return r.Wait >= maxWait
}

// Expired reports whether the driver has waited out the expiry threshold.
func (d *Driver) Expired(maxWait int) bool {
	return d.Wait >= maxWait
}
