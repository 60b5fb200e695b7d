// Expiry — ages every remaining agent and removes those past the wait
// threshold. Runs last in the tick, after matching and acceptance.
package engine

// cleanup increments every active agent's wait counter and expires agents
// whose wait has reached the configured maximum. Expiry is the only way an
// unmatched agent leaves the market. Returns the per-tick drop counts.
func (s *Simulation) cleanup() (droppedRiders, droppedDrivers int) {
	for _, id := range sortedIDs(s.riders) {
		r := s.riders[id]
		r.Wait++
		if r.Expired(s.cfg.MaxWait) {
			delete(s.riders, id)
			s.grid.RemoveRider(r.Loc)
			droppedRiders++
		}
	}

	for _, id := range sortedIDs(s.drivers) {
		d := s.drivers[id]
		d.Wait++
		if d.Expired(s.cfg.MaxWait) {
			delete(s.drivers, id)
			s.grid.RemoveDriver(d.Loc)
			droppedDrivers++
		}
	}

	return droppedRiders, droppedDrivers
}
