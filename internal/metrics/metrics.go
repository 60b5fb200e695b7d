// Package metrics collects the per-tick time series the engine emits for
// external reporting and plotting tools.
package metrics

// TickStats is one tick's worth of observations.
type TickStats struct {
	ActiveRiders   int     `json:"active_riders"`
	ActiveDrivers  int     `json:"active_drivers"`
	RidersSpawned  int     `json:"riders_spawned"`
	DriversSpawned int     `json:"drivers_spawned"`
	RidersDropped  int     `json:"riders_dropped"`
	DriversDropped int     `json:"drivers_dropped"`
	MeanPrice      float64 `json:"mean_price"`
	MeanPressure   float64 `json:"mean_pressure"`
}

// Series holds one ordered sequence per metric, one entry per simulated tick.
type Series struct {
	ActiveRiders   []int
	ActiveDrivers  []int
	RidersSpawned  []int
	DriversSpawned []int
	RidersDropped  []int
	DriversDropped []int
	MeanPrice      []float64
	MeanPressure   []float64
}

// NewSeries preallocates a series for the expected number of ticks.
func NewSeries(ticks int) *Series {
	if ticks < 0 {
		ticks = 0
	}
	return &Series{
		ActiveRiders:   make([]int, 0, ticks),
		ActiveDrivers:  make([]int, 0, ticks),
		RidersSpawned:  make([]int, 0, ticks),
		DriversSpawned: make([]int, 0, ticks),
		RidersDropped:  make([]int, 0, ticks),
		DriversDropped: make([]int, 0, ticks),
		MeanPrice:      make([]float64, 0, ticks),
		MeanPressure:   make([]float64, 0, ticks),
	}
}

// Append records one tick's stats at the end of every sequence.
func (s *Series) Append(ts TickStats) {
	s.ActiveRiders = append(s.ActiveRiders, ts.ActiveRiders)
	s.ActiveDrivers = append(s.ActiveDrivers, ts.ActiveDrivers)
	s.RidersSpawned = append(s.RidersSpawned, ts.RidersSpawned)
	s.DriversSpawned = append(s.DriversSpawned, ts.DriversSpawned)
	s.RidersDropped = append(s.RidersDropped, ts.RidersDropped)
	s.DriversDropped = append(s.DriversDropped, ts.DriversDropped)
	s.MeanPrice = append(s.MeanPrice, ts.MeanPrice)
	s.MeanPressure = append(s.MeanPressure, ts.MeanPressure)
}

// Ticks returns the number of recorded ticks.
func (s *Series) Ticks() int {
	return len(s.ActiveRiders)
}

// At returns the stats recorded for tick index i.
func (s *Series) At(i int) TickStats {
	return TickStats{
		ActiveRiders:   s.ActiveRiders[i],
		ActiveDrivers:  s.ActiveDrivers[i],
		RidersSpawned:  s.RidersSpawned[i],
		DriversSpawned: s.DriversSpawned[i],
		RidersDropped:  s.RidersDropped[i],
		DriversDropped: s.DriversDropped[i],
		MeanPrice:      s.MeanPrice[i],
		MeanPressure:   s.MeanPressure[i],
	}
}

// Totals sums the count metrics over the whole run.
type Totals struct {
	RidersSpawned  int
	DriversSpawned int
	RidersDropped  int
	DriversDropped int
}

// Sum aggregates the per-tick counts.
func (s *Series) Sum() Totals {
	var t Totals
	for i := range s.RidersSpawned {
		t.RidersSpawned += s.RidersSpawned[i]
		t.DriversSpawned += s.DriversSpawned[i]
		t.RidersDropped += s.RidersDropped[i]
		t.DriversDropped += s.DriversDropped[i]
	}
	return t
}
