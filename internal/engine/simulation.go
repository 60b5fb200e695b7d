// Package engine drives the tick-based market simulation: spawn, match,
// accept, cleanup, in fixed order, with per-tick metrics aggregation.
package engine

import (
	"log/slog"
	"slices"

	"github.com/talgya/ridegrid/internal/agents"
	"github.com/talgya/ridegrid/internal/config"
	"github.com/talgya/ridegrid/internal/entropy"
	"github.com/talgya/ridegrid/internal/grid"
	"github.com/talgya/ridegrid/internal/market"
	"github.com/talgya/ridegrid/internal/metrics"
)

// progressEvery controls how often Run logs a progress report.
const progressEvery = 100

// Simulation owns the complete market state for one run: the occupancy
// grid, the trade-history board, and the active agent registries.
type Simulation struct {
	cfg     config.Config
	rng     *entropy.Source
	spawner *agents.Spawner

	grid  *grid.Grid
	board *market.Board

	riders  map[agents.ID]*agents.Rider
	drivers map[agents.ID]*agents.Driver

	tick    int
	matched int
	series  *metrics.Series
}

// New creates a simulation from a validated configuration. All randomness
// derives from cfg.Seed; two simulations with the same configuration
// produce identical metric series.
func New(cfg config.Config) *Simulation {
	rng := entropy.NewSource(cfg.Seed)
	return &Simulation{
		cfg: cfg,
		rng: rng,
		spawner: agents.NewSpawner(rng,
			agents.PriceParams{Sensitivity: cfg.RiderBidSensitivity, Floor: cfg.BidFloor},
			agents.PriceParams{Sensitivity: cfg.DriverAskSensitivity, Floor: cfg.AskFloor},
			cfg.MaxWait),
		grid:    grid.New(cfg.GridSize),
		board:   market.NewBoard(cfg.GridSize, cfg.BasePrice),
		riders:  make(map[agents.ID]*agents.Rider),
		drivers: make(map[agents.ID]*agents.Driver),
		series:  metrics.NewSeries(cfg.Ticks),
	}
}

// Step advances the simulation by one tick: spawn riders, spawn drivers,
// broadcast requests, run driver acceptance, expire the timed-out, then
// record the tick's metrics. Phases run strictly in this order; each
// observes the fully settled state left by the previous one.
func (s *Simulation) Step() {
	var ts metrics.TickStats

	ts.RidersSpawned = s.spawnRiders()
	ts.MeanPressure = s.meanCellPressure()
	ts.DriversSpawned = s.spawnDrivers()

	s.matchRiders()
	s.driverChoices()
	ts.RidersDropped, ts.DriversDropped = s.cleanup()

	ts.ActiveRiders = len(s.riders)
	ts.ActiveDrivers = len(s.drivers)
	ts.MeanPrice = s.board.MeanBid()

	s.series.Append(ts)
	s.tick++
}

// Run executes the configured number of ticks. There is no early
// termination condition.
func (s *Simulation) Run() {
	slog.Info("simulation started",
		"grid", s.cfg.GridSize,
		"ticks", s.cfg.Ticks,
		"seed", s.cfg.Seed,
	)

	for i := 0; i < s.cfg.Ticks; i++ {
		s.Step()

		if progressEvery > 0 && s.tick%progressEvery == 0 {
			last := s.series.At(s.series.Ticks() - 1)
			slog.Info("progress",
				"tick", s.tick,
				"active_riders", last.ActiveRiders,
				"active_drivers", last.ActiveDrivers,
				"matched_total", s.matched,
				"mean_price", last.MeanPrice,
				"mean_pressure", last.MeanPressure,
			)
		}
	}

	slog.Info("simulation finished", "ticks", s.tick, "matched_total", s.matched)
}

// Tick returns the number of ticks processed so far.
func (s *Simulation) Tick() int {
	return s.tick
}

// Matched returns the total number of finalized matches.
func (s *Simulation) Matched() int {
	return s.matched
}

// Series returns the per-tick metric series recorded so far.
func (s *Simulation) Series() *metrics.Series {
	return s.series
}

// meanCellPressure averages the radius-1 pressure ratio over all cells.
// Recorded once per tick, after rider spawning.
func (s *Simulation) meanCellPressure() float64 {
	n := s.grid.Size()
	total := 0.0
	cells := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			r, d := s.grid.LocalPressure(i, j, 1)
			total += grid.PressureRatio(r, d, s.cfg.PressureEpsilon)
			cells++
		}
	}
	return total / float64(max(1, cells))
}

// sortedIDs returns a registry's keys in ascending order. IDs are issued
// monotonically, so ascending id order is creation order; every phase that
// iterates a registry uses it to keep runs reproducible.
func sortedIDs[V any](m map[agents.ID]V) []agents.ID {
	ids := make([]agents.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
