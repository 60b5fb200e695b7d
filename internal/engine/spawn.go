// Stochastic arrivals — Poisson-distributed rider and driver spawns per
// cell per tick, parameterized by local pressure and surge schedules.
package engine

import (
	"math"

	"github.com/talgya/ridegrid/internal/grid"
	"github.com/talgya/ridegrid/internal/market"
)

// spawnRiders samples rider arrivals for every cell. The arrival mean is
// the baseline rate plus the surge increment of every window containing the
// current tick; the sampled count is clamped to the cell's remaining
// capacity. Pressure and the reference price are recomputed for each rider,
// so riders arriving together in one cell see the demand ahead of them.
func (s *Simulation) spawnRiders() int {
	spawned := 0
	n := s.grid.Size()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if s.grid.Riders(i, j) >= s.cfg.MaxRidersPerCell {
				continue
			}

			lam := s.cfg.BaseRiderRate + s.cfg.SurgeBoost(s.tick)
			count := s.rng.Poisson(clampMean(lam, s.cfg.MaxPoissonMean))
			if room := s.cfg.MaxRidersPerCell - s.grid.Riders(i, j); count > room {
				count = room
			}

			for k := 0; k < count; k++ {
				loc := grid.Cell{I: i, J: j}
				r, d := s.grid.LocalPressure(i, j, 1)
				pressure := grid.PressureRatio(r, d, s.cfg.PressureEpsilon)
				ref := s.board.LocalAverage(i, j, market.SideBid, s.board.SmoothRadius())

				rider := s.spawner.SpawnRider(s.tick, loc, ref, pressure)
				s.riders[rider.ID] = rider
				s.grid.AddRider(loc)
				spawned++
			}
		}
	}
	return spawned
}

// spawnDrivers samples driver arrivals for every cell. Driver supply chases
// demand: the arrival mean rises as pressure falls (rider abundance),
// capped before sampling to keep spawn counts sane. Pressure is computed
// once per cell, before sampling.
func (s *Simulation) spawnDrivers() int {
	spawned := 0
	n := s.grid.Size()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if s.grid.Drivers(i, j) >= s.cfg.MaxDriversPerCell {
				continue
			}

			r, d := s.grid.LocalPressure(i, j, 1)
			pressure := grid.PressureRatio(r, d, s.cfg.PressureEpsilon)

			lam := s.cfg.DriverBaseRate * math.Pow(pressure, -s.cfg.DriverSpawnSensitivity)
			count := s.rng.Poisson(clampMean(lam, s.cfg.MaxPoissonMean))
			if room := s.cfg.MaxDriversPerCell - s.grid.Drivers(i, j); count > room {
				count = room
			}

			for k := 0; k < count; k++ {
				loc := grid.Cell{I: i, J: j}
				ref := s.board.LocalAverage(i, j, market.SideAsk, s.board.SmoothRadius())

				driver := s.spawner.SpawnDriver(s.tick, loc, ref, pressure)
				s.drivers[driver.ID] = driver
				s.grid.AddDriver(loc)
				spawned++
			}
		}
	}
	return spawned
}

// clampMean bounds a Poisson mean to [0, limit] before sampling.
func clampMean(mean, limit float64) float64 {
	if mean < 0 {
		return 0
	}
	if mean > limit {
		return limit
	}
	return mean
}
