package agents

import (
	"math"

	"github.com/talgya/ridegrid/internal/entropy"
	"github.com/talgya/ridegrid/internal/grid"
)

// Multiplicative price noise: Gaussian, clamped to three standard
// deviations so a single draw cannot produce a degenerate price.
const (
	noiseMean   = -0.1
	noiseStdDev = 0.1
)

// PriceParams controls how one side's price is derived from the local
// reference price and pressure.
type PriceParams struct {
	Sensitivity float64 // Negative exponent applied to pressure
	Floor       float64 // Minimum derived price, in baseline price units
}

// Spawner constructs riders and drivers, owning the id sequences and the
// randomness used for price noise.
type Spawner struct {
	rng        *entropy.Source
	nextRider  ID
	nextDriver ID

	riderPrice  PriceParams
	driverPrice PriceParams
	maxWait     int
}

// NewSpawner creates a spawner drawing noise from the given source.
func NewSpawner(rng *entropy.Source, riderPrice, driverPrice PriceParams, maxWait int) *Spawner {
	return &Spawner{
		rng:         rng,
		nextRider:   1,
		nextDriver:  1,
		riderPrice:  riderPrice,
		driverPrice: driverPrice,
		maxWait:     maxWait,
	}
}

// SpawnRider creates a rider at loc with a bid derived from the local
// reference price and pressure.
func (s *Spawner) SpawnRider(tick int, loc grid.Cell, refPrice, pressure float64) *Rider {
	id := s.nextRider
	s.nextRider++

	return &Rider{
		ID:        id,
		Loc:       loc,
		SpawnTick: tick,
		Bid:       s.derivePrice(refPrice, pressure, s.riderPrice),
		Requests:  make(map[ID]struct{}),
	}
}

// SpawnDriver creates a driver at loc with a derived ask and a patience
// threshold shrinking as local driver abundance grows.
func (s *Spawner) SpawnDriver(tick int, loc grid.Cell, refPrice, pressure float64) *Driver {
	id := s.nextDriver
	s.nextDriver++

	return &Driver{
		ID:        id,
		Loc:       loc,
		SpawnTick: tick,
		Ask:       s.derivePrice(refPrice, pressure, s.driverPrice),
		Inbox:     make(map[ID]*Rider),
		Patience:  int(float64(s.maxWait) / (1 + pressure)),
	}
}

// derivePrice applies the elastic pricing rule: both sides price lower when
// drivers are abundant (pressure > 1) and higher when riders outnumber them.
func (s *Spawner) derivePrice(refPrice, pressure float64, p PriceParams) float64 {
	noise := s.rng.ClampedNorm(noiseMean, noiseStdDev,
		noiseMean-3*noiseStdDev, noiseMean+3*noiseStdDev)
	price := refPrice * math.Pow(pressure, -p.Sensitivity) * (1 + noise)
	if price < p.Floor {
		price = p.Floor
	}
	return price
}
