// Package grid tracks per-cell occupancy for riders and drivers on an N×N
// map and derives local supply/demand pressure from the counters.
package grid

// Cell is a coordinate on the grid.
type Cell struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Manhattan returns the Manhattan distance between two cells.
func Manhattan(a, b Cell) int {
	di := a.I - b.I
	dj := a.J - b.J
	if di < 0 {
		di = -di
	}
	if dj < 0 {
		dj = -dj
	}
	return di + dj
}

// Grid holds occupancy counters for active, unmatched agents. The counters
// must always equal the number of registered agents located in each cell;
// callers adjust them on every spawn, match, and expiry.
type Grid struct {
	size    int
	riders  [][]int
	drivers [][]int
}

// New creates an empty size×size grid.
func New(size int) *Grid {
	riders := make([][]int, size)
	drivers := make([][]int, size)
	for i := 0; i < size; i++ {
		riders[i] = make([]int, size)
		drivers[i] = make([]int, size)
	}
	return &Grid{size: size, riders: riders, drivers: drivers}
}

// Size returns the grid dimension.
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether (i, j) is a valid cell.
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.size && j >= 0 && j < g.size
}

// Riders returns the rider count at (i, j).
func (g *Grid) Riders(i, j int) int {
	return g.riders[i][j]
}

// Drivers returns the driver count at (i, j).
func (g *Grid) Drivers(i, j int) int {
	return g.drivers[i][j]
}

// AddRider increments the rider counter at c.
func (g *Grid) AddRider(c Cell) {
	g.riders[c.I][c.J]++
}

// RemoveRider decrements the rider counter at c.
func (g *Grid) RemoveRider(c Cell) {
	g.riders[c.I][c.J]--
}

// AddDriver increments the driver counter at c.
func (g *Grid) AddDriver(c Cell) {
	g.drivers[c.I][c.J]++
}

// RemoveDriver decrements the driver counter at c.
func (g *Grid) RemoveDriver(c Cell) {
	g.drivers[c.I][c.J]--
}

// LocalPressure sums rider and driver counts over the Chebyshev neighborhood
// of the given radius around (i, j), clipped to the grid bounds.
func (g *Grid) LocalPressure(i, j, radius int) (riders, drivers int) {
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			ni, nj := i+di, j+dj
			if !g.InBounds(ni, nj) {
				continue
			}
			riders += g.riders[ni][nj]
			drivers += g.drivers[ni][nj]
		}
	}
	return riders, drivers
}

// PressureRatio converts neighborhood sums into the pressure convention used
// throughout the engine: (drivers + epsilon) / (riders + 1). Values above 1
// indicate relative driver abundance. The +1 and epsilon guard the
// denominator and numerator against empty neighborhoods.
func PressureRatio(riders, drivers int, epsilon float64) float64 {
	return (float64(drivers) + epsilon) / (float64(riders) + 1)
}
