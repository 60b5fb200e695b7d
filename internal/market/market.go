// Package market keeps a bounded per-cell history of completed trades and
// derives spatially smoothed local reference prices from it. Trade history
// is written only at match finalization, so price discovery is driven
// entirely by executed trades, never by open offers.
package market

// Side selects which half of the trade history a price query reads.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

// HistoryCap bounds the per-cell trade history; the oldest entry is evicted
// when a new trade would exceed it.
const HistoryCap = 10

// Cell holds the rolling bid and ask history for one grid cell.
type Cell struct {
	bids []float64
	asks []float64
	base float64
}

// RecordTrade appends a completed trade's bid and ask to the cell history,
// evicting the oldest entries beyond HistoryCap.
func (c *Cell) RecordTrade(bid, ask float64) {
	c.bids = append(c.bids, bid)
	c.asks = append(c.asks, ask)
	if len(c.bids) > HistoryCap {
		c.bids = c.bids[1:]
	}
	if len(c.asks) > HistoryCap {
		c.asks = c.asks[1:]
	}
}

// AvgBid returns the mean recorded bid, or the baseline rate when no trade
// has been recorded yet.
func (c *Cell) AvgBid() float64 {
	return avgOrBase(c.bids, c.base)
}

// AvgAsk returns the mean recorded ask, or the baseline rate when no trade
// has been recorded yet.
func (c *Cell) AvgAsk() float64 {
	return avgOrBase(c.asks, c.base)
}

// Trades returns the number of trades currently held in the history.
func (c *Cell) Trades() int {
	return len(c.bids)
}

func avgOrBase(values []float64, base float64) float64 {
	if len(values) == 0 {
		return base
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// Board holds one market cell per grid cell.
type Board struct {
	size  int
	cells [][]Cell
}

// NewBoard creates a size×size board whose empty cells report baseRate.
func NewBoard(size int, baseRate float64) *Board {
	cells := make([][]Cell, size)
	for i := 0; i < size; i++ {
		cells[i] = make([]Cell, size)
		for j := 0; j < size; j++ {
			cells[i][j].base = baseRate
		}
	}
	return &Board{size: size, cells: cells}
}

// Size returns the board dimension.
func (b *Board) Size() int {
	return b.size
}

// Cell returns the market cell at (i, j).
func (b *Board) Cell(i, j int) *Cell {
	return &b.cells[i][j]
}

// SmoothRadius is the neighborhood radius used for local price averaging,
// one third of the grid dimension. Wider than the pressure radius so a
// single cell's trades cannot dominate the reference price.
func (b *Board) SmoothRadius() int {
	return b.size / 3
}

// LocalAverage returns the mean of the chosen side's per-cell average price
// over the in-bounds neighborhood of the given radius around (i, j).
func (b *Board) LocalAverage(i, j int, side Side, radius int) float64 {
	total := 0.0
	count := 0
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			ni, nj := i+di, j+dj
			if ni < 0 || ni >= b.size || nj < 0 || nj >= b.size {
				continue
			}
			if side == SideBid {
				total += b.cells[ni][nj].AvgBid()
			} else {
				total += b.cells[ni][nj].AvgAsk()
			}
			count++
		}
	}
	return total / float64(max(1, count))
}

// MeanBid returns the board-wide mean of per-cell average bids. This is the
// per-tick mean market price reported to external consumers.
func (b *Board) MeanBid() float64 {
	total := 0.0
	count := 0
	for i := 0; i < b.size; i++ {
		for j := 0; j < b.size; j++ {
			total += b.cells[i][j].AvgBid()
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
