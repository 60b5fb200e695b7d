package engine

import (
	"reflect"
	"testing"

	"github.com/talgya/ridegrid/internal/agents"
	"github.com/talgya/ridegrid/internal/config"
	"github.com/talgya/ridegrid/internal/grid"
	"github.com/talgya/ridegrid/internal/metrics"
)

// quietCfg returns a configuration with all arrivals disabled so tests can
// inject agents directly.
func quietCfg() config.Config {
	cfg := config.Default()
	cfg.BaseRiderRate = 0
	cfg.SurgeRate = 0
	cfg.DriverBaseRate = 0
	return cfg
}

func addRider(s *Simulation, r *agents.Rider) {
	if r.Requests == nil {
		r.Requests = make(map[agents.ID]struct{})
	}
	s.riders[r.ID] = r
	s.grid.AddRider(r.Loc)
}

func addDriver(s *Simulation, d *agents.Driver) {
	if d.Inbox == nil {
		d.Inbox = make(map[agents.ID]*agents.Rider)
	}
	s.drivers[d.ID] = d
	s.grid.AddDriver(d.Loc)
}

func TestNoArrivalsCountsStayZero(t *testing.T) {
	cfg := quietCfg()
	cfg.Ticks = 20
	s := New(cfg)
	s.Run()

	series := s.Series()
	if series.Ticks() != 20 {
		t.Fatalf("recorded %d ticks, want 20", series.Ticks())
	}
	for i := 0; i < series.Ticks(); i++ {
		ts := series.At(i)
		if ts.ActiveRiders != 0 || ts.ActiveDrivers != 0 ||
			ts.RidersSpawned != 0 || ts.DriversSpawned != 0 ||
			ts.RidersDropped != 0 || ts.DriversDropped != 0 {
			t.Fatalf("tick %d has nonzero counts: %+v", i, ts)
		}
		// With no trades, price sits at the baseline and pressure at the
		// empty-neighborhood ratio.
		if ts.MeanPrice != cfg.BasePrice {
			t.Fatalf("tick %d mean price = %g, want baseline %g", i, ts.MeanPrice, cfg.BasePrice)
		}
		if ts.MeanPressure != 1.0 {
			t.Fatalf("tick %d mean pressure = %g, want 1", i, ts.MeanPressure)
		}
	}
}

func TestZeroSizeGridAllMetricsZero(t *testing.T) {
	cfg := config.Default()
	cfg.GridSize = 0
	cfg.Ticks = 10
	s := New(cfg)
	s.Run()

	series := s.Series()
	for i := 0; i < series.Ticks(); i++ {
		if ts := series.At(i); ts != (metrics.TickStats{}) {
			t.Fatalf("tick %d not all-zero: %+v", i, ts)
		}
	}
}

func TestGuaranteedMatchAfterPatience(t *testing.T) {
	cfg := quietCfg()
	cfg.GridSize = 1
	s := New(cfg)

	loc := grid.Cell{}
	rider := &agents.Rider{ID: 1, Loc: loc, Bid: 1.0}
	driver := &agents.Driver{ID: 1, Loc: loc, Ask: 0.8, Patience: 2}
	addRider(s, rider)
	addDriver(s, driver)

	s.Step()
	if s.Matched() != 0 {
		t.Fatal("matched before patience elapsed")
	}
	if _, ok := driver.Inbox[rider.ID]; !ok {
		t.Fatal("request not registered in driver inbox")
	}
	if _, ok := rider.Requests[driver.ID]; !ok {
		t.Fatal("driver not recorded in rider request set")
	}

	s.Step()
	if s.Matched() != 1 {
		t.Fatal("match not finalized once patience elapsed")
	}
	if len(s.riders) != 0 || len(s.drivers) != 0 {
		t.Error("registries not emptied after match")
	}
	if s.grid.Riders(0, 0) != 0 || s.grid.Drivers(0, 0) != 0 {
		t.Error("grid counts not decremented after match")
	}

	cell := s.board.Cell(0, 0)
	if cell.Trades() != 1 {
		t.Fatalf("trade history has %d entries, want 1", cell.Trades())
	}
	if cell.AvgBid() != 1.0 || cell.AvgAsk() != 0.8 {
		t.Errorf("recorded trade = (%g, %g), want (1.0, 0.8)", cell.AvgBid(), cell.AvgAsk())
	}
}

func TestRiderExpiresExactlyAtMaxWait(t *testing.T) {
	cfg := quietCfg()
	cfg.GridSize = 1
	cfg.MaxWait = 7
	s := New(cfg)
	addRider(s, &agents.Rider{ID: 1, Loc: grid.Cell{}, Bid: 1.0})

	for i := 0; i < 6; i++ {
		s.Step()
		if len(s.riders) != 1 {
			t.Fatalf("rider expired early at tick %d", i+1)
		}
	}

	s.Step()
	if len(s.riders) != 0 {
		t.Fatal("rider not expired at wait 7")
	}
	if s.grid.Riders(0, 0) != 0 {
		t.Error("grid count not decremented on expiry")
	}

	series := s.Series()
	for i := 0; i < 6; i++ {
		if series.RidersDropped[i] != 0 {
			t.Errorf("drop recorded early at tick %d", i)
		}
	}
	if series.RidersDropped[6] != 1 {
		t.Errorf("drop not recorded at tick 7: %v", series.RidersDropped)
	}
}

func TestStaleInboxEntryNeverMatched(t *testing.T) {
	cfg := quietCfg()
	cfg.GridSize = 1
	cfg.MaxWait = 50
	s := New(cfg)

	loc := grid.Cell{}
	live := &agents.Rider{ID: 2, Loc: loc, Bid: 1.0}
	addRider(s, live)

	driver := &agents.Driver{ID: 1, Loc: loc, Ask: 0.1, Patience: 1}
	addDriver(s, driver)

	// A departed rider left a stale inbox entry with the highest bid.
	stale := &agents.Rider{ID: 1, Loc: loc, Bid: 2.0}
	driver.Inbox[stale.ID] = stale

	for i := 0; i < 5; i++ {
		s.Step()
	}

	// The driver keeps selecting the stale best bid, failing, and aging —
	// without clearing its inbox.
	if s.Matched() != 0 {
		t.Error("driver matched despite stale best bid")
	}
	if driver.InboxAge != 5 {
		t.Errorf("inbox age = %d, want 5", driver.InboxAge)
	}
	if len(driver.Inbox) != 2 {
		t.Errorf("inbox pruned to %d entries, want 2", len(driver.Inbox))
	}
	if live.Matched {
		t.Error("lower-bid rider matched ahead of the stale entry")
	}
}

func TestReproducibleRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Ticks = 120

	a := New(cfg)
	a.Run()
	b := New(cfg)
	b.Run()

	if !reflect.DeepEqual(a.Series(), b.Series()) {
		t.Fatal("same seed and config produced different series")
	}
	if a.Matched() != b.Matched() {
		t.Fatalf("match totals diverged: %d vs %d", a.Matched(), b.Matched())
	}
}

func TestInvariantsHoldDuringRun(t *testing.T) {
	cfg := config.Default()
	cfg.Ticks = 150
	s := New(cfg)

	for i := 0; i < cfg.Ticks; i++ {
		s.Step()
		checkGridMatchesRegistries(t, s)
	}

	for _, r := range s.riders {
		if r.Wait >= cfg.MaxWait {
			t.Errorf("rider %d wait %d survived cleanup (max %d)", r.ID, r.Wait, cfg.MaxWait)
		}
		if r.Bid < cfg.BidFloor {
			t.Errorf("rider %d bid %g below floor", r.ID, r.Bid)
		}
	}
	for _, d := range s.drivers {
		if d.Wait >= cfg.MaxWait {
			t.Errorf("driver %d wait %d survived cleanup (max %d)", d.ID, d.Wait, cfg.MaxWait)
		}
		if d.Ask < cfg.AskFloor {
			t.Errorf("driver %d ask %g below floor", d.ID, d.Ask)
		}
	}
}

func TestSurgeElevatesRiderSpawns(t *testing.T) {
	cfg := config.Default()
	cfg.GridSize = 10
	cfg.Ticks = 150
	cfg.SurgeWindows = []config.SurgeWindow{{Start: 50, End: 100}}
	cfg.DriverBaseRate = 0 // isolate rider arrivals

	s := New(cfg)
	s.Run()

	series := s.Series()
	inside, insideTicks := 0, 0
	outside, outsideTicks := 0, 0
	for i := 0; i < series.Ticks(); i++ {
		if i >= 50 && i <= 100 {
			inside += series.RidersSpawned[i]
			insideTicks++
		} else {
			outside += series.RidersSpawned[i]
			outsideTicks++
		}
	}

	inMean := float64(inside) / float64(insideTicks)
	outMean := float64(outside) / float64(outsideTicks)
	if inMean <= 3*outMean {
		t.Errorf("surge window mean %.2f not clearly above baseline mean %.2f", inMean, outMean)
	}
}

func checkGridMatchesRegistries(t *testing.T, s *Simulation) {
	t.Helper()
	n := s.grid.Size()
	riderCounts := make(map[grid.Cell]int)
	driverCounts := make(map[grid.Cell]int)
	for _, r := range s.riders {
		riderCounts[r.Loc]++
	}
	for _, d := range s.drivers {
		driverCounts[d.Loc]++
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := grid.Cell{I: i, J: j}
			if s.grid.Riders(i, j) != riderCounts[c] {
				t.Fatalf("cell (%d,%d): rider count %d, registry has %d",
					i, j, s.grid.Riders(i, j), riderCounts[c])
			}
			if s.grid.Drivers(i, j) != driverCounts[c] {
				t.Fatalf("cell (%d,%d): driver count %d, registry has %d",
					i, j, s.grid.Drivers(i, j), driverCounts[c])
			}
		}
	}
}
