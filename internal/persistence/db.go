// Package persistence exports finished-run metrics to SQLite for external
// reporting and plotting tools. Simulation state itself is never persisted;
// a run is identified by a UUID and carries its full configuration so the
// series can be interpreted later.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/ridegrid/internal/config"
	"github.com/talgya/ridegrid/internal/metrics"
)

// DB wraps a SQLite connection for metrics export.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tick_metrics (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		active_riders INTEGER NOT NULL,
		active_drivers INTEGER NOT NULL,
		riders_spawned INTEGER NOT NULL,
		drivers_spawned INTEGER NOT NULL,
		riders_dropped INTEGER NOT NULL,
		drivers_dropped INTEGER NOT NULL,
		mean_price REAL NOT NULL,
		mean_pressure REAL NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_tick_metrics_run ON tick_metrics(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes a run row and its full per-tick series in one transaction.
func (db *DB) SaveRun(runID uuid.UUID, cfg config.Config, series *metrics.Series) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (id, seed, ticks, created_at, config_json) VALUES (?, ?, ?, ?, ?)",
		runID.String(), cfg.Seed, series.Ticks(),
		time.Now().UTC().Format(time.RFC3339), string(cfgJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO tick_metrics
		(run_id, tick, active_riders, active_drivers, riders_spawned,
		 drivers_spawned, riders_dropped, drivers_dropped, mean_price, mean_pressure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < series.Ticks(); i++ {
		ts := series.At(i)
		_, err := stmt.Exec(
			runID.String(), i,
			ts.ActiveRiders, ts.ActiveDrivers,
			ts.RidersSpawned, ts.DriversSpawned,
			ts.RidersDropped, ts.DriversDropped,
			ts.MeanPrice, ts.MeanPressure,
		)
		if err != nil {
			return fmt.Errorf("insert tick %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadSeries reads a run's per-tick series back, in tick order.
func (db *DB) LoadSeries(runID uuid.UUID) (*metrics.Series, error) {
	rows, err := db.conn.Queryx(`SELECT
		active_riders, active_drivers, riders_spawned, drivers_spawned,
		riders_dropped, drivers_dropped, mean_price, mean_pressure
		FROM tick_metrics WHERE run_id = ? ORDER BY tick`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := metrics.NewSeries(0)
	for rows.Next() {
		var ts metrics.TickStats
		if err := rows.Scan(
			&ts.ActiveRiders, &ts.ActiveDrivers,
			&ts.RidersSpawned, &ts.DriversSpawned,
			&ts.RidersDropped, &ts.DriversDropped,
			&ts.MeanPrice, &ts.MeanPressure,
		); err != nil {
			return nil, err
		}
		series.Append(ts)
	}
	return series, rows.Err()
}

// Runs returns the ids of all stored runs, newest first.
func (db *DB) Runs() ([]string, error) {
	var ids []string
	err := db.conn.Select(&ids, "SELECT id FROM runs ORDER BY created_at DESC")
	return ids, err
}
