package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"frontier-forge/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func defaultPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "forge.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "forge.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
// An empty path selects the default location next to the working directory.
func Open(path string) (*DB, error) {
	if path == "" {
		path = defaultPath()
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS items (
				type_id            INTEGER PRIMARY KEY,
				name               TEXT NOT NULL,
				is_manufacturable  INTEGER NOT NULL DEFAULT 0,
				updated_at         TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);

			CREATE TABLE IF NOT EXISTS scan_history (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp   TEXT NOT NULL,
				count       INTEGER NOT NULL,
				top_margin  REAL NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				params_json TEXT DEFAULT '{}'
			);
			CREATE INDEX IF NOT EXISTS idx_scan_history_ts ON scan_history(timestamp);

			CREATE TABLE IF NOT EXISTS scan_results (
				id                  INTEGER PRIMARY KEY AUTOINCREMENT,
				scan_id             INTEGER NOT NULL REFERENCES scan_history(id),
				item_id             INTEGER,
				item_name           TEXT,
				production_cost     TEXT,
				market_price        TEXT,
				profit              TEXT,
				margin_pct          REAL,
				daily_volume        INTEGER,
				material_efficiency INTEGER
			);
			CREATE INDEX IF NOT EXISTS idx_scan_results_scan ON scan_results(scan_id);
			CREATE INDEX IF NOT EXISTS idx_scan_results_item ON scan_results(item_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS item_prices (
				type_id    INTEGER NOT NULL,
				station_id INTEGER NOT NULL DEFAULT 0,
				region_id  INTEGER NOT NULL DEFAULT 0,
				buy_price  TEXT,
				sell_price TEXT,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (type_id, station_id, region_id)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (price overrides)")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB for use by other packages.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
