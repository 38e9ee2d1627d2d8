package db

import (
	"encoding/json"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"frontier-forge/internal/engine"
)

// ScanRecord represents a scan history entry.
type ScanRecord struct {
	ID         int64           `json:"id"`
	Timestamp  string          `json:"timestamp"`
	Count      int             `json:"count"`
	TopMargin  float64         `json:"top_margin"`
	DurationMs int64           `json:"duration_ms"`
	Params     json.RawMessage `json:"params"`
}

// InsertHistory inserts a scan history record and returns its ID.
func (d *DB) InsertHistory(count int, topMargin float64, durationMs int64, params interface{}) int64 {
	paramsJSON, _ := json.Marshal(params)
	result, err := d.sql.Exec(
		"INSERT INTO scan_history (timestamp, count, top_margin, duration_ms, params_json) VALUES (?, ?, ?, ?, ?)",
		time.Now().Format(time.RFC3339), count, topMargin, durationMs, string(paramsJSON),
	)
	if err != nil {
		return 0
	}
	id, _ := result.LastInsertId()
	return id
}

// GetHistory returns the last N scan history records (newest first).
func (d *DB) GetHistory(limit int) []ScanRecord {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(
		`SELECT id, timestamp, count, top_margin, duration_ms, COALESCE(params_json, '{}')
		 FROM scan_history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return []ScanRecord{}
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var r ScanRecord
		var paramsStr string
		rows.Scan(&r.ID, &r.Timestamp, &r.Count, &r.TopMargin, &r.DurationMs, &paramsStr)
		r.Params = json.RawMessage(paramsStr)
		records = append(records, r)
	}
	if records == nil {
		return []ScanRecord{}
	}
	return records
}

// InsertScanResults bulk-inserts scan results linked to a scan history record.
func (d *DB) InsertScanResults(scanID int64, results []engine.ScanResult) {
	if scanID == 0 || len(results) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] InsertScanResults begin tx: %v", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO scan_results (
		scan_id, item_id, item_name,
		production_cost, market_price, profit,
		margin_pct, daily_volume, material_efficiency
	) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertScanResults prepare: %v", err)
		return
	}
	defer stmt.Close()

	for _, r := range results {
		stmt.Exec(
			scanID, r.ItemID, r.ItemName,
			r.ProductionCost.String(), r.MarketPrice.String(), r.Profit.String(),
			r.MarginPercent, r.DailyVolume, r.MaterialEfficiency,
		)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] InsertScanResults commit: %v", err)
	}
}

// GetScanResults retrieves scan results for a scan.
func (d *DB) GetScanResults(scanID int64) []engine.ScanResult {
	rows, err := d.sql.Query(`
		SELECT item_id, item_name,
			production_cost, market_price, profit,
			margin_pct, daily_volume, material_efficiency
		FROM scan_results WHERE scan_id = ?
	`, scanID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var results []engine.ScanResult
	for rows.Next() {
		var r engine.ScanResult
		var costStr, priceStr, profitStr string
		rows.Scan(
			&r.ItemID, &r.ItemName,
			&costStr, &priceStr, &profitStr,
			&r.MarginPercent, &r.DailyVolume, &r.MaterialEfficiency,
		)
		r.ProductionCost, _ = decimal.NewFromString(costStr)
		r.MarketPrice, _ = decimal.NewFromString(priceStr)
		r.Profit, _ = decimal.NewFromString(profitStr)
		results = append(results, r)
	}
	return results
}
