package db

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// PriceOverride is a manually pinned price for an item at a location.
// Station/region of 0 means "any location".
type PriceOverride struct {
	TypeID    int32           `json:"type_id"`
	StationID int64           `json:"station_id"`
	RegionID  int32           `json:"region_id"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
}

// UpsertPrices bulk-upserts price overrides. Prices are stored as decimal
// strings so no precision is lost through the round trip.
func (d *DB) UpsertPrices(prices []PriceOverride) {
	if len(prices) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] UpsertPrices begin tx: %v", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO item_prices (type_id, station_id, region_id, buy_price, sell_price, updated_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(type_id, station_id, region_id) DO UPDATE SET
			buy_price = excluded.buy_price,
			sell_price = excluded.sell_price,
			updated_at = excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] UpsertPrices prepare: %v", err)
		return
	}
	defer stmt.Close()

	now := time.Now().Format(time.RFC3339)
	for _, p := range prices {
		stmt.Exec(p.TypeID, p.StationID, p.RegionID, p.BuyPrice.String(), p.SellPrice.String(), now)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] UpsertPrices commit: %v", err)
	}
}

// ItemPrice looks up a price override for an item. The exact location is
// checked first, then the location-agnostic row.
func (d *DB) ItemPrice(typeID int32, stationID int64, regionID int32) (buy, sell decimal.Decimal, ok bool) {
	row := d.sql.QueryRow(`
		SELECT buy_price, sell_price FROM item_prices
		WHERE type_id = ? AND station_id IN (?, 0) AND region_id IN (?, 0)
		ORDER BY station_id DESC, region_id DESC LIMIT 1
	`, typeID, stationID, regionID)

	var buyStr, sellStr string
	if err := row.Scan(&buyStr, &sellStr); err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	buy, err := decimal.NewFromString(buyStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	sell, err = decimal.NewFromString(sellStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	return buy, sell, true
}
