// Package marketlog turns directories of raw exchange-log snapshots into a
// single deduplicated market catalog. Log files are plain delimited text with
// a header row; the same order routinely appears in several overlapping
// snapshots and the latest issued copy wins.
package marketlog

import (
	"github.com/shopspring/decimal"
)

// UnboundedJumps is the sentinel the game client writes when the jump
// distance to an order is unknown (max int32).
const UnboundedJumps = 2147483647

func init() {
	// Catalog documents store prices as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Order is one resting buy or sell offer parsed from an exchange log.
// This is the only order representation used after parsing.
type Order struct {
	OrderID         int64           `json:"order_id"`
	TypeID          int32           `json:"type_id"`
	Price           decimal.Decimal `json:"price"`
	VolumeRemaining int64           `json:"volume_remaining"`
	VolumeEntered   int64           `json:"volume_entered"`
	MinVolume       int64           `json:"min_volume"`
	IsBuyOrder      bool            `json:"is_buy_order"`
	IssueDate       string          `json:"issue_date"`
	Duration        int32           `json:"duration"`
	StationID       int64           `json:"station_id"`
	RegionID        int32           `json:"region_id"`
	SolarSystemID   int32           `json:"solar_system_id"`
	Range           int32           `json:"range"`
	Jumps           *int32          `json:"jumps"` // nil when the sentinel "unbounded" value was logged
}
