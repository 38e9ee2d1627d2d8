// Package engine contains the costing pipeline: price resolution, recursive
// production-chain expansion and the batch profitability scan.
package engine

import (
	"github.com/shopspring/decimal"

	"frontier-forge/internal/marketlog"
)

// PriceSignal is a resolved buy/sell price pair for one item. Zero values
// mean "no market signal"; absence of data is not an error.
type PriceSignal struct {
	Buy  decimal.Decimal // best bid (max buy)
	Sell decimal.Decimal // best ask (min sell)
}

// HasSignal reports whether any side of the book carries a price.
func (p PriceSignal) HasSignal() bool {
	return p.Buy.IsPositive() || p.Sell.IsPositive()
}

// PriceStore is the relational price-table boundary. ok is false when the
// table has no rows for the item (within the optional hub/region filter).
type PriceStore interface {
	ItemPrice(typeID int32, stationID int64, regionID int32) (buy, sell decimal.Decimal, ok bool)
}

// CatalogSource supplies unified-catalog summaries for fallback pricing.
type CatalogSource interface {
	Summary(typeID int32) (*marketlog.ItemSummary, bool)
}

// CostEngine resolves a price signal for one item: the relational price
// table first, then the unified catalog, else zeros.
type CostEngine struct {
	Store   PriceStore    // optional
	Catalog CatalogSource // optional
}

// Price resolves the current price signal for an item. stationID/regionID
// of 0 mean "no filter".
func (e *CostEngine) Price(typeID int32, stationID int64, regionID int32) PriceSignal {
	if e.Store != nil {
		if buy, sell, ok := e.Store.ItemPrice(typeID, stationID, regionID); ok {
			return PriceSignal{Buy: buy, Sell: sell}
		}
	}
	if e.Catalog != nil {
		if s, ok := e.Catalog.Summary(typeID); ok {
			return PriceSignal{
				Buy:  s.Statistics.MaxBuyPrice,
				Sell: s.Statistics.MinSellPrice,
			}
		}
	}
	return PriceSignal{}
}
