package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"frontier-forge/internal/marketlog"
)

type fakeCatalog map[int32]*marketlog.ItemSummary

func (f fakeCatalog) Summary(typeID int32) (*marketlog.ItemSummary, bool) {
	s, ok := f[typeID]
	return s, ok
}

func catalogSummary(name string, typeID int32, maxBuy, minSell string, sellVolume int64) *marketlog.ItemSummary {
	return &marketlog.ItemSummary{
		Name:   name,
		TypeID: typeID,
		Statistics: marketlog.ItemStatistics{
			MaxBuyPrice:     decimal.RequireFromString(maxBuy),
			MinSellPrice:    decimal.RequireFromString(minSell),
			TotalSellVolume: sellVolume,
		},
	}
}

func TestCostEngine_StoreTakesPrecedence(t *testing.T) {
	e := &CostEngine{
		Store:   fakePrices{34: price("4.9", "5.4")},
		Catalog: fakeCatalog{34: catalogSummary("Tritanium", 34, "4.0", "6.0", 0)},
	}

	p := e.Price(34, 0, 0)
	if !p.Buy.Equal(decimal.RequireFromString("4.9")) || !p.Sell.Equal(decimal.RequireFromString("5.4")) {
		t.Errorf("Price = %v/%v, want store prices 4.9/5.4", p.Buy, p.Sell)
	}
}

func TestCostEngine_CatalogFallback(t *testing.T) {
	e := &CostEngine{
		Store:   fakePrices{},
		Catalog: fakeCatalog{34: catalogSummary("Tritanium", 34, "4.0", "6.0", 0)},
	}

	p := e.Price(34, 0, 0)
	if !p.Buy.Equal(decimal.RequireFromString("4.0")) || !p.Sell.Equal(decimal.RequireFromString("6.0")) {
		t.Errorf("Price = %v/%v, want catalog prices 4.0/6.0", p.Buy, p.Sell)
	}
	if !p.HasSignal() {
		t.Error("HasSignal = false, want true")
	}
}

func TestCostEngine_NoSourcesYieldsZeros(t *testing.T) {
	e := &CostEngine{}

	p := e.Price(34, 0, 0)
	if !p.Buy.IsZero() || !p.Sell.IsZero() {
		t.Errorf("Price = %v/%v, want zeros", p.Buy, p.Sell)
	}
	if p.HasSignal() {
		t.Error("HasSignal = true for an unpriced item")
	}
}
