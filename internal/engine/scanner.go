package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"frontier-forge/internal/blueprint"
	"frontier-forge/internal/logger"
	"frontier-forge/internal/marketlog"
)

const (
	// DefaultMaxResults is the result limit used when none is specified.
	DefaultMaxResults = 100
	// DefaultScanWorkers bounds concurrent per-item resolutions.
	DefaultScanWorkers = 8
)

// SortKey selects how scan results are ordered (always descending).
type SortKey string

const (
	SortByMargin SortKey = "margin"
	SortByProfit SortKey = "profit"
	SortByCost   SortKey = "cost"
	SortByPrice  SortKey = "price"
)

// ScanParams are the inputs to one profitability scan.
type ScanParams struct {
	MinMarginPercent   float64
	MaterialEfficiency int
	IncludeComponents  bool // count recursive children, not only direct materials
	OnlyManufacturable bool // skip items lacking any manufacturing recipe
	MaxResults         int  // 0 = DefaultMaxResults
	Sort               SortKey
	Workers            int // 0 = DefaultScanWorkers
}

// Depth returns the chain depth implied by IncludeComponents.
func (p ScanParams) Depth() int {
	if p.IncludeComponents {
		return 3
	}
	return 1
}

// ScanResult is one profitable manufacturing candidate.
type ScanResult struct {
	ItemID             int32           `json:"item_id"`
	ItemName           string          `json:"item_name"`
	ProductionCost     decimal.Decimal `json:"production_cost"`
	MarketPrice        decimal.Decimal `json:"market_price"`
	Profit             decimal.Decimal `json:"profit"`
	MarginPercent      float64         `json:"margin_pct"`
	DailyVolume        int64           `json:"daily_volume"`
	MaterialEfficiency int             `json:"material_efficiency"`
}

// Scanner batch-evaluates every catalog item for manufacturing
// profitability. Items are independent, so the scan fans out across a
// bounded worker group; cancellation is checked between items.
type Scanner struct {
	Resolver *Resolver
	Recipes  *blueprint.Library
}

// Scan evaluates every item in the catalog and returns candidates at or
// above the margin threshold, sorted by the requested key and truncated to
// MaxResults. progress may be nil.
func (s *Scanner) Scan(ctx context.Context, cat *marketlog.Catalog, params ScanParams, progress func(string)) ([]ScanResult, error) {
	if progress == nil {
		progress = func(string) {}
	}
	if cat == nil || len(cat.Items) == 0 {
		return nil, fmt.Errorf("no market data available")
	}

	summaries := make([]*marketlog.ItemSummary, 0, len(cat.Items))
	for _, summary := range cat.Items {
		summaries = append(summaries, summary)
	}
	progress(fmt.Sprintf("Analyzing %d items with market data...", len(summaries)))

	workers := params.Workers
	if workers <= 0 {
		workers = DefaultScanWorkers
	}

	var (
		mu      sync.Mutex
		results []ScanResult
		skipped struct {
			notManufacturable, noSignal, belowMargin int
		}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, summary := range summaries {
		summary := summary
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if params.OnlyManufacturable && !s.Recipes.HasRecipe(summary.TypeID) {
				mu.Lock()
				skipped.notManufacturable++
				mu.Unlock()
				return nil
			}

			res, ok := s.evaluate(summary, params)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case !ok:
				skipped.noSignal++
			case res == nil:
				skipped.belowMargin++
			default:
				results = append(results, *res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("SCAN", fmt.Sprintf(
		"Scan complete: %d profitable, %d not manufacturable, %d no price signal, %d below margin",
		len(results), skipped.notManufacturable, skipped.noSignal, skipped.belowMargin))

	sortResults(results, params.Sort)
	limit := params.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	if len(results) > limit {
		results = results[:limit]
	}
	progress(fmt.Sprintf("Found %d profitable items", len(results)))
	return results, nil
}

// evaluate prices one item. Returns (nil, true) when the item resolves but
// falls below the margin threshold, (nil, false) when it cannot be priced.
func (s *Scanner) evaluate(summary *marketlog.ItemSummary, params ScanParams) (*ScanResult, bool) {
	marketPrice := summary.Statistics.MinSellPrice
	if !marketPrice.IsPositive() {
		return nil, false
	}

	node, err := s.Resolver.Resolve(ResolveParams{
		TypeID:             summary.TypeID,
		Quantity:           1,
		MaterialEfficiency: params.MaterialEfficiency,
		MaxDepth:           params.Depth(),
	})
	if err != nil {
		return nil, false
	}

	cost := node.TotalProductionCost()
	profit := marketPrice.Sub(cost)
	margin := 0.0
	if cost.IsPositive() {
		margin, _ = profit.Div(cost).Mul(decimal.NewFromInt(100)).Float64()
	}
	if margin < params.MinMarginPercent {
		return nil, true
	}

	return &ScanResult{
		ItemID:             summary.TypeID,
		ItemName:           summary.Name,
		ProductionCost:     cost,
		MarketPrice:        marketPrice,
		Profit:             profit,
		MarginPercent:      margin,
		DailyVolume:        summary.Statistics.TotalSellVolume,
		MaterialEfficiency: params.MaterialEfficiency,
	}, true
}

func sortResults(results []ScanResult, key SortKey) {
	sort.Slice(results, func(i, j int) bool {
		switch key {
		case SortByProfit:
			return results[i].Profit.GreaterThan(results[j].Profit)
		case SortByCost:
			return results[i].ProductionCost.GreaterThan(results[j].ProductionCost)
		case SortByPrice:
			return results[i].MarketPrice.GreaterThan(results[j].MarketPrice)
		default:
			return results[i].MarginPercent > results[j].MarginPercent
		}
	})
}
