package marketlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"frontier-forge/internal/logger"
)

// CacheName is the base name of the on-disk unified catalog document.
const CacheName = "unified_market_data"

// CatalogMetadata describes one catalog build.
type CatalogMetadata struct {
	GeneratedAt     string `json:"generated_at"`
	ItemCount       int    `json:"item_count"`
	TradingHubCount int    `json:"trading_hub_count"`
}

// ItemStatistics are the derived per-item price statistics.
// Spread is surfaced as-is: a crossed book yields a negative spread.
type ItemStatistics struct {
	MinSellPrice    decimal.Decimal `json:"min_sell_price"`
	MaxBuyPrice     decimal.Decimal `json:"max_buy_price"`
	Spread          decimal.Decimal `json:"spread"`
	SellOrderCount  int             `json:"sell_order_count"`
	BuyOrderCount   int             `json:"buy_order_count"`
	TotalSellVolume int64           `json:"total_sell_volume"`
	TotalBuyVolume  int64           `json:"total_buy_volume"`
}

// ItemSummary is the per-item aggregate held in the unified catalog.
// Buy orders are sorted descending by price, sell orders ascending.
type ItemSummary struct {
	Name       string         `json:"name"`
	TypeID     int32          `json:"type_id"`
	Statistics ItemStatistics `json:"statistics"`
	BuyOrders  []Order        `json:"buy_orders"`
	SellOrders []Order        `json:"sell_orders"`
}

// Catalog is the process-wide cached market aggregate built from raw logs.
type Catalog struct {
	Metadata    CatalogMetadata         `json:"metadata"`
	Items       map[string]*ItemSummary `json:"items"`
	TradingHubs []TradingHub            `json:"trading_hubs"`
}

// Summary returns the item summary for a type ID, if present.
func (c *Catalog) Summary(typeID int32) (*ItemSummary, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c.Items[strconv.FormatInt(int64(typeID), 10)]
	return s, ok
}

// Builder orchestrates the index, parser and deduplicator into a unified
// catalog, persisting it as a single cached document. Readers always see a
// fully built catalog: rebuilds assemble a new value and swap it in whole.
type Builder struct {
	Index  *Index
	Parser *Parser

	cacheDir  string
	batchSize int
	topOrders int

	mu      sync.RWMutex
	current *Catalog
	reload  singleflight.Group
}

// NewBuilder creates a catalog builder writing its cache document under
// cacheDir. The directory is created if missing.
func NewBuilder(index *Index, parser *Parser, cacheDir string, batchSize, topOrders int) *Builder {
	if batchSize <= 0 {
		batchSize = 10
	}
	if topOrders <= 0 {
		topOrders = 20
	}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			logger.Warn("CATALOG", fmt.Sprintf("Cannot create cache directory %s: %v", cacheDir, err))
		}
	}
	return &Builder{
		Index:     index,
		Parser:    parser,
		cacheDir:  cacheDir,
		batchSize: batchSize,
		topOrders: topOrders,
	}
}

// Current returns the most recently built or loaded catalog, nil before the
// first BuildAll.
func (b *Builder) Current() *Catalog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Summary implements the catalog price source used by the cost engine.
func (b *Builder) Summary(typeID int32) (*ItemSummary, bool) {
	return b.Current().Summary(typeID)
}

// OrdersForType parses and deduplicates all orders for one type ID.
// Per-file I/O errors are logged and contribute nothing.
func (b *Builder) OrdersForType(typeID int32) []Order {
	byID := make(map[int64]Order)
	for _, path := range b.Index.FilesForType(typeID) {
		orders, err := b.Parser.ParseFile(path)
		if err != nil {
			logger.Warn("CATALOG", fmt.Sprintf("Error reading %s: %v", filepath.Base(path), err))
			continue
		}
		filtered := orders[:0:0]
		for _, o := range orders {
			if o.TypeID == typeID {
				filtered = append(filtered, o)
			}
		}
		mergeLatest(byID, filtered)
	}
	out := make([]Order, 0, len(byID))
	for _, o := range byID {
		out = append(out, o)
	}
	return out
}

// OrdersForItem parses and deduplicates all orders for an item name,
// using the fuzzy filename match when the exact pattern misses.
func (b *Builder) OrdersForItem(name string) []Order {
	byID := make(map[int64]Order)
	for _, path := range b.Index.FilesForName(name) {
		orders, err := b.Parser.ParseFile(path)
		if err != nil {
			logger.Warn("CATALOG", fmt.Sprintf("Error reading %s: %v", filepath.Base(path), err))
			continue
		}
		mergeLatest(byID, orders)
	}
	out := make([]Order, 0, len(byID))
	for _, o := range byID {
		out = append(out, o)
	}
	return out
}

// BuildAll returns the unified catalog, loading the cached document when
// present (even if stale) and building from scratch otherwise. Use Reload to
// force a rebuild.
func (b *Builder) BuildAll(ctx context.Context) (*Catalog, error) {
	if cur := b.Current(); cur != nil {
		return cur, nil
	}

	if cached, err := b.LoadCache(CacheName); err == nil && cached != nil {
		logger.Info("CATALOG", fmt.Sprintf("Loaded cached catalog: %d items, %d hubs",
			len(cached.Items), len(cached.TradingHubs)))
		b.setCurrent(cached)
		return cached, nil
	}

	cat, err := b.build(ctx)
	if err != nil {
		return nil, err
	}
	b.setCurrent(cat)
	return cat, nil
}

// Reload deletes the on-disk cache, clears the in-memory per-file cache and
// rebuilds the catalog from scratch. Concurrent calls coalesce into a single
// rebuild; readers keep seeing the previous catalog until the swap.
func (b *Builder) Reload(ctx context.Context) (*Catalog, error) {
	v, err, _ := b.reload.Do("reload", func() (interface{}, error) {
		cachePath := b.cachePath(CacheName)
		if err := os.Remove(cachePath); err == nil {
			logger.Info("CATALOG", fmt.Sprintf("Deleted cache file: %s", cachePath))
		}
		b.Parser.ClearCache()
		b.Index.Reset()

		cat, err := b.build(ctx)
		if err != nil {
			return nil, err
		}
		b.setCurrent(cat)
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

// build assembles a fresh catalog: item discovery, hub extraction, then
// per-item summaries in fixed-size batches to bound peak memory.
// Cancellation is cooperative, checked between items and files.
func (b *Builder) build(ctx context.Context) (*Catalog, error) {
	logger.Info("CATALOG", "Parsing all market logs")

	items := b.Index.Items()
	hubs, err := ExtractHubs(ctx, b.Index.LogFiles())
	if err != nil {
		return nil, err
	}

	cat := &Catalog{
		Metadata: CatalogMetadata{
			GeneratedAt:     time.Now().Format(time.RFC3339),
			ItemCount:       len(items),
			TradingHubCount: len(hubs),
		},
		Items:       make(map[string]*ItemSummary, len(items)),
		TradingHubs: hubs,
	}

	for start := 0; start < len(items); start += b.batchSize {
		end := start + b.batchSize
		if end > len(items) {
			end = len(items)
		}
		for _, item := range items[start:end] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			summary := b.summarize(item.Name, item.TypeID)
			cat.Items[strconv.FormatInt(int64(item.TypeID), 10)] = summary
		}
	}

	if err := b.SaveCache(cat, CacheName); err != nil {
		logger.Warn("CATALOG", fmt.Sprintf("Error caching catalog: %v", err))
	}
	logger.Success("CATALOG", fmt.Sprintf("Built catalog: %d items, %d hubs", len(cat.Items), len(hubs)))
	return cat, nil
}

// summarize computes one item's market summary from its deduplicated orders.
func (b *Builder) summarize(name string, typeID int32) *ItemSummary {
	orders := b.OrdersForType(typeID)

	var buys, sells []Order
	for _, o := range orders {
		if o.IsBuyOrder {
			buys = append(buys, o)
		} else {
			sells = append(sells, o)
		}
	}
	sort.Slice(buys, func(i, j int) bool { return buys[i].Price.GreaterThan(buys[j].Price) })
	sort.Slice(sells, func(i, j int) bool { return sells[i].Price.LessThan(sells[j].Price) })

	stats := ItemStatistics{
		SellOrderCount: len(sells),
		BuyOrderCount:  len(buys),
	}
	for _, o := range sells {
		stats.TotalSellVolume += o.VolumeRemaining
	}
	for _, o := range buys {
		stats.TotalBuyVolume += o.VolumeRemaining
	}
	if len(sells) > 0 {
		stats.MinSellPrice = sells[0].Price
	}
	if len(buys) > 0 {
		stats.MaxBuyPrice = buys[0].Price
	}
	if len(sells) > 0 && len(buys) > 0 {
		stats.Spread = stats.MinSellPrice.Sub(stats.MaxBuyPrice)
	}

	if len(buys) > b.topOrders {
		buys = buys[:b.topOrders]
	}
	if len(sells) > b.topOrders {
		sells = sells[:b.topOrders]
	}

	return &ItemSummary{
		Name:       name,
		TypeID:     typeID,
		Statistics: stats,
		BuyOrders:  buys,
		SellOrders: sells,
	}
}

func (b *Builder) setCurrent(c *Catalog) {
	b.mu.Lock()
	b.current = c
	b.mu.Unlock()
}

func (b *Builder) cachePath(name string) string {
	return filepath.Join(b.cacheDir, name+".json")
}

// SaveCache persists a catalog document to the cache directory.
func (b *Builder) SaveCache(c *Catalog, name string) error {
	if b.cacheDir == "" {
		return fmt.Errorf("no cache directory configured")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(b.cachePath(name), data, 0644); err != nil {
		return fmt.Errorf("write catalog cache: %w", err)
	}
	return nil
}

// LoadCache loads a catalog document from the cache directory.
// Returns (nil, nil) when no cache document exists.
func (b *Builder) LoadCache(name string) (*Catalog, error) {
	if b.cacheDir == "" {
		return nil, nil
	}
	data, err := os.ReadFile(b.cachePath(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog cache: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog cache: %w", err)
	}
	return &c, nil
}
