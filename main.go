package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"frontier-forge/internal/blueprint"
	"frontier-forge/internal/config"
	"frontier-forge/internal/db"
	"frontier-forge/internal/engine"
	"frontier-forge/internal/logger"
	"frontier-forge/internal/marketlog"
)

var version = "dev"

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		logDir     = flag.String("logs", "", "market log directory (overrides config)")
		cacheDir   = flag.String("cache", "", "cache directory (overrides config)")
		bpFile     = flag.String("blueprints", "", "blueprint JSON file (overrides config)")
		dbPath     = flag.String("db", "", "SQLite database path (overrides config)")
		rebuild    = flag.Bool("rebuild", false, "clear caches and rebuild the market catalog")
		hubs       = flag.Bool("hubs", false, "list trading hubs and exit")

		item     = flag.String("item", "", "item name or type ID to resolve a production chain for")
		qty      = flag.Int64("qty", 1, "quantity to produce")
		me       = flag.Int("me", -1, "material efficiency level (overrides config)")
		te       = flag.Int("te", -1, "time efficiency level (overrides config)")
		facility = flag.Float64("facility", -1, "facility time bonus 0..1 (overrides config)")
		depth    = flag.Int("depth", -1, "maximum chain depth (overrides config)")

		scan      = flag.Bool("scan", false, "run a profitability scan")
		minMargin = flag.Float64("min-margin", -1, "minimum margin percent (overrides config)")
		sortKey   = flag.String("sort", "margin", "scan sort key: margin, profit, cost, price")
		maxRes    = flag.Int("max", 0, "maximum scan results (overrides config)")
	)
	flag.Parse()

	logger.Banner(version)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logger.Error("CONFIG", fmt.Sprintf("Failed to load config: %v", err))
		os.Exit(1)
	}
	applyOverrides(cfg, *logDir, *cacheDir, *bpFile, *dbPath, *me, *te, *facility, *depth, *minMargin, *maxRes)
	if err := cfg.Validate(); err != nil {
		logger.Error("CONFIG", fmt.Sprintf("Invalid config: %v", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	logger.Section("Market Data")
	index := marketlog.NewIndex(cfg.LogDirectory, cfg.IndexProbeRows)
	parser := marketlog.NewParser()
	builder := marketlog.NewBuilder(index, parser, cfg.CacheDirectory, cfg.BatchSize, cfg.TopOrders)

	var catalog *marketlog.Catalog
	if *rebuild {
		catalog, err = builder.Reload(ctx)
	} else {
		catalog, err = builder.BuildAll(ctx)
	}
	if err != nil {
		logger.Error("CATALOG", fmt.Sprintf("Failed to build catalog: %v", err))
		os.Exit(1)
	}
	logger.Stats("Items with market data", catalog.Metadata.ItemCount)
	logger.Stats("Trading hubs", catalog.Metadata.TradingHubCount)

	logger.Section("Blueprints")
	library, err := blueprint.Load(cfg.BlueprintFile)
	if err != nil {
		logger.Error("BLUEPRINT", fmt.Sprintf("Failed to load blueprints: %v", err))
		os.Exit(1)
	}
	logger.Stats("Blueprints loaded", len(library.Blueprints))

	seedItems(database, catalog, library)

	resolver := &engine.Resolver{
		Items:   database,
		Recipes: library,
		Cost:    &engine.CostEngine{Store: database, Catalog: builder},
	}

	switch {
	case *hubs:
		printJSON(catalog.TradingHubs)
	case *item != "":
		runResolve(resolver, catalog, cfg, *item, *qty)
	case *scan:
		runScan(ctx, database, resolver, library, catalog, cfg, *sortKey)
	default:
		flag.Usage()
	}
}

func applyOverrides(cfg *config.Config, logDir, cacheDir, bpFile, dbPath string, me, te int, facility float64, depth int, minMargin float64, maxRes int) {
	if logDir != "" {
		cfg.LogDirectory = logDir
	}
	if cacheDir != "" {
		cfg.CacheDirectory = cacheDir
	}
	if bpFile != "" {
		cfg.BlueprintFile = bpFile
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if me >= 0 {
		cfg.MaterialEfficiency = me
	}
	if te >= 0 {
		cfg.TimeEfficiency = te
	}
	if facility >= 0 {
		cfg.FacilityBonus = facility
	}
	if depth >= 0 {
		cfg.MaxDepth = depth
	}
	if minMargin >= 0 {
		cfg.MinMarginPercent = minMargin
	}
	if maxRes > 0 {
		cfg.MaxResults = maxRes
	}
}

// seedItems refreshes the item table from the freshly built catalog so name
// lookups work even for items that only appear in old scan results.
func seedItems(database *db.DB, catalog *marketlog.Catalog, library *blueprint.Library) {
	items := make([]db.Item, 0, len(catalog.Items))
	for _, summary := range catalog.Items {
		items = append(items, db.Item{
			TypeID:         summary.TypeID,
			Name:           summary.Name,
			Manufacturable: library.HasRecipe(summary.TypeID),
		})
	}
	database.UpsertItems(items)
	logger.Stats("Items in database", database.ItemCount())
}

func runResolve(resolver *engine.Resolver, catalog *marketlog.Catalog, cfg *config.Config, item string, qty int64) {
	typeID, err := findTypeID(catalog, item)
	if err != nil {
		logger.Error("RESOLVE", err.Error())
		os.Exit(1)
	}

	node, err := resolver.Resolve(engine.ResolveParams{
		TypeID:             typeID,
		Quantity:           qty,
		MaterialEfficiency: cfg.MaterialEfficiency,
		TimeEfficiency:     cfg.TimeEfficiency,
		FacilityBonus:      cfg.FacilityBonus,
		MaxDepth:           cfg.MaxDepth,
	})
	if err != nil {
		logger.Error("RESOLVE", fmt.Sprintf("Failed to resolve chain: %v", err))
		os.Exit(1)
	}

	logger.Section(fmt.Sprintf("Production Chain: %s x%d", node.ItemName, qty))
	logger.Stats("Production cost per unit", node.ProductionCost.StringFixed(2))
	logger.Stats("Total production cost", node.TotalProductionCost().StringFixed(2))
	logger.Stats("Total buy cost", node.TotalBuyCost().StringFixed(2))
	printJSON(node)
}

func runScan(ctx context.Context, database *db.DB, resolver *engine.Resolver, library *blueprint.Library, catalog *marketlog.Catalog, cfg *config.Config, sortKey string) {
	scanner := &engine.Scanner{Resolver: resolver, Recipes: library}
	params := engine.ScanParams{
		MinMarginPercent:   cfg.MinMarginPercent,
		MaterialEfficiency: cfg.MaterialEfficiency,
		IncludeComponents:  cfg.IncludeComponents,
		OnlyManufacturable: cfg.OnlyManufacturable,
		MaxResults:         cfg.MaxResults,
		Sort:               engine.SortKey(sortKey),
		Workers:            cfg.ScanWorkers,
	}

	logger.Section("Profitability Scan")
	start := time.Now()
	results, err := scanner.Scan(ctx, catalog, params, func(msg string) { logger.Info("SCAN", msg) })
	if err != nil {
		logger.Error("SCAN", fmt.Sprintf("Scan failed: %v", err))
		os.Exit(1)
	}

	topMargin := 0.0
	if len(results) > 0 {
		topMargin = results[0].MarginPercent
	}
	scanID := database.InsertHistory(len(results), topMargin, time.Since(start).Milliseconds(), params)
	database.InsertScanResults(scanID, results)

	logger.Stats("Profitable items", len(results))
	printJSON(results)
}

// findTypeID accepts either a numeric type ID or an item name (case
// insensitive) and resolves it against the catalog.
func findTypeID(catalog *marketlog.Catalog, item string) (int32, error) {
	if id, err := strconv.ParseInt(item, 10, 32); err == nil {
		return int32(id), nil
	}
	for _, summary := range catalog.Items {
		if strings.EqualFold(summary.Name, item) {
			return summary.TypeID, nil
		}
	}
	return 0, fmt.Errorf("item %q not found in market data", item)
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("OUTPUT", fmt.Sprintf("Failed to encode output: %v", err))
		os.Exit(1)
	}
	fmt.Println(string(data))
}
