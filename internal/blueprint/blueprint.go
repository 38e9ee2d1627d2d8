// Package blueprint loads the blueprint input document and indexes recipes
// by the products they manufacture.
package blueprint

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"frontier-forge/internal/logger"
)

// ManufacturingActivity is the only activity that participates in cost
// resolution; other activities (copying, invention, research) are kept for
// browsing.
const ManufacturingActivity = "manufacturing"

// Material is a single material requirement of an activity.
type Material struct {
	TypeID   int32 `json:"typeID"`
	Quantity int64 `json:"quantity"`
}

// Product is a single output of an activity.
type Product struct {
	TypeID   int32 `json:"typeID"`
	Quantity int64 `json:"quantity"`
}

// Activity is one blueprint activity (manufacturing, copying, invention, ...).
type Activity struct {
	Name      string     `json:"-"`
	Time      int64      `json:"time"` // base duration in seconds
	Materials []Material `json:"materials"`
	Products  []Product  `json:"products"`
}

// Blueprint is one recipe entry from the blueprint document.
type Blueprint struct {
	ID                 int32                `json:"-"`
	MaxProductionLimit int32                `json:"maxProductionLimit"`
	Activities         map[string]*Activity `json:"activities"`
}

// Manufacturing returns the manufacturing activity, nil when the blueprint
// does not support it.
func (b *Blueprint) Manufacturing() *Activity {
	return b.Activities[ManufacturingActivity]
}

// Library holds all loaded blueprints plus a product index for recipe lookup.
type Library struct {
	Blueprints map[int32]*Blueprint
	byProduct  map[int32]int32 // product typeID -> blueprintID (manufacturing only)
}

// Load reads a blueprint document:
//
//	{"blueprint_count": N, "blueprints": {"<id>": {"maxProductionLimit": ..., "activities": {...}}}}
//
// Entries with unparseable IDs are skipped.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blueprint file: %w", err)
	}

	var doc struct {
		BlueprintCount int                   `json:"blueprint_count"`
		Blueprints     map[string]*Blueprint `json:"blueprints"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse blueprint file: %w", err)
	}

	lib := &Library{
		Blueprints: make(map[int32]*Blueprint, len(doc.Blueprints)),
		byProduct:  make(map[int32]int32),
	}
	skipped := 0
	for key, bp := range doc.Blueprints {
		id, err := strconv.ParseInt(key, 10, 32)
		if err != nil || bp == nil {
			skipped++
			continue
		}
		bp.ID = int32(id)
		for name, act := range bp.Activities {
			if act != nil {
				act.Name = name
			}
		}
		lib.Blueprints[bp.ID] = bp
		if mfg := bp.Manufacturing(); mfg != nil {
			for _, p := range mfg.Products {
				lib.byProduct[p.TypeID] = bp.ID
			}
		}
	}
	if skipped > 0 {
		logger.Warn("BP", fmt.Sprintf("Skipped %d malformed blueprint entries", skipped))
	}
	logger.Info("BP", fmt.Sprintf("Loaded %d blueprints (%d manufacturable products)",
		len(lib.Blueprints), len(lib.byProduct)))
	return lib, nil
}

// NewLibrary creates an empty library; blueprints added with Add become
// product-indexed. Used by tests and loaders.
func NewLibrary() *Library {
	return &Library{
		Blueprints: make(map[int32]*Blueprint),
		byProduct:  make(map[int32]int32),
	}
}

// Add registers a blueprint and indexes its manufacturing products.
func (l *Library) Add(bp *Blueprint) {
	l.Blueprints[bp.ID] = bp
	if mfg := bp.Manufacturing(); mfg != nil {
		for _, p := range mfg.Products {
			l.byProduct[p.TypeID] = bp.ID
		}
	}
}

// ForProduct returns the blueprint whose manufacturing activity produces the
// given type.
func (l *Library) ForProduct(typeID int32) (*Blueprint, bool) {
	id, ok := l.byProduct[typeID]
	if !ok {
		return nil, false
	}
	bp, ok := l.Blueprints[id]
	return bp, ok
}

// HasRecipe reports whether any manufacturing recipe produces the type.
func (l *Library) HasRecipe(typeID int32) bool {
	_, ok := l.byProduct[typeID]
	return ok
}

// MaterialMultiplier is the material-consumption factor for a Material
// Efficiency level. Efficiency can reduce consumption but never below 90%
// of nominal.
func MaterialMultiplier(me int) float64 {
	return math.Max(0.9, 1-0.02*float64(me))
}

// AdjustedQuantity applies material efficiency to a base material quantity:
// floor(base * max(0.9, 1 - 0.02*ME)).
func AdjustedQuantity(base int64, me int) int64 {
	return int64(math.Floor(float64(base) * MaterialMultiplier(me)))
}

// TimeMultiplier is the duration factor for a Time Efficiency level.
// The benefit is capped at 80% regardless of level.
func TimeMultiplier(te int) float64 {
	return 1 - math.Min(0.2*float64(te), 0.8)
}

// AdjustedTime applies time efficiency and a flat facility bonus to a base
// activity duration in seconds.
func AdjustedTime(base int64, te int, facilityBonus float64) float64 {
	return float64(base) * TimeMultiplier(te) * (1 - facilityBonus)
}
