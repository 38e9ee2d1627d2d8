package blueprint

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const testDoc = `{
	"blueprint_count": 3,
	"blueprints": {
		"999": {
			"maxProductionLimit": 10,
			"activities": {
				"manufacturing": {
					"time": 6000,
					"materials": [
						{"typeID": 34, "quantity": 86},
						{"typeID": 35, "quantity": 22}
					],
					"products": [
						{"typeID": 608, "quantity": 1}
					]
				},
				"copying": {
					"time": 4800,
					"materials": [],
					"products": []
				}
			}
		},
		"1000": {
			"maxProductionLimit": 100,
			"activities": {
				"copying": {
					"time": 100,
					"materials": [],
					"products": []
				}
			}
		},
		"bad-id": {
			"maxProductionLimit": 1,
			"activities": {}
		}
	}
}`

func loadTestLibrary(t *testing.T) *Library {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blueprints.json")
	if err := os.WriteFile(path, []byte(testDoc), 0644); err != nil {
		t.Fatalf("write blueprint doc: %v", err)
	}
	lib, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return lib
}

func TestLoad_ParsesDocument(t *testing.T) {
	lib := loadTestLibrary(t)

	// The malformed "bad-id" key is skipped.
	if len(lib.Blueprints) != 2 {
		t.Fatalf("Blueprints len = %d, want 2", len(lib.Blueprints))
	}

	bp, ok := lib.Blueprints[999]
	if !ok {
		t.Fatal("blueprint 999 not loaded")
	}
	if bp.ID != 999 || bp.MaxProductionLimit != 10 {
		t.Errorf("ID/MaxProductionLimit = %d/%d", bp.ID, bp.MaxProductionLimit)
	}

	mfg := bp.Manufacturing()
	if mfg == nil {
		t.Fatal("blueprint 999 has no manufacturing activity")
	}
	if mfg.Name != "manufacturing" || mfg.Time != 6000 {
		t.Errorf("activity Name/Time = %q/%d", mfg.Name, mfg.Time)
	}
	if len(mfg.Materials) != 2 || mfg.Materials[0].TypeID != 34 || mfg.Materials[0].Quantity != 86 {
		t.Errorf("Materials = %+v", mfg.Materials)
	}
	if len(mfg.Products) != 1 || mfg.Products[0].TypeID != 608 {
		t.Errorf("Products = %+v", mfg.Products)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load of missing file should fail")
	}
}

func TestLibrary_ForProduct(t *testing.T) {
	lib := loadTestLibrary(t)

	bp, ok := lib.ForProduct(608)
	if !ok || bp.ID != 999 {
		t.Errorf("ForProduct(608) = %v, %v; want blueprint 999", bp, ok)
	}
	if !lib.HasRecipe(608) {
		t.Error("HasRecipe(608) = false, want true")
	}

	// Copy-only blueprints index no products; raw materials have no recipe.
	if lib.HasRecipe(34) {
		t.Error("HasRecipe(34) = true, want false")
	}
	if _, ok := lib.ForProduct(34); ok {
		t.Error("ForProduct(34) should miss")
	}
}

func TestMaterialMultiplier_FloorsAtNinetyPercent(t *testing.T) {
	tests := []struct {
		me   int
		want float64
	}{
		{0, 1.0},
		{1, 0.98},
		{5, 0.9},
		{10, 0.9},
		{100, 0.9},
	}
	for _, tt := range tests {
		if got := MaterialMultiplier(tt.me); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("MaterialMultiplier(%d) = %v, want %v", tt.me, got, tt.want)
		}
	}
}

func TestAdjustedQuantity_RoundsDown(t *testing.T) {
	tests := []struct {
		base int64
		me   int
		want int64
	}{
		{100, 0, 100},
		{100, 1, 98},
		{86, 2, 82}, // 86 * 0.96 = 82.56
		{100, 10, 90},
		{1, 10, 0}, // efficiency can eliminate a single-unit requirement
	}
	for _, tt := range tests {
		if got := AdjustedQuantity(tt.base, tt.me); got != tt.want {
			t.Errorf("AdjustedQuantity(%d, %d) = %d, want %d", tt.base, tt.me, got, tt.want)
		}
	}
}

func TestTimeMultiplier_CapsAtEightyPercent(t *testing.T) {
	tests := []struct {
		te   int
		want float64
	}{
		{0, 1.0},
		{1, 0.8},
		{2, 0.6},
		{4, 0.2},
		{5, 0.2},
		{20, 0.2},
	}
	for _, tt := range tests {
		if got := TimeMultiplier(tt.te); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("TimeMultiplier(%d) = %v, want %v", tt.te, got, tt.want)
		}
	}
}

func TestAdjustedTime_AppliesFacilityBonus(t *testing.T) {
	// 6000s base, TE 2 (x0.6), 25% facility bonus (x0.75) = 2700s.
	if got := AdjustedTime(6000, 2, 0.25); math.Abs(got-2700) > 1e-9 {
		t.Errorf("AdjustedTime(6000, 2, 0.25) = %v, want 2700", got)
	}
	if got := AdjustedTime(6000, 0, 0); math.Abs(got-6000) > 1e-9 {
		t.Errorf("AdjustedTime(6000, 0, 0) = %v, want 6000", got)
	}
}
