package marketlog

import (
	"path/filepath"
	"testing"
)

func TestItemLabel(t *testing.T) {
	tests := []struct {
		path  string
		want  string
		found bool
	}{
		{"The Forge-Tritanium-2026.08.01 120000.txt", "Tritanium", true},
		{"The Forge-Mexallon Alloy-2026.08.01 120000.txt", "Mexallon Alloy", true},
		{"Hub-R.A.M.- Starship Tech-2026.08.01.txt", "R.A.M.- Starship Tech", true},
		{"Region-Item.txt", "Item", true},
		{"noseparator.txt", "", false},
	}
	for _, tt := range tests {
		got, found := itemLabel(tt.path)
		if found != tt.found || got != tt.want {
			t.Errorf("itemLabel(%q) = %q, %v; want %q, %v", tt.path, got, found, tt.want, tt.found)
		}
	}
}

func TestIndex_Items_DedupesAcrossSnapshots(t *testing.T) {
	dir := t.TempDir()
	writeLogFile(t, dir, "Forge-Tritanium-2026.08.01 120000.txt",
		"5.5,100.0,34,32767,1,100.0,1.0,False,2026-08-01 12:00:00.000,90,1,2,3,0",
	)
	writeLogFile(t, dir, "Forge-Tritanium-2026.08.01 130000.txt",
		"5.4,100.0,34,32767,2,100.0,1.0,False,2026-08-01 13:00:00.000,90,1,2,3,0",
	)
	writeLogFile(t, dir, "Forge-Pyerite-2026.08.01 120000.txt",
		"12.0,50.0,35,32767,3,50.0,1.0,False,2026-08-01 12:00:00.000,90,1,2,3,0",
	)

	ix := NewIndex(dir, 5)
	items := ix.Items()
	if len(items) != 2 {
		t.Fatalf("Items len = %d, want 2", len(items))
	}

	byID := make(map[int32]ItemRef)
	for _, it := range items {
		byID[it.TypeID] = it
	}
	if byID[34].Name != "Tritanium" {
		t.Errorf("item 34 name = %q, want Tritanium", byID[34].Name)
	}
	if byID[35].Name != "Pyerite" {
		t.Errorf("item 35 name = %q, want Pyerite", byID[35].Name)
	}
}

func TestIndex_FilesForType_FullScanFallback(t *testing.T) {
	dir := t.TempDir()
	// Type 999 only shows up past the probe window, so Items misses it but a
	// direct lookup still finds the file.
	writeLogFile(t, dir, "Forge-Mixed Minerals-2026.08.01 120000.txt",
		"5.5,100.0,34,32767,1,100.0,1.0,False,2026-08-01 12:00:00.000,90,1,2,3,0",
		"5.6,100.0,34,32767,2,100.0,1.0,False,2026-08-01 12:00:00.000,90,1,2,3,0",
		"5.7,100.0,34,32767,3,100.0,1.0,False,2026-08-01 12:00:00.000,90,1,2,3,0",
		"9.9,100.0,999,32767,4,100.0,1.0,False,2026-08-01 12:00:00.000,90,1,2,3,0",
	)

	ix := NewIndex(dir, 2)
	items := ix.Items()
	if len(items) != 1 || items[0].TypeID != 34 {
		t.Fatalf("Items = %+v, want only type 34 within the probe window", items)
	}

	files := ix.FilesForType(999)
	if len(files) != 1 {
		t.Fatalf("FilesForType(999) len = %d, want 1", len(files))
	}
	if filepath.Base(files[0]) != "Forge-Mixed Minerals-2026.08.01 120000.txt" {
		t.Errorf("FilesForType(999) = %v", files)
	}

	// Second lookup is served from the back-filled index.
	again := ix.FilesForType(999)
	if len(again) != 1 || again[0] != files[0] {
		t.Errorf("cached FilesForType(999) = %v", again)
	}
}

func TestIndex_FilesForName_FuzzyFallback(t *testing.T) {
	dir := t.TempDir()
	writeLogFile(t, dir, "Forge-Tritanium-2026.08.01 120000.txt",
		"5.5,100.0,34,32767,1,100.0,1.0,False,2026-08-01 12:00:00.000,90,1,2,3,0",
	)

	ix := NewIndex(dir, 5)

	exact := ix.FilesForName("Tritanium")
	if len(exact) != 1 {
		t.Fatalf("FilesForName exact len = %d, want 1", len(exact))
	}

	fuzzy := ix.FilesForName("tritan")
	if len(fuzzy) != 1 {
		t.Errorf("FilesForName fuzzy len = %d, want 1", len(fuzzy))
	}

	if got := ix.FilesForName("Veldspar"); len(got) != 0 {
		t.Errorf("FilesForName miss = %v, want empty", got)
	}
}

func TestIndex_MissingDirectoryIsEmpty(t *testing.T) {
	ix := NewIndex(filepath.Join(t.TempDir(), "does-not-exist"), 5)
	if files := ix.LogFiles(); len(files) != 0 {
		t.Errorf("LogFiles = %v, want empty", files)
	}
	if items := ix.Items(); len(items) != 0 {
		t.Errorf("Items = %v, want empty", items)
	}
}
