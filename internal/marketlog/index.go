package marketlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"frontier-forge/internal/logger"
)

// ItemRef is one market-tradeable item discovered in the log directory.
type ItemRef struct {
	Name     string   `json:"name"`
	TypeID   int32    `json:"type_id"`
	LogFiles []string `json:"log_files"` // base names of files carrying this item
}

// Index maps item type IDs to the log files that contain their orders.
// Entries are added incrementally as files are discovered so repeated
// per-item queries never rescan the whole directory.
type Index struct {
	dir       string
	probeRows int // data rows read per file when extracting type IDs

	mu        sync.Mutex
	typeFiles map[int32][]string
}

// NewIndex creates an index over the given log directory. A missing
// directory is a startup warning, not an error: scans simply come back empty.
func NewIndex(dir string, probeRows int) *Index {
	if probeRows <= 0 {
		probeRows = 5
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Warn("LOGS", fmt.Sprintf("Log directory does not exist: %s", dir))
	}
	return &Index{
		dir:       dir,
		probeRows: probeRows,
		typeFiles: make(map[int32][]string),
	}
}

// LogFiles returns every exchange-log file in the directory, sorted by name.
func (ix *Index) LogFiles() []string {
	matches, err := filepath.Glob(filepath.Join(ix.dir, "*.txt"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// Items scans the log directory and returns the distinct items found,
// recording each item's candidate files in the index as a side effect.
// Only the first few data rows of each file are read.
func (ix *Index) Items() []ItemRef {
	var items []ItemRef
	seen := make(map[int32]bool)

	for _, path := range ix.LogFiles() {
		label, ok := itemLabel(path)
		if !ok {
			continue
		}

		typeIDs, err := ix.probeTypeIDs(path)
		if err != nil {
			logger.Warn("LOGS", fmt.Sprintf("Error indexing %s: %v", filepath.Base(path), err))
			continue
		}

		for _, typeID := range typeIDs {
			ix.addFile(typeID, path)
			if seen[typeID] {
				continue
			}
			seen[typeID] = true
			items = append(items, ItemRef{
				Name:     label,
				TypeID:   typeID,
				LogFiles: []string{filepath.Base(path)},
			})
		}
	}

	logger.Info("LOGS", fmt.Sprintf("Found %d unique items in market logs", len(items)))
	return items
}

// FilesForType returns candidate log files for a type ID. A miss falls back
// to a full directory scan and back-fills the index for next time.
func (ix *Index) FilesForType(typeID int32) []string {
	ix.mu.Lock()
	cached := ix.typeFiles[typeID]
	ix.mu.Unlock()
	if len(cached) > 0 {
		return cached
	}

	var files []string
	for _, path := range ix.LogFiles() {
		found, err := ix.fileContainsType(path, typeID)
		if err != nil {
			continue
		}
		if found {
			files = append(files, path)
			ix.addFile(typeID, path)
		}
	}
	return files
}

// FilesForName returns log files whose filename label matches the item name.
// If the exact pattern misses, a case-insensitive substring match is used.
func (ix *Index) FilesForName(name string) []string {
	pattern := filepath.Join(ix.dir, "*-"+name+"-*.txt")
	matches, _ := filepath.Glob(pattern)
	if len(matches) > 0 {
		sort.Strings(matches)
		return matches
	}

	lower := strings.ToLower(name)
	var fuzzy []string
	for _, path := range ix.LogFiles() {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if strings.Contains(strings.ToLower(stem), lower) {
			fuzzy = append(fuzzy, path)
		}
	}
	return fuzzy
}

// Reset drops the type-to-file index so the next scan rebuilds it from the
// directory contents.
func (ix *Index) Reset() {
	ix.mu.Lock()
	ix.typeFiles = make(map[int32][]string)
	ix.mu.Unlock()
}

func (ix *Index) addFile(typeID int32, path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, f := range ix.typeFiles[typeID] {
		if f == path {
			return
		}
	}
	ix.typeFiles[typeID] = append(ix.typeFiles[typeID], path)
}

// probeTypeIDs reads the first probeRows data rows of a file and collects the
// distinct type IDs present.
func (ix *Index) probeTypeIDs(path string) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	col := columnIndex(header, "typeID")
	if col < 0 {
		return nil, fmt.Errorf("no typeID column")
	}

	var ids []int32
	seen := make(map[int32]bool)
	for i := 0; i < ix.probeRows; i++ {
		row, err := r.Read()
		if err != nil {
			break
		}
		if col >= len(row) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[col]), 10, 32)
		if err != nil || id <= 0 {
			continue
		}
		if !seen[int32(id)] {
			seen[int32(id)] = true
			ids = append(ids, int32(id))
		}
	}
	return ids, nil
}

func (ix *Index) fileContainsType(path string, typeID int32) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return false, err
	}
	col := columnIndex(header, "typeID")
	if col < 0 {
		return false, nil
	}

	for {
		row, err := r.Read()
		if err != nil {
			return false, nil
		}
		if col >= len(row) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[col]), 10, 32)
		if err == nil && int32(id) == typeID {
			return true, nil
		}
	}
}

// itemLabel recovers the human-readable item label from a log file name.
// Format: <prefix>-<item-label>-<date-time>.<ext>; the label is every
// hyphen-delimited segment except the first and last, rejoined on hyphen.
func itemLabel(path string) (string, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "-")
	if len(parts) < 2 {
		return "", false
	}
	if len(parts) == 2 {
		return strings.TrimSpace(parts[1]), true
	}
	return strings.TrimSpace(strings.Join(parts[1:len(parts)-1], "-")), true
}

// columnIndex finds a header column by case-insensitive name, -1 if absent.
func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}
