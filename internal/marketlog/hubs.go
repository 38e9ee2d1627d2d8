package marketlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"frontier-forge/internal/logger"
)

// TradingHub is a station identified as an order-bearing location, derived
// from log contents rather than external reference data.
type TradingHub struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	OrderCount    int    `json:"order_count"`
	SolarSystemID int32  `json:"solar_system_id"`
	RegionID      int32  `json:"region_id"`
}

// StationName derives a placeholder hub name from the station identifier.
// No external naming source is authoritative in this domain.
func StationName(stationID int64) string {
	return fmt.Sprintf("Station %d", stationID)
}

// ExtractHubs scans every log file for station identifiers and counts orders
// per station. Files without a stationID column are skipped with a warning;
// I/O errors on a single file never abort the scan. The result is sorted by
// descending order count (a presentation convenience).
func ExtractHubs(ctx context.Context, files []string) ([]TradingHub, error) {
	stations := make(map[int64]*stationInfo)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := countStations(path, stations); err != nil {
			logger.Warn("HUBS", fmt.Sprintf("Error reading station IDs from %s: %v", filepath.Base(path), err))
		}
	}

	hubs := make([]TradingHub, 0, len(stations))
	for id, info := range stations {
		hubs = append(hubs, TradingHub{
			ID:            id,
			Name:          StationName(id),
			OrderCount:    info.orders,
			SolarSystemID: info.solarSystemID,
			RegionID:      info.regionID,
		})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].OrderCount != hubs[j].OrderCount {
			return hubs[i].OrderCount > hubs[j].OrderCount
		}
		return hubs[i].ID < hubs[j].ID
	})
	return hubs, nil
}

type stationInfo struct {
	orders        int
	solarSystemID int32
	regionID      int32
}

func countStations(path string, stations map[int64]*stationInfo) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return err
	}
	col := columnIndex(header, "stationID")
	if col < 0 {
		logger.Warn("HUBS", fmt.Sprintf("No stationID column found in %s", filepath.Base(path)))
		return nil
	}
	sysCol := columnIndex(header, "solarSystemID")
	regCol := columnIndex(header, "regionID")

	intAt := func(row []string, i int) (int64, bool) {
		if i < 0 || i >= len(row) {
			return 0, false
		}
		v, err := strconv.ParseInt(strings.TrimSpace(row[i]), 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	for {
		row, err := r.Read()
		if err != nil {
			return nil
		}
		id, ok := intAt(row, col)
		if !ok {
			continue
		}
		info := stations[id]
		if info == nil {
			info = &stationInfo{}
			stations[id] = info
		}
		info.orders++
		if sys, ok := intAt(row, sysCol); ok {
			info.solarSystemID = int32(sys)
		}
		if reg, ok := intAt(row, regCol); ok {
			info.regionID = int32(reg)
		}
	}
}
