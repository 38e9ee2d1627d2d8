package marketlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"frontier-forge/internal/logger"
)

// requiredColumns are the header names every parsable log file must carry.
// Matching is case-insensitive. "jumps" is optional.
var requiredColumns = []string{
	"price", "volRemaining", "typeID", "range", "orderID", "volEntered",
	"minVolume", "bid", "issueDate", "duration", "stationID", "regionID",
	"solarSystemID",
}

// Parser reads exchange-log files into order records. Parsed files are
// cached in memory keyed by absolute path for the process lifetime; the
// cache is explicitly clearable and carries no expiration.
type Parser struct {
	files     *gocache.Cache
	malformed atomic.Int64 // rows skipped across all files
}

// NewParser creates a parser with an empty file cache.
func NewParser() *Parser {
	return &Parser{
		files: gocache.New(gocache.NoExpiration, 0),
	}
}

// ParseFile parses a single log file into order records. Malformed rows are
// skipped and counted, never aborting the file. Results are cached by
// absolute path.
func (p *Parser) ParseFile(path string) ([]Order, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if cached, ok := p.files.Get(abs); ok {
		return cached.([]Order), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var orders []Order
	skipped := 0
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		order, ok := cols.parseRow(row)
		if !ok {
			skipped++
			continue
		}
		orders = append(orders, order)
	}

	if skipped > 0 {
		p.malformed.Add(int64(skipped))
		logger.Warn("LOGS", fmt.Sprintf("Skipped %d malformed rows in %s", skipped, filepath.Base(path)))
	}

	p.files.Set(abs, orders, gocache.NoExpiration)
	return orders, nil
}

// MalformedRows reports the total number of rows skipped since the last
// cache clear.
func (p *Parser) MalformedRows() int64 {
	return p.malformed.Load()
}

// ClearCache drops all cached per-file parse results.
func (p *Parser) ClearCache() {
	p.files.Flush()
	p.malformed.Store(0)
}

// columns holds resolved header positions for one file.
type columns struct {
	price, volRemaining, typeID, rng, orderID, volEntered int
	minVolume, bid, issueDate, duration                   int
	stationID, regionID, solarSystemID, jumps             int
}

func resolveColumns(header []string) (*columns, error) {
	idx := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		col := columnIndex(header, name)
		if col < 0 {
			return nil, fmt.Errorf("missing column %q", name)
		}
		idx[name] = col
	}
	return &columns{
		price:         idx["price"],
		volRemaining:  idx["volRemaining"],
		typeID:        idx["typeID"],
		rng:           idx["range"],
		orderID:       idx["orderID"],
		volEntered:    idx["volEntered"],
		minVolume:     idx["minVolume"],
		bid:           idx["bid"],
		issueDate:     idx["issueDate"],
		duration:      idx["duration"],
		stationID:     idx["stationID"],
		regionID:      idx["regionID"],
		solarSystemID: idx["solarSystemID"],
		jumps:         columnIndex(header, "jumps"), // optional
	}, nil
}

// parseRow converts one data row into an Order. Any required numeric field
// failing to parse makes the row malformed.
func (c *columns) parseRow(row []string) (Order, bool) {
	field := func(i int) (string, bool) {
		if i < 0 || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	var o Order
	var ok bool
	var s string

	if s, ok = field(c.price); !ok {
		return o, false
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return o, false
	}
	o.Price = price

	intField := func(i int) (int64, bool) {
		s, ok := field(i)
		if !ok {
			return 0, false
		}
		// Volumes are logged with a fractional part ("4000.0").
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int64(v), true
	}

	if o.VolumeRemaining, ok = intField(c.volRemaining); !ok {
		return o, false
	}
	tid, ok := intField(c.typeID)
	if !ok {
		return o, false
	}
	o.TypeID = int32(tid)
	rng, ok := intField(c.rng)
	if !ok {
		return o, false
	}
	o.Range = int32(rng)
	if o.OrderID, ok = intField(c.orderID); !ok {
		return o, false
	}
	if o.VolumeEntered, ok = intField(c.volEntered); !ok {
		return o, false
	}
	if o.MinVolume, ok = intField(c.minVolume); !ok {
		return o, false
	}
	dur, ok := intField(c.duration)
	if !ok {
		return o, false
	}
	o.Duration = int32(dur)
	if o.StationID, ok = intField(c.stationID); !ok {
		return o, false
	}
	reg, ok := intField(c.regionID)
	if !ok {
		return o, false
	}
	o.RegionID = int32(reg)
	sys, ok := intField(c.solarSystemID)
	if !ok {
		return o, false
	}
	o.SolarSystemID = int32(sys)

	bid, _ := field(c.bid)
	o.IsBuyOrder = strings.EqualFold(bid, "true")
	o.IssueDate, _ = field(c.issueDate)

	// jumps is optional; the max-int32 sentinel means "unknown".
	if j, jok := intField(c.jumps); jok && j != UnboundedJumps {
		v := int32(j)
		o.Jumps = &v
	}

	return o, true
}
