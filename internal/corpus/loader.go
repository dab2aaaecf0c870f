package corpus

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
)

// LoadStats summarizes a dataset load. Historical data is cleaned up rather
// than rejected: bad rows are skipped and out-of-range values clamped to the
// schema bounds, both counted here.
type LoadStats struct {
	Rows    int
	Loaded  int
	Skipped int
	Clamped int
}

// Loader reads historical application datasets into records. Supported
// formats, by file extension: .csv (header row, feature columns by schema
// name), .jsonl / .ndjson (one object per line) and .json (array of
// objects). Objects carry {"program_id": ..., "features": {name: value}}.
type Loader struct {
	logger *zap.Logger
}

// NewLoader returns a Loader logging through the given logger.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

type jsonRecord struct {
	ProgramID string             `json:"program_id"`
	Features  map[string]float64 `json:"features"`
}

// LoadFile reads the dataset at path. Unknown feature columns are ignored,
// unreadable rows are skipped, and out-of-range values are clamped, so a
// single bad row never fails a batch load. Live applicant input goes through
// strict validation instead; this tolerance is for historical data only.
func (l *Loader) LoadFile(path string) ([]Record, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var (
		records []Record
		stats   LoadStats
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, stats, err = l.loadCSV(f)
	case ".jsonl", ".ndjson":
		records, stats, err = l.loadJSONL(f)
	case ".json":
		records, stats, err = l.loadJSONArray(f)
	default:
		return nil, LoadStats{}, fmt.Errorf("unsupported dataset format %q", ext)
	}
	if err != nil {
		return nil, stats, fmt.Errorf("load dataset %s: %w", path, err)
	}

	l.logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("rows", stats.Rows),
		zap.Int("loaded", stats.Loaded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("clamped_values", stats.Clamped),
	)
	return records, stats, nil
}

func (l *Loader) loadCSV(r io.Reader) ([]Record, LoadStats, error) {
	var stats LoadStats

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}

	programCol := -1
	columns := make([]int, len(header))
	var unknown []string
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "program_id" {
			programCol = i
			columns[i] = -1
			continue
		}
		if idx, ok := feature.Index(name); ok {
			columns[i] = idx
			continue
		}
		columns[i] = -1
		unknown = append(unknown, name)
	}
	if programCol == -1 {
		return nil, stats, errors.New("no program_id column")
	}
	if len(unknown) > 0 {
		l.logger.Warn("ignoring unknown dataset columns", zap.Strings("columns", unknown))
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			stats.Rows++
			stats.Skipped++
			l.logger.Warn("skipping malformed row", zap.Int("line", pe.Line), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, stats, err
		}
		stats.Rows++

		programID := strings.TrimSpace(row[programCol])
		if programID == "" {
			stats.Skipped++
			continue
		}

		v := feature.Defaults()
		bad := false
		for i, cell := range row {
			idx := columns[i]
			cell = strings.TrimSpace(cell)
			if idx < 0 || cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
				bad = true
				break
			}
			v[idx] = l.clamp(idx, value, &stats)
		}
		if bad {
			stats.Skipped++
			l.logger.Warn("skipping row with unparseable value", zap.Int("row", stats.Rows))
			continue
		}

		records = append(records, Record{ProgramID: programID, Features: v})
		stats.Loaded++
	}

	return records, stats, nil
}

func (l *Loader) loadJSONL(r io.Reader) ([]Record, LoadStats, error) {
	var (
		records []Record
		stats   LoadStats
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		stats.Rows++

		var jr jsonRecord
		if err := json.Unmarshal([]byte(raw), &jr); err != nil {
			stats.Skipped++
			l.logger.Warn("skipping malformed line", zap.Int("line", line), zap.Error(err))
			continue
		}
		rec, ok := l.fromJSONRecord(jr, &stats)
		if !ok {
			stats.Skipped++
			continue
		}
		records = append(records, rec)
		stats.Loaded++
	}
	if err := sc.Err(); err != nil {
		return nil, stats, err
	}

	return records, stats, nil
}

func (l *Loader) loadJSONArray(r io.Reader) ([]Record, LoadStats, error) {
	var (
		records []Record
		stats   LoadStats
	)

	var rows []jsonRecord
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, stats, fmt.Errorf("decode array: %w", err)
	}

	for _, jr := range rows {
		stats.Rows++
		rec, ok := l.fromJSONRecord(jr, &stats)
		if !ok {
			stats.Skipped++
			continue
		}
		records = append(records, rec)
		stats.Loaded++
	}

	return records, stats, nil
}

func (l *Loader) fromJSONRecord(jr jsonRecord, stats *LoadStats) (Record, bool) {
	if strings.TrimSpace(jr.ProgramID) == "" {
		return Record{}, false
	}

	v := feature.Defaults()
	for name, value := range jr.Features {
		idx, ok := feature.Index(name)
		if !ok {
			l.logger.Debug("ignoring unknown feature", zap.String("feature", name))
			continue
		}
		v[idx] = l.clamp(idx, value, stats)
	}

	return Record{ProgramID: strings.TrimSpace(jr.ProgramID), Features: v}, true
}

// clamp forces a historical value into the schema range. Live input is
// validated and rejected instead; see feature.Vector.Validate.
func (l *Loader) clamp(idx int, value float64, stats *LoadStats) float64 {
	spec := feature.Specs()[idx]
	switch {
	case value < spec.Min:
		stats.Clamped++
		l.logger.Debug("clamping historical value",
			zap.String("feature", spec.Name),
			zap.Float64("value", value),
			zap.Float64("bound", spec.Min),
		)
		return spec.Min
	case value > spec.Max:
		stats.Clamped++
		l.logger.Debug("clamping historical value",
			zap.String("feature", spec.Name),
			zap.Float64("value", value),
			zap.Float64("bound", spec.Max),
		)
		return spec.Max
	default:
		return value
	}
}
