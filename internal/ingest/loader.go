package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-kelly-sim/internal/config"
	"github.com/yourusername/race-kelly-sim/internal/models"
)

var (
	defaultDateLayouts = []string{"2006-01-02", "02/01/2006", "2006-01-02 15:04:05", "02/01/2006 15:04"}
	timeLayouts        = []string{"15:04", "15:04:05", "3:04", "3:04PM", "3:04 PM"}
)

// Record is one parsed input row before race grouping
type Record struct {
	Seq         int
	Date        time.Time
	Clock       time.Duration // offset from midnight
	Horse       string
	Track       string
	Class       string
	Odds        float64
	Probability float64
	Place       *int
}

// StartTime returns the race start as a single timestamp
func (r Record) StartTime() time.Time {
	return r.Date.Add(r.Clock)
}

// DroppedRow describes an input row that could not be parsed
type DroppedRow struct {
	Line   int
	Reason string
}

// LoadReport summarizes a load
type LoadReport struct {
	RowsRead int
	Loaded   int
	Dropped  []DroppedRow
}

// ColumnMapping maps semantic fields onto header names
type ColumnMapping struct {
	Date        string
	Time        string
	Odds        string
	Probability string
	Place       string
	Track       string
	Class       string
	Horse       string
}

// ColumnMappingFromConfig builds a mapping from the input columns config
func ColumnMappingFromConfig(cfg config.ColumnsConfig) ColumnMapping {
	return ColumnMapping(cfg)
}

// CSVLoader parses prediction exports
type CSVLoader struct {
	columns     ColumnMapping
	dateLayouts []string
	logger      logrus.FieldLogger
}

// NewCSVLoader creates a new CSV loader
func NewCSVLoader(cfg config.InputConfig, logger logrus.FieldLogger) *CSVLoader {
	layouts := cfg.DateLayouts
	if len(layouts) == 0 {
		layouts = defaultDateLayouts
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &CSVLoader{
		columns:     ColumnMappingFromConfig(cfg.Columns),
		dateLayouts: layouts,
		logger:      logger.WithField("component", "ingest"),
	}
}

// LoadSource opens the source and loads every record from it
func (l *CSVLoader) LoadSource(ctx context.Context, src Source) ([]Record, *LoadReport, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	records, report, err := l.Load(ctx, rc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", src.Name(), err)
	}
	return records, report, nil
}

// Load reads all rows. Row-level parse failures are reported, not fatal.
func (l *CSVLoader) Load(ctx context.Context, r io.Reader) ([]Record, *LoadReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	index, err := l.indexColumns(header)
	if err != nil {
		return nil, nil, err
	}

	report := &LoadReport{}
	var records []Record
	line := 1

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				report.Dropped = append(report.Dropped, DroppedRow{Line: line, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		report.RowsRead++

		rec, err := l.parseRow(row, index)
		if err != nil {
			report.Dropped = append(report.Dropped, DroppedRow{Line: line, Reason: err.Error()})
			continue
		}
		rec.Seq = len(records)
		records = append(records, rec)
	}

	report.Loaded = len(records)
	if len(report.Dropped) > 0 {
		l.logger.WithFields(logrus.Fields{
			"dropped":    len(report.Dropped),
			"first_line": report.Dropped[0].Line,
			"reason":     report.Dropped[0].Reason,
		}).Warn("Dropped unparseable input rows")
	}

	return records, report, nil
}

type columnIndex map[string]int

func (idx columnIndex) get(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (l *CSVLoader) indexColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	for _, required := range []string{l.columns.Date, l.columns.Time, l.columns.Odds, l.columns.Probability, l.columns.Place} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: %q", models.ErrMissingColumn, required)
		}
	}
	return idx, nil
}

func (l *CSVLoader) parseRow(row []string, idx columnIndex) (Record, error) {
	date, err := l.parseDate(idx.get(row, l.columns.Date))
	if err != nil {
		return Record{}, err
	}
	clock, err := parseClock(idx.get(row, l.columns.Time))
	if err != nil {
		return Record{}, err
	}

	odds, err := ParseOdds(idx.get(row, l.columns.Odds))
	if err != nil {
		return Record{}, err
	}

	probRaw := idx.get(row, l.columns.Probability)
	prob, err := strconv.ParseFloat(probRaw, 64)
	if err != nil || math.IsNaN(prob) || math.IsInf(prob, 0) || prob < 0 {
		return Record{}, fmt.Errorf("invalid probability %q", probRaw)
	}

	return Record{
		Date:        date,
		Clock:       clock,
		Horse:       idx.get(row, l.columns.Horse),
		Track:       idx.get(row, l.columns.Track),
		Class:       idx.get(row, l.columns.Class),
		Odds:        odds,
		Probability: prob,
		Place:       parsePlace(idx.get(row, l.columns.Place)),
	}, nil
}

func (l *CSVLoader) parseDate(raw string) (time.Time, error) {
	for _, layout := range l.dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid race date %q", raw)
}

func parseClock(raw string) (time.Duration, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid race time %q", raw)
}

// parsePlace coerces non-numeric places (PU, F, blank) to nil
func parsePlace(raw string) *int {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v != math.Trunc(v) || v < 1 {
		return nil
	}
	place := int(v)
	return &place
}
