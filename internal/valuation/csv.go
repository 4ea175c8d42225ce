// Package valuation provides sources of portfolio valuation series
// outside the snapshot database, currently CSV files exported by
// ingestion.
package valuation

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tathienbao/folio-sentinel/internal/types"
)

// CSVSource loads a valuation series from a CSV file.
// CSV format: date,value with an optional header row.
// Date format: 2006-01-02 or 2006-01-02 15:04:05.
type CSVSource struct {
	filePath string
	series   types.ValuationSeries
	loaded   bool
}

// NewCSVSource creates a source backed by the given file.
func NewCSVSource(filePath string) *CSVSource {
	return &CSVSource{filePath: filePath}
}

// GetValuationSeries loads the file on first use and returns the series
// restricted to [from, to]. The userID argument is ignored: a CSV file
// holds a single portfolio.
func (s *CSVSource) GetValuationSeries(ctx context.Context, _ string, from, to time.Time) (types.ValuationSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !s.loaded {
		if err := s.load(); err != nil {
			return nil, err
		}
	}

	return s.series.Window(from, to), nil
}

func (s *CSVSource) load() error {
	file, err := os.Open(s.filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	series, err := ParseCSV(file)
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}

	s.series = series
	s.loaded = true
	return nil
}

// ParseCSV reads date,value rows into a validated series. Rows must be
// in chronological order; a malformed row is an error, not skipped,
// because a silently dropped valuation would corrupt the drawdown
// analysis downstream.
func ParseCSV(r io.Reader) (types.ValuationSeries, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.TrimLeadingSpace = true

	series := make(types.ValuationSeries, 0)
	lineNum := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		lineNum++

		if lineNum == 1 && isHeader(record) {
			continue
		}

		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected date,value", lineNum)
		}

		point, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		series = append(series, point)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	return series, nil
}

func parseRecord(record []string) (types.ValuationPoint, error) {
	var point types.ValuationPoint

	date, err := parseDate(record[0])
	if err != nil {
		return point, fmt.Errorf("parse date: %w", err)
	}
	point.Date = date

	point.Value, err = decimal.NewFromString(record[1])
	if err != nil {
		return point, fmt.Errorf("parse value: %w", err)
	}

	return point, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return first == "date" || first == "timestamp"
}
