// Package loader parses already-resolved area records from CSV and JSON
// files. It is the hand-off boundary from the external data-acquisition
// collaborators; nothing here fetches or caches anything.
package loader

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ecko-analytics/market-cli/internal/scorer"
)

// ParseAreasCSV reads AreaRecords from a CSV file. Columns are matched
// by header name; blank cells become missing fields, never zeros, so
// the engine can apply its neutral-value fallbacks. Row order is
// preserved; it is the ranking tie-break.
func ParseAreasCSV(csvPath string) ([]scorer.AreaRecord, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, eris.Wrap(err, "loader: open csv")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "loader: read csv")
	}

	if len(records) < 2 {
		return nil, eris.New("loader: csv has no data rows")
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}

	requiredCols := []string{"zip_code", "population"}
	for _, col := range requiredCols {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Errorf("loader: missing required column %q", col)
		}
	}

	seen := make(map[string]bool)
	var areas []scorer.AreaRecord

	for i, row := range records[1:] {
		zip := getCol(row, colIdx, "zip_code")
		if zip == "" {
			continue
		}
		if seen[zip] {
			continue
		}
		seen[zip] = true

		pop, err := parseIntCol(row, colIdx, "population")
		if err != nil {
			return nil, eris.Wrapf(err, "loader: row %d", i+2)
		}
		comp, err := parseIntCol(row, colIdx, "competitor_count")
		if err != nil {
			return nil, eris.Wrapf(err, "loader: row %d", i+2)
		}

		rec := scorer.AreaRecord{
			AreaID:          zip,
			Population:      pop,
			CompetitorCount: comp,
		}

		if rec.MedianIncome, err = parseFloatCol(row, colIdx, "median_income"); err != nil {
			return nil, eris.Wrapf(err, "loader: row %d", i+2)
		}
		if rec.RenterRate, err = parseFloatCol(row, colIdx, "renter_rate"); err != nil {
			return nil, eris.Wrapf(err, "loader: row %d", i+2)
		}
		if rec.LandAreaSqMi, err = parseFloatCol(row, colIdx, "land_area_sq_mi"); err != nil {
			return nil, eris.Wrapf(err, "loader: row %d", i+2)
		}

		areas = append(areas, rec)
	}

	if len(areas) == 0 {
		return nil, eris.New("loader: no usable rows in csv")
	}

	return areas, nil
}

func getCol(row []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseIntCol returns 0 for an absent or blank cell.
func parseIntCol(row []string, colIdx map[string]int, name string) (int, error) {
	s := getCol(row, colIdx, name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Errorf("column %q: invalid integer %q", name, s)
	}
	return v, nil
}

// parseFloatCol returns nil for an absent or blank cell so downstream
// scoring can distinguish missing from zero.
func parseFloatCol(row []string, colIdx map[string]int, name string) (*float64, error) {
	s := getCol(row, colIdx, name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, eris.Errorf("column %q: invalid number %q", name, s)
	}
	return &v, nil
}
