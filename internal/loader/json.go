package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ecko-analytics/market-cli/internal/scorer"
)

// ParseAreasJSON reads AreaRecords from a JSON file containing either a
// bare array of records or an object with an "areas" array.
func ParseAreasJSON(jsonPath string) ([]scorer.AreaRecord, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, eris.Wrap(err, "loader: read json")
	}

	var areas []scorer.AreaRecord
	if err := json.Unmarshal(data, &areas); err != nil {
		// Fall back to the wrapped form.
		var wrapper struct {
			Areas []scorer.AreaRecord `json:"areas"`
		}
		if werr := json.Unmarshal(data, &wrapper); werr != nil {
			return nil, eris.Wrap(err, "loader: parse json")
		}
		areas = wrapper.Areas
	}

	if len(areas) == 0 {
		return nil, eris.New("loader: no areas in json")
	}

	for i, a := range areas {
		if a.AreaID == "" {
			return nil, eris.Errorf("loader: area %d has no area_id", i)
		}
	}

	return areas, nil
}

// ParseAreas dispatches on the file extension: .csv or .json.
func ParseAreas(path string) ([]scorer.AreaRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseAreasCSV(path)
	case ".json":
		return ParseAreasJSON(path)
	default:
		return nil, eris.Errorf("loader: unsupported input format %q", filepath.Ext(path))
	}
}
