package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecko-analytics/market-cli/internal/scorer"
)

func TestApplyScorerOverrides(t *testing.T) {
	base := scorer.DefaultScorerConfig()

	t.Run("no flags keeps base", func(t *testing.T) {
		got := applyScorerOverrides(scoreCmd, base)
		assert.Equal(t, base, got)
	})

	t.Run("flag overrides", func(t *testing.T) {
		require.NoError(t, scoreCmd.Flags().Set("income-weight", "0.4"))
		require.NoError(t, scoreCmd.Flags().Set("income-ideal", "62000"))
		require.NoError(t, scoreCmd.Flags().Set("min-score", "60"))
		defer func() {
			_ = scoreCmd.Flags().Set("income-weight", "0")
			_ = scoreCmd.Flags().Set("income-ideal", "0")
			_ = scoreCmd.Flags().Set("min-score", "0")
		}()

		got := applyScorerOverrides(scoreCmd, base)
		assert.InDelta(t, 0.4, got.IncomeWeight, 1e-9)
		assert.InDelta(t, 62000, got.IncomeIdeal, 1e-9)
		assert.InDelta(t, 60, got.MinScore, 1e-9)
		// Untouched fields keep base values.
		assert.InDelta(t, base.RenterWeight, got.RenterWeight, 1e-9)
	})
}

func scoredFixture(t *testing.T) *scorer.Result {
	t.Helper()
	records := []scorer.AreaRecord{
		{AreaID: "78701", Population: 44000, MedianIncome: f64(48000), RenterRate: f64(0.75), LandAreaSqMi: f64(4.0)},
		{AreaID: "78702", Population: 50000, MedianIncome: f64(65000), RenterRate: f64(0.75), LandAreaSqMi: f64(2.5), CompetitorCount: 2},
	}
	result, err := scorer.Score(records, scorer.DefaultScorerConfig())
	require.NoError(t, err)
	return result
}

func f64(v float64) *float64 { return &v }

func TestWriteScoreCSV(t *testing.T) {
	result := scoredFixture(t)
	path := filepath.Join(t.TempDir(), "scores.csv")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, writeScoreCSV(f, result.Areas))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header plus two rows")
	assert.True(t, strings.HasPrefix(lines[0], "rank,zip_code,composite"))
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
	assert.True(t, strings.HasPrefix(lines[2], "2,"))
}

func TestWriteScoreTable(t *testing.T) {
	result := scoredFixture(t)
	path := filepath.Join(t.TempDir(), "scores.txt")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, writeScoreTable(f, result.Areas))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Rank")
	assert.Contains(t, out, "78701")
	assert.Contains(t, out, "78702")
}

func TestWriteScoreJSON(t *testing.T) {
	result := scoredFixture(t)
	path := filepath.Join(t.TempDir(), "scores.json")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, writeScoreJSON(f, result.Areas, result.KPIs))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded scorer.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Areas, 2)
	assert.Equal(t, 2, decoded.KPIs.Count)
}

func TestWriteInsights(t *testing.T) {
	result := scoredFixture(t)
	path := filepath.Join(t.TempDir(), "insights.json")

	require.NoError(t, writeInsights(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc insights
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.TotalAreas)
	assert.Equal(t, 2, doc.UnderservedMarkets, "both fixture areas have < 3 competitors")
	assert.NotEmpty(t, doc.AnalysisDate)
	assert.Len(t, doc.TopAreas, 2)
	assert.InDelta(t, result.KPIs.Mean, doc.AvgScore, 1e-9)
}
