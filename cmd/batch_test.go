package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecko-analytics/market-cli/internal/scorer"
)

func TestBatchOutputPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		outputDir string
		want      string
	}{
		{
			name:  "next to input",
			input: "/data/travis_county.csv",
			want:  "/data/travis_county_scores.csv",
		},
		{
			name:      "relocated to output dir",
			input:     "/data/travis_county.csv",
			outputDir: "/out",
			want:      "/out/travis_county_scores.csv",
		},
		{
			name:  "json input",
			input: "areas.json",
			want:  "areas_scores.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, batchOutputPath(tt.input, tt.outputDir))
		})
	}
}

func TestProcessBatch(t *testing.T) {
	dir := t.TempDir()
	writeBatchInput := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	good1 := writeBatchInput("travis.csv", "zip_code,population,median_income\n78701,44000,48000\n78702,50000,65000\n")
	good2 := writeBatchInput("harris.csv", "zip_code,population,median_income\n77002,30000,55000\n")
	bad := writeBatchInput("broken.csv", "zip_code,median_income\n78701,48000\n")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	outDir := t.TempDir()
	origOutputDir := batchOutputDir
	batchOutputDir = outDir
	defer func() { batchOutputDir = origOutputDir }()

	t.Run("all files succeed", func(t *testing.T) {
		err := processBatch(cmd, []string{good1, good2}, 2, scorer.DefaultScorerConfig())
		require.NoError(t, err)

		for _, name := range []string{"travis_scores.csv", "harris_scores.csv"} {
			data, err := os.ReadFile(filepath.Join(outDir, name))
			require.NoError(t, err)
			assert.Contains(t, string(data), "rank,zip_code,composite")
		}
	})

	t.Run("failed file reported but does not block others", func(t *testing.T) {
		err := processBatch(cmd, []string{good1, bad}, 2, scorer.DefaultScorerConfig())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 files failed")

		_, statErr := os.Stat(filepath.Join(outDir, "travis_scores.csv"))
		assert.NoError(t, statErr, "good file still written")
	})

	t.Run("invalid config rejected up front", func(t *testing.T) {
		cfg := scorer.DefaultScorerConfig()
		cfg.IncomeWeight = 0.9
		err := processBatch(cmd, []string{good1}, 1, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weights should sum to 1.0")
	})
}
