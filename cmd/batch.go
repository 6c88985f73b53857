package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecko-analytics/market-cli/internal/config"
	"github.com/ecko-analytics/market-cli/internal/loader"
	"github.com/ecko-analytics/market-cli/internal/scorer"
)

var (
	batchOutputDir   string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch [input files...]",
	Short: "Score several input files concurrently",
	Long: `Score multiple area files (e.g. different counties) in parallel.

Each file is an independent batch: statistics are relative to its own
areas, and no state is shared between batches, so files are scored
concurrently. Results are written next to each input (or under
--output-dir) as <name>_scores.csv.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentFiles
		}
		return processBatch(cmd, args, concurrency, cfg.Scorer)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "", "directory for result files (default: next to each input)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max files scored in parallel (default from config)")
	rootCmd.AddCommand(batchCmd)
}

// processBatch scores each input file in its own goroutine. Individual
// file failures are logged and counted but do not abort the run.
func processBatch(cmd *cobra.Command, inputs []string, concurrency int, scorerCfg config.ScorerConfig) error {
	if err := scorer.ValidateConfig(scorerCfg); err != nil {
		return err
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("command", "batch"), zap.String("run_id", runID))

	log.Info("processing batch",
		zap.Int("files", len(inputs)),
		zap.Int("concurrency", concurrency),
	)

	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, input := range inputs {
		input := input
		g.Go(func() error {
			flog := log.With(zap.String("input", input))

			areas, err := loader.ParseAreas(input)
			if err != nil {
				failed.Add(1)
				flog.Error("parse failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			result, err := scorer.Score(areas, scorerCfg)
			if err != nil {
				failed.Add(1)
				flog.Error("scoring failed", zap.Error(err))
				return nil
			}

			outPath := batchOutputPath(input, batchOutputDir)
			if err := writeBatchResult(outPath, result); err != nil {
				failed.Add(1)
				flog.Error("write failed", zap.Error(err))
				return nil
			}

			succeeded.Add(1)
			flog.Info("file scored",
				zap.Int("areas", result.KPIs.Count),
				zap.Float64("top_score", result.KPIs.Max),
				zap.String("output", outPath),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	log.Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)

	if failed.Load() > 0 {
		return eris.Errorf("batch: %d of %d files failed", failed.Load(), len(inputs))
	}
	return nil
}

// batchOutputPath derives <name>_scores.csv from the input path,
// optionally relocated into outputDir.
func batchOutputPath(input, outputDir string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_scores.csv", stem)
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}

func writeBatchResult(path string, result *scorer.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "batch: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	return writeScoreCSV(f, result.Areas)
}
