package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecko-analytics/market-cli/internal/config"
	"github.com/ecko-analytics/market-cli/internal/loader"
	"github.com/ecko-analytics/market-cli/internal/scorer"
)

// underservedCompetitors is the competitor count below which a market
// counts as underserved in the insights export.
const underservedCompetitors = 3

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score market areas from an input file",
	Long: `Score ZIP-code areas from a CSV or JSON file of resolved area records.

Each area gets four 0-100 component scores (income fit, renter share,
population density, inverse competition density), a weighted composite,
and batch-relative rank, z-score, and percentile. Percentiles are
rank-based: lower percentile = better area.

Expected CSV columns: zip_code, population, median_income, renter_rate,
land_area_sq_mi, competitor_count. Blank cells are treated as missing
and scored with the documented neutral values.

Examples:
  # Score a county's ZIP file, show the top 10 as a table
  market-cli score --input travis_county.csv

  # Custom weights, export everything to CSV
  market-cli score --input areas.csv --income-weight 0.4 --renter-weight 0.2 \
    --density-weight 0.2 --competition-weight 0.2 --format csv --output scores.csv

  # Write the dashboard insights JSON alongside the table
  market-cli score --input areas.json --insights insights.json`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("input", "", "input file of area records (.csv or .json)")
	f.Float64("income-weight", 0, "income component weight (overrides config)")
	f.Float64("renter-weight", 0, "renter component weight (overrides config)")
	f.Float64("density-weight", 0, "density component weight (overrides config)")
	f.Float64("competition-weight", 0, "competition component weight (overrides config)")
	f.Float64("income-ideal", 0, "income score peak, dollars (overrides config)")
	f.Float64("income-spread", 0, "income score spread, dollars (overrides config)")
	f.Float64("min-score", 0, "high-opportunity threshold (overrides config)")
	f.Int("top", 0, "number of areas to display (0=use config default, -1=all)")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table, csv, or json")
	f.String("insights", "", "write analysis insights JSON to this path")
	_ = scoreCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	log := zap.L().With(zap.String("command", "score"))

	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	insightsPath, _ := cmd.Flags().GetString("insights")

	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("score: --format must be table, csv, or json (got %q)", format)
	}

	// Build scorer config from global config with CLI overrides, and
	// reject a bad weight vector before touching the batch.
	scorerCfg := applyScorerOverrides(cmd, cfg.Scorer)
	if err := scorer.ValidateConfig(scorerCfg); err != nil {
		return err
	}

	areas, err := loader.ParseAreas(inputPath)
	if err != nil {
		return eris.Wrapf(err, "score: parse %s", inputPath)
	}

	log.Info("scoring areas",
		zap.String("input", inputPath),
		zap.Int("areas", len(areas)),
	)

	result, err := scorer.Score(areas, scorerCfg)
	if err != nil {
		return eris.Wrap(err, "score: batch scoring")
	}

	topN, _ := cmd.Flags().GetInt("top")
	if topN == 0 {
		topN = scorerCfg.TopN
	}
	display := result.TopN(topN)

	if err := outputScoreResults(display, result.KPIs, format, outputPath); err != nil {
		return err
	}

	if insightsPath != "" {
		if err := writeInsights(insightsPath, result); err != nil {
			return eris.Wrap(err, "score: write insights")
		}
		fmt.Printf("Insights written to %s\n", insightsPath)
	}

	if format == "table" && outputPath == "" {
		printScoreSummary(result)
	}

	return nil
}

// applyScorerOverrides returns a copy of the base config with CLI flag
// overrides applied.
func applyScorerOverrides(cmd *cobra.Command, base config.ScorerConfig) config.ScorerConfig {
	c := base

	if v, _ := cmd.Flags().GetFloat64("income-weight"); v > 0 {
		c.IncomeWeight = v
	}
	if v, _ := cmd.Flags().GetFloat64("renter-weight"); v > 0 {
		c.RenterWeight = v
	}
	if v, _ := cmd.Flags().GetFloat64("density-weight"); v > 0 {
		c.DensityWeight = v
	}
	if v, _ := cmd.Flags().GetFloat64("competition-weight"); v > 0 {
		c.CompetitionWeight = v
	}
	if v, _ := cmd.Flags().GetFloat64("income-ideal"); v > 0 {
		c.IncomeIdeal = v
	}
	if v, _ := cmd.Flags().GetFloat64("income-spread"); v > 0 {
		c.IncomeSpread = v
	}
	if v, _ := cmd.Flags().GetFloat64("min-score"); v > 0 {
		c.MinScore = v
	}

	return c
}

func printScoreSummary(result *scorer.Result) {
	k := result.KPIs
	if k.Count == 0 {
		fmt.Println("No results.")
		return
	}

	var passed, underserved int
	for _, a := range result.Areas {
		if a.Passed {
			passed++
		}
		if a.CompetitorCount < underservedCompetitors {
			underserved++
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Areas scored:       %d\n", k.Count)
	fmt.Printf("High opportunity:   %d\n", passed)
	fmt.Printf("Underserved:        %d\n", underserved)
	fmt.Printf("Score range:        %.1f - %.1f\n", k.Min, k.Max)
	fmt.Printf("Average score:      %.1f (stdev %.1f)\n", k.Mean, k.Stdev)
}

func outputScoreResults(areas []scorer.AreaScore, kpis scorer.BatchKPIs, format, outputPath string) error {
	var w *os.File
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "csv":
		return writeScoreCSV(w, areas)
	case "json":
		return writeScoreJSON(w, areas, kpis)
	case "table":
		return writeScoreTable(w, areas)
	default:
		return eris.Errorf("score: unsupported format %q", format)
	}
}

func writeScoreCSV(w *os.File, areas []scorer.AreaScore) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"rank", "zip_code", "composite", "income_score", "renter_score",
		"density_score", "competition_score", "z_score", "percentile",
		"population", "competitor_count",
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "score: write CSV header")
	}

	for _, a := range areas {
		row := []string{
			fmt.Sprintf("%d", a.Rank),
			a.AreaID,
			fmt.Sprintf("%.2f", a.Composite),
			fmt.Sprintf("%.2f", a.IncomeScore),
			fmt.Sprintf("%.2f", a.RenterScore),
			fmt.Sprintf("%.2f", a.DensityScore),
			fmt.Sprintf("%.2f", a.CompetitionScore),
			fmt.Sprintf("%.3f", a.ZScore),
			fmt.Sprintf("%.1f", a.Percentile),
			fmt.Sprintf("%d", a.Population),
			fmt.Sprintf("%d", a.CompetitorCount),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "score: write CSV row")
		}
	}
	return nil
}

func writeScoreJSON(w *os.File, areas []scorer.AreaScore, kpis scorer.BatchKPIs) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	out := scorer.Result{Areas: areas, KPIs: kpis}
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "score: encode JSON")
	}
	return nil
}

func writeScoreTable(w *os.File, areas []scorer.AreaScore) error {
	header := fmt.Sprintf("%-5s %-8s %9s %7s %7s %7s %7s %7s %6s\n",
		"Rank", "ZIP", "Score", "Income", "Renter", "Dens", "Comp", "Z", "Pctl")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 70)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for _, a := range areas {
		line := fmt.Sprintf("%-5d %-8s %9.1f %7.1f %7.1f %7.1f %7.1f %7.2f %6.1f\n",
			a.Rank, a.AreaID, a.Composite, a.IncomeScore, a.RenterScore,
			a.DensityScore, a.CompetitionScore, a.ZScore, a.Percentile)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

// insights mirrors the analysis-insights document the dashboard layer
// consumes.
type insights struct {
	AnalysisDate       string            `json:"analysis_date"`
	TotalAreas         int               `json:"total_areas"`
	UnderservedMarkets int               `json:"underserved_markets"`
	HighOpportunity    int               `json:"high_opportunity"`
	AvgScore           float64           `json:"avg_score"`
	TopAreas           []scorer.AreaScore `json:"top_areas"`
}

func writeInsights(path string, result *scorer.Result) error {
	var underserved, high int
	for _, a := range result.Areas {
		if a.CompetitorCount < underservedCompetitors {
			underserved++
		}
		if a.Passed {
			high++
		}
	}

	doc := insights{
		AnalysisDate:       time.Now().Format(time.RFC3339),
		TotalAreas:         result.KPIs.Count,
		UnderservedMarkets: underserved,
		HighOpportunity:    high,
		AvgScore:           result.KPIs.Mean,
		TopAreas:           result.TopN(5),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal insights")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "write insights file")
	}

	zap.L().Info("insights written",
		zap.String("path", path),
		zap.Int("high_opportunity", high),
		zap.Int("underserved", underserved),
	)
	return nil
}
