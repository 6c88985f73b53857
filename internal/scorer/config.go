// Package scorer implements the ZIP-level market opportunity scoring engine.
package scorer

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ecko-analytics/market-cli/internal/config"
)

// competitionHeadroom widens the competition normalization so the most
// saturated area still scores above zero (100 * (1 - 1/1.2) ~= 16.7)
// and relative ordering survives at the top of the range.
const competitionHeadroom = 1.2

// weightSumTolerance is the allowed drift of the weight sum from 1.0.
const weightSumTolerance = 0.01

// DefaultScorerConfig returns a config.ScorerConfig with the standard
// methodology weights (sum = 1.0) and income curve parameters.
func DefaultScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		IncomeWeight:      0.25,
		RenterWeight:      0.30,
		DensityWeight:     0.25,
		CompetitionWeight: 0.20,

		IncomeIdeal:  50_000,
		IncomeSpread: 40_000,

		TopN:     10,
		MinScore: 75,
	}
}

// WeightSum returns the sum of the four component weights.
func WeightSum(c config.ScorerConfig) float64 {
	return c.IncomeWeight + c.RenterWeight + c.DensityWeight + c.CompetitionWeight
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
// Composite scores are only guaranteed to land on [0,100] when the
// weights sum to 1.0, so a drifted weight vector is rejected here,
// before any batch is processed, rather than silently renormalized.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	weights := []struct {
		name  string
		value float64
	}{
		{"income_weight", c.IncomeWeight},
		{"renter_weight", c.RenterWeight},
		{"density_weight", c.DensityWeight},
		{"competition_weight", c.CompetitionWeight},
	}
	for _, w := range weights {
		if w.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", w.name))
		}
	}

	sum := WeightSum(c)
	if math.Abs(sum-1.0) > weightSumTolerance {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.3f", sum))
	}

	if c.IncomeIdeal < 0 {
		errs = append(errs, "income_ideal must be >= 0")
	}
	if c.IncomeSpread <= 0 {
		errs = append(errs, "income_spread must be > 0")
	}

	if c.MinScore < 0 || c.MinScore > 100 {
		errs = append(errs, "min_score must be between 0 and 100")
	}
	if c.TopN < 0 {
		errs = append(errs, "top_n must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
