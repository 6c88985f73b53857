package scorer

import (
	"math"

	"go.uber.org/zap"

	"github.com/ecko-analytics/market-cli/internal/config"
)

// neutralScore is the fallback component score when an input is
// missing: unknown is assumed average rather than penalized.
const neutralScore = 50

// Score runs the full two-pass batch computation: derived metrics and
// batch aggregates first, then component scores, composites, and the
// batch-relative statistics. The result is a pure function of records
// and cfg; independent batches can be scored concurrently.
//
// Missing per-record fields never fail scoring (they degrade to the
// documented neutral values); the only error is an invalid config,
// rejected before any record is touched.
func Score(records []AreaRecord, cfg config.ScorerConfig) (*Result, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	// Pass 1: derived metrics and dataset-wide maxima.
	metrics := make([]DerivedMetrics, len(records))
	for i, rec := range records {
		metrics[i] = DeriveMetrics(rec)
	}
	agg := computeAggregates(metrics)

	// Pass 2: component scores and composites.
	scores := make([]AreaScore, len(records))
	for i, rec := range records {
		s := AreaScore{
			AreaID:          rec.AreaID,
			Population:      rec.Population,
			CompetitorCount: rec.CompetitorCount,

			IncomeScore:      scoreIncome(rec.MedianIncome, cfg.IncomeIdeal, cfg.IncomeSpread),
			RenterScore:      scoreRenter(rec.RenterRate),
			DensityScore:     scoreDensity(metrics[i].PopulationDensity, agg.maxPopulationDensity),
			CompetitionScore: scoreCompetition(metrics[i].CompetitorDensityPer10K, agg.maxCompetitorDensity),
		}
		s.Composite = combineComposite(s, cfg)
		s.Passed = s.Composite >= cfg.MinScore
		scores[i] = s
	}

	// Rank and annotate once every composite is known.
	kpis := annotateStatistics(scores)

	zap.L().Info("scorer: batch scoring complete",
		zap.Int("areas", kpis.Count),
		zap.Float64("mean", kpis.Mean),
		zap.Float64("top_score", kpis.Max),
	)

	return &Result{Areas: scores, KPIs: kpis}, nil
}

// scoreIncome maps median income onto a 0-100 Gaussian centered on the
// ideal: exactly 100 at income == ideal, symmetric decay either side.
// Missing income scores neutral.
func scoreIncome(income *float64, ideal, spread float64) float64 {
	if income == nil {
		return neutralScore
	}
	d := *income - ideal
	return clamp100(100 * math.Exp(-(d*d)/(2*spread*spread)))
}

// scoreRenter is linear in the renter share. Missing rate scores neutral.
func scoreRenter(rate *float64) float64 {
	if rate == nil {
		return neutralScore
	}
	return clamp100(*rate * 100)
}

// scoreDensity max-normalizes population density over the batch. The
// densest area scores 100; an all-zero batch scores neutral everywhere
// instead of hitting 0/0.
func scoreDensity(density *float64, maxDensity float64) float64 {
	if maxDensity <= 0 {
		return neutralScore
	}
	d := 0.0
	if density != nil {
		d = *density
	}
	return clamp100(d / maxDensity * 100)
}

// scoreCompetition inverse-normalizes competitor density with the
// headroom factor. Zero competition everywhere saturates to 100.
func scoreCompetition(compDensity *float64, maxCompDensity float64) float64 {
	if maxCompDensity <= 0 {
		return 100
	}
	c := 0.0
	if compDensity != nil {
		c = *compDensity
	}
	return clamp100(100 * (1 - c/(maxCompDensity*competitionHeadroom)))
}

// combineComposite applies the weight vector. The clamp is a safety net
// against misconfigured weights; with a unit weight sum it is a no-op.
func combineComposite(s AreaScore, cfg config.ScorerConfig) float64 {
	total := s.IncomeScore*cfg.IncomeWeight +
		s.RenterScore*cfg.RenterWeight +
		s.DensityScore*cfg.DensityWeight +
		s.CompetitionScore*cfg.CompetitionWeight
	return clamp100(total)
}

func clamp100(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
