package scorer

import (
	"math"
	"sort"
)

// annotateStatistics sorts scores by composite descending (stable, so
// ties keep input order), assigns 1-based ranks, and fills in the
// z-score and rank percentile for every area. Returns the batch KPIs.
//
// The sort mutates the slice in place; callers hand over the slice they
// built for this batch.
func annotateStatistics(scores []AreaScore) BatchKPIs {
	n := len(scores)
	if n == 0 {
		return BatchKPIs{}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Composite > scores[j].Composite
	})

	mean, stdev := meanStdev(scores)

	kpis := BatchKPIs{
		Count: n,
		Mean:  mean,
		Stdev: stdev,
		Min:   scores[n-1].Composite,
		Max:   scores[0].Composite,
	}

	for i := range scores {
		scores[i].Rank = i + 1
		scores[i].ZScore = zScore(scores[i].Composite, mean, stdev)
		scores[i].Percentile = float64(i+1) / float64(n) * 100
	}

	return kpis
}

// meanStdev computes the arithmetic mean and population standard
// deviation of the composite scores.
func meanStdev(scores []AreaScore) (mean, stdev float64) {
	n := float64(len(scores))

	var sum float64
	for i := range scores {
		sum += scores[i].Composite
	}
	mean = sum / n

	var sq float64
	for i := range scores {
		d := scores[i].Composite - mean
		sq += d * d
	}
	stdev = math.Sqrt(sq / n)

	return mean, stdev
}

// zScore returns (v - mean) / stdev, with the convention that a batch
// with no spread has z = 0 everywhere.
func zScore(v, mean, stdev float64) float64 {
	if stdev == 0 {
		return 0
	}
	return (v - mean) / stdev
}
