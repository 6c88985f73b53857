package scorer

// DeriveMetrics computes the per-area derived metrics from one record.
// Pure; a zero or missing denominator yields a nil (undefined) metric
// instead of an error or a division by zero.
func DeriveMetrics(rec AreaRecord) DerivedMetrics {
	var m DerivedMetrics

	if rec.LandAreaSqMi != nil && *rec.LandAreaSqMi > 0 {
		d := float64(rec.Population) / *rec.LandAreaSqMi
		m.PopulationDensity = &d
	}

	if rec.Population > 0 {
		c := float64(rec.CompetitorCount) / float64(rec.Population) * 10_000
		m.CompetitorDensityPer10K = &c
	}

	return m
}

// batchAggregates holds the dataset-wide maxima the density and
// competition scorers normalize against. Recomputed for every batch;
// undefined per-area metrics count as zero toward the max.
type batchAggregates struct {
	maxPopulationDensity float64
	maxCompetitorDensity float64
}

// computeAggregates is pass 1 over the batch.
func computeAggregates(metrics []DerivedMetrics) batchAggregates {
	var agg batchAggregates
	for _, m := range metrics {
		if m.PopulationDensity != nil && *m.PopulationDensity > agg.maxPopulationDensity {
			agg.maxPopulationDensity = *m.PopulationDensity
		}
		if m.CompetitorDensityPer10K != nil && *m.CompetitorDensityPer10K > agg.maxCompetitorDensity {
			agg.maxCompetitorDensity = *m.CompetitorDensityPer10K
		}
	}
	return agg
}
