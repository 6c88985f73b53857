package scorer

// AreaRecord holds the already-resolved inputs for one geographic area
// (a ZIP code). Records are owned by the caller and never mutated.
// Pointer fields distinguish "missing" from a legitimate zero.
type AreaRecord struct {
	AreaID          string   `json:"area_id"`
	Population      int      `json:"population"`
	MedianIncome    *float64 `json:"median_income,omitempty"`
	RenterRate      *float64 `json:"renter_rate,omitempty"`
	LandAreaSqMi    *float64 `json:"land_area_sq_mi,omitempty"`
	CompetitorCount int      `json:"competitor_count"`
}

// DerivedMetrics holds per-area metrics computed from an AreaRecord.
// A nil value means the metric is undefined for this area (zero land
// area or zero population); downstream scorers treat nil as zero.
type DerivedMetrics struct {
	PopulationDensity       *float64 `json:"population_density,omitempty"`
	CompetitorDensityPer10K *float64 `json:"competitor_density_per_10k,omitempty"`
}

// AreaScore is the scoring result for a single area: the four component
// scores, the weighted composite, and batch-relative statistics.
//
// Percentile follows the source methodology's rank-based convention:
// percentile = (rank/n)*100 with rank 1 the best composite, so a LOWER
// percentile means a better area. This is deliberately not the
// cumulative-distribution convention.
type AreaScore struct {
	AreaID          string  `json:"area_id"`
	Population      int     `json:"population"`
	CompetitorCount int     `json:"competitor_count"`

	IncomeScore      float64 `json:"income_score"`
	RenterScore      float64 `json:"renter_score"`
	DensityScore     float64 `json:"density_score"`
	CompetitionScore float64 `json:"competition_score"`

	Composite  float64 `json:"composite"`
	Rank       int     `json:"rank"`
	ZScore     float64 `json:"z_score"`
	Percentile float64 `json:"percentile"`
	Passed     bool    `json:"passed"`
}

// BatchKPIs summarizes the composite-score distribution of one batch.
type BatchKPIs struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Stdev float64 `json:"stdev"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Result holds one batch's scored areas in ranked order plus the KPIs.
type Result struct {
	Areas []AreaScore `json:"areas"`
	KPIs  BatchKPIs   `json:"kpis"`
}

// TopN returns the n best-ranked areas. n <= 0 or n beyond the batch
// size returns the full ranked list.
func (r *Result) TopN(n int) []AreaScore {
	if n <= 0 || n >= len(r.Areas) {
		return r.Areas
	}
	return r.Areas[:n]
}
