package main

// Workflow areas. Closed set; every finding carries exactly one.
const (
	AreaRndSundries     = "rnd_sundries"
	AreaDivision7ALoan  = "division7a_loan"
	AreaFringeBenefits  = "fringe_benefits"
	AreaDocumentation   = "documentation"
	AreaDeductionReview = "deduction_review"
	AreaReconciliation  = "reconciliation"
)

// AllAreas lists every workflow area in routing-priority order.
var AllAreas = []string{
	AreaRndSundries,
	AreaDivision7ALoan,
	AreaFringeBenefits,
	AreaDocumentation,
	AreaDeductionReview,
	AreaReconciliation,
}

const (
	deductionReviewThreshold = 80 // deduction confidence below this needs review
	reconciliationThreshold  = 50 // category confidence below this needs reconciliation
)

// RouteArea maps one analysis record to its workflow area, first matching
// rule wins. R&D eligibility and Division 7A exposure outrank the generic
// review buckets, so a record matching several rules lands in the
// higher-stakes one and never appears twice. Returns ok=false when the
// record is not actionable.
func RouteArea(rec AnalysisRecord) (string, bool) {
	switch {
	case rec.IsRndCandidate || rec.MeetsDiv355Criteria:
		return AreaRndSundries, true
	case rec.Division7ARisk:
		return AreaDivision7ALoan, true
	case rec.FBTImplications:
		return AreaFringeBenefits, true
	case rec.RequiresDocumentation:
		return AreaDocumentation, true
	case rec.IsFullyDeductible && rec.DeductionConfidence.Valid && rec.DeductionConfidence.Float64 < deductionReviewThreshold:
		return AreaDeductionReview, true
	case rec.CategoryConfidence.Valid && rec.CategoryConfidence.Float64 < reconciliationThreshold:
		return AreaReconciliation, true
	}
	return "", false
}
