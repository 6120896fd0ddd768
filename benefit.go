package main

import "math"

// Estimated-benefit rates by workflow area, applied to the transaction
// amount. Treated as fixed configuration data, not tax advice.
//
//   - rnd_sundries: refundable R&D tax offset rate (43.5%).
//   - deduction_review / reconciliation: small-business tax rate proxy (25%).
//   - fringe_benefits: FBT rate exposure (47%).
//   - division7a_loan: full deemed-dividend exposure, conservative (100%).
//   - documentation: non-monetary compliance item.
var benefitRates = map[string]float64{
	AreaRndSundries:     0.435,
	AreaDeductionReview: 0.25,
	AreaReconciliation:  0.25,
	AreaFringeBenefits:  0.47,
	AreaDivision7ALoan:  1.0,
	AreaDocumentation:   0,
}

// EstimateBenefit computes the estimated monetary benefit for a record
// routed to the given area. The base is the absolute transaction amount,
// falling back to the absolute claimable amount when the transaction
// amount is absent; the result is rounded to cents.
func EstimateBenefit(rec AnalysisRecord, area string) float64 {
	rate, ok := benefitRates[area]
	if !ok || rate == 0 {
		return 0
	}

	var base float64
	switch {
	case rec.TransactionAmount.Valid:
		base = math.Abs(rec.TransactionAmount.Float64)
	case rec.ClaimableAmount.Valid:
		base = math.Abs(rec.ClaimableAmount.Float64)
	default:
		return 0
	}

	return roundCents(base * rate)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
