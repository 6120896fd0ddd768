package main

import (
	"fmt"
	"strings"
)

// FindingStatusPending is the only status this engine ever writes. The
// review workflow owns every transition after insertion.
const FindingStatusPending = "pending"

// Per-area legislative references. Static configuration, loaded once;
// correctness of the citations themselves is out of scope.
var legislativeRefs = map[string][]string{
	AreaRndSundries: {
		"Division 355 ITAA 1997",
		"s 355-100 ITAA 1997 (refundable R&D tax offset)",
	},
	AreaDivision7ALoan: {
		"Division 7A ITAA 1936",
		"s 109D ITAA 1936 (loans treated as dividends)",
	},
	AreaFringeBenefits: {
		"Fringe Benefits Tax Assessment Act 1986",
		"s 136(1) FBTAA 1986 (fringe benefit definition)",
	},
	AreaDocumentation: {
		"s 262A ITAA 1936 (record keeping)",
		"Division 900 ITAA 1997 (substantiation)",
	},
	AreaDeductionReview: {
		"s 8-1 ITAA 1997 (general deductions)",
	},
	AreaReconciliation: {
		"s 8-1 ITAA 1997 (general deductions)",
		"TR 97/7 (meaning of incurred)",
	},
}

var suggestedActions = map[string]string{
	AreaRndSundries:     "Assess R&D tax incentive eligibility under Division 355 and register eligible activities",
	AreaDivision7ALoan:  "Review related-party transaction for Division 7A loan treatment and complying-loan terms",
	AreaFringeBenefits:  "Assess fringe benefits tax exposure and whether an employee contribution applies",
	AreaDocumentation:   "Obtain substantiation documents before the deduction is claimed",
	AreaDeductionReview: "Verify deductibility under s 8-1 before including in the return",
	AreaReconciliation:  "Reconcile the classification against source records",
}

var suggestedCategories = map[string]string{
	AreaRndSundries:     "R&D - Sundry expenses",
	AreaDivision7ALoan:  "Division 7A loan account",
	AreaFringeBenefits:  "Fringe benefits - review required",
	AreaDocumentation:   "Pending substantiation",
	AreaDeductionReview: "Deduction - review required",
	AreaReconciliation:  "Unreconciled",
}

// BuildFinding runs the router over one analysis record and, when the
// record is actionable, assembles the full pending finding: score,
// estimated benefit, narrative, and citations. Returns ok=false for
// not-actionable records.
func BuildFinding(rec AnalysisRecord, organizationID string) (Finding, bool) {
	area, ok := RouteArea(rec)
	if !ok {
		return Finding{}, false
	}

	confidence := ScoreConfidence(rec)

	var amount float64
	switch {
	case rec.TransactionAmount.Valid:
		amount = rec.TransactionAmount.Float64
	case rec.ClaimableAmount.Valid:
		amount = rec.ClaimableAmount.Float64
	}

	return Finding{
		OrganizationID:         organizationID,
		Area:                   area,
		Status:                 FindingStatusPending,
		TransactionID:          rec.TransactionID,
		TransactionDate:        rec.TransactionDate,
		TransactionDescription: rec.TransactionDescription,
		Amount:                 amount,
		CurrentCategory:        rec.PrimaryCategory,
		SuggestedCategory:      suggestedCategories[area],
		SuggestedAction:        suggestedActions[area],
		ConfidenceScore:        confidence.Score,
		ConfidenceLevel:        confidence.Level,
		ConfidenceFactors:      confidence.Factors,
		LegislativeRefs:        legislativeRefs[area],
		Reasoning:              buildReasoning(rec, area),
		FinancialYear:          rec.FinancialYear,
		EstimatedBenefit:       EstimateBenefit(rec, area),
	}, true
}

func buildReasoning(rec AnalysisRecord, area string) string {
	var parts []string

	switch area {
	case AreaRndSundries:
		lead := "Transaction flagged as an R&D candidate"
		if rec.MeetsDiv355Criteria {
			lead = "Transaction meets the Division 355 four-element test"
		}
		if rec.RndActivityType != "" {
			lead += fmt.Sprintf(" (%s)", rec.RndActivityType)
		}
		parts = append(parts, lead+".")
		if rec.RndReasoning != "" {
			parts = append(parts, rec.RndReasoning)
		}
	case AreaDivision7ALoan:
		parts = append(parts, "Transaction exhibits related-party loan characteristics with Division 7A exposure.")
	case AreaFringeBenefits:
		parts = append(parts, "Transaction has fringe benefits implications requiring FBT review.")
	case AreaDocumentation:
		parts = append(parts, "Deduction cannot be supported without substantiation documents.")
	case AreaDeductionReview:
		parts = append(parts, fmt.Sprintf(
			"Deduction confidence %.0f%% is below the %d%% review threshold.",
			rec.DeductionConfidence.Float64, deductionReviewThreshold))
	case AreaReconciliation:
		parts = append(parts, fmt.Sprintf(
			"Category confidence %.0f%% is below the %d%% reconciliation threshold for %q.",
			rec.CategoryConfidence.Float64, reconciliationThreshold, rec.PrimaryCategory))
	}

	if rec.ComplianceNotes != "" {
		parts = append(parts, "Compliance notes: "+rec.ComplianceNotes)
	}

	return strings.Join(parts, " ")
}
