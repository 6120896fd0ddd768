package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// analysisResultJSON mirrors one element of the upstream pass's results
// file. Optional numeric fields are pointers so absent and zero stay
// distinguishable.
type analysisResultJSON struct {
	TransactionID          string   `json:"transaction_id"`
	TransactionDate        string   `json:"transaction_date"`
	TransactionDescription string   `json:"transaction_description"`
	SupplierName           string   `json:"supplier_name"`
	FinancialYear          string   `json:"financial_year"`
	TransactionAmount      *float64 `json:"transaction_amount"`
	ClaimableAmount        *float64 `json:"claimable_amount"`

	PrimaryCategory    string   `json:"primary_category"`
	SecondaryCategory  string   `json:"secondary_category"`
	CategoryConfidence *float64 `json:"category_confidence"`

	DeductionType       string   `json:"deduction_type"`
	DeductionConfidence *float64 `json:"deduction_confidence"`
	IsFullyDeductible   bool     `json:"is_fully_deductible"`

	IsRndCandidate           bool     `json:"is_rnd_candidate"`
	MeetsDiv355Criteria      bool     `json:"meets_div355_criteria"`
	Div355OutcomeUnknown     bool     `json:"div355_outcome_unknown"`
	Div355SystematicApproach bool     `json:"div355_systematic_approach"`
	Div355NewKnowledge       bool     `json:"div355_new_knowledge"`
	Div355ScientificMethod   bool     `json:"div355_scientific_method"`
	RndConfidence            *float64 `json:"rnd_confidence"`
	RndActivityType          string   `json:"rnd_activity_type"`
	RndReasoning             string   `json:"rnd_reasoning"`

	FBTImplications       bool     `json:"fbt_implications"`
	Division7ARisk        bool     `json:"division7a_risk"`
	RequiresDocumentation bool     `json:"requires_documentation"`
	ComplianceNotes       []string `json:"compliance_notes"`
}

type analysisResultsFile struct {
	Results []analysisResultJSON `json:"results"`
}

// ImportResult tracks separate counters for each import outcome.
type ImportResult struct {
	Total          int
	Inserted       int
	AlreadyTracked int
	MissingID      int
}

// ImportAnalysisResults loads an upstream results JSON file into the
// analysis store for one tenant. Rows whose transaction is already tracked
// for the tenant are skipped, so re-importing the same file is harmless.
func ImportAnalysisResults(db *sql.DB, tenantID, path string) (ImportResult, error) {
	var result ImportResult

	data, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("read results file: %v", err)
	}
	var file analysisResultsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return result, fmt.Errorf("parse results file: %v", err)
	}

	result.Total = len(file.Results)

	var records []AnalysisRecord
	for _, r := range file.Results {
		if strings.TrimSpace(r.TransactionID) == "" {
			result.MissingID++
			continue
		}
		records = append(records, AnalysisRecord{
			TenantID:                 tenantID,
			TransactionID:            r.TransactionID,
			TransactionDate:          r.TransactionDate,
			TransactionDescription:   r.TransactionDescription,
			SupplierName:             r.SupplierName,
			FinancialYear:            r.FinancialYear,
			TransactionAmount:        nullFloat(r.TransactionAmount),
			ClaimableAmount:          nullFloat(r.ClaimableAmount),
			PrimaryCategory:          r.PrimaryCategory,
			SecondaryCategory:        r.SecondaryCategory,
			CategoryConfidence:       nullFloat(r.CategoryConfidence),
			DeductionType:            r.DeductionType,
			DeductionConfidence:      nullFloat(r.DeductionConfidence),
			IsFullyDeductible:        r.IsFullyDeductible,
			IsRndCandidate:           r.IsRndCandidate,
			MeetsDiv355Criteria:      r.MeetsDiv355Criteria,
			Div355OutcomeUnknown:     r.Div355OutcomeUnknown,
			Div355SystematicApproach: r.Div355SystematicApproach,
			Div355NewKnowledge:       r.Div355NewKnowledge,
			Div355ScientificMethod:   r.Div355ScientificMethod,
			RndConfidence:            nullFloat(r.RndConfidence),
			RndActivityType:          r.RndActivityType,
			RndReasoning:             r.RndReasoning,
			FBTImplications:          r.FBTImplications,
			Division7ARisk:           r.Division7ARisk,
			RequiresDocumentation:    r.RequiresDocumentation,
			ComplianceNotes:          strings.Join(r.ComplianceNotes, "; "),
		})
	}

	inserted, err := InsertAnalysisRecords(db, records)
	result.Inserted = inserted
	result.AlreadyTracked = len(records) - inserted
	if err != nil {
		return result, fmt.Errorf("store analysis records: %v", err)
	}

	log.Printf("import tenant=%s file=%s total=%d inserted=%d already=%d missing_id=%d",
		tenantID, path, result.Total, result.Inserted, result.AlreadyTracked, result.MissingID)
	return result, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
