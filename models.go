package main

import (
	"database/sql"
	"fmt"
	"time"
)

// AnalysisRecord is one row of the upstream AI classification pass, one per
// transaction per pass. The engine treats these as read-only; field names
// mirror the upstream JSON schema.
type AnalysisRecord struct {
	ID                     int64
	TenantID               string
	TransactionID          string
	TransactionDate        string
	TransactionDescription string
	SupplierName           string
	FinancialYear          string // empty when the upstream pass could not assign one
	TransactionAmount      sql.NullFloat64
	ClaimableAmount        sql.NullFloat64

	PrimaryCategory    string
	SecondaryCategory  string
	CategoryConfidence sql.NullFloat64 // 0-100

	DeductionType       string
	DeductionConfidence sql.NullFloat64 // 0-100
	IsFullyDeductible   bool

	IsRndCandidate           bool
	MeetsDiv355Criteria      bool
	Div355OutcomeUnknown     bool
	Div355SystematicApproach bool
	Div355NewKnowledge       bool
	Div355ScientificMethod   bool
	RndConfidence            sql.NullFloat64 // 0-100
	RndActivityType          string
	RndReasoning             string

	FBTImplications       bool
	Division7ARisk        bool
	RequiresDocumentation bool
	ComplianceNotes       string // "; "-joined upstream notes

	CreatedAt time.Time
}

// Finding is one persisted review item. Created exclusively by the
// generation run with status "pending"; status transitions afterwards
// belong to the review workflow, not this engine.
type Finding struct {
	ID                     int64
	OrganizationID         string
	Area                   string
	Status                 string
	TransactionID          string
	TransactionDate        string
	TransactionDescription string
	Amount                 float64
	CurrentCategory        string
	SuggestedCategory      string
	SuggestedAction        string
	ConfidenceScore        int
	ConfidenceLevel        string
	ConfidenceFactors      []ConfidenceFactor
	LegislativeRefs        []string
	Reasoning              string
	FinancialYear          string
	EstimatedBenefit       float64
	CreatedAt              time.Time
}

// FindingKey is the dedup key: one finding per (transaction, organization,
// area) triple, across runs and within a run.
type FindingKey struct {
	TransactionID  string
	OrganizationID string
	Area           string
}

func (f Finding) Key() FindingKey {
	return FindingKey{
		TransactionID:  f.TransactionID,
		OrganizationID: f.OrganizationID,
		Area:           f.Area,
	}
}

// ConfidenceFactor is one weighted contributor to a finding's confidence
// score. Contribution carries the 0-100 numeric value separately from the
// display label so scoring never parses display text.
type ConfidenceFactor struct {
	Label        string  `json:"label"`
	Polarity     string  `json:"polarity"` // "positive" or "negative"
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// FinancialYearAt returns the Australian financial-year label containing t,
// e.g. "FY2024-25" for any date from 1 July 2024 through 30 June 2025.
func FinancialYearAt(t time.Time) string {
	start := t.Year()
	if t.Month() < time.July {
		start--
	}
	return fmt.Sprintf("FY%d-%02d", start, (start+1)%100)
}

// CurrentFinancialYear returns the label for the financial year in progress.
func CurrentFinancialYear(loc *time.Location) string {
	return FinancialYearAt(time.Now().In(loc))
}
