package main

import (
	"fmt"
	"strings"
	"testing"
)

func TestGenerateFindingsEndToEnd(t *testing.T) {
	db := newTestDB(t)

	rnd := testAnalysisRecord("tenant-1", "TXN-1")
	rnd.IsRndCandidate = true

	div7a := testAnalysisRecord("tenant-1", "TXN-2")
	div7a.Division7ARisk = true

	clean := testAnalysisRecord("tenant-1", "TXN-3") // category confidence 90, nothing flagged

	lowCat := testAnalysisRecord("tenant-1", "TXN-4")
	lowCat.CategoryConfidence = pct(30)

	if _, err := InsertAnalysisRecords(db, []AnalysisRecord{rnd, div7a, clean, lowCat}); err != nil {
		t.Fatalf("InsertAnalysisRecords failed: %v", err)
	}

	result, err := GenerateFindings(db, "tenant-1", "org-1", "")
	if err != nil {
		t.Fatalf("GenerateFindings failed: %v", err)
	}
	if result.Created != 3 {
		t.Fatalf("created=%d, want 3", result.Created)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped=%d, want 1", result.Skipped)
	}
	if result.ByArea[AreaRndSundries] != 1 || result.ByArea[AreaDivision7ALoan] != 1 || result.ByArea[AreaReconciliation] != 1 {
		t.Fatalf("byArea=%v", result.ByArea)
	}

	findings, err := GetFindingsByOrganization(db, "org-1")
	if err != nil {
		t.Fatalf("GetFindingsByOrganization failed: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("persisted %d findings, want 3", len(findings))
	}
	for _, f := range findings {
		if f.Status != FindingStatusPending {
			t.Fatalf("finding %s has status %q, want pending", f.TransactionID, f.Status)
		}
	}
}

func TestGenerateFindingsIdempotent(t *testing.T) {
	db := newTestDB(t)

	rec := testAnalysisRecord("tenant-1", "TXN-1")
	rec.IsRndCandidate = true
	if _, err := InsertAnalysisRecords(db, []AnalysisRecord{rec}); err != nil {
		t.Fatalf("InsertAnalysisRecords failed: %v", err)
	}

	first, err := GenerateFindings(db, "tenant-1", "org-1", "")
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Created != 1 {
		t.Fatalf("first run created=%d, want 1", first.Created)
	}

	second, err := GenerateFindings(db, "tenant-1", "org-1", "")
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Created != 0 {
		t.Fatalf("second run created=%d, want 0", second.Created)
	}
	if second.Skipped != 1 {
		t.Fatalf("second run skipped=%d, want 1", second.Skipped)
	}
}

func TestGenerateFindingsFinancialYearFilter(t *testing.T) {
	db := newTestDB(t)

	current := testAnalysisRecord("tenant-1", "TXN-1")
	current.IsRndCandidate = true

	prior := testAnalysisRecord("tenant-1", "TXN-2")
	prior.IsRndCandidate = true
	prior.FinancialYear = "FY2023-24"

	if _, err := InsertAnalysisRecords(db, []AnalysisRecord{current, prior}); err != nil {
		t.Fatalf("InsertAnalysisRecords failed: %v", err)
	}

	result, err := GenerateFindings(db, "tenant-1", "org-1", "FY2024-25")
	if err != nil {
		t.Fatalf("GenerateFindings failed: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("created=%d, want 1", result.Created)
	}

	findings, err := GetFindingsByOrganization(db, "org-1")
	if err != nil {
		t.Fatalf("GetFindingsByOrganization failed: %v", err)
	}
	if len(findings) != 1 || findings[0].TransactionID != "TXN-1" {
		t.Fatalf("unexpected findings %+v", findings)
	}
}

func TestGenerateFindingsOrganizationsAreIndependent(t *testing.T) {
	db := newTestDB(t)

	rec := testAnalysisRecord("tenant-1", "TXN-1")
	rec.IsRndCandidate = true
	if _, err := InsertAnalysisRecords(db, []AnalysisRecord{rec}); err != nil {
		t.Fatalf("InsertAnalysisRecords failed: %v", err)
	}

	if _, err := GenerateFindings(db, "tenant-1", "org-1", ""); err != nil {
		t.Fatalf("org-1 run failed: %v", err)
	}
	result, err := GenerateFindings(db, "tenant-1", "org-2", "")
	if err != nil {
		t.Fatalf("org-2 run failed: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("org-2 created=%d, want 1", result.Created)
	}
}

func TestGenerateFindingsManyRecordsSpanChunks(t *testing.T) {
	db := newTestDB(t)

	var records []AnalysisRecord
	for i := 0; i < findingChunkSize*2+15; i++ {
		rec := testAnalysisRecord("tenant-1", fmt.Sprintf("TXN-%04d", i))
		rec.RequiresDocumentation = true
		records = append(records, rec)
	}
	if _, err := InsertAnalysisRecords(db, records); err != nil {
		t.Fatalf("InsertAnalysisRecords failed: %v", err)
	}

	result, err := GenerateFindings(db, "tenant-1", "org-1", "")
	if err != nil {
		t.Fatalf("GenerateFindings failed: %v", err)
	}
	if result.Created != len(records) {
		t.Fatalf("created=%d, want %d", result.Created, len(records))
	}
	if result.ByArea[AreaDocumentation] != len(records) {
		t.Fatalf("byArea=%v", result.ByArea)
	}
}

func TestFormatGenerationSummary(t *testing.T) {
	empty := GenerateResult{Skipped: 12, ByArea: map[string]int{}}
	got := FormatGenerationSummary("Acme Pty Ltd", empty)
	if !strings.Contains(got, "no new findings") || !strings.Contains(got, "12") {
		t.Fatalf("unexpected summary %q", got)
	}

	result := GenerateResult{
		Created: 5,
		Skipped: 2,
		ByArea:  map[string]int{AreaRndSundries: 3, AreaDocumentation: 2},
	}
	got = FormatGenerationSummary("Acme Pty Ltd", result)
	if !strings.Contains(got, "5 new findings") {
		t.Fatalf("summary missing created count: %q", got)
	}
	if !strings.Contains(got, "documentation: 2, rnd_sundries: 3") {
		t.Fatalf("summary areas not sorted: %q", got)
	}
}
