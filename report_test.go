package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func TestWriteAccountantReports(t *testing.T) {
	dir := t.TempDir()

	rnd := testAnalysisRecord("tenant-1", "TXN-1")
	rnd.IsRndCandidate = true
	rnd.MeetsDiv355Criteria = true
	rnd.RndActivityType = "experimental development"
	rnd.ClaimableAmount = pct(1200)

	fbt := testAnalysisRecord("tenant-1", "TXN-2")
	fbt.FBTImplications = true
	fbt.ClaimableAmount = pct(90)

	div7a := testAnalysisRecord("tenant-1", "TXN-3")
	div7a.Division7ARisk = true

	plain := testAnalysisRecord("tenant-1", "TXN-4")
	plain.ClaimableAmount = pct(2500)

	records := []AnalysisRecord{rnd, fbt, div7a, plain}

	stats, err := WriteAccountantReports(records, "Acme", dir)
	if err != nil {
		t.Fatalf("WriteAccountantReports failed: %v", err)
	}
	if stats.TotalTransactions != 4 {
		t.Fatalf("total=%d, want 4", stats.TotalTransactions)
	}
	if stats.HighValue != 2 || stats.RndCandidates != 1 || stats.FBTIssues != 1 || stats.Div7AIssues != 1 {
		t.Fatalf("stats=%+v", stats)
	}

	expected := []string{
		"Acme_All_Transactions.csv",
		"Acme_High_Value_Deductions.csv",
		"Acme_RnD_Candidates.csv",
		"Acme_FBT_Review_Required.csv",
		"Acme_Division7A_Review.csv",
		"Acme_Summary_By_FY.csv",
		"Acme_By_Category.csv",
	}
	for _, name := range expected {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing report %s: %v", name, err)
		}
	}

	master := readCSVFile(t, filepath.Join(dir, "Acme_All_Transactions.csv"))
	if len(master) != 5 { // header + 4 records
		t.Fatalf("master has %d rows, want 5", len(master))
	}
	if master[0][0] != "Financial Year" {
		t.Fatalf("master header=%v", master[0])
	}

	// High-value rows are sorted by claimable amount, largest first.
	highValue := readCSVFile(t, filepath.Join(dir, "Acme_High_Value_Deductions.csv"))
	if len(highValue) != 3 {
		t.Fatalf("high value has %d rows, want 3", len(highValue))
	}
	if highValue[1][9] != "TXN-4" || highValue[2][9] != "TXN-1" {
		t.Fatalf("high value order: %v / %v", highValue[1], highValue[2])
	}

	rndRows := readCSVFile(t, filepath.Join(dir, "Acme_RnD_Candidates.csv"))
	if len(rndRows) != 2 {
		t.Fatalf("rnd report has %d rows, want 2", len(rndRows))
	}
	if rndRows[1][4] != "experimental development" || rndRows[1][6] != "Yes" {
		t.Fatalf("rnd row=%v", rndRows[1])
	}

	fbtRows := readCSVFile(t, filepath.Join(dir, "Acme_FBT_Review_Required.csv"))
	if len(fbtRows) != 2 || fbtRows[1][7] != "TXN-2" {
		t.Fatalf("fbt rows=%v", fbtRows)
	}

	summary := readCSVFile(t, filepath.Join(dir, "Acme_Summary_By_FY.csv"))
	if len(summary) != 2 {
		t.Fatalf("fy summary has %d rows, want 2", len(summary))
	}
	if summary[1][0] != "FY2024-25" || summary[1][1] != "4" {
		t.Fatalf("fy summary row=%v", summary[1])
	}
	if summary[1][2] != "$4,000.00" {
		t.Fatalf("fy total=%q", summary[1][2])
	}
}

func TestWriteAccountantReportsEmpty(t *testing.T) {
	dir := t.TempDir()
	stats, err := WriteAccountantReports(nil, "Empty", dir)
	if err != nil {
		t.Fatalf("WriteAccountantReports failed: %v", err)
	}
	if stats.TotalTransactions != 0 {
		t.Fatalf("stats=%+v", stats)
	}

	master := readCSVFile(t, filepath.Join(dir, "Empty_All_Transactions.csv"))
	if len(master) != 1 {
		t.Fatalf("empty master has %d rows, want header only", len(master))
	}
}

func TestCategorySummaryOrdersByClaimable(t *testing.T) {
	dir := t.TempDir()

	small := testAnalysisRecord("tenant-1", "TXN-1")
	small.PrimaryCategory = "Travel"
	small.ClaimableAmount = pct(100)

	big := testAnalysisRecord("tenant-1", "TXN-2")
	big.PrimaryCategory = "Equipment"
	big.ClaimableAmount = pct(9000)

	if _, err := WriteAccountantReports([]AnalysisRecord{small, big}, "Acme", dir); err != nil {
		t.Fatalf("WriteAccountantReports failed: %v", err)
	}

	rows := readCSVFile(t, filepath.Join(dir, "Acme_By_Category.csv"))
	if len(rows) != 3 {
		t.Fatalf("category summary has %d rows, want 3", len(rows))
	}
	if rows[1][0] != "Equipment" || rows[2][0] != "Travel" {
		t.Fatalf("category order: %v / %v", rows[1], rows[2])
	}
	if rows[1][3] != "$9,000.00" {
		t.Fatalf("claimable=%q", rows[1][3])
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{12.5, "$12.50"},
		{999.99, "$999.99"},
		{1000, "$1,000.00"},
		{1234567.891, "$1,234,567.89"},
		{-4321.5, "-$4,321.50"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Fatalf("formatMoney(%v)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a longer string", 8); got != "a longer" {
		t.Fatalf("got %q", got)
	}
}

func TestNullAmount(t *testing.T) {
	if got := nullAmount(pct(1234.5)); got != "1234.5" {
		t.Fatalf("got %q", got)
	}
	if got := nullAmount(pct(-180)); got != "-180" {
		t.Fatalf("got %q", got)
	}
	if got := nullAmount(nullFloat(nil)); got != "" {
		t.Fatalf("got %q", got)
	}
}
