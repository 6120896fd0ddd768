package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ReportStats summarizes one accountant report run.
type ReportStats struct {
	TotalTransactions int
	HighValue         int
	RndCandidates     int
	FBTIssues         int
	Div7AIssues       int
}

const highValueThreshold = 500 // claimable amount above this goes in the priority report

// WriteAccountantReports writes the accountant-verification CSV set for one
// tenant: a master transaction list plus the high-value, R&D, FBT and
// Division 7A review lists and two summaries. The files are meant to be
// cross-referenced with the ledger, so every row carries the transaction id.
func WriteAccountantReports(records []AnalysisRecord, companyName, outputDir string) (ReportStats, error) {
	var stats ReportStats
	stats.TotalTransactions = len(records)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return stats, err
	}

	if err := writeMasterReport(records, companyName, outputDir); err != nil {
		return stats, err
	}

	highValue := filterRecords(records, func(r AnalysisRecord) bool {
		return r.ClaimableAmount.Valid && r.ClaimableAmount.Float64 > highValueThreshold
	})
	sort.SliceStable(highValue, func(i, j int) bool {
		return highValue[i].ClaimableAmount.Float64 > highValue[j].ClaimableAmount.Float64
	})
	stats.HighValue = len(highValue)
	if err := writeHighValueReport(highValue, companyName, outputDir); err != nil {
		return stats, err
	}

	rnd := filterRecords(records, func(r AnalysisRecord) bool { return r.IsRndCandidate })
	sort.SliceStable(rnd, func(i, j int) bool {
		return math.Abs(rnd[i].TransactionAmount.Float64) > math.Abs(rnd[j].TransactionAmount.Float64)
	})
	stats.RndCandidates = len(rnd)
	if err := writeRndReport(rnd, companyName, outputDir); err != nil {
		return stats, err
	}

	fbt := filterRecords(records, func(r AnalysisRecord) bool { return r.FBTImplications })
	stats.FBTIssues = len(fbt)
	if err := writeReviewListReport(fbt, companyName, "FBT_Review_Required", outputDir); err != nil {
		return stats, err
	}

	div7a := filterRecords(records, func(r AnalysisRecord) bool { return r.Division7ARisk })
	stats.Div7AIssues = len(div7a)
	if err := writeReviewListReport(div7a, companyName, "Division7A_Review", outputDir); err != nil {
		return stats, err
	}

	if err := writeFYSummaryReport(records, companyName, outputDir); err != nil {
		return stats, err
	}
	if err := writeCategorySummaryReport(records, companyName, outputDir); err != nil {
		return stats, err
	}

	return stats, nil
}

func writeCSV(outputDir, companyName, reportName string, header []string, rows [][]string) error {
	path := filepath.Join(outputDir, fmt.Sprintf("%s_%s.csv", companyName, reportName))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeMasterReport(records []AnalysisRecord, companyName, outputDir string) error {
	header := []string{
		"Financial Year", "Date", "Transaction ID", "Supplier", "Amount",
		"Description", "Category", "Category Confidence",
		"Deduction Type", "Claimable Amount", "Fully Deductible",
		"R&D Candidate", "R&D Confidence", "R&D Reasoning",
		"FBT Risk", "Div7A Risk", "Requires Documentation",
		"Compliance Notes",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.FinancialYear,
			r.TransactionDate,
			r.TransactionID,
			r.SupplierName,
			nullAmount(r.TransactionAmount),
			truncate(r.TransactionDescription, 100),
			r.PrimaryCategory,
			nullAmount(r.CategoryConfidence),
			r.DeductionType,
			nullAmount(r.ClaimableAmount),
			yesNo(r.IsFullyDeductible),
			yesNo(r.IsRndCandidate),
			nullAmount(r.RndConfidence),
			truncate(r.RndReasoning, 150),
			reviewFlag(r.FBTImplications),
			reviewFlag(r.Division7ARisk),
			yesNo(r.RequiresDocumentation),
			truncate(r.ComplianceNotes, 200),
		})
	}
	return writeCSV(outputDir, companyName, "All_Transactions", header, rows)
}

func writeHighValueReport(records []AnalysisRecord, companyName, outputDir string) error {
	header := []string{
		"PRIORITY", "Financial Year", "Date", "Supplier", "Amount",
		"Claimable", "Deduction Type", "Category", "Confidence",
		"Transaction ID", "Documentation Required", "Notes",
	}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.FinancialYear,
			r.TransactionDate,
			r.SupplierName,
			nullAmount(r.TransactionAmount),
			nullAmount(r.ClaimableAmount),
			r.DeductionType,
			r.PrimaryCategory,
			nullAmount(r.DeductionConfidence),
			r.TransactionID,
			yesNo(r.RequiresDocumentation),
			truncate(r.ComplianceNotes, 150),
		})
	}
	return writeCSV(outputDir, companyName, "High_Value_Deductions", header, rows)
}

func writeRndReport(records []AnalysisRecord, companyName, outputDir string) error {
	header := []string{
		"Financial Year", "Date", "Supplier", "Amount",
		"Activity Type", "R&D Confidence", "Meets Div355",
		"Outcome Unknown", "Systematic", "New Knowledge", "Scientific Method",
		"Reasoning", "Transaction ID",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.FinancialYear,
			r.TransactionDate,
			r.SupplierName,
			nullAmount(r.TransactionAmount),
			r.RndActivityType,
			nullAmount(r.RndConfidence),
			yesNo(r.MeetsDiv355Criteria),
			yesNo(r.Div355OutcomeUnknown),
			yesNo(r.Div355SystematicApproach),
			yesNo(r.Div355NewKnowledge),
			yesNo(r.Div355ScientificMethod),
			truncate(r.RndReasoning, 200),
			r.TransactionID,
		})
	}
	return writeCSV(outputDir, companyName, "RnD_Candidates", header, rows)
}

func writeReviewListReport(records []AnalysisRecord, companyName, reportName, outputDir string) error {
	header := []string{
		"Financial Year", "Date", "Supplier", "Amount",
		"Category", "Description", "Compliance Notes", "Transaction ID",
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.FinancialYear,
			r.TransactionDate,
			r.SupplierName,
			nullAmount(r.TransactionAmount),
			r.PrimaryCategory,
			truncate(r.TransactionDescription, 100),
			truncate(r.ComplianceNotes, 200),
			r.TransactionID,
		})
	}
	return writeCSV(outputDir, companyName, reportName, header, rows)
}

type summaryBucket struct {
	count     int
	total     float64
	claimable float64
	rnd       int
	fbt       int
	div7a     int
}

func writeFYSummaryReport(records []AnalysisRecord, companyName, outputDir string) error {
	buckets := make(map[string]*summaryBucket)
	for _, r := range records {
		fy := r.FinancialYear
		if fy == "" {
			fy = "Unknown"
		}
		b, ok := buckets[fy]
		if !ok {
			b = &summaryBucket{}
			buckets[fy] = b
		}
		b.count++
		if r.TransactionAmount.Valid {
			b.total += math.Abs(r.TransactionAmount.Float64)
		}
		if r.ClaimableAmount.Valid {
			b.claimable += r.ClaimableAmount.Float64
		}
		if r.IsRndCandidate {
			b.rnd++
		}
		if r.FBTImplications {
			b.fbt++
		}
		if r.Division7ARisk {
			b.div7a++
		}
	}

	years := make([]string, 0, len(buckets))
	for fy := range buckets {
		years = append(years, fy)
	}
	sort.Strings(years)

	header := []string{"Financial Year", "Transaction Count", "Total Amount", "Claimable Amount", "R&D Candidates", "FBT Issues", "Div7A Issues"}
	rows := make([][]string, 0, len(years))
	for _, fy := range years {
		b := buckets[fy]
		rows = append(rows, []string{
			fy,
			strconv.Itoa(b.count),
			formatMoney(b.total),
			formatMoney(b.claimable),
			strconv.Itoa(b.rnd),
			strconv.Itoa(b.fbt),
			strconv.Itoa(b.div7a),
		})
	}
	return writeCSV(outputDir, companyName, "Summary_By_FY", header, rows)
}

func writeCategorySummaryReport(records []AnalysisRecord, companyName, outputDir string) error {
	buckets := make(map[string]*summaryBucket)
	for _, r := range records {
		cat := r.PrimaryCategory
		if cat == "" {
			cat = "Unknown"
		}
		b, ok := buckets[cat]
		if !ok {
			b = &summaryBucket{}
			buckets[cat] = b
		}
		b.count++
		if r.TransactionAmount.Valid {
			b.total += math.Abs(r.TransactionAmount.Float64)
		}
		if r.ClaimableAmount.Valid {
			b.claimable += r.ClaimableAmount.Float64
		}
	}

	cats := make([]string, 0, len(buckets))
	for cat := range buckets {
		cats = append(cats, cat)
	}
	// Largest claimable total first.
	sort.SliceStable(cats, func(i, j int) bool {
		return buckets[cats[i]].claimable > buckets[cats[j]].claimable
	})

	header := []string{"Category", "Transaction Count", "Total Amount", "Claimable Amount"}
	rows := make([][]string, 0, len(cats))
	for _, cat := range cats {
		b := buckets[cat]
		rows = append(rows, []string{
			cat,
			strconv.Itoa(b.count),
			formatMoney(b.total),
			formatMoney(b.claimable),
		})
	}
	return writeCSV(outputDir, companyName, "By_Category", header, rows)
}

func filterRecords(records []AnalysisRecord, keep func(AnalysisRecord) bool) []AnalysisRecord {
	var out []AnalysisRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func reviewFlag(v bool) string {
	if v {
		return "YES - REVIEW"
	}
	return "No"
}

func nullAmount(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// formatMoney renders a dollar amount with thousands separators, e.g.
// "$1,234,567.89".
func formatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + fracPart
}
