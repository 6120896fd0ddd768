package main

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Findings are persisted in fixed-size chunks to bound per-call payload
// size; chunks are not atomic with respect to each other.
const findingChunkSize = 100

// GenerateResult summarizes one generation run. When a chunk insert fails
// partway through, the counts cover everything committed before the
// failure so the caller still has an audit trail.
type GenerateResult struct {
	Created int
	Skipped int
	ByArea  map[string]int
}

// GenerateFindings runs the classification pipeline for one tenant:
// fetch the upstream analysis rows (optionally one financial year), fetch
// the organization's already-persisted dedup keys, route/score/assemble
// each row, dedup against prior runs and within this run, and persist the
// survivors in chunks. Fetch errors abort with nothing persisted; a chunk
// failure returns the partial summary alongside the error.
func GenerateFindings(db *sql.DB, tenantID, organizationID, financialYear string) (GenerateResult, error) {
	result := GenerateResult{ByArea: make(map[string]int)}

	records, err := GetAnalysisRecords(db, tenantID, financialYear)
	if err != nil {
		return result, fmt.Errorf("fetch analysis records: %v", err)
	}
	existing, err := GetExistingFindingKeys(db, organizationID)
	if err != nil {
		return result, fmt.Errorf("fetch existing finding keys: %v", err)
	}
	log.Printf("generate tenant=%s org=%s fy=%q records=%d existing=%d",
		tenantID, organizationID, financialYear, len(records), len(existing))

	var queue []Finding
	for _, rec := range records {
		finding, ok := BuildFinding(rec, organizationID)
		if !ok {
			result.Skipped++
			continue
		}
		key := finding.Key()
		if existing[key] {
			result.Skipped++
			continue
		}
		existing[key] = true
		queue = append(queue, finding)
	}

	for start := 0; start < len(queue); start += findingChunkSize {
		end := start + findingChunkSize
		if end > len(queue) {
			end = len(queue)
		}
		inserted, conflicts, byArea, err := InsertFindings(db, queue[start:end])
		if err != nil {
			return result, fmt.Errorf("insert findings chunk at %d: %v", start, err)
		}
		result.Created += inserted
		result.Skipped += conflicts
		for area, n := range byArea {
			result.ByArea[area] += n
		}
	}

	return result, nil
}

// FormatGenerationSummary returns a human-readable summary of a run, used
// for the log and the review-channel notification.
func FormatGenerationSummary(tenantName string, result GenerateResult) string {
	if result.Created == 0 {
		return fmt.Sprintf("%s: no new findings (%d records skipped).", tenantName, result.Skipped)
	}

	areas := make([]string, 0, len(result.ByArea))
	for area := range result.ByArea {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	var parts []string
	for _, area := range areas {
		parts = append(parts, fmt.Sprintf("%s: %d", area, result.ByArea[area]))
	}

	return fmt.Sprintf("%s: %d new findings for review (%s), %d skipped.",
		tenantName, result.Created, strings.Join(parts, ", "), result.Skipped)
}
