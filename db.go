package main

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_results (
		id                         INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id                  TEXT NOT NULL,
		transaction_id             TEXT NOT NULL,
		transaction_date           TEXT DEFAULT '',
		transaction_description    TEXT DEFAULT '',
		supplier_name              TEXT DEFAULT '',
		financial_year             TEXT DEFAULT '',
		transaction_amount         REAL,
		claimable_amount           REAL,
		primary_category           TEXT DEFAULT '',
		secondary_category         TEXT DEFAULT '',
		category_confidence        REAL,
		deduction_type             TEXT DEFAULT '',
		deduction_confidence       REAL,
		is_fully_deductible        INTEGER NOT NULL DEFAULT 0,
		is_rnd_candidate           INTEGER NOT NULL DEFAULT 0,
		meets_div355_criteria      INTEGER NOT NULL DEFAULT 0,
		div355_outcome_unknown     INTEGER NOT NULL DEFAULT 0,
		div355_systematic_approach INTEGER NOT NULL DEFAULT 0,
		div355_new_knowledge       INTEGER NOT NULL DEFAULT 0,
		div355_scientific_method   INTEGER NOT NULL DEFAULT 0,
		rnd_confidence             REAL,
		rnd_activity_type          TEXT DEFAULT '',
		rnd_reasoning              TEXT DEFAULT '',
		fbt_implications           INTEGER NOT NULL DEFAULT 0,
		division7a_risk            INTEGER NOT NULL DEFAULT 0,
		requires_documentation     INTEGER NOT NULL DEFAULT 0,
		compliance_notes           TEXT DEFAULT '',
		created_at                 DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(tenant_id, transaction_id)
	);
	CREATE INDEX IF NOT EXISTS idx_analysis_tenant_fy ON analysis_results(tenant_id, financial_year);

	CREATE TABLE IF NOT EXISTS findings (
		id                      INTEGER PRIMARY KEY AUTOINCREMENT,
		organization_id         TEXT NOT NULL,
		area                    TEXT NOT NULL,
		status                  TEXT NOT NULL DEFAULT 'pending',
		transaction_id          TEXT NOT NULL,
		transaction_date        TEXT DEFAULT '',
		transaction_description TEXT DEFAULT '',
		amount                  REAL NOT NULL DEFAULT 0,
		current_category        TEXT DEFAULT '',
		suggested_category      TEXT DEFAULT '',
		suggested_action        TEXT DEFAULT '',
		confidence_score        INTEGER NOT NULL DEFAULT 0,
		confidence_level        TEXT DEFAULT '',
		confidence_factors      TEXT DEFAULT '[]',
		legislative_refs        TEXT DEFAULT '[]',
		reasoning               TEXT DEFAULT '',
		financial_year          TEXT DEFAULT '',
		estimated_benefit       REAL NOT NULL DEFAULT 0,
		created_at              DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(transaction_id, organization_id, area)
	);
	CREATE INDEX IF NOT EXISTS idx_findings_org_status ON findings(organization_id, status);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return db, nil
}

const analysisColumns = `tenant_id, transaction_id, transaction_date, transaction_description,
	supplier_name, financial_year, transaction_amount, claimable_amount,
	primary_category, secondary_category, category_confidence,
	deduction_type, deduction_confidence, is_fully_deductible,
	is_rnd_candidate, meets_div355_criteria, div355_outcome_unknown,
	div355_systematic_approach, div355_new_knowledge, div355_scientific_method,
	rnd_confidence, rnd_activity_type, rnd_reasoning,
	fbt_implications, division7a_risk, requires_documentation, compliance_notes`

// InsertAnalysisRecords stores upstream analysis rows. Rows already present
// for the same (tenant, transaction) are left untouched; the return value
// counts rows actually inserted.
func InsertAnalysisRecords(db *sql.DB, records []AnalysisRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO analysis_results (` + analysisColumns + `)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		res, err := stmt.Exec(
			r.TenantID, r.TransactionID, r.TransactionDate, r.TransactionDescription,
			r.SupplierName, r.FinancialYear, r.TransactionAmount, r.ClaimableAmount,
			r.PrimaryCategory, r.SecondaryCategory, r.CategoryConfidence,
			r.DeductionType, r.DeductionConfidence, r.IsFullyDeductible,
			r.IsRndCandidate, r.MeetsDiv355Criteria, r.Div355OutcomeUnknown,
			r.Div355SystematicApproach, r.Div355NewKnowledge, r.Div355ScientificMethod,
			r.RndConfidence, r.RndActivityType, r.RndReasoning,
			r.FBTImplications, r.Division7ARisk, r.RequiresDocumentation, r.ComplianceNotes,
		)
		if err != nil {
			return inserted, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}

	return inserted, tx.Commit()
}

// GetAnalysisRecords returns all analysis rows for a tenant, optionally
// restricted to one financial year.
func GetAnalysisRecords(db *sql.DB, tenantID, financialYear string) ([]AnalysisRecord, error) {
	query := `SELECT id, ` + analysisColumns + `, created_at
		 FROM analysis_results WHERE tenant_id = ?`
	args := []any{tenantID}
	if financialYear != "" {
		query += ` AND financial_year = ?`
		args = append(args, financialYear)
	}
	query += ` ORDER BY transaction_date, transaction_id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var r AnalysisRecord
		err := rows.Scan(
			&r.ID, &r.TenantID, &r.TransactionID, &r.TransactionDate, &r.TransactionDescription,
			&r.SupplierName, &r.FinancialYear, &r.TransactionAmount, &r.ClaimableAmount,
			&r.PrimaryCategory, &r.SecondaryCategory, &r.CategoryConfidence,
			&r.DeductionType, &r.DeductionConfidence, &r.IsFullyDeductible,
			&r.IsRndCandidate, &r.MeetsDiv355Criteria, &r.Div355OutcomeUnknown,
			&r.Div355SystematicApproach, &r.Div355NewKnowledge, &r.Div355ScientificMethod,
			&r.RndConfidence, &r.RndActivityType, &r.RndReasoning,
			&r.FBTImplications, &r.Division7ARisk, &r.RequiresDocumentation, &r.ComplianceNotes,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetExistingFindingKeys returns the dedup-key set of every finding already
// persisted for an organization.
func GetExistingFindingKeys(db *sql.DB, organizationID string) (map[FindingKey]bool, error) {
	rows, err := db.Query(
		`SELECT transaction_id, area FROM findings WHERE organization_id = ?`,
		organizationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[FindingKey]bool)
	for rows.Next() {
		key := FindingKey{OrganizationID: organizationID}
		if err := rows.Scan(&key.TransactionID, &key.Area); err != nil {
			return nil, err
		}
		keys[key] = true
	}
	return keys, rows.Err()
}

// InsertFindings persists one chunk of findings inside a transaction.
// A row colliding with the (transaction, organization, area) unique index
// is left in place and reported through the skipped count rather than
// failing the chunk, so a concurrent run racing on the same dedup snapshot
// degrades to extra skips. Returns per-area counts of rows actually
// inserted.
func InsertFindings(db *sql.DB, findings []Finding) (inserted, skipped int, byArea map[string]int, err error) {
	byArea = make(map[string]int)
	if len(findings) == 0 {
		return 0, 0, byArea, nil
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, 0, byArea, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO findings
		 (organization_id, area, status, transaction_id, transaction_date, transaction_description,
		  amount, current_category, suggested_category, suggested_action,
		  confidence_score, confidence_level, confidence_factors, legislative_refs,
		  reasoning, financial_year, estimated_benefit)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(transaction_id, organization_id, area) DO NOTHING`,
	)
	if err != nil {
		return 0, 0, byArea, err
	}
	defer stmt.Close()

	for _, f := range findings {
		factorsJSON, err := json.Marshal(f.ConfidenceFactors)
		if err != nil {
			return inserted, skipped, byArea, fmt.Errorf("marshal confidence factors: %v", err)
		}
		refsJSON, err := json.Marshal(f.LegislativeRefs)
		if err != nil {
			return inserted, skipped, byArea, fmt.Errorf("marshal legislative refs: %v", err)
		}
		res, err := stmt.Exec(
			f.OrganizationID, f.Area, f.Status, f.TransactionID, f.TransactionDate, f.TransactionDescription,
			f.Amount, f.CurrentCategory, f.SuggestedCategory, f.SuggestedAction,
			f.ConfidenceScore, f.ConfidenceLevel, string(factorsJSON), string(refsJSON),
			f.Reasoning, f.FinancialYear, f.EstimatedBenefit,
		)
		if err != nil {
			return inserted, skipped, byArea, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, skipped, byArea, err
		}
		if n > 0 {
			inserted++
			byArea[f.Area]++
		} else {
			skipped++
		}
	}

	return inserted, skipped, byArea, tx.Commit()
}

// GetFindingsByOrganization returns all persisted findings for an
// organization, newest first.
func GetFindingsByOrganization(db *sql.DB, organizationID string) ([]Finding, error) {
	rows, err := db.Query(
		`SELECT id, organization_id, area, status, transaction_id, transaction_date,
		        transaction_description, amount, current_category, suggested_category,
		        suggested_action, confidence_score, confidence_level, confidence_factors,
		        legislative_refs, reasoning, financial_year, estimated_benefit, created_at
		 FROM findings WHERE organization_id = ?
		 ORDER BY created_at DESC, id DESC`,
		organizationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		var factorsJSON, refsJSON string
		err := rows.Scan(
			&f.ID, &f.OrganizationID, &f.Area, &f.Status, &f.TransactionID, &f.TransactionDate,
			&f.TransactionDescription, &f.Amount, &f.CurrentCategory, &f.SuggestedCategory,
			&f.SuggestedAction, &f.ConfidenceScore, &f.ConfidenceLevel, &factorsJSON,
			&refsJSON, &f.Reasoning, &f.FinancialYear, &f.EstimatedBenefit, &f.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(factorsJSON), &f.ConfidenceFactors); err != nil {
			return nil, fmt.Errorf("unmarshal confidence factors for finding %d: %v", f.ID, err)
		}
		if err := json.Unmarshal([]byte(refsJSON), &f.LegislativeRefs); err != nil {
			return nil, fmt.Errorf("unmarshal legislative refs for finding %d: %v", f.ID, err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// CountPendingFindingsByArea returns how many findings are still pending
// review for an organization, grouped by workflow area.
func CountPendingFindingsByArea(db *sql.DB, organizationID string) (map[string]int, error) {
	rows, err := db.Query(
		`SELECT area, COUNT(*) FROM findings
		 WHERE organization_id = ? AND status = 'pending'
		 GROUP BY area`,
		organizationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var area string
		var count int
		if err := rows.Scan(&area, &count); err != nil {
			return nil, err
		}
		counts[area] = count
	}
	return counts, rows.Err()
}
