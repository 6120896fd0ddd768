package main

import (
	"flag"
	"log"
	"strings"

	"github.com/slack-go/slack"
)

func main() {
	once := flag.Bool("once", false, "run finding generation for all configured tenants and exit")
	importPath := flag.String("import", "", "import an upstream analysis results JSON file and exit")
	tenantID := flag.String("tenant", "", "tenant id for -import")
	reports := flag.Bool("reports", false, "write accountant CSV reports for all configured tenants and exit")
	flag.Parse()

	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	if *importPath != "" {
		if *tenantID == "" {
			log.Fatal("-import requires -tenant")
		}
		result, err := ImportAnalysisResults(db, *tenantID, *importPath)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d of %d records (%d already tracked, %d missing transaction id)",
			result.Inserted, result.Total, result.AlreadyTracked, result.MissingID)
		return
	}

	if *reports {
		for _, tenant := range cfg.Tenants {
			records, err := GetAnalysisRecords(db, tenant.TenantID, tenant.FinancialYear)
			if err != nil {
				log.Fatalf("Failed to load analysis records for %s: %v", tenant.TenantID, err)
			}
			stats, err := WriteAccountantReports(records, tenant.DisplayName(), cfg.ReportOutputDir)
			if err != nil {
				log.Fatalf("Failed to write reports for %s: %v", tenant.TenantID, err)
			}
			log.Printf("%s: %d transactions, %d high-value, %d R&D, %d FBT, %d Div7A",
				tenant.DisplayName(), stats.TotalTransactions, stats.HighValue,
				stats.RndCandidates, stats.FBTIssues, stats.Div7AIssues)
		}
		return
	}

	if *once {
		summaries := RunAllTenants(cfg, db)
		log.Printf("Generation complete:\n%s", strings.Join(summaries, "\n"))
		return
	}

	var api *slack.Client
	if cfg.SlackBotToken != "" {
		api = slack.New(cfg.SlackBotToken)
	} else {
		log.Println("No slack_bot_token configured, notifications disabled")
	}

	log.Println("Starting Findings Bot...")
	StartGenerationScheduler(cfg, db, api)
	StartReviewNudgeScheduler(cfg, db, api)

	select {}
}
