package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// RunAllTenants runs finding generation for every configured tenant and
// returns the formatted per-tenant summaries. Tenants are processed
// sequentially; one tenant failing does not stop the others.
func RunAllTenants(cfg Config, db *sql.DB) []string {
	var summaries []string
	for _, tenant := range cfg.Tenants {
		result, err := GenerateFindings(db, tenant.TenantID, tenant.OrganizationID, tenant.FinancialYear)
		if err != nil {
			log.Printf("generate error tenant=%s: %v", tenant.TenantID, err)
			summaries = append(summaries, fmt.Sprintf("%s: generation failed after %d created: %v",
				tenant.DisplayName(), result.Created, err))
			continue
		}
		summary := FormatGenerationSummary(tenant.DisplayName(), result)
		log.Printf("generate complete: %s", summary)
		summaries = append(summaries, summary)
	}
	return summaries
}

// StartGenerationScheduler starts a cron-based scheduler that periodically
// regenerates findings for all configured tenants and posts a combined
// summary to the review channel.
// The schedule is a standard 5-field cron expression (minute hour day-of-month month day-of-week).
// Examples: "0 6 * * *" (daily 6am), "0 6 * * 1-5" (weekdays 6am).
func StartGenerationScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.GenerateSchedule)
	if schedule == "" {
		log.Println("Scheduled generation disabled (generate_schedule not set)")
		return
	}
	if len(cfg.Tenants) == 0 {
		log.Println("Scheduled generation disabled: no tenants configured")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid generate_schedule '%s': %v, scheduled generation disabled", schedule, err)
		return
	}

	log.Printf("Generation scheduled (cron: %s) for %d tenants", schedule, len(cfg.Tenants))

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next generation run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			summaries := RunAllTenants(cfg, db)
			if api != nil && cfg.ReviewChannelID != "" && len(summaries) > 0 {
				msg := "Finding generation complete:\n" + strings.Join(summaries, "\n")
				if _, _, postErr := api.PostMessage(cfg.ReviewChannelID, slack.MsgOptionText(msg, false)); postErr != nil {
					log.Printf("Generation summary post error: %v", postErr)
				}
			}
		}
	}()
}
