package main

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

var dayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// StartReviewNudgeScheduler DMs the configured reviewers once a week with
// the pending-finding counts for every tenant, so review queues don't
// silently pile up.
func StartReviewNudgeScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	if api == nil || len(cfg.Reviewers) == 0 {
		log.Println("No reviewers configured, review nudge disabled")
		return
	}

	reviewerIDs, unresolved, err := resolveUserIDs(api, cfg.Reviewers)
	if err != nil {
		log.Printf("Error resolving reviewers: %v", err)
		if len(reviewerIDs) == 0 {
			return
		}
	}
	if len(unresolved) > 0 {
		log.Printf("Unresolved reviewers: %s", strings.Join(unresolved, ", "))
	}

	weekday, ok := dayMap[strings.ToLower(cfg.NudgeDay)]
	if !ok {
		log.Printf("Invalid nudge_day '%s', using Monday", cfg.NudgeDay)
		weekday = time.Monday
	}

	hour, min, err := parseClock(cfg.NudgeTime)
	if err != nil {
		log.Printf("Invalid nudge_time '%s': %v, using 09:00", cfg.NudgeTime, err)
		hour, min = 9, 0
	}

	log.Printf("Review nudge scheduled every %s at %02d:%02d for %d reviewers", weekday, hour, min, len(reviewerIDs))

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := nextWeekday(now, weekday, hour, min)
			wait := next.Sub(now)
			log.Printf("Next review nudge at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)
			sendReviewNudges(api, cfg, db, reviewerIDs)
		}
	}()
}

func nextWeekday(now time.Time, day time.Weekday, hour, min int) time.Time {
	daysUntil := (day - now.Weekday() + 7) % 7
	if daysUntil == 0 {
		target := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if now.Before(target) {
			return target
		}
		daysUntil = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day()+int(daysUntil), hour, min, 0, 0, now.Location())
}

func sendReviewNudges(api *slack.Client, cfg Config, db *sql.DB, reviewerIDs []string) {
	msg, pending := buildNudgeMessage(cfg, db)
	if pending == 0 {
		log.Println("Review nudge skipped: no pending findings")
		return
	}

	for _, userID := range reviewerIDs {
		channel, _, _, err := api.OpenConversation(&slack.OpenConversationParameters{
			Users: []string{userID},
		})
		if err != nil {
			log.Printf("Error opening DM with %s: %v", userID, err)
			continue
		}

		_, _, err = api.PostMessage(channel.ID, slack.MsgOptionText(msg, false))
		if err != nil {
			log.Printf("Error sending review nudge to %s: %v", userID, err)
		} else {
			log.Printf("Sent review nudge to %s", userID)
		}
	}
}

// buildNudgeMessage summarizes pending findings across all tenants and
// returns the message plus the total pending count.
func buildNudgeMessage(cfg Config, db *sql.DB) (string, int) {
	var lines []string
	total := 0
	for _, tenant := range cfg.Tenants {
		counts, err := CountPendingFindingsByArea(db, tenant.OrganizationID)
		if err != nil {
			log.Printf("Error counting pending findings for %s: %v", tenant.OrganizationID, err)
			continue
		}
		tenantTotal := 0
		areas := make([]string, 0, len(counts))
		for area := range counts {
			areas = append(areas, area)
		}
		sort.Strings(areas)
		var parts []string
		for _, area := range areas {
			tenantTotal += counts[area]
			parts = append(parts, fmt.Sprintf("%s %d", area, counts[area]))
		}
		if tenantTotal == 0 {
			continue
		}
		total += tenantTotal
		lines = append(lines, fmt.Sprintf("• %s: %d pending (%s)", tenant.DisplayName(), tenantTotal, strings.Join(parts, ", ")))
	}

	msg := "Hey! There are findings waiting for review:\n" + strings.Join(lines, "\n")
	return msg, total
}

func resolveUserIDs(api *slack.Client, identifiers []string) ([]string, []string, error) {
	var ids []string
	var names []string

	for _, raw := range identifiers {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if isLikelySlackID(val) {
			ids = append(ids, val)
		} else {
			names = append(names, val)
		}
	}

	if len(names) == 0 {
		return uniqueStrings(ids), nil, nil
	}

	users, err := api.GetUsers()
	if err != nil {
		return uniqueStrings(ids), names, err
	}

	nameToID := make(map[string]string)
	for _, user := range users {
		addName := func(n string) {
			n = strings.ToLower(strings.TrimSpace(n))
			if n == "" {
				return
			}
			if _, exists := nameToID[n]; !exists {
				nameToID[n] = user.ID
			}
		}
		addName(user.Name)
		addName(user.RealName)
		addName(user.Profile.DisplayName)
	}

	var unresolved []string
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if id, ok := nameToID[key]; ok {
			ids = append(ids, id)
		} else {
			unresolved = append(unresolved, name)
		}
	}

	return uniqueStrings(ids), unresolved, nil
}

func isLikelySlackID(val string) bool {
	if len(val) < 9 {
		return false
	}
	for i, r := range val {
		if i == 0 {
			if r != 'U' && r != 'W' {
				return false
			}
			continue
		}
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func uniqueStrings(vals []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range vals {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
