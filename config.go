package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// TenantConfig describes one advisory client: the tenant whose analysis
// rows we read and the organization that owns the generated findings.
type TenantConfig struct {
	TenantID       string `yaml:"tenant_id"`
	OrganizationID string `yaml:"organization_id"`
	Name           string `yaml:"name"`
	FinancialYear  string `yaml:"financial_year"` // empty = all years
}

func (t TenantConfig) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.TenantID
}

type Config struct {
	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReviewChannelID string `yaml:"review_channel_id"`

	GenerateSchedule string   `yaml:"generate_schedule"`
	Reviewers        []string `yaml:"reviewers"`
	NudgeDay         string   `yaml:"nudge_day"`
	NudgeTime        string   `yaml:"nudge_time"`
	Timezone         string   `yaml:"timezone"`

	Tenants []TenantConfig `yaml:"tenants"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReviewChannelID, "REVIEW_CHANNEL_ID")
	envOverride(&cfg.GenerateSchedule, "GENERATE_SCHEDULE")
	envOverride(&cfg.NudgeDay, "NUDGE_DAY")
	envOverride(&cfg.NudgeTime, "NUDGE_TIME")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if names := os.Getenv("REVIEWERS"); names != "" {
		cfg.Reviewers = nil
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.Reviewers = append(cfg.Reviewers, name)
			}
		}
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "./findingsbot.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.NudgeDay == "" {
		cfg.NudgeDay = "Monday"
	}
	if cfg.NudgeTime == "" {
		cfg.NudgeTime = "09:00"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Australia/Brisbane"
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
	}
	cfg.Location = loc

	// Validate
	seen := make(map[string]bool)
	for i, tenant := range cfg.Tenants {
		if tenant.TenantID == "" {
			log.Fatalf("tenants[%d]: tenant_id is required", i)
		}
		if tenant.OrganizationID == "" {
			log.Fatalf("tenants[%d]: organization_id is required", i)
		}
		if seen[tenant.TenantID] {
			log.Fatalf("tenants[%d]: duplicate tenant_id '%s'", i, tenant.TenantID)
		}
		seen[tenant.TenantID] = true
	}

	if schedule := strings.TrimSpace(cfg.GenerateSchedule); schedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(schedule); err != nil {
			log.Fatalf("invalid generate_schedule '%s': %v", schedule, err)
		}
	}
	if _, _, err := parseClock(cfg.NudgeTime); err != nil {
		log.Fatalf("invalid nudge_time '%s': %v", cfg.NudgeTime, err)
	}
	if cfg.NudgeDay != "" {
		if _, ok := dayMap[strings.ToLower(cfg.NudgeDay)]; !ok {
			log.Fatalf("invalid nudge_day '%s'", cfg.NudgeDay)
		}
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// TenantByID returns the configured tenant with the given id.
func (c Config) TenantByID(tenantID string) (TenantConfig, bool) {
	for _, tenant := range c.Tenants {
		if tenant.TenantID == tenantID {
			return tenant, true
		}
	}
	return TenantConfig{}, false
}

func parseClock(s string) (int, int, error) {
	var hour, min int
	_, err := fmt.Sscanf(s, "%d:%d", &hour, &min)
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("time out of range: %02d:%02d", hour, min)
	}
	return hour, min, nil
}
