package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"RetentionSentinel/internal/model"
)

// Data source kinds.
const (
	KindCSV      = "csv"
	KindMySQL    = "mysql"
	KindPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Kind  string `yaml:"kind"`
		Path  string `yaml:"path"`
		DSN   string `yaml:"dsn"`
		Table string `yaml:"table"`
	} `yaml:"data_source"`
	Filters struct {
		ExcludedOrderStatuses   []string `yaml:"excluded_order_statuses"`
		ExcludedPaymentStatuses []string `yaml:"excluded_payment_statuses"`
		ExcludedChannels        []string `yaml:"excluded_channels"`
	} `yaml:"filters"`
	Report struct {
		WindowMonths        int    `yaml:"window_months"`
		RevenueWindowMonths int    `yaml:"revenue_window_months"`
		ReferenceMonth      string `yaml:"reference_month"`
	} `yaml:"report"`
	Schedule struct {
		DailyCron   string `yaml:"daily_cron"`
		MonthlyCron string `yaml:"monthly_cron"`
	} `yaml:"schedule"`
	Goals struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"goals"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SENTINEL_DATA_KIND"); v != "" {
		cfg.DataSource.Kind = v
	}
	if v := os.Getenv("SENTINEL_CSV_PATH"); v != "" {
		cfg.DataSource.Path = v
	}
	if v := os.Getenv("SENTINEL_DSN"); v != "" {
		cfg.DataSource.DSN = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFERENCE_MONTH"); v != "" {
		cfg.Report.ReferenceMonth = v
	}
	if v := os.Getenv("WINDOW_MONTHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Report.WindowMonths = n
		}
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	cfg.DataSource.Kind = strings.ToLower(strings.TrimSpace(cfg.DataSource.Kind))
	if cfg.DataSource.Kind == "" {
		cfg.DataSource.Kind = KindCSV
	}
	if cfg.DataSource.Kind == KindCSV && cfg.DataSource.Path == "" {
		cfg.DataSource.Path = "data/prepared_data.csv"
	}
	if cfg.DataSource.Table == "" {
		cfg.DataSource.Table = "orders"
	}
	if cfg.Filters.ExcludedOrderStatuses == nil {
		cfg.Filters.ExcludedOrderStatuses = []string{"CANCELLED", "ABANDONED", "FAILED", "WAITING"}
	}
	if cfg.Filters.ExcludedPaymentStatuses == nil {
		cfg.Filters.ExcludedPaymentStatuses = []string{"CANCELLED", "ERROR"}
	}
	if cfg.Filters.ExcludedChannels == nil {
		cfg.Filters.ExcludedChannels = []string{"trading"}
	}
	if cfg.Report.WindowMonths == 0 {
		cfg.Report.WindowMonths = 4
	}
	if cfg.Report.RevenueWindowMonths == 0 {
		cfg.Report.RevenueWindowMonths = 1
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 8 * * *"
	}
	if cfg.Schedule.MonthlyCron == "" {
		cfg.Schedule.MonthlyCron = "0 0 9 1 * *"
	}
	if cfg.Goals.StateFile == "" {
		cfg.Goals.StateFile = "data/goals.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/retention_sentinel.db"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "exports"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Kind {
	case KindCSV:
		if c.DataSource.Path == "" {
			return fmt.Errorf("data_source.path is required for csv")
		}
	case KindMySQL, KindPostgres:
		if c.DataSource.DSN == "" {
			return fmt.Errorf("data_source.dsn is required for %s", c.DataSource.Kind)
		}
	default:
		return fmt.Errorf("data_source.kind must be csv, mysql or postgres, got %q", c.DataSource.Kind)
	}
	if c.Report.WindowMonths < 1 {
		return fmt.Errorf("report.window_months must be positive")
	}
	if c.Report.RevenueWindowMonths < 1 {
		return fmt.Errorf("report.revenue_window_months must be positive")
	}
	if _, err := c.ReferenceMonth(); err != nil {
		return fmt.Errorf("report.reference_month: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ReferenceMonth returns the pinned reference month, or the zero month
// when none is configured.
func (c *Config) ReferenceMonth() (model.YearMonth, error) {
	if c.Report.ReferenceMonth == "" {
		return model.YearMonth{}, nil
	}
	return model.ParseYearMonth(c.Report.ReferenceMonth)
}
