package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWSMIRROR_CONFIG"
	indexPathEnv      = "NEWSMIRROR_INDEX_PATH"
	articleDirEnv     = "NEWSMIRROR_ARTICLE_DIR"
	ledgerPathEnv     = "NEWSMIRROR_LEDGER_PATH"
	httpAddressEnv    = "NEWSMIRROR_HTTP_ADDRESS"
	cronEnv           = "NEWSMIRROR_CRON"
	lookbackEnv       = "NEWSMIRROR_LOOKBACK_MONTHS"
	logLevelEnv       = "LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Source        SourceConfig       `yaml:"source"`
	Storage       StorageConfig      `yaml:"storage"`
	Sync          SyncConfig         `yaml:"sync"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	HTTP          HTTPConfig         `yaml:"http"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// SourceConfig describes the publisher endpoints and transport behaviour.
type SourceConfig struct {
	BaseURL        string        `yaml:"baseUrl"`
	Locale         string        `yaml:"locale"`
	Product        string        `yaml:"product"`
	UserAgent      string        `yaml:"userAgent"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	MaxAttempts    int           `yaml:"maxAttempts"`
	RetryBackoff   time.Duration `yaml:"retryBackoff"`
	MaxPages       int           `yaml:"maxPages"`
}

// StorageConfig points at the local mirror.
type StorageConfig struct {
	IndexPath  string `yaml:"indexPath"`
	ArticleDir string `yaml:"articleDir"`
	LedgerPath string `yaml:"ledgerPath"`
}

// SyncConfig bounds scheduled runs.
type SyncConfig struct {
	LookbackMonths int `yaml:"lookbackMonths"`
}

// SchedulerConfig defines when the daily sync runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// HTTPConfig configures the read API listener.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads .env (if present), the YAML file at path (or $NEWSMIRROR_CONFIG)
// and applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with and binds the timezone.
func (c *Config) Validate() error {
	var errs []error

	if c.Source.BaseURL == "" {
		errs = append(errs, errors.New("source.baseUrl is required"))
	}
	if c.Source.MaxAttempts < 1 {
		errs = append(errs, errors.New("source.maxAttempts must be >= 1"))
	}
	if c.Source.MaxPages < 1 {
		errs = append(errs, errors.New("source.maxPages must be >= 1"))
	}
	if c.Storage.IndexPath == "" || c.Storage.ArticleDir == "" {
		errs = append(errs, errors.New("storage.indexPath and storage.articleDir are required"))
	}
	if c.Sync.LookbackMonths < 1 {
		errs = append(errs, errors.New("sync.lookbackMonths must be >= 1"))
	}
	if _, err := cronexpr.Parse(c.Scheduler.CronExpression); err != nil {
		errs = append(errs, fmt.Errorf("scheduler.cronExpression: %w", err))
	}

	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Errorf("scheduler.timezone: %w", err))
	} else {
		c.Scheduler.location = loc
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(indexPathEnv); v != "" {
		c.Storage.IndexPath = v
	}
	if v := os.Getenv(articleDirEnv); v != "" {
		c.Storage.ArticleDir = v
	}
	if v := os.Getenv(ledgerPathEnv); v != "" {
		c.Storage.LedgerPath = v
	}
	if v := os.Getenv(httpAddressEnv); v != "" {
		c.HTTP.Address = v
	}
	if v := os.Getenv(cronEnv); v != "" {
		c.Scheduler.CronExpression = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(lookbackEnv); v != "" {
		months, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", lookbackEnv, err)
		}
		c.Sync.LookbackMonths = months
	}
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.Source.BaseURL != "" {
		base.Source.BaseURL = override.Source.BaseURL
	}
	if override.Source.Locale != "" {
		base.Source.Locale = override.Source.Locale
	}
	if override.Source.Product != "" {
		base.Source.Product = override.Source.Product
	}
	if override.Source.UserAgent != "" {
		base.Source.UserAgent = override.Source.UserAgent
	}
	if override.Source.RequestTimeout > 0 {
		base.Source.RequestTimeout = override.Source.RequestTimeout
	}
	if override.Source.MaxAttempts != 0 {
		base.Source.MaxAttempts = override.Source.MaxAttempts
	}
	if override.Source.RetryBackoff > 0 {
		base.Source.RetryBackoff = override.Source.RetryBackoff
	}
	if override.Source.MaxPages != 0 {
		base.Source.MaxPages = override.Source.MaxPages
	}

	if override.Storage.IndexPath != "" {
		base.Storage.IndexPath = override.Storage.IndexPath
	}
	if override.Storage.ArticleDir != "" {
		base.Storage.ArticleDir = override.Storage.ArticleDir
	}
	if override.Storage.LedgerPath != "" {
		base.Storage.LedgerPath = override.Storage.LedgerPath
	}

	if override.Sync.LookbackMonths != 0 {
		base.Sync.LookbackMonths = override.Sync.LookbackMonths
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.HTTP.Address != "" {
		base.HTTP.Address = override.HTTP.Address
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Source: SourceConfig{
			BaseURL:        "https://news.blizzard.com",
			Locale:         "en-us",
			Product:        "heroes-of-the-storm",
			UserAgent:      "NewsMirror/1.0",
			RequestTimeout: 30 * time.Second,
			MaxAttempts:    3,
			RetryBackoff:   500 * time.Millisecond,
			MaxPages:       200,
		},
		Storage: StorageConfig{
			IndexPath:  "news/index.json",
			ArticleDir: "news/articles",
			LedgerPath: "news/ledger.db",
		},
		Sync:      SyncConfig{LookbackMonths: 3},
		Scheduler: SchedulerConfig{CronExpression: "0 15 * * *", Timezone: defaultTimezone, location: time.UTC},
		HTTP:      HTTPConfig{Address: ":8080"},
		Logging:   LoggingConfig{Level: "info"},
	}
}
