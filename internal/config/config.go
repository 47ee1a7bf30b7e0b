package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "MEDIAWATCH_CONFIG"

	portEnv          = "PORT"
	adminTokenEnv    = "ADMIN_TOKEN"
	searchTermsEnv   = "CRAWLER_SEARCH_TERMS"
	githubTokenEnv   = "GITHUB_TOKEN"
	githubRepoEnv    = "GITHUB_REPO"
	databaseDSNEnv   = "DATABASE_DSN"
	redisAddrEnv     = "REDIS_ADDR"
	netlifyTokenEnv  = "NETLIFY_API_TOKEN"
	netlifySiteEnv   = "SITE_ID"
	bingAPIKeyEnv    = "BING_NEWS_API_KEY"
	telegramBotEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the service.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Crawler       CrawlerConfig      `yaml:"crawler"`
	Feeds         FeedsConfig        `yaml:"feeds"`
	Store         StoreConfig        `yaml:"store"`
	Archive       ArchiveConfig      `yaml:"archive"`
	Snapshot      SnapshotConfig     `yaml:"snapshot"`
	Forms         FormsConfig        `yaml:"forms"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the admin API listener.
type ServerConfig struct {
	Port       string `yaml:"port"`
	AdminToken string `yaml:"adminToken"`
}

// CrawlerConfig defines the aggregation run: what to search, which sources to
// fan out to, and the time budgets.
type CrawlerConfig struct {
	SearchTerms    []string `yaml:"searchTerms"`
	Sources        []string `yaml:"sources"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
	BudgetSeconds  int      `yaml:"budgetSeconds"`
	MaxPerFeed     int      `yaml:"maxPerFeed"`
	CronExpression string   `yaml:"cronExpression"`
	Timezone       string   `yaml:"timezone"`

	location *time.Location `yaml:"-"`
}

// PerSourceTimeout is the cancellation deadline for one outbound request.
func (c CrawlerConfig) PerSourceTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GlobalBudget is the wall-clock deadline for a whole aggregation run.
func (c CrawlerConfig) GlobalBudget() time.Duration {
	return time.Duration(c.BudgetSeconds) * time.Second
}

// Location resolves the scheduler timezone string to a time.Location.
func (c CrawlerConfig) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// FeedsConfig groups per-source settings.
type FeedsConfig struct {
	Bing    BingConfig   `yaml:"bing"`
	Outlets []OutletFeed `yaml:"outlets"`
}

// BingConfig wires the JSON news-search API.
type BingConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// OutletFeed names one outlet-specific RSS feed.
type OutletFeed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// StoreConfig describes the revisioned content store backing the persisted
// collections.
type StoreConfig struct {
	APIBaseURL string `yaml:"apiBaseUrl"`
	Repo       string `yaml:"repo"`
	Branch     string `yaml:"branch"`
	Token      string `yaml:"token"`
}

// ArchiveConfig describes the Postgres ingestion archive.
type ArchiveConfig struct {
	DSN string `yaml:"dsn"`
}

// SnapshotConfig describes the Redis latest-run cache.
type SnapshotConfig struct {
	RedisAddr string `yaml:"redisAddr"`
}

// FormsConfig wires the pending-submission listing API.
type FormsConfig struct {
	APIBaseURL string `yaml:"apiBaseUrl"`
	SiteID     string `yaml:"siteId"`
	Token      string `yaml:"token"`
}

// NotificationConfig encapsulates outbound digest channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires the moderator digest chat.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.clampBudget()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(adminTokenEnv); v != "" {
		c.Server.AdminToken = v
	}
	if v := os.Getenv(searchTermsEnv); v != "" {
		terms := make([]string, 0)
		for _, term := range strings.Split(v, ",") {
			if term = strings.TrimSpace(term); term != "" {
				terms = append(terms, term)
			}
		}
		if len(terms) > 0 {
			c.Crawler.SearchTerms = terms
		}
	}
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.Store.Token = v
	}
	if v := os.Getenv(githubRepoEnv); v != "" {
		c.Store.Repo = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Archive.DSN = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Snapshot.RedisAddr = v
	}
	if v := os.Getenv(netlifyTokenEnv); v != "" {
		c.Forms.Token = v
	}
	if v := os.Getenv(netlifySiteEnv); v != "" {
		c.Forms.SiteID = v
	}
	if v := os.Getenv(bingAPIKeyEnv); v != "" {
		c.Feeds.Bing.APIKey = v
	}
	if v := os.Getenv(telegramBotEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Crawler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Crawler.location = loc
}

// clampBudget enforces that the global run budget strictly exceeds the
// per-source timeout, so at least one full fetch round can complete.
func (c *Config) clampBudget() {
	if c.Crawler.TimeoutSeconds <= 0 {
		c.Crawler.TimeoutSeconds = defaultConfig().Crawler.TimeoutSeconds
	}
	if c.Crawler.BudgetSeconds <= c.Crawler.TimeoutSeconds {
		adjusted := c.Crawler.TimeoutSeconds * 3
		log.Printf("config: budget %ds does not exceed per-source timeout %ds, raising to %ds",
			c.Crawler.BudgetSeconds, c.Crawler.TimeoutSeconds, adjusted)
		c.Crawler.BudgetSeconds = adjusted
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.AdminToken != "" {
		base.Server.AdminToken = override.Server.AdminToken
	}

	if len(override.Crawler.SearchTerms) > 0 {
		base.Crawler.SearchTerms = override.Crawler.SearchTerms
	}
	if len(override.Crawler.Sources) > 0 {
		base.Crawler.Sources = override.Crawler.Sources
	}
	if override.Crawler.TimeoutSeconds > 0 {
		base.Crawler.TimeoutSeconds = override.Crawler.TimeoutSeconds
	}
	if override.Crawler.BudgetSeconds > 0 {
		base.Crawler.BudgetSeconds = override.Crawler.BudgetSeconds
	}
	if override.Crawler.MaxPerFeed > 0 {
		base.Crawler.MaxPerFeed = override.Crawler.MaxPerFeed
	}
	if override.Crawler.CronExpression != "" {
		base.Crawler.CronExpression = override.Crawler.CronExpression
	}
	if override.Crawler.Timezone != "" {
		base.Crawler.Timezone = override.Crawler.Timezone
	}

	if override.Feeds.Bing.Endpoint != "" {
		base.Feeds.Bing.Endpoint = override.Feeds.Bing.Endpoint
	}
	if override.Feeds.Bing.APIKey != "" {
		base.Feeds.Bing.APIKey = override.Feeds.Bing.APIKey
	}
	if len(override.Feeds.Outlets) > 0 {
		base.Feeds.Outlets = override.Feeds.Outlets
	}

	if override.Store.APIBaseURL != "" {
		base.Store.APIBaseURL = override.Store.APIBaseURL
	}
	if override.Store.Repo != "" {
		base.Store.Repo = override.Store.Repo
	}
	if override.Store.Branch != "" {
		base.Store.Branch = override.Store.Branch
	}
	if override.Store.Token != "" {
		base.Store.Token = override.Store.Token
	}

	if override.Archive.DSN != "" {
		base.Archive.DSN = override.Archive.DSN
	}
	if override.Snapshot.RedisAddr != "" {
		base.Snapshot.RedisAddr = override.Snapshot.RedisAddr
	}

	if override.Forms.APIBaseURL != "" {
		base.Forms.APIBaseURL = override.Forms.APIBaseURL
	}
	if override.Forms.SiteID != "" {
		base.Forms.SiteID = override.Forms.SiteID
	}
	if override.Forms.Token != "" {
		base.Forms.Token = override.Forms.Token
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Port: "8080"},
		Crawler: CrawlerConfig{
			SearchTerms: []string{
				"Logan Federico",
				"Justice for Logan",
				"Stephen Federico",
				"Alexander Dickey murder",
			},
			Sources:        []string{"googlenews"},
			TimeoutSeconds: 3,
			BudgetSeconds:  9,
			MaxPerFeed:     15,
			CronExpression: "0 9 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Feeds: FeedsConfig{
			Bing: BingConfig{Endpoint: "https://api.bing.microsoft.com/v7.0/news/search"},
		},
		Store: StoreConfig{
			APIBaseURL: "https://api.github.com",
			Branch:     "main",
		},
		Forms: FormsConfig{APIBaseURL: "https://api.netlify.com"},
	}
}
