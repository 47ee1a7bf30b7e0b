package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, portEnv, adminTokenEnv, searchTermsEnv,
		githubTokenEnv, githubRepoEnv, databaseDSNEnv, redisAddrEnv,
		netlifyTokenEnv, netlifySiteEnv, bingAPIKeyEnv,
		telegramBotEnv, telegramChatEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port %q", cfg.Server.Port)
	}
	if len(cfg.Crawler.SearchTerms) != 4 {
		t.Fatalf("expected 4 default search terms, got %v", cfg.Crawler.SearchTerms)
	}
	if !reflect.DeepEqual(cfg.Crawler.Sources, []string{"googlenews"}) {
		t.Fatalf("unexpected default sources %v", cfg.Crawler.Sources)
	}
	if cfg.Crawler.PerSourceTimeout() != 3*time.Second {
		t.Fatalf("unexpected per-source timeout %v", cfg.Crawler.PerSourceTimeout())
	}
	if cfg.Crawler.GlobalBudget() != 9*time.Second {
		t.Fatalf("unexpected global budget %v", cfg.Crawler.GlobalBudget())
	}
	if cfg.Crawler.CronExpression != "0 9 * * *" {
		t.Fatalf("unexpected cron expression %q", cfg.Crawler.CronExpression)
	}
	if cfg.Store.Branch != "main" {
		t.Fatalf("unexpected default branch %q", cfg.Store.Branch)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(portEnv, "9090")
	t.Setenv(adminTokenEnv, "hunter2")
	t.Setenv(searchTermsEnv, " Logan Federico , vigil ,, ")
	t.Setenv(githubRepoEnv, "example/site")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Fatalf("port override not applied: %q", cfg.Server.Port)
	}
	if cfg.Server.AdminToken != "hunter2" {
		t.Fatalf("token override not applied: %q", cfg.Server.AdminToken)
	}
	if !reflect.DeepEqual(cfg.Crawler.SearchTerms, []string{"Logan Federico", "vigil"}) {
		t.Fatalf("terms not split and trimmed: %v", cfg.Crawler.SearchTerms)
	}
	if cfg.Store.Repo != "example/site" {
		t.Fatalf("repo override not applied: %q", cfg.Store.Repo)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "3000"
crawler:
  searchTerms: ["only term"]
  timeoutSeconds: 2
  budgetSeconds: 8
feeds:
  outlets:
    - name: wis10
      url: https://www.wistv.com/rss
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Server.Port != "3000" {
		t.Fatalf("file port not applied: %q", cfg.Server.Port)
	}
	if !reflect.DeepEqual(cfg.Crawler.SearchTerms, []string{"only term"}) {
		t.Fatalf("file terms not applied: %v", cfg.Crawler.SearchTerms)
	}
	if cfg.Crawler.TimeoutSeconds != 2 || cfg.Crawler.BudgetSeconds != 8 {
		t.Fatalf("file budgets not applied: %+v", cfg.Crawler)
	}
	if len(cfg.Feeds.Outlets) != 1 || cfg.Feeds.Outlets[0].Name != "wis10" {
		t.Fatalf("file outlets not applied: %+v", cfg.Feeds.Outlets)
	}
	// Unset file fields keep their defaults.
	if cfg.Crawler.CronExpression != "0 9 * * *" {
		t.Fatalf("default cron lost in merge: %q", cfg.Crawler.CronExpression)
	}
}

func TestLoadClampsBudget(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
crawler:
  timeoutSeconds: 5
  budgetSeconds: 5
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	// A budget equal to the per-source timeout leaves no room for a full fetch
	// round, so it is raised.
	if cfg.Crawler.BudgetSeconds != 15 {
		t.Fatalf("budget not clamped, got %d", cfg.Crawler.BudgetSeconds)
	}
}

func TestLoadBadTimezoneFallsBack(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("crawler:\n  timezone: Not/AZone\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if got := cfg.Crawler.Location().String(); got != "UTC" {
		t.Fatalf("bad timezone must revert to UTC, got %q", got)
	}
}
