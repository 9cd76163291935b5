package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("dag defaults describe the monthly university collection", func(t *testing.T) {
		t.Parallel()
		if cfg.DAG.ID != "tweet_collector" {
			t.Errorf("expected DAG id 'tweet_collector', got %q", cfg.DAG.ID)
		}
		if cfg.DAG.Schedule != "@monthly" {
			t.Errorf("expected schedule '@monthly', got %q", cfg.DAG.Schedule)
		}
		if cfg.DAG.StartDate != "2007-01-01" {
			t.Errorf("expected start date '2007-01-01', got %q", cfg.DAG.StartDate)
		}
		if cfg.DAG.QuerySearch != "from:utrechtuni" {
			t.Errorf("expected query 'from:utrechtuni', got %q", cfg.DAG.QuerySearch)
		}
		if cfg.DAG.ScrapeRuns != 3 {
			t.Errorf("expected 3 scrape runs, got %d", cfg.DAG.ScrapeRuns)
		}
		if cfg.DAG.OutputFolder != "output" {
			t.Errorf("expected output folder 'output', got %q", cfg.DAG.OutputFolder)
		}
	})

	t.Run("default BatchSize is 100", func(t *testing.T) {
		t.Parallel()
		if cfg.Lookup.BatchSize != 100 {
			t.Errorf("expected BatchSize to be 100, got %d", cfg.Lookup.BatchSize)
		}
	})

	t.Run("default retry policy is 3 retries 2 seconds apart", func(t *testing.T) {
		t.Parallel()
		if cfg.Lookup.RetryCount != 3 {
			t.Errorf("expected RetryCount 3, got %d", cfg.Lookup.RetryCount)
		}
		if cfg.Lookup.RetryDelay != 2*time.Second {
			t.Errorf("expected RetryDelay 2s, got %v", cfg.Lookup.RetryDelay)
		}
	})

	t.Run("waits on rate limit by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.Lookup.WaitOnRateLimit {
			t.Error("expected WaitOnRateLimit to be true")
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "zero batch size", modify: func(c *Config) { c.Lookup.BatchSize = 0 }, want: ErrInvalidBatchSize},
		{name: "batch size above endpoint limit", modify: func(c *Config) { c.Lookup.BatchSize = 101 }, want: ErrInvalidBatchSize},
		{name: "negative retry count", modify: func(c *Config) { c.Lookup.RetryCount = -1 }, want: ErrInvalidRetryCount},
		{name: "negative retry delay", modify: func(c *Config) { c.Lookup.RetryDelay = -time.Second }, want: ErrInvalidRetryDelay},
		{name: "empty dag id", modify: func(c *Config) { c.DAG.ID = "" }, want: ErrNoDAGID},
		{name: "empty query", modify: func(c *Config) { c.DAG.QuerySearch = "" }, want: ErrNoQuery},
		{name: "no scrape runs", modify: func(c *Config) { c.DAG.ScrapeRuns = 0 }, want: ErrInvalidScrapeRuns},
		{name: "empty output folder", modify: func(c *Config) { c.DAG.OutputFolder = "" }, want: ErrNoOutputFolder},
		{name: "cron schedule", modify: func(c *Config) { c.DAG.Schedule = "0 0 1 * *" }, want: ErrInvalidSchedule},
		{name: "bad start date", modify: func(c *Config) { c.DAG.StartDate = "01-01-2007" }, want: ErrInvalidStartDate},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, want: ErrInvalidConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestLoadConfigFile tests YAML loading and overlaying onto defaults.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `dag:
  query_search: "from:uu_library"
  lang_search: nl
  scrape_runs: 5
  schedule: "@weekly"
lookup:
  batch_size: 50
  retry_count: 0
  retry_delay: 500ms
  wait_on_rate_limit: false
  credentials: /secrets/twitter.json
concurrency: 2
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cfg.ApplyFile(f)

		if cfg.DAG.QuerySearch != "from:uu_library" {
			t.Errorf("expected query override, got %q", cfg.DAG.QuerySearch)
		}
		if cfg.DAG.LangSearch != "nl" {
			t.Errorf("expected lang 'nl', got %q", cfg.DAG.LangSearch)
		}
		if cfg.DAG.ScrapeRuns != 5 {
			t.Errorf("expected 5 scrape runs, got %d", cfg.DAG.ScrapeRuns)
		}
		if cfg.DAG.Schedule != "@weekly" {
			t.Errorf("expected '@weekly', got %q", cfg.DAG.Schedule)
		}
		if cfg.DAG.StartDate != DefaultStartDate {
			t.Errorf("expected untouched start date, got %q", cfg.DAG.StartDate)
		}
		if cfg.Lookup.BatchSize != 50 {
			t.Errorf("expected batch size 50, got %d", cfg.Lookup.BatchSize)
		}
		if cfg.Lookup.RetryCount != 0 {
			t.Errorf("expected explicit retry count 0, got %d", cfg.Lookup.RetryCount)
		}
		if cfg.Lookup.RetryDelay != 500*time.Millisecond {
			t.Errorf("expected retry delay 500ms, got %v", cfg.Lookup.RetryDelay)
		}
		if cfg.Lookup.WaitOnRateLimit {
			t.Error("expected wait_on_rate_limit false to be applied")
		}
		if cfg.Lookup.CredentialsPath != "/secrets/twitter.json" {
			t.Errorf("unexpected credentials path %q", cfg.Lookup.CredentialsPath)
		}
		if cfg.Concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", cfg.Concurrency)
		}
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("dag: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

// TestFindConfigFile tests the explicit path branch of the search.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

// TestXDGDirs verifies the application name is part of the XDG paths.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("expected data dir to end in %q, got %q", AppName, XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("expected config dir to end in %q, got %q", AppName, XDGConfigDir())
	}
}
