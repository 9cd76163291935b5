package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tweetcollector"

	// DefaultDAGID is the identifier of the tweet collection DAG.
	DefaultDAGID = "tweet_collector"

	// DefaultSchedule runs the DAG once per calendar month.
	DefaultSchedule = "@monthly"

	// DefaultStartDate is the first period of the DAG.
	DefaultStartDate = "2007-01-01"

	// DefaultOwner is recorded on every task.
	DefaultOwner = "Utrecht University"

	// DefaultQuerySearch is the search query handed to the scrape tool.
	DefaultQuerySearch = "from:utrechtuni"

	// DefaultScrapeRuns is how many independent scrape runs feed one merge.
	// Several runs are made because a single scrape is not guaranteed complete.
	DefaultScrapeRuns = 3

	// DefaultOutputFolder is where every stage writes its files.
	DefaultOutputFolder = "output"

	// DefaultScrapeCommand is the external scrape tool.
	DefaultScrapeCommand = "GetOldTweets3"

	// DefaultBatchSize is the number of ids per lookup call.
	// statuses/lookup accepts at most 100 ids.
	DefaultBatchSize = 100

	// DefaultRetryCount is how many times a failed lookup request is retried.
	DefaultRetryCount = 3

	// DefaultRetryDelay is the delay between lookup retries.
	DefaultRetryDelay = 2 * time.Second

	// DefaultMaxRateLimitWait caps one wait for a rate-limit window to reset.
	DefaultMaxRateLimitWait = 15 * time.Minute

	// DefaultConcurrency is the number of DAG tasks run at once.
	DefaultConcurrency = 4

	// MaxBatchSize is the upper bound accepted by the lookup endpoint.
	MaxBatchSize = 100
)

// Config holds all configuration options for tweetcollector.
// It is populated from defaults, then the configuration file, then CLI flags.
type Config struct {
	// DAG holds the task graph settings.
	DAG DAGConfig

	// Lookup holds the lookup client settings.
	Lookup LookupConfig

	// Concurrency is the number of DAG tasks that may run at once.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool

	// DBDir is the directory holding the task instance database.
	DBDir string
}

// DAGConfig describes the tweet collection DAG.
type DAGConfig struct {
	// ID names the DAG.
	ID string

	// Schedule is one of @daily, @weekly, @monthly or @yearly.
	Schedule string

	// StartDate is the first period, as YYYY-MM-DD.
	StartDate string

	// Owner is informational.
	Owner string

	// QuerySearch is the search query given to the scrape tool.
	QuerySearch string

	// LangSearch optionally restricts the scrape to a language.
	LangSearch string

	// ScrapeRuns is the number of parallel scrape tasks.
	ScrapeRuns int

	// OutputFolder is the root directory for all stage outputs.
	OutputFolder string

	// ScrapeCommand is the executable of the external scrape tool.
	ScrapeCommand string

	// Binary is the tweetcollector executable the merge, lookup and
	// validate tasks invoke. Empty means the running executable.
	Binary string
}

// LookupConfig configures the lookup client.
type LookupConfig struct {
	// BatchSize is the number of ids per API call.
	BatchSize int

	// RetryCount is how many times a failed request is retried.
	RetryCount int

	// RetryDelay is the delay between retries.
	RetryDelay time.Duration

	// WaitOnRateLimit blocks until the rate-limit window resets instead of failing.
	WaitOnRateLimit bool

	// MaxRateLimitWait caps one rate-limit wait.
	MaxRateLimitWait time.Duration

	// CredentialsPath is the JSON credentials document.
	// Empty means TWITTER_CREDENTIALS decides.
	CredentialsPath string

	// Proxy is an optional SOCKS5 proxy address (host:port).
	Proxy string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DAG: DAGConfig{
			ID:            DefaultDAGID,
			Schedule:      DefaultSchedule,
			StartDate:     DefaultStartDate,
			Owner:         DefaultOwner,
			QuerySearch:   DefaultQuerySearch,
			ScrapeRuns:    DefaultScrapeRuns,
			OutputFolder:  DefaultOutputFolder,
			ScrapeCommand: DefaultScrapeCommand,
		},
		Lookup: LookupConfig{
			BatchSize:        DefaultBatchSize,
			RetryCount:       DefaultRetryCount,
			RetryDelay:       DefaultRetryDelay,
			WaitOnRateLimit:  true,
			MaxRateLimitWait: DefaultMaxRateLimitWait,
		},
		Concurrency: DefaultConcurrency,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for tweetcollector.
// On Linux: ~/.local/share/tweetcollector
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tweetcollector.
// On Linux: ~/.config/tweetcollector
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile overlays the non-zero values of f onto c.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}

	d := f.DAG
	if d.ID != "" {
		c.DAG.ID = d.ID
	}
	if d.Schedule != "" {
		c.DAG.Schedule = d.Schedule
	}
	if d.StartDate != "" {
		c.DAG.StartDate = d.StartDate
	}
	if d.Owner != "" {
		c.DAG.Owner = d.Owner
	}
	if d.QuerySearch != "" {
		c.DAG.QuerySearch = d.QuerySearch
	}
	if d.LangSearch != "" {
		c.DAG.LangSearch = d.LangSearch
	}
	if d.ScrapeRuns != 0 {
		c.DAG.ScrapeRuns = d.ScrapeRuns
	}
	if d.OutputFolder != "" {
		c.DAG.OutputFolder = d.OutputFolder
	}
	if d.ScrapeCommand != "" {
		c.DAG.ScrapeCommand = d.ScrapeCommand
	}
	if d.Binary != "" {
		c.DAG.Binary = d.Binary
	}

	l := f.Lookup
	if l.BatchSize != 0 {
		c.Lookup.BatchSize = l.BatchSize
	}
	if l.RetryCount != nil {
		c.Lookup.RetryCount = *l.RetryCount
	}
	if l.RetryDelay != 0 {
		c.Lookup.RetryDelay = l.RetryDelay
	}
	if l.WaitOnRateLimit != nil {
		c.Lookup.WaitOnRateLimit = *l.WaitOnRateLimit
	}
	if l.MaxRateLimitWait != 0 {
		c.Lookup.MaxRateLimitWait = l.MaxRateLimitWait
	}
	if l.Credentials != "" {
		c.Lookup.CredentialsPath = l.Credentials
	}
	if l.Proxy != "" {
		c.Lookup.Proxy = l.Proxy
	}

	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}

// Validate checks the lookup settings.
func (l LookupConfig) Validate() error {
	if l.BatchSize <= 0 || l.BatchSize > MaxBatchSize {
		return ErrInvalidBatchSize
	}
	if l.RetryCount < 0 {
		return ErrInvalidRetryCount
	}
	if l.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}
	return nil
}

// Validate checks the DAG settings.
func (d DAGConfig) Validate() error {
	if d.ID == "" {
		return ErrNoDAGID
	}
	if d.QuerySearch == "" {
		return ErrNoQuery
	}
	if d.ScrapeRuns <= 0 {
		return ErrInvalidScrapeRuns
	}
	if d.OutputFolder == "" {
		return ErrNoOutputFolder
	}
	switch d.Schedule {
	case "@daily", "@weekly", "@monthly", "@yearly":
	default:
		return ErrInvalidSchedule
	}
	if _, err := time.Parse(time.DateOnly, d.StartDate); err != nil {
		return ErrInvalidStartDate
	}
	return nil
}

// Validate checks the whole configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.DAG.Validate(); err != nil {
		return err
	}
	if err := c.Lookup.Validate(); err != nil {
		return err
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	return nil
}
