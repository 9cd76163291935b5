package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".tweetcollector"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .tweetcollector configuration file.
type File struct {
	DAG         DAGFile    `yaml:"dag,omitempty"`
	Lookup      LookupFile `yaml:"lookup,omitempty"`
	Concurrency int        `yaml:"concurrency,omitempty"`
	DBDir       string     `yaml:"db_dir,omitempty"`
}

// DAGFile is the dag section of the configuration file.
type DAGFile struct {
	ID            string `yaml:"id,omitempty"`
	Schedule      string `yaml:"schedule,omitempty"`
	StartDate     string `yaml:"start_date,omitempty"`
	Owner         string `yaml:"owner,omitempty"`
	QuerySearch   string `yaml:"query_search,omitempty"`
	LangSearch    string `yaml:"lang_search,omitempty"`
	ScrapeRuns    int    `yaml:"scrape_runs,omitempty"`
	OutputFolder  string `yaml:"output_folder,omitempty"`
	ScrapeCommand string `yaml:"scrape_command,omitempty"`
	Binary        string `yaml:"binary,omitempty"`
}

// LookupFile is the lookup section of the configuration file.
// Pointer fields distinguish an explicit zero or false from an absent key.
type LookupFile struct {
	BatchSize        int           `yaml:"batch_size,omitempty"`
	RetryCount       *int          `yaml:"retry_count,omitempty"`
	RetryDelay       time.Duration `yaml:"retry_delay,omitempty"`
	WaitOnRateLimit  *bool         `yaml:"wait_on_rate_limit,omitempty"`
	MaxRateLimitWait time.Duration `yaml:"max_rate_limit_wait,omitempty"`
	Credentials      string        `yaml:"credentials,omitempty"`
	Proxy            string        `yaml:"proxy,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .tweetcollector in the current directory
// 3. config.yaml in the XDG config directory
// 4. .tweetcollector in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
