package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"papercut/feed"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort          int
	ProxyURL         string
	LogLevel         string
	HTTPTimeout      time.Duration
	ValidatePDF      bool
	PDFEngine        string
	StopKeywords     []string
	FeedSettingsPath string
	StorePath        string
	ArchiveDir       string
}

func Load() (*Config, error) {
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	validate, err := strconv.ParseBool(getEnv("PDF_VALIDATE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid PDF_VALIDATE: %w", err)
	}

	return &Config{
		AppPort:          appPort,
		ProxyURL:         getEnv("PROXY_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPTimeout:      timeout,
		ValidatePDF:      validate,
		PDFEngine:        getEnv("PDF_ENGINE", "ledongthuc"),
		StopKeywords:     splitList(getEnv("STOP_KEYWORDS", "")),
		FeedSettingsPath: getEnv("FEED_SETTINGS_PATH", ""),
		StorePath:        getEnv("STORE_PATH", ""),
		ArchiveDir:       getEnv("ARCHIVE_DIR", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FeedSettings controls the scheduled arXiv crawl.
type FeedSettings struct {
	Enabled    bool   `yaml:"enabled"`
	Query      string `yaml:"query"`
	MaxResults int    `yaml:"max_results"`
	Schedule   string `yaml:"schedule"`
	SortBy     string `yaml:"sort_by"`
	SortOrder  string `yaml:"sort_order"`
}

// DefaultFeedSettings mirrors a run with no settings file.
func DefaultFeedSettings() FeedSettings {
	return FeedSettings{
		Enabled:    true,
		Query:      feed.DefaultQuery,
		MaxResults: feed.DefaultMaxResults,
		Schedule:   "0 0 * * *",
		SortBy:     "submittedDate",
		SortOrder:  "descending",
	}
}

// LoadFeedSettings reads YAML settings over the defaults. An empty path
// returns the defaults.
func LoadFeedSettings(path string) (FeedSettings, error) {
	settings := DefaultFeedSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read feed settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse feed settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid feed settings: %w", err)
	}
	return settings, nil
}

func (s FeedSettings) Validate() error {
	if strings.TrimSpace(s.Query) == "" {
		return errors.New("query is required")
	}
	if s.MaxResults <= 0 {
		return errors.New("max_results must be positive")
	}
	return nil
}

// FeedQuery converts the settings into a feed query.
func (s FeedSettings) FeedQuery() feed.Query {
	return feed.Query{
		SearchQuery: s.Query,
		MaxResults:  s.MaxResults,
		SortBy:      s.SortBy,
		SortOrder:   s.SortOrder,
	}
}
