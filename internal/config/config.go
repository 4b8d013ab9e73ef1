package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all service configuration, loaded from the environment.
type AppConfig struct {
	Port string

	// Provider endpoints.
	MarineBaseURL    string
	ForecastBaseURL  string
	ArchiveBaseURL   string
	TideGaugeBaseURL string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// Range policy.
	HistoryCapDays   int // max length of a substituted window
	TideMaxRangeDays int // tide gauge hard limit, independent of the above

	// Diagnostics.
	TraceMaxSteps     int
	JournalMaxEntries int
	JournalMaxAge     time.Duration
	ProbeInterval     time.Duration

	// Optional reverse-geocoding key for locationContext.
	GeocoderAPIKey string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		MarineBaseURL:     getenvDefault("MARINE_BASE_URL", "https://marine-api.open-meteo.com/v1/marine"),
		ForecastBaseURL:   getenvDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		ArchiveBaseURL:    getenvDefault("ARCHIVE_BASE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		TideGaugeBaseURL:  getenvDefault("TIDEGAUGE_BASE_URL", "https://environment.data.gov.uk/flood-monitoring/id"),
		HistoryCapDays:    getenvInt("HISTORY_CAP_DAYS", 90),
		TideMaxRangeDays:  getenvInt("TIDE_MAX_RANGE_DAYS", 30),
		TraceMaxSteps:     getenvInt("TRACE_MAX_STEPS", 250),
		JournalMaxEntries: getenvInt("JOURNAL_MAX_ENTRIES", 100),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.JournalMaxAge, err = getenvDuration("JOURNAL_MAX_AGE", "24h"); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
