package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// DataDir is where persisted client state lives (weather series,
	// last location, recents, capacity), one JSON file per key.
	DataDir string

	// HTTPTimeout bounds outbound calls to the weather and geocoding APIs.
	HTTPTimeout time.Duration

	// RefreshInterval controls how often the scheduler re-fetches today's
	// observation for the active location.
	RefreshInterval time.Duration

	// ForecastDays is the default forecast window, today inclusive.
	ForecastDays int

	// Endpoint overrides, empty for production defaults. Used by tests and
	// for pointing at a self-hosted Open-Meteo instance.
	WeatherBaseURL string
	GeocodeBaseURL string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DataDir = getenvDefault("DATA_DIR", "data")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	intervalStr := getenvDefault("REFRESH_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 5)
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 7 {
		return nil, fmt.Errorf("FORECAST_DAYS must be between 1 and 7")
	}

	cfg.WeatherBaseURL = os.Getenv("WEATHER_BASE_URL")
	cfg.GeocodeBaseURL = os.Getenv("GEOCODE_BASE_URL")

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
