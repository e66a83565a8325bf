package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	// OpenWeatherBaseURLs are tried in order; empty means the provider defaults.
	OpenWeatherBaseURLs []string `validate:"dive,url"`
	WeatherAPIKey       string
	// GeocoderAPIKey enables Google geocoding for Open-Meteo; without it the
	// keyless Open-Meteo search is used.
	GeocoderAPIKey string

	// FetchInterval controls how often tracked locations are refreshed.
	FetchInterval time.Duration `validate:"gt=0"`
	HTTPTimeout   time.Duration `validate:"gt=0"`

	// Locations tracked by the scheduler and used as the CLI default.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of snapshots (0 = unlimited)

	Port string `validate:"required,numeric"`

	// Forecast view defaults.
	ForecastDays         int `validate:"min=1,max=6"`
	ForecastExcludeToday bool
	Lang                 string `validate:"oneof=en ru"`
}

var validate = validator.New()

// Load reads a .env file when present and then the environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables with defaults.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		StoreMaxHistory:   getenvInt("STORE_MAX_HISTORY", 96), // roughly 24h at 15-minute intervals
		Port:              getenvDefault("PORT", "8080"),
		ForecastDays:      getenvInt("FORECAST_DAYS", 5),
		Lang:              strings.ToLower(getenvDefault("WEATHER_LANG", "en")),
	}
	cfg.OpenWeatherBaseURLs = splitList(os.Getenv("OPENWEATHER_BASE_URLS"))

	var err error
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ForecastExcludeToday, err = getenvBool("FORECAST_EXCLUDE_TODAY", false); err != nil {
		return nil, err
	}

	if cfg.Locations, err = loadLocations(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadLocations pairs the comma-separated city and country lists.
func loadLocations() ([]weather.Location, error) {
	cities := splitList(os.Getenv("WEATHER_LOCATION_CITY"))
	countries := splitList(os.Getenv("WEATHER_LOCATION_COUNTRY"))
	if len(cities) == 0 {
		if len(countries) > 0 {
			return nil, fmt.Errorf("WEATHER_LOCATION_COUNTRY is set without WEATHER_LOCATION_CITY")
		}
		return nil, nil
	}
	if len(countries) > 0 && len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	locs := make([]weather.Location, 0, len(cities))
	for i, city := range cities {
		loc := weather.Location{City: city}
		if len(countries) > 0 {
			loc.Country = countries[i]
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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
		log.Printf("INFO: ignoring invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
