package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "weather-dashboard",
		Short:         "Weather dashboard backend",
		Long:          "Fetches current conditions and forecasts from several providers and serves dashboard data.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newCurrentCmd(),
		newForecastCmd(),
		newHourlyCmd(),
		newProvidersCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by every command.
type app struct {
	cfg     *config.AppConfig
	service *weather.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := weather.NewService(memStore, buildProviders(cfg, httpClient),
		weather.WithDefaults(weather.ForecastQuery{
			Days:         cfg.ForecastDays,
			ExcludeToday: cfg.ForecastExcludeToday,
			Locale:       forecast.ParseLocale(cfg.Lang),
		}),
	)

	return &app{cfg: cfg, service: service}, nil
}

// buildProviders returns providers in priority order. OpenWeatherMap comes
// first so it serves the forecast whenever it is configured.
func buildProviders(cfg *config.AppConfig, client *http.Client) []weather.Provider {
	var provs []weather.Provider
	lang := providers.WithLanguage(cfg.Lang)

	if cfg.OpenWeatherAPIKey != "" {
		opts := []providers.Option{lang}
		if len(cfg.OpenWeatherBaseURLs) > 0 {
			opts = append(opts, providers.WithBaseURLs(cfg.OpenWeatherBaseURLs...))
		}
		provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey, opts...))
		log.Printf("INFO: provider openweathermap enabled")
	}

	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey, lang))
		log.Printf("INFO: provider weatherapi enabled")
	}

	// Open-Meteo needs no key; it only needs coordinates for city queries.
	var geo providers.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	} else {
		geo = providers.NewOpenMeteoGeocoder(client, lang)
	}
	provs = append(provs, providers.NewOpenMeteoProvider(client, geo, lang))
	log.Printf("INFO: provider openmeteo enabled")

	return provs
}
