package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized current conditions
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	Name      string
	Country   string
	Coord     Coordinates
	UTCOffset int

	TemperatureC  float64
	FeelsLikeC    float64
	TempMinC      float64
	TempMaxC      float64
	HumidityPct   float64
	WindSpeedMS   float64
	PressureHpa   float64
	ConditionCode int
	Icon          string
	Description   string
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ForecastProvider is implemented by providers that serve a 3-hour forecast.
type ForecastProvider interface {
	Provider
	FetchForecast(ctx context.Context, loc Location) (ForecastSeries, error)
}

// Store is the contract the in-memory snapshot store must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot WeatherSnapshot)
	GetLatest(loc Location) (WeatherSnapshot, error)
	GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error)
}
