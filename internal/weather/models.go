package weather

import (
	"fmt"
	"time"

	"github.com/i474232898/weather-dashboard/internal/forecast"
)

// Location represents a place the dashboard shows weather for.
// Either City or both Lat/Lon must be provided.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// HasCoords reports whether the location carries coordinates.
func (l Location) HasCoords() bool {
	return l.Lat != nil && l.Lon != nil
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.City == "" && l.HasCoords() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return l.City + ":" + l.Country
}

// Coordinates is a resolved point on the map.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherSnapshot is the normalized current-conditions view at a point in time.
type WeatherSnapshot struct {
	Location      Location    `json:"location"`
	Name          string      `json:"name"`
	Country       string      `json:"country"`
	Coord         Coordinates `json:"coord"`
	Timestamp     time.Time   `json:"timestamp"` // always UTC
	UTCOffset     int         `json:"timezone"`  // seconds east of UTC
	Temperature   float64     `json:"temperatureC"`
	FeelsLike     float64     `json:"feelsLikeC"`
	TempMin       float64     `json:"tempMinC"`
	TempMax       float64     `json:"tempMaxC"`
	Humidity      float64     `json:"humidityPercent"`
	WindSpeed     float64     `json:"windSpeed"`
	Pressure      float64     `json:"pressureHpa"`
	ConditionCode int         `json:"conditionCode"`
	Condition     Condition   `json:"condition"`
	Icon          string      `json:"icon"`
	Description   string      `json:"description"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

// ForecastSeries is the raw 3-hour forecast of one provider.
type ForecastSeries struct {
	ProviderName string            `json:"provider"`
	City         string            `json:"city"`
	Country      string            `json:"country"`
	Coord        Coordinates       `json:"coord"`
	UTCOffset    int               `json:"timezone"`
	Samples      []forecast.Sample `json:"samples"`
}

// DailyForecast is the daily list a dashboard renders.
type DailyForecast struct {
	Location  Location                `json:"location"`
	Provider  string                  `json:"provider"`
	UTCOffset int                     `json:"timezone"`
	Days      []forecast.DailySummary `json:"days"`
}

// HourlyForecast is the hourly breakdown for one day.
type HourlyForecast struct {
	Location Location                  `json:"location"`
	Date     string                    `json:"date"`
	Day      forecast.DailySummary     `json:"day"`
	Hours    []forecast.HourlyEstimate `json:"hours"`
}
