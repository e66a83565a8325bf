package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenWeatherURLs are tried in order when a base URL cannot be reached.
var DefaultOpenWeatherURLs = []string{
	"https://api.openweathermap.org/data/2.5",
	"https://openweathermap.org/data/2.5",
	"https://pro.openweathermap.org/data/2.5",
}

// OpenWeatherProvider implements weather.ForecastProvider for OpenWeatherMap.
type OpenWeatherProvider struct {
	base
	apiKey string
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	opts = append([]Option{WithBaseURLs(DefaultOpenWeatherURLs...)}, opts...)
	return &OpenWeatherProvider{
		base:   newBase("openweathermap", client, DefaultOpenWeatherURLs[0], opts),
		apiKey: apiKey,
	}
}

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  float64 `json:"humidity"`
	Pressure  float64 `json:"pressure"`
}

type owmCurrent struct {
	Dt       int64   `json:"dt"`
	Timezone int     `json:"timezone"`
	Name     string  `json:"name"`
	Main     owmMain `json:"main"`
	Coord    struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []owmCondition `json:"weather"`
}

type owmForecast struct {
	List []struct {
		Dt      int64          `json:"dt"`
		Main    owmMain        `json:"main"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
		Coord    struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
}

func (p *OpenWeatherProvider) query(loc weather.Location) url.Values {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("lang", p.lang)

	if loc.HasCoords() {
		values.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
		return values
	}
	q := loc.City
	if loc.Country != "" {
		q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
	}
	values.Set("q", q)
	return values
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("openweather api key is not configured")
	}

	var payload owmCurrent
	if err := p.getJSON(ctx, "weather", p.query(loc), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	cond := firstCondition(payload.Weather)

	return weather.ProviderReading{
		ProviderName:  p.name,
		Timestamp:     ts,
		Name:          payload.Name,
		Country:       payload.Sys.Country,
		Coord:         weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon},
		UTCOffset:     payload.Timezone,
		TemperatureC:  payload.Main.Temp,
		FeelsLikeC:    payload.Main.FeelsLike,
		TempMinC:      payload.Main.TempMin,
		TempMaxC:      payload.Main.TempMax,
		HumidityPct:   payload.Main.Humidity,
		WindSpeedMS:   payload.Wind.Speed,
		PressureHpa:   payload.Main.Pressure,
		ConditionCode: cond.ID,
		Icon:          cond.Icon,
		Description:   cond.Description,
	}, nil
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.ForecastSeries, error) {
	if p.apiKey == "" {
		return weather.ForecastSeries{}, fmt.Errorf("openweather api key is not configured")
	}

	var payload owmForecast
	if err := p.getJSON(ctx, "forecast", p.query(loc), &payload); err != nil {
		return weather.ForecastSeries{}, err
	}

	samples := make([]forecast.Sample, 0, len(payload.List))
	for _, item := range payload.List {
		cond := firstCondition(item.Weather)
		samples = append(samples, forecast.Sample{
			Timestamp:     item.Dt,
			TempC:         item.Main.Temp,
			ConditionCode: cond.ID,
			Icon:          cond.Icon,
			Description:   cond.Description,
		})
	}

	return weather.ForecastSeries{
		ProviderName: p.name,
		City:         payload.City.Name,
		Country:      payload.City.Country,
		Coord:        weather.Coordinates{Lat: payload.City.Coord.Lat, Lon: payload.City.Coord.Lon},
		UTCOffset:    payload.City.Timezone,
		Samples:      samples,
	}, nil
}

// firstCondition returns the primary condition; a missing one leaves every field empty.
func firstCondition(items []owmCondition) owmCondition {
	if len(items) == 0 {
		return owmCondition{}
	}
	return items[0]
}
