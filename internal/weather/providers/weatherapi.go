package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	base
	apiKey string
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		base:   newBase("weatherapi", client, "https://api.weatherapi.com/v1", opts),
		apiKey: apiKey,
	}
}

type weatherAPICurrent struct {
	Location struct {
		Name           string  `json:"name"`
		Country        string  `json:"country"`
		Lat            float64 `json:"lat"`
		Lon            float64 `json:"lon"`
		TzID           string  `json:"tz_id"`
		LocaltimeEpoch int64   `json:"localtime_epoch"`
	} `json:"location"`
	Current struct {
		LastUpdatedEpoch int64   `json:"last_updated_epoch"`
		TempC            float64 `json:"temp_c"`
		FeelsLikeC       float64 `json:"feelslike_c"`
		Humidity         float64 `json:"humidity"`
		WindKph          float64 `json:"wind_kph"`
		PressureMb       float64 `json:"pressure_mb"`
		IsDay            int     `json:"is_day"`
		Condition        struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("lang", p.lang)
	// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
	if loc.HasCoords() {
		values.Set("q", fmt.Sprintf("%f,%f", *loc.Lat, *loc.Lon))
	} else {
		q := loc.City
		if loc.Country != "" {
			q = fmt.Sprintf("%s,%s", loc.City, loc.Country)
		}
		values.Set("q", q)
	}

	var payload weatherAPICurrent
	if err := p.getJSON(ctx, "current.json", values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	epoch := payload.Current.LastUpdatedEpoch
	if epoch == 0 {
		epoch = payload.Location.LocaltimeEpoch
	}
	ts := time.Unix(epoch, 0).UTC()
	if epoch == 0 {
		ts = time.Now().UTC()
	}

	offset := 0
	if payload.Location.TzID != "" {
		if tz, err := time.LoadLocation(payload.Location.TzID); err == nil {
			_, offset = ts.In(tz).Zone()
		}
	}

	code := mapConditionText(payload.Current.Condition.Text)

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		Name:         common.Coalesce(payload.Location.Name, loc.City),
		Country:      common.Coalesce(loc.Country, payload.Location.Country),
		Coord:        weather.Coordinates{Lat: payload.Location.Lat, Lon: payload.Location.Lon},
		UTCOffset:    offset,
		TemperatureC: payload.Current.TempC,
		FeelsLikeC:   payload.Current.FeelsLikeC,
		TempMinC:     payload.Current.TempC,
		TempMaxC:     payload.Current.TempC,
		HumidityPct:  payload.Current.Humidity,
		// Convert wind from kph to m/s (approx).
		WindSpeedMS:   payload.Current.WindKph / 3.6,
		PressureHpa:   payload.Current.PressureMb,
		ConditionCode: code.id,
		Icon:          iconFor(code.icon, payload.Current.IsDay == 1),
		Description:   code.description,
	}, nil
}
