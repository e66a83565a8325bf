package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// OpenMeteoProvider implements weather.ForecastProvider for Open-Meteo.
// Open-Meteo only takes coordinates, so city locations go through a Geocoder.
type OpenMeteoProvider struct {
	base
	geocoder Geocoder

	// resolved memoizes geocoding results by location key.
	resolved sync.Map
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder, opts ...Option) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		base:     newBase("openmeteo", client, "https://api.open-meteo.com/v1", opts),
		geocoder: geo,
	}
}

type openMeteoPayload struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	UTCOffsetSeconds int     `json:"utc_offset_seconds"`
	Current          struct {
		Time             int64   `json:"time"`
		Temperature      float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
		ApparentTemp     float64 `json:"apparent_temperature"`
		IsDay            int     `json:"is_day"`
		WeatherCode      int     `json:"weather_code"`
		WindSpeed        float64 `json:"wind_speed_10m"`
		SurfacePressure  float64 `json:"surface_pressure"`
	} `json:"current"`
	Hourly struct {
		Time        []int64   `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		WeatherCode []int     `json:"weather_code"`
		IsDay       []int     `json:"is_day"`
	} `json:"hourly"`
	Daily struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) coordinates(ctx context.Context, loc weather.Location) (weather.Coordinates, error) {
	if loc.HasCoords() {
		return weather.Coordinates{Lat: *loc.Lat, Lon: *loc.Lon}, nil
	}
	if v, ok := p.resolved.Load(loc.Key()); ok {
		return v.(weather.Coordinates), nil
	}
	if p.geocoder == nil {
		return weather.Coordinates{}, fmt.Errorf("openmeteo requires latitude and longitude")
	}
	c, err := p.geocoder.Geocode(ctx, loc.City, loc.Country)
	if err != nil {
		return weather.Coordinates{}, err
	}
	p.resolved.Store(loc.Key(), c)
	return c, nil
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, loc weather.Location) (openMeteoPayload, error) {
	var payload openMeteoPayload

	c, err := p.coordinates(ctx, loc)
	if err != nil {
		return payload, err
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	values.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,weather_code,wind_speed_10m,surface_pressure")
	values.Set("hourly", "temperature_2m,weather_code,is_day")
	values.Set("daily", "temperature_2m_max,temperature_2m_min")
	values.Set("forecast_days", "6")
	values.Set("timezone", "auto")
	values.Set("timeformat", "unixtime")
	values.Set("wind_speed_unit", "ms")

	if err := p.getJSON(ctx, "forecast", values, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	payload, err := p.fetch(ctx, loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	cur := payload.Current
	ts := time.Unix(cur.Time, 0).UTC()
	if cur.Time == 0 {
		ts = time.Now().UTC()
	}

	tempMin, tempMax := cur.Temperature, cur.Temperature
	if len(payload.Daily.TempMin) > 0 && len(payload.Daily.TempMax) > 0 {
		tempMin, tempMax = payload.Daily.TempMin[0], payload.Daily.TempMax[0]
	}

	code := mapWMOCode(cur.WeatherCode)

	return weather.ProviderReading{
		ProviderName:  p.name,
		Timestamp:     ts,
		Name:          loc.City,
		Country:       loc.Country,
		Coord:         weather.Coordinates{Lat: payload.Latitude, Lon: payload.Longitude},
		UTCOffset:     payload.UTCOffsetSeconds,
		TemperatureC:  cur.Temperature,
		FeelsLikeC:    cur.ApparentTemp,
		TempMinC:      tempMin,
		TempMaxC:      tempMax,
		HumidityPct:   cur.RelativeHumidity,
		WindSpeedMS:   cur.WindSpeed,
		PressureHpa:   cur.SurfacePressure,
		ConditionCode: code.id,
		Icon:          iconFor(code.icon, cur.IsDay == 1),
		Description:   code.description,
	}, nil
}

// FetchForecast downsamples the hourly series onto the 3-hour UTC grid the
// forecast package expects.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.ForecastSeries, error) {
	payload, err := p.fetch(ctx, loc)
	if err != nil {
		return weather.ForecastSeries{}, err
	}

	h := payload.Hourly
	n := min(len(h.Time), len(h.Temperature), len(h.WeatherCode))

	samples := make([]forecast.Sample, 0, n/3+1)
	for i := 0; i < n; i++ {
		t := time.Unix(h.Time[i], 0).UTC()
		if t.Hour()%3 != 0 {
			continue
		}
		local := t.Add(time.Duration(payload.UTCOffsetSeconds) * time.Second).Hour()
		isDay := local >= 6 && local < 19
		if i < len(h.IsDay) {
			isDay = h.IsDay[i] == 1
		}
		code := mapWMOCode(h.WeatherCode[i])
		samples = append(samples, forecast.Sample{
			Timestamp:     h.Time[i],
			TempC:         h.Temperature[i],
			ConditionCode: code.id,
			Icon:          iconFor(code.icon, isDay),
			Description:   code.description,
		})
	}

	return weather.ForecastSeries{
		ProviderName: p.name,
		City:         common.Coalesce(loc.City, loc.Key()),
		Country:      loc.Country,
		Coord:        weather.Coordinates{Lat: payload.Latitude, Lon: payload.Longitude},
		UTCOffset:    payload.UTCOffsetSeconds,
		Samples:      samples,
	}, nil
}
