package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Geocoder resolves a city to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, city, country string) (weather.Coordinates, error)
}

// GoogleGeocoder resolves cities through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

// the geocoder package reads its key from a package variable.
var googleKeyMu sync.Mutex

func (g *GoogleGeocoder) Geocode(ctx context.Context, city, country string) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("geocoder api key is not configured")
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}

	googleKeyMu.Lock()
	defer googleKeyMu.Unlock()
	geocoder.ApiKey = g.apiKey

	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("geocode %s: %w", city, err)
	}
	return weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}

// OpenMeteoGeocoder resolves cities through the keyless Open-Meteo search API.
type OpenMeteoGeocoder struct {
	base
}

func NewOpenMeteoGeocoder(client *http.Client, opts ...Option) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		base: newBase("openmeteo-geocoding", client, "https://geocoding-api.open-meteo.com/v1", opts),
	}
}

func (g *OpenMeteoGeocoder) Geocode(ctx context.Context, city, country string) (weather.Coordinates, error) {
	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "10")
	values.Set("language", g.lang)
	values.Set("format", "json")

	var payload struct {
		Results []struct {
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := g.getJSON(ctx, "search", values, &payload); err != nil {
		return weather.Coordinates{}, err
	}

	for _, r := range payload.Results {
		if country == "" || strings.EqualFold(r.CountryCode, country) {
			return weather.Coordinates{Lat: r.Latitude, Lon: r.Longitude}, nil
		}
	}
	return weather.Coordinates{}, fmt.Errorf("geocode %s: %w", city, weather.ErrLocationNotFound)
}
