package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// Errors returned by handlers are rendered by ErrorHandler.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/providers", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"providers": service.ProviderNames()})
	})

	// Latest stored snapshot; a location never refreshed is fetched live.
	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		loc, err := parseLocationQuery(c)
		if err != nil {
			return badRequest(err)
		}

		snapshot, err := service.GetLatest(loc)
		if errors.Is(err, store.ErrNotFound) {
			snapshot, err = service.Current(c.UserContext(), loc)
		}
		if err != nil {
			return err
		}
		return c.JSON(snapshot)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return badRequest(err)
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(err)
		}

		loc := req.Location.toLocation()
		snapshots, err := service.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return err
		}

		return c.JSON(fiber.Map{
			"location":  loc,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		req := forecastQuery{ExcludeToday: service.Defaults().ExcludeToday}
		if err := req.bind(c); err != nil {
			return badRequest(err)
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(err)
		}

		daily, err := service.DailyForecast(c.UserContext(), req.Location.toLocation(), req.toQuery())
		if err != nil {
			return err
		}
		return c.JSON(daily)
	})

	v1.Get("/weather/hourly", func(c *fiber.Ctx) error {
		var req hourlyQuery
		if err := req.bind(c); err != nil {
			return badRequest(err)
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(err)
		}

		hourly, err := service.Hourly(c.UserContext(), req.Location.toLocation(), req.Date, parseLang(req.Lang))
		if err != nil {
			return err
		}
		return c.JSON(hourly)
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		req := forecastQuery{ExcludeToday: service.Defaults().ExcludeToday}
		if err := req.bind(c); err != nil {
			return badRequest(err)
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(err)
		}

		page, err := service.Dashboard(c.UserContext(), req.Location.toLocation(), req.toQuery())
		if err != nil {
			return err
		}
		return c.JSON(page)
	})
}

// locationQuery identifies a location by city or by coordinates.
type locationQuery struct {
	City    string   `validate:"omitempty,max=85,cityname"`
	Country string   `validate:"omitempty,max=56"`
	Lat     *float64 `validate:"omitempty,latitude"`
	Lon     *float64 `validate:"omitempty,longitude"`
}

func (l locationQuery) toLocation() weather.Location {
	if l.City == "" {
		return weather.Location{Lat: l.Lat, Lon: l.Lon}
	}
	return weather.Location{
		City:    strings.TrimSpace(l.City),
		Country: strings.ToUpper(strings.TrimSpace(l.Country)),
	}
}

func parseLocationQuery(c *fiber.Ctx) (weather.Location, error) {
	q, err := bindLocation(c)
	if err != nil {
		return weather.Location{}, err
	}
	if err := validate.Struct(q); err != nil {
		return weather.Location{}, err
	}
	return q.toLocation(), nil
}

func bindLocation(c *fiber.Ctx) (locationQuery, error) {
	q := locationQuery{
		City:    c.Query("city"),
		Country: c.Query("country"),
	}

	for name, dst := range map[string]**float64{"lat": &q.Lat, "lon": &q.Lon} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, errors.New(name + " must be a number")
		}
		*dst = &v
	}
	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := bindLocation(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// forecastQuery holds query parameters for the forecast and dashboard endpoints.
// Days of 0 means the configured default.
type forecastQuery struct {
	Location     locationQuery
	Days         int `validate:"omitempty,min=1,max=6"`
	ExcludeToday bool
	Lang         string `validate:"omitempty,oneof=en ru"`
}

func (f *forecastQuery) bind(c *fiber.Ctx) error {
	loc, err := bindLocation(c)
	if err != nil {
		return err
	}
	f.Location = loc
	f.Lang = strings.ToLower(c.Query("lang"))

	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("days must be an integer between 1 and 6")
		}
		if days == 0 {
			return errors.New("days must be an integer between 1 and 6")
		}
		f.Days = days
	}
	if raw := c.Query("exclude_today"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("exclude_today must be a boolean")
		}
		f.ExcludeToday = v
	}
	return nil
}

func (f forecastQuery) toQuery() weather.ForecastQuery {
	return weather.ForecastQuery{
		Days:         f.Days,
		ExcludeToday: f.ExcludeToday,
		Locale:       parseLang(f.Lang),
	}
}

// hourlyQuery holds query parameters for the hourly endpoint.
type hourlyQuery struct {
	Location locationQuery
	Date     string `validate:"required,datetime=2006-01-02"`
	Lang     string `validate:"omitempty,oneof=en ru"`
}

func (h *hourlyQuery) bind(c *fiber.Ctx) error {
	loc, err := bindLocation(c)
	if err != nil {
		return err
	}
	h.Location = loc
	h.Date = c.Query("date")
	h.Lang = strings.ToLower(c.Query("lang"))
	return nil
}

// parseLang leaves the locale undetermined when lang is absent so the service default applies.
func parseLang(lang string) language.Tag {
	if lang == "" {
		return language.Und
	}
	return forecast.ParseLocale(lang)
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
