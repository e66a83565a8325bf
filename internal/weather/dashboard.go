package weather

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-dashboard/internal/forecast"
)

// mapDelta is the half-size, in degrees, of the embedded map's bounding box.
const mapDelta = 0.03

// MapEmbedURL returns an OpenStreetMap embed URL centred on a point with a marker.
func MapEmbedURL(lat, lon float64) string {
	return fmt.Sprintf(
		"https://www.openstreetmap.org/export/embed.html?bbox=%.4f,%.4f,%.4f,%.4f&layer=mapnik&marker=%.4f,%.4f",
		lon-mapDelta, lat-mapDelta, lon+mapDelta, lat+mapDelta, lat, lon,
	)
}

// Card is the current-conditions card of the dashboard.
type Card struct {
	WeatherSnapshot
	DisplayDescription string `json:"displayDescription"`
	IconURL            string `json:"iconUrl"`
	LocalDate          string `json:"localDate"`
	LocalWeekday       string `json:"localWeekday"`
	LocalTime          string `json:"localTime"`
	MapURL             string `json:"mapUrl,omitempty"`
}

// Dashboard is everything a dashboard page renders for one location.
type Dashboard struct {
	Card  Card                    `json:"card"`
	Theme Theme                   `json:"theme"`
	Days  []forecast.DailySummary `json:"days"`
}

// Dashboard fetches current conditions and the forecast concurrently and
// assembles the page model. A failed forecast leaves Days empty; a failed
// current fetch fails the whole page.
func (s *Service) Dashboard(ctx context.Context, loc Location, q ForecastQuery) (Dashboard, error) {
	var (
		current WeatherSnapshot
		daily   DailyForecast
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.Current(gctx, loc)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.DailyForecast(gctx, loc, q)
		if err != nil && gctx.Err() == nil {
			daily = DailyForecast{Days: []forecast.DailySummary{}}
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	q = s.withDefaults(q)
	clock := forecast.NewClock(s.now(), current.UTCOffset)
	local := clock.Local()

	card := Card{
		WeatherSnapshot:    current,
		DisplayDescription: forecast.Capitalize(current.Description, q.Locale),
		IconURL:            forecast.IconURL(current.Icon, true),
		LocalDate:          local.Format(dayLayout),
		LocalWeekday:       forecast.WeekdayLabel(local, q.Locale),
		LocalTime:          local.Format("15:04"),
	}
	if current.Coord.Lat != 0 || current.Coord.Lon != 0 {
		card.MapURL = MapEmbedURL(current.Coord.Lat, current.Coord.Lon)
	}

	return Dashboard{
		Card:  card,
		Theme: NewTheme(current.ConditionCode, clock.Hour()),
		Days:  daily.Days,
	}, nil
}
