package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-dashboard/internal/forecast"
)

var (
	// ErrNoProviders is returned when the service has nothing to fetch from.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoData is returned when every provider failed.
	ErrNoData = errors.New("no weather data available")
	// ErrLocationNotFound is reported by providers that do not know a location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrDayNotFound is returned when an hourly breakdown is requested for a
	// date outside the forecast window.
	ErrDayNotFound = errors.New("date is outside the forecast window")
)

// fetchTimeout bounds a shared outbound fetch independently of the callers waiting on it.
const fetchTimeout = 30 * time.Second

// maxForecastDays covers every day a 5-day/3-hour window can touch.
const maxForecastDays = 7

const dayLayout = "2006-01-02"

// ForecastQuery holds the caller-supplied shape of a daily forecast.
type ForecastQuery struct {
	Days         int
	ExcludeToday bool
	Locale       language.Tag
}

// Option configures a Service.
type Option func(*Service)

// WithNow replaces the clock used to determine "today" and the local hour.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaults sets the forecast shape used when a query leaves fields empty.
func WithDefaults(q ForecastQuery) Option {
	return func(s *Service) { s.defaults = q }
}

// Service orchestrates fetching from providers, aggregating and storing snapshots.
type Service struct {
	store     Store
	providers []Provider
	defaults  ForecastQuery
	now       func() time.Time

	// inflight collapses concurrent identical fetches per location.
	inflight singleflight.Group
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		defaults:  ForecastQuery{Days: forecast.DefaultMaxDays, Locale: language.English},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the forecast shape used for empty query fields.
func (s *Service) Defaults() ForecastQuery {
	return s.defaults
}

// ProviderNames lists the configured providers in priority order.
func (s *Service) ProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// shared runs fn once per key among concurrent callers. A caller whose
// context ends stops waiting; the fetch itself keeps running for the others.
func (s *Service) shared(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return fn(fetchCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// FetchAndStore refreshes the current conditions of loc. It is the scheduler's entry point.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	_, err := s.Current(ctx, loc)
	return err
}

// Current fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores the snapshot.
func (s *Service) Current(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	v, err := s.shared(ctx, "current:"+loc.Key(), func(ctx context.Context) (interface{}, error) {
		return s.fetchCurrent(ctx, loc)
	})
	if err != nil {
		return WeatherSnapshot{}, err
	}
	return v.(WeatherSnapshot), nil
}

func (s *Service) fetchCurrent(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	log.Printf("DEBUG: fetching current weather for %s from %d providers", loc.Key(), len(s.providers))
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return WeatherSnapshot{}, ErrNoProviders
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings = make([]*ProviderReading, len(s.providers))
		errs     []error
	)

	for i, p := range s.providers {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("ERROR: provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				mu.Unlock()
				return
			}

			mu.Lock()
			readings[i] = &r
			mu.Unlock()
		}()
	}

	wg.Wait()

	// Keep provider priority order so the first configured provider names the place.
	ok := make([]ProviderReading, 0, len(readings))
	for _, r := range readings {
		if r != nil {
			ok = append(ok, *r)
		}
	}
	if len(ok) == 0 {
		log.Printf("ERROR: no successful provider readings for %s; keeping last good snapshot if any", loc.Key())
		return WeatherSnapshot{}, fmt.Errorf("current weather for %s: %w", loc.Key(), providerFailure(errs))
	}

	snapshot := AggregateReadings(loc, ok)
	s.store.SaveSnapshot(loc, snapshot)
	return snapshot, nil
}

// Forecast returns the raw 3-hour forecast from the first forecast provider
// that answers, in configured order.
func (s *Service) Forecast(ctx context.Context, loc Location) (ForecastSeries, error) {
	v, err := s.shared(ctx, "forecast:"+loc.Key(), func(ctx context.Context) (interface{}, error) {
		return s.fetchForecast(ctx, loc)
	})
	if err != nil {
		return ForecastSeries{}, err
	}
	return v.(ForecastSeries), nil
}

func (s *Service) fetchForecast(ctx context.Context, loc Location) (ForecastSeries, error) {
	tried := 0
	var errs []error
	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}
		tried++

		series, err := fp.FetchForecast(ctx, loc)
		if err != nil {
			log.Printf("ERROR: provider %s forecast failed for %s: %v", p.Name(), loc.Key(), err)
			if ctx.Err() != nil {
				return ForecastSeries{}, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		log.Printf("DEBUG: forecast for %s served by %s (%d samples)", loc.Key(), p.Name(), len(series.Samples))
		return series, nil
	}

	if tried == 0 {
		return ForecastSeries{}, ErrNoProviders
	}
	return ForecastSeries{}, fmt.Errorf("forecast for %s: %w", loc.Key(), providerFailure(errs))
}

// providerFailure folds per-provider errors into one. The location counts as
// unknown only when every provider said so; otherwise the result is ErrNoData
// and the not-found answers stay in the message without matching errors.Is.
func providerFailure(errs []error) error {
	unknown := 0
	for _, err := range errs {
		if errors.Is(err, ErrLocationNotFound) {
			unknown++
		}
	}
	if len(errs) > 0 && unknown == len(errs) {
		return errors.Join(append([]error{ErrNoData}, errs...)...)
	}

	out := make([]error, 0, len(errs)+1)
	out = append(out, ErrNoData)
	for _, err := range errs {
		if errors.Is(err, ErrLocationNotFound) {
			err = errors.New(err.Error())
		}
		out = append(out, err)
	}
	return errors.Join(out...)
}

func (s *Service) withDefaults(q ForecastQuery) ForecastQuery {
	if q.Days <= 0 {
		q.Days = s.defaults.Days
	}
	if q.Locale == language.Und {
		q.Locale = s.defaults.Locale
	}
	return q
}

// DailyForecast summarizes the provider forecast into per-day entries.
func (s *Service) DailyForecast(ctx context.Context, loc Location, q ForecastQuery) (DailyForecast, error) {
	series, err := s.Forecast(ctx, loc)
	if err != nil {
		return DailyForecast{}, err
	}
	q = s.withDefaults(q)

	days := forecast.Summarize(series.Samples, forecast.Options{
		MaxDays:      q.Days,
		ExcludeToday: q.ExcludeToday,
		Clock:        forecast.NewClock(s.now(), series.UTCOffset),
		Locale:       q.Locale,
	})

	return DailyForecast{
		Location:  loc,
		Provider:  series.ProviderName,
		UTCOffset: series.UTCOffset,
		Days:      days,
	}, nil
}

// Hourly returns the hourly breakdown for date (YYYY-MM-DD). Real samples are
// used when the provider window covers the day, estimates otherwise.
func (s *Service) Hourly(ctx context.Context, loc Location, date string, locale language.Tag) (HourlyForecast, error) {
	series, err := s.Forecast(ctx, loc)
	if err != nil {
		return HourlyForecast{}, err
	}
	q := s.withDefaults(ForecastQuery{Locale: locale})
	clock := forecast.NewClock(s.now(), series.UTCOffset)

	days := forecast.Summarize(series.Samples, forecast.Options{
		MaxDays: maxForecastDays,
		Clock:   clock,
		Locale:  q.Locale,
	})
	for _, d := range days {
		if d.Key() != date {
			continue
		}
		return HourlyForecast{
			Location: loc,
			Date:     date,
			Day:      d,
			Hours:    forecast.HourlyForDay(series.Samples, d, clock),
		}, nil
	}

	// Today and tomorrow may have no samples left once the provider window
	// has moved on; estimate them instead of reporting a missing day.
	day, ok := s.estimatedDay(loc, date, days, clock, q.Locale)
	if !ok {
		return HourlyForecast{}, fmt.Errorf("%s: %w", date, ErrDayNotFound)
	}
	return HourlyForecast{
		Location: loc,
		Date:     date,
		Day:      day,
		Hours:    forecast.Hourly(day, date == clock.TodayKey(), clock),
	}, nil
}

// estimatedDay builds a summary for today or tomorrow when the forecast has
// none. Today prefers the stored current conditions; otherwise the closest
// summarized day stands in.
func (s *Service) estimatedDay(loc Location, date string, days []forecast.DailySummary, clock forecast.Clock, locale language.Tag) (forecast.DailySummary, bool) {
	local := clock.Local()
	today := clock.TodayKey()
	tomorrow := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, time.UTC).Format(dayLayout)
	if date != today && date != tomorrow {
		return forecast.DailySummary{}, false
	}
	target, err := time.Parse(dayLayout, date)
	if err != nil {
		return forecast.DailySummary{}, false
	}

	day := forecast.DailySummary{Day: forecast.WeekdayLabel(target, locale), Date: target}

	if date == today {
		if snap, err := s.store.GetLatest(loc); err == nil {
			day.TempMin, day.TempMax = snap.TempMin, snap.TempMax
			if day.TempMin > day.TempMax {
				day.TempMin, day.TempMax = day.TempMax, day.TempMin
			}
			day.Icon, day.Description = snap.Icon, snap.Description
			return day, true
		}
	}

	if len(days) == 0 {
		return forecast.DailySummary{}, false
	}
	nearest := days[0]
	for _, d := range days[1:] {
		if absDuration(d.Date.Sub(target)) < absDuration(nearest.Date.Sub(target)) {
			nearest = d
		}
	}
	day.TempMin, day.TempMax = nearest.TempMin, nearest.TempMax
	day.Icon, day.Description = nearest.Icon, nearest.Description
	return day, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(loc, from, to)
}
