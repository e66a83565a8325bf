package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/i474232898/weather-dashboard/internal/forecast"
)

type memStore struct {
	mu    sync.Mutex
	saved map[string][]WeatherSnapshot
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string][]WeatherSnapshot)}
}

func (m *memStore) SaveSnapshot(loc Location, snap WeatherSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[loc.Key()] = append(m.saved[loc.Key()], snap)
}

func (m *memStore) GetLatest(loc Location) (WeatherSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.saved[loc.Key()]
	if len(s) == 0 {
		return WeatherSnapshot{}, errors.New("not found")
	}
	return s[len(s)-1], nil
}

func (m *memStore) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return nil, errors.New("not implemented")
}

type fakeProvider struct {
	name     string
	reading  ProviderReading
	series   ForecastSeries
	err      error
	calls    atomic.Int32
	block    chan struct{}
	entered  chan struct{}
	forecast bool
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Fetch(ctx context.Context, loc Location) (ProviderReading, error) {
	p.calls.Add(1)
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.block != nil {
		<-p.block
	}
	if p.err != nil {
		return ProviderReading{}, p.err
	}
	r := p.reading
	r.ProviderName = p.name
	return r, nil
}

type fakeForecastProvider struct {
	*fakeProvider
}

func (p fakeForecastProvider) FetchForecast(ctx context.Context, loc Location) (ForecastSeries, error) {
	p.calls.Add(1)
	if p.err != nil {
		return ForecastSeries{}, p.err
	}
	s := p.series
	s.ProviderName = p.name
	return s, nil
}

var (
	paris = Location{City: "Paris", Country: "FR"}
	day0  = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
)

func threeDaySeries() ForecastSeries {
	var samples []forecast.Sample
	for d := 0; d < 3; d++ {
		for h := 0; h < 24; h += 3 {
			samples = append(samples, forecast.Sample{
				Timestamp:     day0.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour).Unix(),
				TempC:         float64(d*10 + h/3),
				ConditionCode: 800,
				Icon:          "01d",
				Description:   "clear sky",
			})
		}
	}
	return ForecastSeries{City: "Paris", UTCOffset: 3600, Samples: samples}
}

func TestServiceCurrentAggregatesAndStores(t *testing.T) {
	store := newMemStore()
	a := &fakeProvider{name: "a", reading: ProviderReading{Name: "Paris", TemperatureC: 10, ConditionCode: 800}}
	b := &fakeProvider{name: "b", reading: ProviderReading{Name: "Paris B", TemperatureC: 20, ConditionCode: 800}}
	broken := &fakeProvider{name: "c", err: errors.New("boom")}

	svc := NewService(store, []Provider{a, broken, b})
	snap, err := svc.Current(context.Background(), paris)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Temperature != 15 || snap.Name != "Paris" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	latest, err := svc.GetLatest(paris)
	if err != nil || latest.Temperature != 15 {
		t.Fatalf("snapshot not stored: %+v, %v", latest, err)
	}
}

func TestServiceCurrentErrors(t *testing.T) {
	svc := NewService(newMemStore(), nil)
	if _, err := svc.Current(context.Background(), paris); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}

	svc = NewService(newMemStore(), []Provider{&fakeProvider{name: "x", err: errors.New("down")}})
	if err := svc.FetchAndStore(context.Background(), paris); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestServiceLocationNotFoundNeedsEveryProvider(t *testing.T) {
	unknown := fmt.Errorf("status 404: %w", ErrLocationNotFound)

	mixed := []Provider{
		&fakeProvider{name: "a", err: unknown},
		&fakeProvider{name: "b", err: errors.New("status 503")},
	}
	err := NewService(newMemStore(), mixed).FetchAndStore(context.Background(), paris)
	if !errors.Is(err, ErrNoData) || errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("mixed failure: expected ErrNoData only, got %v", err)
	}
	if !strings.Contains(err.Error(), "a: status 404") {
		t.Fatalf("expected the not-found answer in the message, got %v", err)
	}

	all := []Provider{
		&fakeProvider{name: "a", err: unknown},
		&fakeProvider{name: "b", err: unknown},
	}
	err = NewService(newMemStore(), all).FetchAndStore(context.Background(), paris)
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}

	forecasts := []Provider{
		fakeForecastProvider{&fakeProvider{name: "a", err: unknown}},
		fakeForecastProvider{&fakeProvider{name: "b", err: errors.New("status 500")}},
	}
	_, err = NewService(newMemStore(), forecasts).Forecast(context.Background(), paris)
	if !errors.Is(err, ErrNoData) || errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("mixed forecast failure: expected ErrNoData only, got %v", err)
	}
}

func TestServiceCollapsesConcurrentFetches(t *testing.T) {
	p := &fakeProvider{
		name:    "slow",
		reading: ProviderReading{TemperatureC: 1},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 4),
	}
	svc := NewService(newMemStore(), []Provider{p})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Current(context.Background(), paris); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	<-p.entered
	time.Sleep(100 * time.Millisecond)
	close(p.block)
	wg.Wait()

	if n := p.calls.Load(); n != 1 {
		t.Fatalf("expected a single provider call, got %d", n)
	}
}

func TestServiceCallerCanAbandonFetch(t *testing.T) {
	p := &fakeProvider{name: "slow", block: make(chan struct{})}
	svc := NewService(newMemStore(), []Provider{p})
	defer close(p.block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := svc.Current(ctx, paris); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestServiceForecastFallsBack(t *testing.T) {
	currentOnly := &fakeProvider{name: "current-only"}
	failing := fakeForecastProvider{&fakeProvider{name: "primary", err: errors.New("unavailable")}}
	backup := fakeForecastProvider{&fakeProvider{name: "backup", series: threeDaySeries()}}

	svc := NewService(newMemStore(), []Provider{currentOnly, failing, backup})
	series, err := svc.Forecast(context.Background(), paris)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.ProviderName != "backup" {
		t.Fatalf("expected backup provider, got %s", series.ProviderName)
	}
	if failing.calls.Load() != 1 {
		t.Fatalf("expected primary to be tried once, got %d", failing.calls.Load())
	}

	svc = NewService(newMemStore(), []Provider{currentOnly})
	if _, err := svc.Forecast(context.Background(), paris); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}

func TestServiceDailyForecast(t *testing.T) {
	p := fakeForecastProvider{&fakeProvider{name: "owm", series: threeDaySeries()}}
	now := func() time.Time { return day0.Add(10 * time.Hour) }
	svc := NewService(newMemStore(), []Provider{p}, WithNow(now))

	daily, err := svc.DailyForecast(context.Background(), paris, ForecastQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(daily.Days) != 3 || daily.Days[0].TempMin != 0 || daily.Days[0].TempMax != 7 {
		t.Fatalf("unexpected days: %+v", daily.Days)
	}
	if daily.Days[0].Day != "Sun" {
		t.Fatalf("expected Sun, got %q", daily.Days[0].Day)
	}

	daily, err = svc.DailyForecast(context.Background(), paris, ForecastQuery{Days: 1, ExcludeToday: true, Locale: language.Russian})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(daily.Days) != 1 || daily.Days[0].Key() != "2024-03-11" || daily.Days[0].Day != "пн" {
		t.Fatalf("unexpected days: %+v", daily.Days)
	}
}

func TestServiceHourly(t *testing.T) {
	series := threeDaySeries()
	p := fakeForecastProvider{&fakeProvider{name: "owm", series: series}}
	svc := NewService(newMemStore(), []Provider{p}, WithNow(func() time.Time { return day0 }))

	h, err := svc.Hourly(context.Background(), paris, "2024-03-11", language.English)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Hours) != 8 || h.Hours[0].Estimated {
		t.Fatalf("expected observed hours, got %+v", h.Hours)
	}
	// Samples are on the UTC grid; the city is at UTC+1.
	if h.Hours[0].Hour != 1 {
		t.Fatalf("expected first hour 1, got %d", h.Hours[0].Hour)
	}

	if _, err := svc.Hourly(context.Background(), paris, "2024-04-01", language.English); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("expected ErrDayNotFound, got %v", err)
	}
}

func TestServiceHourlyEstimatesTodayAfterWindow(t *testing.T) {
	// Late evening: the provider window already starts at tomorrow.
	now := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)
	series := threeDaySeries()
	series.UTCOffset = 0
	series.Samples = series.Samples[8:]
	p := fakeForecastProvider{&fakeProvider{name: "owm", series: series}}

	svc := NewService(newMemStore(), []Provider{p}, WithNow(func() time.Time { return now }))
	h, err := svc.Hourly(context.Background(), paris, "2024-03-10", language.English)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.Hours) != 2 || h.Hours[0].Hour != 22 || h.Hours[1].Hour != 23 {
		t.Fatalf("expected the late fallback hours 22 and 23, got %+v", h.Hours)
	}
	for _, e := range h.Hours {
		if !e.Estimated {
			t.Fatalf("expected estimates, got %+v", e)
		}
	}
	// Nearest summarized day is 2024-03-11 with a 10..17 range.
	if h.Day.Key() != "2024-03-10" || h.Day.Day != "Sun" || h.Day.TempMin != 10 || h.Day.TempMax != 17 {
		t.Fatalf("unexpected estimated day %+v", h.Day)
	}
	if h.Hours[0].Temp != forecast.EstimateTemp(10, 17, 22) {
		t.Fatalf("unexpected estimate %d", h.Hours[0].Temp)
	}

	// Days with samples are still served from them.
	h, err = svc.Hourly(context.Background(), paris, "2024-03-11", language.English)
	if err != nil || len(h.Hours) != 8 || h.Hours[0].Estimated {
		t.Fatalf("expected observed hours, got %+v, %v", h.Hours, err)
	}

	// Only today and tomorrow are estimated.
	if _, err := svc.Hourly(context.Background(), paris, "2024-03-09", language.English); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("expected ErrDayNotFound, got %v", err)
	}
}

func TestServiceHourlyEstimatesTodayFromCurrentConditions(t *testing.T) {
	now := time.Date(2024, 3, 10, 22, 30, 0, 0, time.UTC)
	series := threeDaySeries()
	series.UTCOffset = 0
	series.Samples = series.Samples[8:]
	store := newMemStore()
	store.SaveSnapshot(paris, WeatherSnapshot{TempMin: 2, TempMax: 8, Icon: "10n", Description: "light rain"})
	p := fakeForecastProvider{&fakeProvider{name: "owm", series: series}}

	svc := NewService(store, []Provider{p}, WithNow(func() time.Time { return now }))
	h, err := svc.Hourly(context.Background(), paris, "2024-03-10", language.English)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Day.TempMin != 2 || h.Day.TempMax != 8 || h.Day.Description != "light rain" {
		t.Fatalf("expected the current conditions to shape today, got %+v", h.Day)
	}
	if len(h.Hours) != 2 || h.Hours[0].Icon != "10n" || h.Hours[0].Temp != forecast.EstimateTemp(2, 8, 22) {
		t.Fatalf("unexpected hours %+v", h.Hours)
	}
}

func TestServiceDashboard(t *testing.T) {
	p := fakeForecastProvider{&fakeProvider{
		name: "owm",
		reading: ProviderReading{
			Name: "Paris", Country: "FR", UTCOffset: 3600,
			Coord:         Coordinates{Lat: 48.85, Lon: 2.35},
			TemperatureC:  8,
			ConditionCode: 501,
			Icon:          "10n",
			Description:   "moderate rain",
		},
		series: threeDaySeries(),
	}}
	now := func() time.Time { return day0.Add(19*time.Hour + 30*time.Minute) }
	svc := NewService(newMemStore(), []Provider{p}, WithNow(now))

	d, err := svc.Dashboard(context.Background(), paris, ForecastQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Card.LocalTime != "20:30" || d.Card.LocalDate != "2024-03-10" {
		t.Fatalf("unexpected local time: %s %s", d.Card.LocalDate, d.Card.LocalTime)
	}
	if d.Theme != (Theme{Condition: ConditionRain, Period: PeriodEvening}) {
		t.Fatalf("unexpected theme: %+v", d.Theme)
	}
	if d.Card.DisplayDescription != "Moderate rain" {
		t.Fatalf("unexpected description: %q", d.Card.DisplayDescription)
	}
	if d.Card.MapURL == "" || d.Card.IconURL == "" {
		t.Fatalf("expected map and icon urls: %+v", d.Card)
	}
	if len(d.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(d.Days))
	}
}

func TestServiceDashboardWithoutForecast(t *testing.T) {
	p := &fakeProvider{name: "weatherapi", reading: ProviderReading{Name: "Paris", ConditionCode: 800}}
	svc := NewService(newMemStore(), []Provider{p})

	d, err := svc.Dashboard(context.Background(), paris, ForecastQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Days == nil || len(d.Days) != 0 {
		t.Fatalf("expected empty day list, got %#v", d.Days)
	}
}
