package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type countingRefresher struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (r *countingRefresher) FetchAndStore(ctx context.Context, loc weather.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[loc.Key()]++
	return r.err
}

func (r *countingRefresher) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[key]
}

func TestRunOnceRefreshesEveryLocation(t *testing.T) {
	r := &countingRefresher{err: errors.New("provider down")}
	locs := []weather.Location{{City: "Moscow", Country: "RU"}, {City: "Paris", Country: "FR"}}

	New(locs, time.Minute, r).RunOnce()

	for _, loc := range locs {
		if got := r.count(loc.Key()); got != 1 {
			t.Fatalf("expected one refresh for %s, got %d", loc.Key(), got)
		}
	}
}

func TestStartWithoutLocations(t *testing.T) {
	s := New(nil, time.Minute, &countingRefresher{})
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}

func TestStartRunsPeriodically(t *testing.T) {
	r := &countingRefresher{}
	loc := weather.Location{City: "Moscow", Country: "RU"}
	s := New([]weather.Location{loc}, 20*time.Millisecond, r)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for r.count(loc.Key()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 2 runs, got %d", r.count(loc.Key()))
		}
		time.Sleep(5 * time.Millisecond)
	}
}
