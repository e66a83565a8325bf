package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	defaultInterval = 15 * time.Minute
	runTimeout      = 30 * time.Second
	jobTag          = "weather-refresh"
)

// Refresher fetches and stores the current conditions of one location.
type Refresher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically refreshes the tracked locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	locations []weather.Location
	interval  time.Duration
}

// New creates a new Scheduler. A non-positive interval falls back to 15 minutes.
func New(locations []weather.Location, interval time.Duration, refresher Refresher) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	s := gocron.NewScheduler(time.UTC)
	// A slow provider must not stack refresh runs.
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		locations: locations,
		interval:  interval,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
// The first run happens right away.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("INFO: scheduler: no locations configured; nothing to schedule")
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).Tag(jobTag).Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("INFO: scheduler: refreshing %d location(s) every %s", len(s.locations), s.interval)
	return nil
}

// RunOnce refreshes every tracked location concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	runID := uuid.NewString()
	started := time.Now()
	log.Printf("INFO: scheduler: run %s started", runID)

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			defer cancel()

			if err := s.refresher.FetchAndStore(ctx, loc); err != nil {
				log.Printf("ERROR: scheduler: run %s: fetch failed for %s: %v", runID, loc.Key(), err)
			}
		}(loc)
	}
	wg.Wait()

	log.Printf("INFO: scheduler: run %s completed in %s", runID, time.Since(started).Round(time.Millisecond))
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
