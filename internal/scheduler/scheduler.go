package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"solar-dashboard/internal/dashboard"
)

// Scheduler periodically refreshes today's observation for the active
// location so the cached series stays current between page loads.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *dashboard.Service
	interval  time.Duration
}

// New creates a new Scheduler.
func New(service *dashboard.Service, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.service.RefreshToday(ctx); err != nil {
			log.Printf("scheduler: refresh failed: %v", err)
			return
		}
		log.Println("scheduler: refreshed today's weather")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
