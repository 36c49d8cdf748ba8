package app

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// DailyResetter receives the midnight reset.
type DailyResetter interface {
	ResetDailyCount()
}

// Scheduler runs the calendar jobs of the application.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler with the daily cycle reset registered.
func NewScheduler(target DailyResetter, options ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(options...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(target.ResetDailyCount),
		gocron.WithName("daily-session-reset"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("create daily reset job: %w", err)
	}

	return &Scheduler{scheduler: s}, nil
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	log.Debug().Int("jobs", len(s.scheduler.Jobs())).Msg("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

// NextRuns reports the upcoming run time of every job, keyed by job name.
func (s *Scheduler) NextRuns() map[string]string {
	runs := make(map[string]string)
	for _, job := range s.scheduler.Jobs() {
		next, err := job.NextRun()
		if err != nil {
			continue
		}
		runs[job.Name()] = next.Format("2006-01-02 15:04:05")
	}
	return runs
}
