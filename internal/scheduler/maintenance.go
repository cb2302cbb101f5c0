package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Job is a piece of periodic library maintenance.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// MaintenanceScheduler runs maintenance jobs such as the orphan directory
// sweep on their cron schedules.
type MaintenanceScheduler struct {
	jobs []Job

	cron       *cron.Cron
	entryIDs   map[string]cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler creates a new scheduler instance
func NewMaintenanceScheduler(jobs ...Job) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		jobs:     jobs,
		cron:     cron.New(cron.WithParser(parser)),
		entryIDs: make(map[string]cron.EntryID),
	}
}

// Start schedules every job and begins running them.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if len(s.jobs) == 0 {
		log.Printf("Maintenance scheduler: no jobs configured")
		return nil
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	for _, job := range s.jobs {
		if err := ValidateCronSchedule(job.Schedule); err != nil {
			s.abortLocked()
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Name, err)
		}

		job := job
		entryID, err := s.cron.AddFunc(job.Schedule, func() {
			s.run(job)
		})
		if err != nil {
			s.abortLocked()
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		s.entryIDs[job.Name] = entryID
	}

	s.cron.Start()
	s.isRunning = true

	for _, job := range s.jobs {
		log.Printf("Maintenance scheduler: %s scheduled '%s'. Next run: %v",
			job.Name, job.Schedule, s.nextRunLocked(job.Name))
	}

	// Monitor for context cancellation
	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop gracefully stops the scheduler
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.abortLocked()
	s.isRunning = false

	log.Printf("Maintenance scheduler: stopped")
}

// RunNow runs the named job immediately and waits for it.
func (s *MaintenanceScheduler) RunNow(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("unknown maintenance job %q", name)
}

// IsRunning returns whether the scheduler is active
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the named job will run next.
func (s *MaintenanceScheduler) GetNextRunTime(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked(name)
}

// abortLocked drops all scheduled entries and cancels the job context.
func (s *MaintenanceScheduler) abortLocked() {
	for name, id := range s.entryIDs {
		s.cron.Remove(id)
		delete(s.entryIDs, name)
	}
	s.cancelFunc()
}

func (s *MaintenanceScheduler) nextRunLocked(name string) *time.Time {
	id, ok := s.entryIDs[name]
	if !ok {
		return nil
	}
	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}

// run must not take s.mu: Stop holds it while waiting for running jobs.
func (s *MaintenanceScheduler) run(job Job) {
	ctx := s.ctx

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Printf("Maintenance scheduler: %s failed: %v", job.Name, err)
		return
	}
	log.Printf("Maintenance scheduler: %s finished in %v", job.Name, time.Since(start).Round(time.Millisecond))
}
