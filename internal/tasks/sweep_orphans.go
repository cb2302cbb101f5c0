package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SweepOrphansTask removes book directories that have no registered book.
type SweepOrphansTask struct{}

// Config returns the queue configuration for orphan sweep tasks.
func (t SweepOrphansTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sweep_orphan_directories",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SweepOrphansProcessor creates a processor function for SweepOrphansTask.
func SweepOrphansProcessor(sweeper OrphanSweeper) backlite.QueueProcessor[SweepOrphansTask] {
	return func(ctx context.Context, task SweepOrphansTask) error {
		if sweeper == nil {
			return fmt.Errorf("orphan sweeper not configured")
		}

		removed, err := sweeper.SweepOrphans(ctx)
		if err != nil {
			return fmt.Errorf("sweep orphan directories: %w", err)
		}

		log.Printf("[TASK] Swept %d orphan directories", len(removed))
		return nil
	}
}

// NewSweepOrphansQueue creates a backlite queue for orphan sweep tasks.
func NewSweepOrphansQueue(sweeper OrphanSweeper) backlite.Queue {
	return backlite.NewQueue(SweepOrphansProcessor(sweeper))
}
