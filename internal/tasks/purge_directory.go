package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// PurgeBookDirectoryTask removes the files of a book that has been deleted.
type PurgeBookDirectoryTask struct {
	Directory string `json:"directory"`
}

// Config returns the queue configuration for purge tasks.
func (t PurgeBookDirectoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_book_directory",
		MaxAttempts: 5,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeBookDirectoryProcessor creates a processor function for PurgeBookDirectoryTask.
func PurgeBookDirectoryProcessor(remover DirectoryRemover) backlite.QueueProcessor[PurgeBookDirectoryTask] {
	return func(ctx context.Context, task PurgeBookDirectoryTask) error {
		if remover == nil {
			return fmt.Errorf("directory remover not configured")
		}

		if err := remover.RemoveIfUnregistered(ctx, task.Directory); err != nil {
			return fmt.Errorf("purge book directory: %w", err)
		}

		log.Printf("[TASK] Purged book directory %s", task.Directory)
		return nil
	}
}

// NewPurgeBookDirectoryQueue creates a backlite queue for directory purge tasks.
func NewPurgeBookDirectoryQueue(remover DirectoryRemover) backlite.Queue {
	return backlite.NewQueue(PurgeBookDirectoryProcessor(remover))
}
