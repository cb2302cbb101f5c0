package tasks

import (
	"context"
	"time"
)

// DirectoryRemover deletes a book directory under the library root unless a
// book is registered under it again.
type DirectoryRemover interface {
	RemoveIfUnregistered(ctx context.Context, directory string) error
}

// OrphanSweeper removes book directories without a registered book.
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context) ([]string, error)
}

// AuditEventCleaner provides the ability to delete old audit events.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// Handlers bundles what the library queues act on.
type Handlers struct {
	Directories DirectoryRemover
	Sweeper     OrphanSweeper
	AuditEvents AuditEventCleaner
}
