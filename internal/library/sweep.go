package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
)

// OrphanIndex tells the sweeper which directories belong to registered books.
type OrphanIndex interface {
	ListDirectories(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, bookID string) (bool, error)
}

// SweepRecorder receives the outcome of every sweep.
type SweepRecorder interface {
	LogSweep(removed []string, err error)
}

// Sweeper removes book directories that have no registered book, such as
// leftovers of a crash between extraction and registration.
type Sweeper struct {
	index    OrphanIndex
	layout   Layout
	locks    identifierLocks
	recorder SweepRecorder
}

// NewSweeper returns a Sweeper sharing the ingestion locks kept in stagingDir,
// so directories being ingested are never swept.
func NewSweeper(index OrphanIndex, layout Layout, stagingDir string) *Sweeper {
	return &Sweeper{
		index:  index,
		layout: layout,
		locks:  identifierLocks{dir: filepath.Join(stagingDir, "locks")},
	}
}

// SetRecorder installs the audit recorder for sweeps.
func (s *Sweeper) SetRecorder(r SweepRecorder) {
	s.recorder = r
}

// SweepOrphans removes every unregistered directory under the library root
// and returns their names.
func (s *Sweeper) SweepOrphans(ctx context.Context) (removed []string, err error) {
	defer func() {
		if s.recorder != nil && (len(removed) > 0 || err != nil) {
			s.recorder.LogSweep(removed, err)
		}
	}()

	dirs, err := s.layout.ListBookDirs()
	if err != nil {
		return nil, fmt.Errorf("list library directory: %w", err)
	}
	if len(dirs) == 0 {
		return nil, nil
	}

	registered, err := s.index.ListDirectories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registered directories: %w", err)
	}
	known := make(map[string]bool, len(registered))
	for _, d := range registered {
		known[d] = true
	}

	var errs []error
	for _, dir := range dirs {
		if known[dir] {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		ok, err := s.removeUnregistered(ctx, dir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			removed = append(removed, dir)
		}
	}

	if len(removed) > 0 {
		log.Printf("Orphan sweep: removed %d directories", len(removed))
	}
	return removed, errors.Join(errs...)
}

// RemoveIfUnregistered removes the directory of a deleted book. The directory
// is left in place while an ingestion holds its identifier or once a book is
// registered under it again.
func (s *Sweeper) RemoveIfUnregistered(ctx context.Context, directory string) error {
	removed, err := s.removeUnregistered(ctx, directory)
	if err != nil {
		return err
	}
	if !removed {
		log.Printf("Library: kept %s, identifier is in use again", directory)
	}
	return nil
}

// removeUnregistered removes dir unless an ingestion holds its lock or it
// became registered after the caller decided to remove it.
func (s *Sweeper) removeUnregistered(ctx context.Context, dir string) (bool, error) {
	unlock, ok, err := s.locks.tryAcquire(dir)
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", dir, err)
	}
	if !ok {
		log.Printf("Library: skipping %s, ingestion in progress", dir)
		return false, nil
	}
	defer unlock()

	exists, err := s.index.Exists(ctx, dir)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", dir, err)
	}
	if exists {
		return false, nil
	}

	if err := s.layout.RemoveBookDir(dir); err != nil {
		return false, err
	}
	log.Printf("Library: removed %s", dir)
	return true, nil
}
