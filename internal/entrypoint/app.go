package entrypoint

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/comicshelf/internal/archive"
	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/config"
	"github.com/mrlokans/comicshelf/internal/database"
	auditrepo "github.com/mrlokans/comicshelf/internal/database/audit"
	"github.com/mrlokans/comicshelf/internal/database/books"
	"github.com/mrlokans/comicshelf/internal/database/progress"
	"github.com/mrlokans/comicshelf/internal/library"
)

// App holds the long-lived library components shared by the server and the
// command line tools.
type App struct {
	DB       *database.Database
	Books    *books.Repository
	Layout   library.Layout
	Ingester *library.Ingester
	Library  *library.Service
	Sweeper  *library.Sweeper
	Audit    *audit.Service
}

// NewApp opens the database and wires the library services. Close releases it.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		BusyTimeout:     cfg.Database.BusyTimeout,
		AcquireTimeout:  cfg.Database.AcquireTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	layout := library.NewLayout(cfg.Library.Dir, cfg.Library.PublicPrefix)
	if err := layout.Ensure(); err != nil {
		db.Close()
		return nil, err
	}

	timeout := db.AcquireTimeout()
	booksRepo := books.NewRepository(db.DB, timeout)
	progressRepo := progress.NewRepository(db.DB, timeout)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB, timeout))

	extractor := archive.NewExtractor()
	if cfg.Ingest.MaxEntryMB > 0 {
		extractor.MaxEntrySize = cfg.Ingest.MaxEntryMB << 20
	}
	if cfg.Ingest.MaxExtractedMB > 0 {
		extractor.MaxTotalSize = cfg.Ingest.MaxExtractedMB << 20
	}

	ingester := library.NewIngester(booksRepo, layout, library.IngestConfig{
		StagingDir:  cfg.Library.StagingDir,
		LockTimeout: cfg.Ingest.LockTimeout,
		Extractor:   extractor,
	})
	ingester.SetRecorder(auditService)

	sweeper := library.NewSweeper(booksRepo, layout, cfg.Library.StagingDir)
	sweeper.SetRecorder(auditService)

	service := library.NewService(booksRepo, progressRepo, layout, sweeper)
	service.SetRecorder(auditService)

	return &App{
		DB:       db,
		Books:    booksRepo,
		Layout:   layout,
		Ingester: ingester,
		Library:  service,
		Sweeper:  sweeper,
		Audit:    auditService,
	}, nil
}

// CleanupAuditEvents removes audit events past the retention period.
func (a *App) CleanupAuditEvents(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	deleted, err := a.Audit.DeleteOldEvents(ctx, time.Duration(retentionDays)*24*time.Hour)
	if err != nil {
		return err
	}
	log.Printf("Audit cleanup: removed %d events older than %d days", deleted, retentionDays)
	return nil
}

// Close waits for pending audit writes and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	return a.DB.Close()
}
