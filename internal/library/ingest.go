package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/comicshelf/internal/archive"
	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/entities"
	"github.com/mrlokans/comicshelf/internal/utils"
)

// DefaultLockTimeout bounds the wait for a concurrent upload of the same book.
const DefaultLockTimeout = 30 * time.Second

// BookRegistry is the persistence the ingestion pipeline needs.
type BookRegistry interface {
	Exists(ctx context.Context, bookID string) (bool, error)
	Create(ctx context.Context, book *entities.Book) error
}

// IngestRecorder receives the outcome of every ingestion attempt.
type IngestRecorder interface {
	LogIngest(bookID string, origin audit.Origin, totalPages int, checksum string, err error)
}

// Upload is an archive staged on disk, waiting to be ingested.
type Upload struct {
	// Path is the staged file. It is always removed by Ingest.
	Path string

	// Filename is the name the client gave the archive; it becomes the book identifier.
	Filename string

	Origin audit.Origin
}

// IngestConfig configures an Ingester.
type IngestConfig struct {
	// StagingDir holds uploads in flight and the per-book lock files.
	StagingDir  string
	LockTimeout time.Duration
	Extractor   archive.Extractor
}

// Ingester turns uploaded archives into registered books.
type Ingester struct {
	books       BookRegistry
	layout      Layout
	stagingDir  string
	locks       identifierLocks
	lockTimeout time.Duration
	extractor   archive.Extractor
	recorder    IngestRecorder
}

func NewIngester(books BookRegistry, layout Layout, cfg IngestConfig) *Ingester {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if cfg.Extractor.MaxEntrySize <= 0 && cfg.Extractor.MaxTotalSize <= 0 {
		cfg.Extractor = archive.NewExtractor()
	}
	return &Ingester{
		books:       books,
		layout:      layout,
		stagingDir:  cfg.StagingDir,
		locks:       identifierLocks{dir: filepath.Join(cfg.StagingDir, "locks")},
		lockTimeout: cfg.LockTimeout,
		extractor:   cfg.Extractor,
	}
}

// SetRecorder installs the audit recorder. Nil disables recording.
func (i *Ingester) SetRecorder(r IngestRecorder) {
	i.recorder = r
}

// StagingPath returns a fresh, unused path for an incoming upload.
func (i *Ingester) StagingPath() (string, error) {
	dir := filepath.Join(i.stagingDir, "incoming")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	return filepath.Join(dir, uuid.NewString()+".zip"), nil
}

// Ingest extracts, validates and registers the uploaded archive. The staged
// file is removed whatever the outcome. On failure no book row exists and
// no directory is left behind for the identifier, except that an already
// registered book is never touched.
func (i *Ingester) Ingest(ctx context.Context, up Upload) (book *entities.Book, err error) {
	defer i.removeUpload(up.Path)

	bookID, idErr := utils.BookIDFromFilename(up.Filename)
	var checksum string
	defer func() {
		if i.recorder == nil {
			return
		}
		key, pages := bookID, 0
		if key == "" {
			key = filepath.Base(up.Filename)
		}
		if book != nil {
			pages = book.TotalPages
		}
		i.recorder.LogIngest(key, up.Origin, pages, checksum, err)
	}()

	if idErr != nil {
		return nil, &IngestError{Kind: KindInvalidIdentifier, Err: idErr}
	}

	unlock, err := i.locks.acquire(ctx, bookID, i.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return nil, &IngestError{Kind: KindBusy, BookID: bookID, Err: err}
		}
		return nil, &IngestError{Kind: KindInternal, BookID: bookID, Err: err}
	}
	defer unlock()

	exists, err := i.books.Exists(ctx, bookID)
	if err != nil {
		return nil, &IngestError{Kind: KindInternal, BookID: bookID, Err: fmt.Errorf("check existing book: %w", err)}
	}
	if exists {
		return nil, &IngestError{Kind: KindPersistFailed, BookID: bookID, Err: ErrBookExists}
	}

	checksum, err = fileChecksum(up.Path)
	if err != nil {
		return nil, &IngestError{Kind: KindInternal, BookID: bookID, Err: err}
	}

	dir := i.layout.BookDir(bookID)
	if err := os.RemoveAll(dir); err != nil {
		return nil, &IngestError{Kind: KindInternal, BookID: bookID, Err: fmt.Errorf("clear stale directory: %w", err)}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IngestError{Kind: KindInternal, BookID: bookID, Err: fmt.Errorf("create book directory: %w", err)}
	}

	files, err := i.extractor.Extract(up.Path, dir)
	if err != nil {
		i.discard(dir)
		return nil, &IngestError{Kind: KindExtractionFailed, BookID: bookID, Err: err}
	}

	contents, err := archive.Validate(dir)
	if err != nil {
		i.discard(dir)
		var verr *archive.ValidationError
		if errors.As(err, &verr) {
			return nil, &IngestError{Kind: KindValidation, BookID: bookID, Err: err}
		}
		return nil, &IngestError{Kind: KindInternal, BookID: bookID, Err: err}
	}

	book = &entities.Book{
		BookID:          bookID,
		Title:           contents.Title,
		TotalPages:      contents.TotalPages,
		CoverPath:       i.layout.CoverURL(bookID, contents.Cover),
		Directory:       bookID,
		ArchiveChecksum: checksum,
	}
	if err := i.books.Create(ctx, book); err != nil {
		i.discard(dir)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = fmt.Errorf("%w: %v", ErrBookExists, err)
		}
		return nil, &IngestError{Kind: KindPersistFailed, BookID: bookID, Err: err}
	}

	log.Printf("Ingest: registered %q (%s) with %d pages from %d files", bookID, contents.Title, contents.TotalPages, files)
	return book, nil
}

func (i *Ingester) discard(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("Ingest: failed to remove %s: %v", dir, err)
	}
}

func (i *Ingester) removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Ingest: failed to remove staged upload %s: %v", path, err)
	}
}
