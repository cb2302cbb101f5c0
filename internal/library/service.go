package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/mrlokans/comicshelf/internal/archive"
	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/entities"
	"github.com/mrlokans/comicshelf/internal/pages"
)

// BookStore is the book persistence the service reads and deletes through.
type BookStore interface {
	GetAll(ctx context.Context) ([]entities.Book, error)
	GetByBookID(ctx context.Context, bookID string) (*entities.Book, error)
	Delete(ctx context.Context, bookID string) (*entities.Book, error)
}

// ProgressStore persists reading positions keyed by book row ID.
type ProgressStore interface {
	Get(ctx context.Context, bookID uint) (*entities.ReadingProgress, error)
	Upsert(ctx context.Context, bookID uint, page int) error
}

// DirectoryPurger removes a deleted book's directory, possibly later.
type DirectoryPurger interface {
	PurgeBookDirectory(ctx context.Context, directory string) error
}

// DirectoryRemover removes a directory unless a book is registered under it.
type DirectoryRemover interface {
	RemoveIfUnregistered(ctx context.Context, directory string) error
}

// DeleteRecorder receives book deletions.
type DeleteRecorder interface {
	LogDelete(bookID, title string, origin audit.Origin)
}

// Service answers reads against the library and records reading progress.
type Service struct {
	books    BookStore
	progress ProgressStore
	layout   Layout
	remover  DirectoryRemover
	purger   DirectoryPurger
	recorder DeleteRecorder
}

// NewService returns a Service. remover clears directories of deleted books
// when no purger is set or the purger fails.
func NewService(books BookStore, progress ProgressStore, layout Layout, remover DirectoryRemover) *Service {
	return &Service{books: books, progress: progress, layout: layout, remover: remover}
}

// SetPurger routes directory removal after deletion through p.
// Without one, directories are removed synchronously by the remover.
func (s *Service) SetPurger(p DirectoryPurger) {
	s.purger = p
}

// SetRecorder installs the audit recorder for deletions.
func (s *Service) SetRecorder(r DeleteRecorder) {
	s.recorder = r
}

// Layout returns the storage layout the service resolves files against.
func (s *Service) Layout() Layout {
	return s.layout
}

// ListBooks returns every registered book.
func (s *Service) ListBooks(ctx context.Context) ([]entities.Book, error) {
	books, err := s.books.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns a single book by identifier.
func (s *Service) GetBook(ctx context.Context, bookID string) (*entities.Book, error) {
	book, err := s.books.GetByBookID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book %q: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("get book %q: %w", bookID, err)
	}
	return book, nil
}

// PagePath resolves a page number to the image file on disk.
func (s *Service) PagePath(ctx context.Context, bookID string, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("page %d: %w", page, ErrInvalidPage)
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return "", err
	}

	dir := s.layout.BookDir(book.Directory)
	listing, err := archive.ListFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory of %q: %w", bookID, ErrPageNotFound)
		}
		return "", fmt.Errorf("list pages of %q: %w", bookID, err)
	}

	name, err := pages.Match(listing, page)
	if err != nil {
		if errors.Is(err, pages.ErrPageNotFound) {
			return "", fmt.Errorf("page %d of %q: %w", page, bookID, ErrPageNotFound)
		}
		return "", err
	}

	return filepath.Join(dir, name), nil
}

// GetProgress returns the current page of a book, 1 if none was recorded.
func (s *Service) GetProgress(ctx context.Context, bookID string) (int, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	p, err := s.progress.Get(ctx, book.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, fmt.Errorf("get progress of %q: %w", bookID, err)
	}
	return p.CurrentPage, nil
}

// SetProgress records page as the current page of a book.
func (s *Service) SetProgress(ctx context.Context, bookID string, page int) error {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return err
	}

	if page < 1 || page > book.TotalPages {
		return fmt.Errorf("page %d of %d: %w", page, book.TotalPages, ErrInvalidPage)
	}

	if err := s.progress.Upsert(ctx, book.ID, page); err != nil {
		return fmt.Errorf("save progress of %q: %w", bookID, err)
	}
	return nil
}

// DeleteBook unregisters a book and its progress, then purges its directory.
func (s *Service) DeleteBook(ctx context.Context, bookID string, origin audit.Origin) (*entities.Book, error) {
	book, err := s.books.Delete(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book %q: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("delete book %q: %w", bookID, err)
	}

	if s.purger != nil {
		err := s.purger.PurgeBookDirectory(ctx, book.Directory)
		if err == nil {
			s.recordDelete(book, origin)
			return book, nil
		}
		log.Printf("Delete: failed to queue purge of %s, removing now: %v", book.Directory, err)
	}

	if err := s.remover.RemoveIfUnregistered(ctx, book.Directory); err != nil {
		log.Printf("Delete: %v", err)
	}
	s.recordDelete(book, origin)
	return book, nil
}

func (s *Service) recordDelete(book *entities.Book, origin audit.Origin) {
	if s.recorder != nil {
		s.recorder.LogDelete(book.BookID, book.Title, origin)
	}
}
