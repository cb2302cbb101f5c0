// Package books provides database operations for registered books.
//
// # Usage
//
//	repo := books.NewRepository(db.DB, db.AcquireTimeout())
//	book, err := repo.GetByBookID(ctx, "onepiece")
//
// Lookups that find nothing return gorm.ErrRecordNotFound; inserting a
// duplicate identifier returns gorm.ErrDuplicatedKey.
package books

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/comicshelf/internal/database"
	"github.com/mrlokans/comicshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewRepository creates a new books repository. Every call is bounded by timeout.
func NewRepository(db *gorm.DB, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// Create registers a new book.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.db.WithContext(ctx).Create(book).Error
}

// GetByBookID retrieves a book by its identifier.
func (r *Repository) GetByBookID(ctx context.Context, bookID string) (*entities.Book, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var book entities.Book
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAll retrieves every registered book, newest first.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Book, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	books := []entities.Book{}
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&books).Error
	return books, err
}

// Exists reports whether a book with the identifier is registered.
func (r *Repository) Exists(ctx context.Context, bookID string) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("book_id = ?", bookID).Count(&count).Error
	return count > 0, err
}

// Delete removes a book and its reading progress and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, bookID string) (*entities.Book, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var book entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).First(&book).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", book.ID).Delete(&entities.ReadingProgress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, book.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListDirectories returns the storage directory names of all registered books.
func (r *Repository) ListDirectories(ctx context.Context) ([]string, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var dirs []string
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Pluck("directory", &dirs).Error
	return dirs, err
}

// Count returns the number of registered books.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}
