// Package progress stores the last page read for each book.
package progress

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/comicshelf/internal/database"
	"github.com/mrlokans/comicshelf/internal/entities"
)

type Repository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewRepository(db *gorm.DB, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// Get returns the stored progress for a book row. It returns
// gorm.ErrRecordNotFound when nothing has been recorded yet.
func (r *Repository) Get(ctx context.Context, bookID uint) (*entities.ReadingProgress, error) {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	var p entities.ReadingProgress
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert records page as the current page of a book row. The last write wins.
func (r *Repository) Upsert(ctx context.Context, bookID uint, page int) error {
	ctx, cancel := database.WithTimeout(ctx, r.timeout)
	defer cancel()

	p := entities.ReadingProgress{
		BookID:      bookID,
		CurrentPage: page,
		LastRead:    time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_page", "last_read"}),
	}).Create(&p).Error
}
