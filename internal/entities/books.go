package entities

import "time"

// Book is a registered page-image archive extracted under the library root.
// Identifiers compare case-insensitively so two books never share a directory
// on a case-insensitive filesystem.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BookID          string    `gorm:"type:text COLLATE NOCASE;uniqueIndex;not null" json:"book_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	CoverPath       string    `gorm:"size:512" json:"cover_path"`
	TotalPages      int       `gorm:"not null" json:"total_pages"`
	Directory       string    `gorm:"size:255;not null" json:"-"`
	ArchiveChecksum string    `gorm:"size:64" json:"checksum,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	Progress []ReadingProgress `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// ReadingProgress is the last page read in a book. There is at most one row per book.
type ReadingProgress struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	BookID      uint      `gorm:"column:book_id;uniqueIndex;not null" json:"-"`
	CurrentPage int       `gorm:"not null;default:1" json:"current_page"`
	LastRead    time.Time `json:"last_read"`
}

func (ReadingProgress) TableName() string {
	return "reading_progress"
}
