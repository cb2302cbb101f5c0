package library

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a book, page or directory does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPageNotFound is the ErrNotFound of a registered book missing a page
	// image or its directory.
	ErrPageNotFound = fmt.Errorf("page %w", ErrNotFound)

	// ErrBookExists is returned when an identifier is already registered.
	ErrBookExists = errors.New("book already exists")

	// ErrInvalidPage is returned for page numbers outside 1..TotalPages.
	ErrInvalidPage = errors.New("invalid page number")

	// ErrBusy is returned when another ingestion holds the identifier's lock.
	ErrBusy = errors.New("another upload of this book is in progress")
)

// IngestKind classifies ingestion failures.
type IngestKind string

const (
	KindInvalidIdentifier IngestKind = "invalid_identifier"
	KindBusy              IngestKind = "busy"
	KindExtractionFailed  IngestKind = "extraction_failed"
	KindValidation        IngestKind = "validation_failed"
	KindPersistFailed     IngestKind = "persist_failed"
	KindInternal          IngestKind = "internal_error"
)

// IngestError is returned by Ingester.Ingest.
type IngestError struct {
	Kind   IngestKind
	BookID string
	Err    error
}

func (e *IngestError) Error() string {
	if e.BookID == "" {
		return fmt.Sprintf("ingest: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ingest %q: %s: %v", e.BookID, e.Kind, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// IngestKindOf returns the kind of an ingestion error, or "" if err is not one.
func IngestKindOf(err error) IngestKind {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}
