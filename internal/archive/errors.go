package archive

import (
	"errors"
	"fmt"
)

// Validation failure kinds. A *ValidationError always wraps exactly one of these.
var (
	ErrMissingManifest    = errors.New("missing manifest")
	ErrMissingCover       = errors.New("missing cover image")
	ErrMalformedManifest  = errors.New("malformed manifest")
	ErrIncompleteManifest = errors.New("incomplete manifest")
	ErrNoPageImages       = errors.New("no page images")
	ErrInsufficientPages  = errors.New("insufficient page images")
)

// ValidationError describes why an extracted book directory was rejected.
type ValidationError struct {
	Kind error

	// Found and Declared are set for ErrInsufficientPages.
	Found    int
	Declared int

	// Err is the underlying cause, if any (e.g. a parse error).
	Err error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrMissingManifest:
		return fmt.Sprintf("archive must contain a %s manifest", ManifestNames[0])
	case ErrMissingCover:
		return "archive must contain a cover image (cover.jpg, cover.jpeg or cover.png)"
	case ErrMalformedManifest:
		return fmt.Sprintf("manifest could not be parsed: %v", e.Err)
	case ErrIncompleteManifest:
		return "manifest must contain a title and a positive total_pages"
	case ErrNoPageImages:
		return "archive contains no page images"
	case ErrInsufficientPages:
		return fmt.Sprintf("archive contains %d page images but the manifest declares %d", e.Found, e.Declared)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "invalid archive"
}

func (e *ValidationError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ExtractionError is returned when the uploaded file cannot be unpacked.
type ExtractionError struct {
	Entry string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("extract archive: %v", e.Err)
	}
	return fmt.Sprintf("extract archive entry %s: %v", e.Entry, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

var (
	ErrUnsafePath       = errors.New("entry path escapes the destination directory")
	ErrEntryTooLarge    = errors.New("entry exceeds the maximum decompressed size")
	ErrArchiveTooLarge  = errors.New("archive exceeds the maximum decompressed size")
	ErrUnsupportedEntry = errors.New("unsupported entry type")
)
