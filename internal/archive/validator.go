package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/comicshelf/internal/pages"
)

// Contents is what a valid book directory was found to contain.
type Contents struct {
	Title      string
	TotalPages int
	Manifest   string
	Cover      string
	PageImages []string
}

// Validate checks an extracted book directory. Checks run in a fixed order
// and the first failure is reported as a *ValidationError.
func Validate(dir string) (*Contents, error) {
	manifestName, ok := findFirst(dir, ManifestNames)
	if !ok {
		return nil, &ValidationError{Kind: ErrMissingManifest}
	}

	cover, ok := findFirst(dir, CoverNames)
	if !ok {
		return nil, &ValidationError{Kind: ErrMissingCover}
	}

	manifest, err := ParseManifest(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, &ValidationError{Kind: ErrMalformedManifest, Err: err}
	}
	if !manifest.Complete() {
		return nil, &ValidationError{Kind: ErrIncompleteManifest}
	}

	listing, err := ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list book directory: %w", err)
	}

	images := pages.FilterPageImages(listing)
	if len(images) == 0 {
		return nil, &ValidationError{Kind: ErrNoPageImages, Declared: manifest.TotalPages}
	}
	if len(images) < manifest.TotalPages {
		return nil, &ValidationError{
			Kind:     ErrInsufficientPages,
			Found:    len(images),
			Declared: manifest.TotalPages,
		}
	}

	return &Contents{
		Title:      manifest.Title,
		TotalPages: manifest.TotalPages,
		Manifest:   manifestName,
		Cover:      cover,
		PageImages: images,
	}, nil
}

// ListFiles returns the names of the regular files directly inside dir,
// sorted by name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
