package library

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultPublicPrefix is the URL path the library root is served under.
const DefaultPublicPrefix = "/uploads"

// Layout maps book directories to paths on disk and to public URLs.
type Layout struct {
	// Root holds one directory per book.
	Root string

	// PublicPrefix is the URL path Root is served under.
	PublicPrefix string
}

// NewLayout returns a Layout rooted at root. An empty prefix means DefaultPublicPrefix.
func NewLayout(root, publicPrefix string) Layout {
	if publicPrefix == "" {
		publicPrefix = DefaultPublicPrefix
	}
	return Layout{Root: root, PublicPrefix: "/" + strings.Trim(publicPrefix, "/")}
}

// Ensure creates the library root if it is missing.
func (l Layout) Ensure() error {
	if err := os.MkdirAll(l.Root, 0755); err != nil {
		return fmt.Errorf("create library directory: %w", err)
	}
	return nil
}

// BookDir returns the on-disk path of a book directory.
func (l Layout) BookDir(directory string) string {
	return filepath.Join(l.Root, directory)
}

// CoverURL returns the public URL of a cover image inside a book directory.
func (l Layout) CoverURL(directory, cover string) string {
	return path.Join(l.PublicPrefix, directory, cover)
}

// RemoveBookDir deletes a book directory. Names that would resolve outside
// Root are refused.
func (l Layout) RemoveBookDir(directory string) error {
	if !isPlainName(directory) {
		return fmt.Errorf("refusing to remove %q: not a directory name", directory)
	}
	if err := os.RemoveAll(l.BookDir(directory)); err != nil {
		return fmt.Errorf("remove book directory %s: %w", directory, err)
	}
	return nil
}

// ListBookDirs returns the names of the directories directly under Root,
// skipping hidden entries.
func (l Layout) ListBookDirs() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dirs = append(dirs, entry.Name())
	}
	return dirs, nil
}

func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
