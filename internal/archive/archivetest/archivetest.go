// Package archivetest builds book archives for tests.
package archivetest

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Entry is a single file in a test archive.
type Entry struct {
	Name string
	Body []byte
}

// WriteZip writes entries, in order, to a new zip file at path.
func WriteZip(t testing.TB, path string, entries []Entry) string {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Body); err != nil {
			t.Fatalf("write zip entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

// Book returns the entries of a well-formed book: a JSON manifest declaring
// declared pages, a cover and images pages named 1.jpg..N.jpg.
func Book(title string, declared, images int) []Entry {
	entries := []Entry{
		{Name: "config.json", Body: []byte(fmt.Sprintf(`{"title": %q, "total_pages": %d}`, title, declared))},
		{Name: "cover.jpg", Body: []byte("cover")},
	}
	for i := 1; i <= images; i++ {
		entries = append(entries, Entry{Name: fmt.Sprintf("%d.jpg", i), Body: []byte(fmt.Sprintf("page %d", i))})
	}
	return entries
}

// WriteBook writes a well-formed book archive named name into dir.
func WriteBook(t testing.TB, dir, name, title string, declared, images int) string {
	t.Helper()
	return WriteZip(t, filepath.Join(dir, name), Book(title, declared, images))
}

// Without returns entries minus those with the given names.
func Without(entries []Entry, names ...string) []Entry {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !drop[e.Name] {
			result = append(result, e)
		}
	}
	return result
}

// Replace returns entries with the body of name replaced.
func Replace(entries []Entry, name string, body []byte) []Entry {
	result := make([]Entry, len(entries))
	copy(result, entries)
	for i := range result {
		if result[i].Name == name {
			result[i].Body = body
		}
	}
	return result
}
