package archive

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxEntrySize bounds the decompressed size of a single entry.
	DefaultMaxEntrySize int64 = 256 * 1024 * 1024

	// DefaultMaxTotalSize bounds the decompressed size of a whole archive.
	DefaultMaxTotalSize int64 = 4 * 1024 * 1024 * 1024
)

// Extractor unpacks zip archives into a directory.
type Extractor struct {
	MaxEntrySize int64
	MaxTotalSize int64
}

// NewExtractor returns an Extractor with the default size limits.
func NewExtractor() Extractor {
	return Extractor{
		MaxEntrySize: DefaultMaxEntrySize,
		MaxTotalSize: DefaultMaxTotalSize,
	}
}

// Extract unpacks the archive at archivePath into destDir, which must exist.
// It returns the number of files written. Entries that would land outside
// destDir, symlinks and oversized entries fail the whole extraction.
func (x Extractor) Extract(archivePath, destDir string) (int, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, &ExtractionError{Err: err}
	}
	defer reader.Close()

	entryLimit := x.MaxEntrySize
	if entryLimit <= 0 {
		entryLimit = DefaultMaxEntrySize
	}
	totalLimit := x.MaxTotalSize
	if totalLimit <= 0 {
		totalLimit = DefaultMaxTotalSize
	}

	var written, total int64
	files := 0
	for _, file := range reader.File {
		name := strings.ReplaceAll(file.Name, `\`, "/")
		if !isSafePath(name) {
			return files, &ExtractionError{Entry: file.Name, Err: ErrUnsafePath}
		}

		destPath := filepath.Join(destDir, filepath.FromSlash(path.Clean(name)))

		mode := file.Mode()
		if mode.IsDir() || strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return files, &ExtractionError{Entry: file.Name, Err: err}
			}
			continue
		}
		if !mode.IsRegular() {
			return files, &ExtractionError{Entry: file.Name, Err: ErrUnsupportedEntry}
		}

		if file.UncompressedSize64 > uint64(entryLimit) {
			return files, &ExtractionError{Entry: file.Name, Err: ErrEntryTooLarge}
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return files, &ExtractionError{Entry: file.Name, Err: err}
		}

		written, err = extractEntry(file, destPath, entryLimit)
		if err != nil {
			return files, &ExtractionError{Entry: file.Name, Err: err}
		}
		total += written
		if total > totalLimit {
			return files, &ExtractionError{Err: ErrArchiveTooLarge}
		}
		files++
	}

	return files, nil
}

// extractEntry copies a single entry to destPath, reading at most limit bytes.
func extractEntry(file *zip.File, destPath string, limit int64) (int64, error) {
	rc, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}

	// The declared size may be forged, so read one byte past the limit.
	n, err := io.Copy(out, io.LimitReader(rc, limit+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	if n > limit {
		return n, ErrEntryTooLarge
	}
	return n, nil
}

// isSafePath reports whether p stays inside the extraction root.
func isSafePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || filepath.VolumeName(p) != "" {
		return false
	}
	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}
