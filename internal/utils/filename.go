package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxBookIDLength is the maximum length of a book identifier in bytes.
const MaxBookIDLength = 200

// ErrInvalidBookID is returned when a file name yields no usable identifier.
var ErrInvalidBookID = errors.New("file name does not yield a valid book identifier")

var (
	// Characters invalid in file names on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename removes characters that are invalid in file names on
// common filesystems, drops control characters and collapses whitespace.
// The result is NFC-normalised and at most MaxBookIDLength bytes long.
func SanitizeFilename(filename string) string {
	filename = norm.NFC.String(filename)

	filename = invalidFilenameChars.ReplaceAllString(filename, "")

	filename = strings.Map(func(r rune) rune {
		switch {
		case r == utf8.RuneError:
			return -1
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, filename)

	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	return truncateUTF8(filename, MaxBookIDLength)
}

// BookIDFromFilename derives a book identifier from an uploaded archive's
// file name: any directory part and a trailing ".zip" (any case) are
// stripped and the remainder is sanitised. Empty, dot-only and hidden
// results are rejected.
func BookIDFromFilename(filename string) (string, error) {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	if len(filename) >= 4 && strings.EqualFold(filename[len(filename)-4:], ".zip") {
		filename = filename[:len(filename)-4]
	}

	id := SanitizeFilename(filename)
	if id == "" || strings.HasPrefix(id, ".") {
		return "", ErrInvalidBookID
	}
	return id, nil
}

func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}
