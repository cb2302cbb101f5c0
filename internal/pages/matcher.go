// Package pages resolves logical page numbers to image file names inside an
// extracted book directory.
//
// A book directory holds page images named in one of a handful of
// conventions produced by common scanners and downloaders:
//
//	7.jpg          plain number
//	001(7).png     numeric prefix, page in ASCII parentheses
//	001（7）.jpg    numeric prefix, page in full-width parentheses
//	page(7).jpeg   letter prefix, page in ASCII parentheses
//	page（7）.jpg   letter prefix, page in full-width parentheses
//
// Extensions are matched case-insensitively. The captured page number must
// be written without leading zeros, so "01.jpg" is never page 1.
package pages

import (
	"errors"
	"regexp"
	"strconv"
)

var (
	// ErrInvalidPage is returned when the requested page is below 1.
	ErrInvalidPage = errors.New("page number must be a positive integer")

	// ErrPageNotFound is returned when no file in the listing encodes the page.
	ErrPageNotFound = errors.New("page image not found")
)

const imageExtensions = `\.(?:jpg|jpeg|png)$`

// Pattern is a single page naming convention. The expression captures the
// page number in its first group.
type Pattern struct {
	Name string
	re   *regexp.Regexp
}

func newPattern(name, expr string) Pattern {
	return Pattern{Name: name, re: regexp.MustCompile(`(?i)` + expr + imageExtensions)}
}

// Patterns lists the supported conventions in priority order.
var Patterns = []Pattern{
	newPattern("number", `^(\d+)`),
	newPattern("numeric-prefix-parens", `^\d+\((\d+)\)`),
	newPattern("numeric-prefix-fullwidth-parens", `^\d+（(\d+)）`),
	newPattern("letter-prefix-parens", `^[a-z]+\((\d+)\)`),
	newPattern("letter-prefix-fullwidth-parens", `^[a-z]+（(\d+)）`),
}

// PageOf returns the page number string encoded in name, exactly as written.
func (p Pattern) PageOf(name string) (string, bool) {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Matches reports whether name encodes the given page under this pattern.
func (p Pattern) Matches(name string, page int) bool {
	digits, ok := p.PageOf(name)
	return ok && digits == strconv.Itoa(page)
}

// Match returns the first name in listing that encodes page under any
// pattern. Listing order decides between several candidates.
func Match(listing []string, page int) (string, error) {
	if page < 1 {
		return "", ErrInvalidPage
	}

	for _, name := range listing {
		for _, p := range Patterns {
			if p.Matches(name, page) {
				return name, nil
			}
		}
	}

	return "", ErrPageNotFound
}

// IsPageImage reports whether name follows any page naming convention.
func IsPageImage(name string) bool {
	for _, p := range Patterns {
		if p.re.MatchString(name) {
			return true
		}
	}
	return false
}

// FilterPageImages returns the names in listing that look like page images,
// preserving order.
func FilterPageImages(listing []string) []string {
	result := make([]string, 0, len(listing))
	for _, name := range listing {
		if IsPageImage(name) {
			result = append(result, name)
		}
	}
	return result
}
