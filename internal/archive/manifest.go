package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestNames are the accepted manifest file names, in lookup order.
var ManifestNames = []string{"config.json", "config.yaml", "config.yml"}

// CoverNames are the accepted cover image file names, in lookup order.
var CoverNames = []string{"cover.jpg", "cover.jpeg", "cover.png"}

// Manifest is the book description shipped at the archive root.
type Manifest struct {
	Title      string `json:"title" yaml:"title"`
	TotalPages int    `json:"total_pages" yaml:"total_pages"`
}

// Complete reports whether the manifest carries a usable title and page count.
func (m *Manifest) Complete() bool {
	return strings.TrimSpace(m.Title) != "" && m.TotalPages > 0
}

// ParseManifest decodes the manifest at path. The format follows the extension.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode yaml manifest: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode json manifest: %w", err)
		}
	}

	m.Title = strings.TrimSpace(m.Title)
	return &m, nil
}

// findFirst returns the first of names that exists as a regular file in dir.
func findFirst(dir string, names []string) (string, bool) {
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && info.Mode().IsRegular() {
			return name, true
		}
	}
	return "", false
}
