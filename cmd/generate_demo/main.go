// Command generate_demo fills a library with generated sample books.
// Usage: go run ./cmd/generate_demo [-db path/to/demo.db] [-library path/to/uploads]
package main

import (
	"archive/zip"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/comicshelf/internal/config"
	"github.com/mrlokans/comicshelf/internal/entrypoint"
	"github.com/mrlokans/comicshelf/internal/library"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	defaultDemoLibraryDir   = "./demo/uploads"
)

// demoBook describes one generated archive. pageName formats the
// filename of page n in one of the accepted naming conventions.
type demoBook struct {
	archive  string
	title    string
	pages    int
	hue      color.RGBA
	pageName func(n int) string
}

func demoBooks() []demoBook {
	return []demoBook{
		{
			archive:  "Harbour Lights.zip",
			title:    "Harbour Lights",
			pages:    8,
			hue:      color.RGBA{R: 40, G: 90, B: 160, A: 255},
			pageName: func(n int) string { return fmt.Sprintf("%d.png", n) },
		},
		{
			archive:  "Paper Moon Vol 1.zip",
			title:    "Paper Moon, Volume 1",
			pages:    12,
			hue:      color.RGBA{R: 170, G: 60, B: 80, A: 255},
			pageName: func(n int) string { return fmt.Sprintf("%03d(%d).png", n, n) },
		},
		{
			archive:  "Garden Path.zip",
			title:    "Garden Path",
			pages:    6,
			hue:      color.RGBA{R: 60, G: 140, B: 70, A: 255},
			pageName: func(n int) string { return fmt.Sprintf("p（%d）.png", n) },
		},
	}
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	libraryDir := flag.String("library", defaultDemoLibraryDir, "directory for extracted demo books")
	flag.Parse()

	log.Printf("Generating demo library at %s...", *libraryDir)

	// Start fresh
	for _, path := range []string{*dbPath, *libraryDir} {
		if err := os.RemoveAll(path); err != nil {
			log.Fatalf("Failed to remove %s: %v", path, err)
		}
	}

	cfg := config.NewConfig()
	cfg.Database.Path = *dbPath
	cfg.Library.Dir = *libraryDir
	cfg.Library.StagingDir = filepath.Join(filepath.Dir(*dbPath), "staging")

	app, err := entrypoint.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to open library: %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	for _, b := range demoBooks() {
		staged, err := app.Ingester.StagingPath()
		if err != nil {
			log.Fatalf("Failed to stage %s: %v", b.archive, err)
		}
		if err := writeArchive(staged, b); err != nil {
			log.Fatalf("Failed to build %s: %v", b.archive, err)
		}

		book, err := app.Ingester.Ingest(ctx, library.Upload{Path: staged, Filename: b.archive})
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", b.archive, err)
		}
		log.Printf("  Added %q (%d pages)", book.BookID, book.TotalPages)
	}

	log.Printf("Demo library generated successfully!")
}

func writeArchive(path string, b demoBook) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	manifest, err := json.Marshal(map[string]any{"title": b.title, "total_pages": b.pages})
	if err != nil {
		return err
	}
	if err := writeEntry(zw, "config.json", func(w io.Writer) error {
		_, err := w.Write(manifest)
		return err
	}); err != nil {
		return err
	}

	if err := writeEntry(zw, "cover.png", func(w io.Writer) error {
		return png.Encode(w, pageImage(b.hue, 0, b.pages))
	}); err != nil {
		return err
	}

	for n := 1; n <= b.pages; n++ {
		if err := writeEntry(zw, b.pageName(n), func(w io.Writer) error {
			return png.Encode(w, pageImage(b.hue, n, b.pages))
		}); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, write func(io.Writer) error) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	return write(w)
}

// pageImage draws a page: a solid background with a bar whose length
// shows the position of page n in the book. Page 0 is the cover.
func pageImage(hue color.RGBA, n, total int) image.Image {
	const width, height = 240, 360
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	bg := color.RGBA{R: hue.R / 3, G: hue.G / 3, B: hue.B / 3, A: 255}
	if n == 0 {
		bg = hue
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, bg)
		}
	}

	barWidth := width
	if n > 0 && total > 0 {
		barWidth = width * n / total
	}
	for y := height - 24; y < height-8; y++ {
		for x := 0; x < barWidth; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}
