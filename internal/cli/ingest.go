package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/comicshelf/internal/config"
	"github.com/mrlokans/comicshelf/internal/entrypoint"
	"github.com/mrlokans/comicshelf/internal/library"
)

// IngestCommand registers a zip archive from the local filesystem.
type IngestCommand struct {
	File string
	Name string // Client filename the identifier is derived from; defaults to the file's base name
	Out  io.Writer

	cfg   *config.Config
	flags libraryFlags
}

// NewIngestCommand creates a new IngestCommand
func NewIngestCommand() *IngestCommand {
	return &IngestCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *IngestCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.StringVar(&cmd.File, "file", "", "Path to the zip archive (required)")
	fs.StringVar(&cmd.Name, "name", "", "Archive name to derive the book identifier from (default: file name)")
	cmd.flags.register(fs, cmd.cfg)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s ingest -file <archive.zip> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Extract, validate and register a book archive.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.File == "" {
		return fmt.Errorf("-file is required")
	}
	cmd.flags.apply(cmd.cfg)
	return nil
}

// Run executes the ingest command
func (cmd *IngestCommand) Run() error {
	app, err := entrypoint.NewApp(cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	name := cmd.Name
	if name == "" {
		name = filepath.Base(cmd.File)
	}

	// The ingester consumes its input; work on a staged copy.
	staged, err := app.Ingester.StagingPath()
	if err != nil {
		return err
	}
	if err := copyFile(cmd.File, staged); err != nil {
		os.Remove(staged)
		return err
	}

	book, err := app.Ingester.Ingest(context.Background(), library.Upload{Path: staged, Filename: name})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout(cmd.Out), "Registered %q: %s (%d pages)\n", book.BookID, book.Title, book.TotalPages)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("stage archive: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("stage archive: %w", err)
	}
	return out.Close()
}
