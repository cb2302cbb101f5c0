package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mrlokans/comicshelf/internal/config"
	"github.com/mrlokans/comicshelf/internal/entrypoint"
)

// ListCommand prints the registered books as a table.
type ListCommand struct {
	Out io.Writer

	cfg   *config.Config
	flags libraryFlags
}

// NewListCommand creates a new ListCommand
func NewListCommand() *ListCommand {
	return &ListCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *ListCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	cmd.flags.register(fs, cmd.cfg)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s list [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.flags.apply(cmd.cfg)
	return nil
}

// Run executes the list command
func (cmd *ListCommand) Run() error {
	app, err := entrypoint.NewApp(cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	books, err := app.Library.ListBooks(ctx)
	if err != nil {
		return err
	}

	out := stdout(cmd.Out)
	if len(books) == 0 {
		fmt.Fprintln(out, "No books registered")
		return nil
	}

	rows := make([][]string, 0, len(books))
	for _, b := range books {
		page, err := app.Library.GetProgress(ctx, b.BookID)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			b.BookID,
			b.Title,
			strconv.Itoa(b.TotalPages),
			strconv.Itoa(page),
			b.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Title", "Pages", "Current", "Added"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	return nil
}
