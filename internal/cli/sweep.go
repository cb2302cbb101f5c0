package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/comicshelf/internal/config"
	"github.com/mrlokans/comicshelf/internal/entrypoint"
)

// SweepCommand removes library directories that belong to no registered book.
type SweepCommand struct {
	Out io.Writer

	cfg   *config.Config
	flags libraryFlags
}

// NewSweepCommand creates a new SweepCommand
func NewSweepCommand() *SweepCommand {
	return &SweepCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *SweepCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	cmd.flags.register(fs, cmd.cfg)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sweep [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove directories left behind by interrupted uploads.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.flags.apply(cmd.cfg)
	return nil
}

// Run executes the sweep command
func (cmd *SweepCommand) Run() error {
	app, err := entrypoint.NewApp(cmd.cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	removed, err := app.Sweeper.SweepOrphans(context.Background())
	out := stdout(cmd.Out)
	for _, dir := range removed {
		fmt.Fprintf(out, "Removed %s\n", dir)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Swept %d orphan directories\n", len(removed))
	return nil
}
