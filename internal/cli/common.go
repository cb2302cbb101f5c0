package cli

import (
	"flag"
	"io"
	"os"

	"github.com/mrlokans/comicshelf/internal/config"
)

// libraryFlags are shared by every command that opens the library.
type libraryFlags struct {
	DatabasePath string
	LibraryDir   string
	StagingDir   string
}

func (f *libraryFlags) register(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&f.DatabasePath, "db", cfg.Database.Path, "Path to the library database")
	fs.StringVar(&f.LibraryDir, "library", cfg.Library.Dir, "Directory holding extracted books")
	fs.StringVar(&f.StagingDir, "staging", cfg.Library.StagingDir, "Directory for uploads in flight and lock files")
}

func (f *libraryFlags) apply(cfg *config.Config) {
	cfg.Database.Path = f.DatabasePath
	cfg.Library.Dir = f.LibraryDir
	cfg.Library.StagingDir = f.StagingDir
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
