package config

// Default paths for the library data
const (
	// DefaultDatabasePath is the default path for the library database
	DefaultDatabasePath = "./data/comicshelf.db"

	// DefaultLibraryDir holds one extracted directory per book
	DefaultLibraryDir = "./uploads"

	// DefaultStagingDir holds uploads in flight and ingestion locks
	DefaultStagingDir = "./data/staging"
)
