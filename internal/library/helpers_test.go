package library

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/comicshelf/internal/archive/archivetest"
	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/database"
	"github.com/mrlokans/comicshelf/internal/database/books"
	"github.com/mrlokans/comicshelf/internal/database/progress"
)

type testEnv struct {
	root     string
	layout   Layout
	books    *books.Repository
	progress *progress.Repository
	ingester *Ingester
	service  *Service
	sweeper  *Sweeper
	staging  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()

	db, err := database.NewDatabase(filepath.Join(root, "library.db"), database.DefaultPoolConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	layout := NewLayout(filepath.Join(root, "library"), "")
	require.NoError(t, layout.Ensure())

	booksRepo := books.NewRepository(db.DB, 5*time.Second)
	progressRepo := progress.NewRepository(db.DB, 5*time.Second)
	staging := filepath.Join(root, "staging")
	sweeper := NewSweeper(booksRepo, layout, staging)

	return &testEnv{
		root:     root,
		layout:   layout,
		books:    booksRepo,
		progress: progressRepo,
		staging:  staging,
		ingester: NewIngester(booksRepo, layout, IngestConfig{StagingDir: staging, LockTimeout: 200 * time.Millisecond}),
		sweeper:  sweeper,
		service:  NewService(booksRepo, progressRepo, layout, sweeper),
	}
}

// stage writes entries as a staged upload the client called filename.
func (e *testEnv) stage(t *testing.T, filename string, entries []archivetest.Entry) Upload {
	t.Helper()
	path, err := e.ingester.StagingPath()
	require.NoError(t, err)
	archivetest.WriteZip(t, path, entries)
	return Upload{Path: path, Filename: filename}
}

type ingestCall struct {
	bookID     string
	totalPages int
	checksum   string
	err        error
}

type fakeRecorder struct {
	mu       sync.Mutex
	ingests  []ingestCall
	deletes  []string
	sweeps   [][]string
	sweepErr error
}

func (f *fakeRecorder) LogIngest(bookID string, _ audit.Origin, totalPages int, checksum string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ingests = append(f.ingests, ingestCall{bookID, totalPages, checksum, err})
}

func (f *fakeRecorder) LogDelete(bookID, _ string, _ audit.Origin) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, bookID)
}

func (f *fakeRecorder) LogSweep(removed []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps = append(f.sweeps, removed)
	f.sweepErr = err
}
