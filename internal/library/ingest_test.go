package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/comicshelf/internal/archive"
	"github.com/mrlokans/comicshelf/internal/archive/archivetest"
	"github.com/mrlokans/comicshelf/internal/entities"
)

func requireIngestKind(t *testing.T, err error, kind IngestKind) *IngestError {
	t.Helper()
	require.Error(t, err)
	var ie *IngestError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, kind, ie.Kind)
	return ie
}

func TestIngest_Success(t *testing.T) {
	env := setupTestEnv(t)
	rec := &fakeRecorder{}
	env.ingester.SetRecorder(rec)
	ctx := context.Background()

	up := env.stage(t, "onepiece.zip", archivetest.Book("One Piece", 5, 5))
	book, err := env.ingester.Ingest(ctx, up)
	require.NoError(t, err)

	assert.Equal(t, "onepiece", book.BookID)
	assert.Equal(t, "One Piece", book.Title)
	assert.Equal(t, 5, book.TotalPages)
	assert.Equal(t, "/uploads/onepiece/cover.jpg", book.CoverPath)
	assert.Equal(t, "onepiece", book.Directory)
	assert.Len(t, book.ArchiveChecksum, 64)

	stored, err := env.books.GetByBookID(ctx, "onepiece")
	require.NoError(t, err)
	assert.Equal(t, book.ID, stored.ID)

	assert.FileExists(t, filepath.Join(env.layout.Root, "onepiece", "config.json"))
	assert.FileExists(t, filepath.Join(env.layout.Root, "onepiece", "5.jpg"))
	assert.NoFileExists(t, up.Path)

	require.Len(t, rec.ingests, 1)
	assert.Equal(t, "onepiece", rec.ingests[0].bookID)
	assert.Equal(t, 5, rec.ingests[0].totalPages)
	assert.NoError(t, rec.ingests[0].err)
}

func TestIngest_UnicodeIdentifier(t *testing.T) {
	env := setupTestEnv(t)

	up := env.stage(t, "進撃の巨人 1.ZIP", archivetest.Book("Shingeki", 2, 2))
	book, err := env.ingester.Ingest(context.Background(), up)
	require.NoError(t, err)
	assert.Equal(t, "進撃の巨人 1", book.BookID)
	assert.Equal(t, "/uploads/進撃の巨人 1/cover.jpg", book.CoverPath)
}

func TestIngest_MissingManifest(t *testing.T) {
	env := setupTestEnv(t)
	rec := &fakeRecorder{}
	env.ingester.SetRecorder(rec)
	ctx := context.Background()

	up := env.stage(t, "nomanifest.zip", archivetest.Without(archivetest.Book("x", 5, 5), "config.json"))
	book, err := env.ingester.Ingest(ctx, up)
	assert.Nil(t, book)

	ie := requireIngestKind(t, err, KindValidation)
	assert.Equal(t, "nomanifest", ie.BookID)
	assert.ErrorIs(t, err, archive.ErrMissingManifest)

	exists, err := env.books.Exists(ctx, "nomanifest")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoDirExists(t, filepath.Join(env.layout.Root, "nomanifest"))
	assert.NoFileExists(t, up.Path)

	require.Len(t, rec.ingests, 1)
	assert.Error(t, rec.ingests[0].err)
}

func TestIngest_InsufficientPages(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	up := env.stage(t, "short.zip", archivetest.Book("Short", 5, 3))
	_, err := env.ingester.Ingest(ctx, up)
	requireIngestKind(t, err, KindValidation)

	var verr *archive.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 3, verr.Found)
	assert.Equal(t, 5, verr.Declared)

	exists, err := env.books.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoDirExists(t, filepath.Join(env.layout.Root, "short"))
}

func TestIngest_DuplicateKeepsExistingFiles(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.ingester.Ingest(ctx, env.stage(t, "dup.zip", archivetest.Book("Original", 2, 2)))
	require.NoError(t, err)

	up := env.stage(t, "dup.zip", archivetest.Book("Replacement", 1, 1))
	_, err = env.ingester.Ingest(ctx, up)
	requireIngestKind(t, err, KindPersistFailed)
	assert.ErrorIs(t, err, ErrBookExists)
	assert.NoFileExists(t, up.Path)

	book, err := env.books.GetByBookID(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "Original", book.Title)
	assert.FileExists(t, filepath.Join(env.layout.Root, "dup", "2.jpg"))
}

func TestIngest_DuplicateDiffersOnlyInCase(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.ingester.Ingest(ctx, env.stage(t, "foo.zip", archivetest.Book("Lower", 2, 2)))
	require.NoError(t, err)

	_, err = env.ingester.Ingest(ctx, env.stage(t, "Foo.zip", archivetest.Book("Upper", 1, 1)))
	requireIngestKind(t, err, KindPersistFailed)
	assert.ErrorIs(t, err, ErrBookExists)

	book, err := env.books.GetByBookID(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "Lower", book.Title)
	assert.FileExists(t, filepath.Join(env.layout.Root, "foo", "2.jpg"))
}

func TestIngest_ReplacesOrphanDirectory(t *testing.T) {
	env := setupTestEnv(t)

	orphan := filepath.Join(env.layout.Root, "orphan")
	require.NoError(t, os.MkdirAll(orphan, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(orphan, "stale.jpg"), []byte("x"), 0644))

	_, err := env.ingester.Ingest(context.Background(), env.stage(t, "orphan.zip", archivetest.Book("Orphan", 1, 1)))
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(orphan, "stale.jpg"))
	assert.FileExists(t, filepath.Join(orphan, "1.jpg"))
}

func TestIngest_InvalidIdentifier(t *testing.T) {
	env := setupTestEnv(t)

	up := env.stage(t, ".zip", archivetest.Book("x", 1, 1))
	_, err := env.ingester.Ingest(context.Background(), up)
	requireIngestKind(t, err, KindInvalidIdentifier)
	assert.NoFileExists(t, up.Path)
}

func TestIngest_ExtractionFailed(t *testing.T) {
	env := setupTestEnv(t)

	path, err := env.ingester.StagingPath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err = env.ingester.Ingest(context.Background(), Upload{Path: path, Filename: "broken.zip"})
	requireIngestKind(t, err, KindExtractionFailed)
	assert.NoDirExists(t, filepath.Join(env.layout.Root, "broken"))
	assert.NoFileExists(t, path)
}

func TestIngest_UnsafeEntry(t *testing.T) {
	env := setupTestEnv(t)

	entries := append(archivetest.Book("x", 1, 1), archivetest.Entry{Name: "../escape.jpg", Body: []byte("x")})
	_, err := env.ingester.Ingest(context.Background(), env.stage(t, "unsafe.zip", entries))
	requireIngestKind(t, err, KindExtractionFailed)
	assert.ErrorIs(t, err, archive.ErrUnsafePath)
	assert.NoFileExists(t, filepath.Join(env.layout.Root, "escape.jpg"))
	assert.NoDirExists(t, filepath.Join(env.layout.Root, "unsafe"))
}

func TestIngest_Busy(t *testing.T) {
	env := setupTestEnv(t)

	unlock, err := env.ingester.locks.acquire(context.Background(), "locked", time.Second)
	require.NoError(t, err)
	defer unlock()

	up := env.stage(t, "locked.zip", archivetest.Book("Locked", 1, 1))
	_, err = env.ingester.Ingest(context.Background(), up)
	requireIngestKind(t, err, KindBusy)
	assert.ErrorIs(t, err, ErrBusy)
	assert.NoDirExists(t, filepath.Join(env.layout.Root, "locked"))
	assert.NoFileExists(t, up.Path)
}

type failingRegistry struct {
	BookRegistry
}

func (failingRegistry) Create(context.Context, *entities.Book) error {
	return errors.New("disk full")
}

func TestIngest_PersistFailedRemovesDirectory(t *testing.T) {
	env := setupTestEnv(t)
	ingester := NewIngester(failingRegistry{BookRegistry: env.books}, env.layout, IngestConfig{StagingDir: env.staging})

	up := env.stage(t, "nospace.zip", archivetest.Book("No Space", 1, 1))
	_, err := ingester.Ingest(context.Background(), up)
	requireIngestKind(t, err, KindPersistFailed)
	assert.NotErrorIs(t, err, ErrBookExists)
	assert.NoDirExists(t, filepath.Join(env.layout.Root, "nospace"))
	assert.NoFileExists(t, up.Path)
}

func TestIngestKindOf(t *testing.T) {
	err := &IngestError{Kind: KindBusy, Err: ErrBusy}
	assert.Equal(t, KindBusy, IngestKindOf(err))
	assert.Equal(t, IngestKind(""), IngestKindOf(errors.New("plain")))
	assert.Contains(t, err.Error(), string(KindBusy))
}
