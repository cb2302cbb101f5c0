package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/comicshelf/internal/archive/archivetest"
	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/entities"
)

func ingestBook(t *testing.T, env *testEnv, filename string, entries []archivetest.Entry) *entities.Book {
	t.Helper()
	book, err := env.ingester.Ingest(context.Background(), env.stage(t, filename, entries))
	require.NoError(t, err)
	return book
}

func TestService_ListAndGet(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	books, err := env.service.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	ingestBook(t, env, "a.zip", archivetest.Book("A", 1, 1))
	ingestBook(t, env, "b.zip", archivetest.Book("B", 1, 1))

	books, err = env.service.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	book, err := env.service.GetBook(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "B", book.Title)

	_, err = env.service.GetBook(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_PagePath(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	ingestBook(t, env, "manga.zip", archivetest.Book("Manga", 5, 5))

	t.Run("resolves every declared page", func(t *testing.T) {
		for page := 1; page <= 5; page++ {
			path, err := env.service.PagePath(ctx, "manga", page)
			require.NoError(t, err)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, []byte("page "+string(rune('0'+page))), data)
		}
	})

	t.Run("page beyond the archive", func(t *testing.T) {
		_, err := env.service.PagePath(ctx, "manga", 6)
		assert.ErrorIs(t, err, ErrPageNotFound)
	})

	t.Run("non-positive page", func(t *testing.T) {
		_, err := env.service.PagePath(ctx, "manga", 0)
		assert.ErrorIs(t, err, ErrInvalidPage)
	})

	t.Run("unknown book", func(t *testing.T) {
		_, err := env.service.PagePath(ctx, "unknown", 1)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrPageNotFound)
	})

	t.Run("missing directory", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(filepath.Join(env.layout.Root, "manga")))
		_, err := env.service.PagePath(ctx, "manga", 1)
		assert.ErrorIs(t, err, ErrPageNotFound)
	})
}

func TestService_PagePath_ListingOrderTieBreak(t *testing.T) {
	env := setupTestEnv(t)
	entries := []archivetest.Entry{
		{Name: "config.json", Body: []byte(`{"title":"Tie","total_pages":1}`)},
		{Name: "cover.jpg", Body: []byte("cover")},
		{Name: "1.jpg", Body: []byte("plain")},
		{Name: "a(1).png", Body: []byte("prefixed")},
	}
	ingestBook(t, env, "tie.zip", entries)

	path, err := env.service.PagePath(context.Background(), "tie", 1)
	require.NoError(t, err)
	assert.Equal(t, "1.jpg", filepath.Base(path))
}

func TestService_Progress(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	ingestBook(t, env, "reading.zip", archivetest.Book("Reading", 10, 10))

	page, err := env.service.GetProgress(ctx, "reading")
	require.NoError(t, err)
	assert.Equal(t, 1, page)

	require.NoError(t, env.service.SetProgress(ctx, "reading", 3))
	require.NoError(t, env.service.SetProgress(ctx, "reading", 4))

	page, err = env.service.GetProgress(ctx, "reading")
	require.NoError(t, err)
	assert.Equal(t, 4, page)

	assert.ErrorIs(t, env.service.SetProgress(ctx, "reading", 0), ErrInvalidPage)
	assert.ErrorIs(t, env.service.SetProgress(ctx, "reading", 11), ErrInvalidPage)
	assert.ErrorIs(t, env.service.SetProgress(ctx, "unknown", 1), ErrNotFound)

	_, err = env.service.GetProgress(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakePurger struct {
	dirs []string
	err  error
}

func (f *fakePurger) PurgeBookDirectory(_ context.Context, directory string) error {
	if f.err != nil {
		return f.err
	}
	f.dirs = append(f.dirs, directory)
	return nil
}

func TestService_DeleteBook(t *testing.T) {
	ctx := context.Background()

	t.Run("removes directory synchronously without purger", func(t *testing.T) {
		env := setupTestEnv(t)
		rec := &fakeRecorder{}
		env.service.SetRecorder(rec)
		ingestBook(t, env, "gone.zip", archivetest.Book("Gone", 1, 1))
		require.NoError(t, env.service.SetProgress(ctx, "gone", 1))

		book, err := env.service.DeleteBook(ctx, "gone", audit.Origin{})
		require.NoError(t, err)
		assert.Equal(t, "Gone", book.Title)
		assert.NoDirExists(t, filepath.Join(env.layout.Root, "gone"))
		assert.Equal(t, []string{"gone"}, rec.deletes)

		_, err = env.service.GetBook(ctx, "gone")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("hands directory to purger", func(t *testing.T) {
		env := setupTestEnv(t)
		purger := &fakePurger{}
		env.service.SetPurger(purger)
		ingestBook(t, env, "queued.zip", archivetest.Book("Queued", 1, 1))

		_, err := env.service.DeleteBook(ctx, "queued", audit.Origin{})
		require.NoError(t, err)
		assert.Equal(t, []string{"queued"}, purger.dirs)
		assert.DirExists(t, filepath.Join(env.layout.Root, "queued"))
	})

	t.Run("falls back when purger fails", func(t *testing.T) {
		env := setupTestEnv(t)
		env.service.SetPurger(&fakePurger{err: errors.New("queue down")})
		ingestBook(t, env, "fallback.zip", archivetest.Book("Fallback", 1, 1))

		_, err := env.service.DeleteBook(ctx, "fallback", audit.Origin{})
		require.NoError(t, err)
		assert.NoDirExists(t, filepath.Join(env.layout.Root, "fallback"))
	})

	t.Run("queued purge spares a book uploaded again", func(t *testing.T) {
		env := setupTestEnv(t)
		purger := &fakePurger{}
		env.service.SetPurger(purger)
		ingestBook(t, env, "again.zip", archivetest.Book("First", 3, 3))

		_, err := env.service.DeleteBook(ctx, "again", audit.Origin{})
		require.NoError(t, err)
		ingestBook(t, env, "again.zip", archivetest.Book("Second", 3, 3))

		require.Equal(t, []string{"again"}, purger.dirs)
		require.NoError(t, env.sweeper.RemoveIfUnregistered(ctx, purger.dirs[0]))

		book, err := env.service.GetBook(ctx, "again")
		require.NoError(t, err)
		assert.Equal(t, "Second", book.Title)
		path, err := env.service.PagePath(ctx, "again", 1)
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("unknown book", func(t *testing.T) {
		env := setupTestEnv(t)
		_, err := env.service.DeleteBook(ctx, "missing", audit.Origin{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLayout(t *testing.T) {
	layout := NewLayout("/srv/library", "media/")
	assert.Equal(t, "/media", layout.PublicPrefix)
	assert.Equal(t, "/media/book/cover.png", layout.CoverURL("book", "cover.png"))
	assert.Equal(t, filepath.Join("/srv/library", "book"), layout.BookDir("book"))

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		assert.Error(t, layout.RemoveBookDir(name), name)
	}
}
