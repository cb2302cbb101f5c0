package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/comicshelf/internal/archive/archivetest"
	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/database"
	auditrepo "github.com/mrlokans/comicshelf/internal/database/audit"
	"github.com/mrlokans/comicshelf/internal/database/books"
	"github.com/mrlokans/comicshelf/internal/database/progress"
	"github.com/mrlokans/comicshelf/internal/library"
)

type testServer struct {
	router  *gin.Engine
	audit   *audit.Service
	layout  library.Layout
	staging string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()

	db, err := database.NewDatabase(filepath.Join(root, "library.db"), database.DefaultPoolConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	layout := library.NewLayout(filepath.Join(root, "uploads"), "/uploads")
	require.NoError(t, layout.Ensure())

	booksRepo := books.NewRepository(db.DB, 5*time.Second)
	progressRepo := progress.NewRepository(db.DB, 5*time.Second)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB, 5*time.Second))
	t.Cleanup(auditService.Wait)

	staging := filepath.Join(root, "staging")
	ingester := library.NewIngester(booksRepo, layout, library.IngestConfig{StagingDir: staging})
	ingester.SetRecorder(auditService)
	service := library.NewService(booksRepo, progressRepo, layout, library.NewSweeper(booksRepo, layout, staging))
	service.SetRecorder(auditService)

	router := NewRouter(RouterConfig{
		Library:        service,
		Ingester:       ingester,
		Database:       db,
		AuditService:   auditService,
		MaxUploadBytes: 10 << 20,
		Version:        "test",
	})
	return &testServer{router: router, audit: auditService, layout: layout, staging: staging}
}

func (s *testServer) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// upload posts a zip built from entries under the given client filename.
func (s *testServer) upload(t *testing.T, filename string, entries []archivetest.Entry) *httptest.ResponseRecorder {
	t.Helper()
	zipPath := archivetest.WriteZip(t, filepath.Join(t.TempDir(), "upload.zip"), entries)
	data, err := os.ReadFile(zipPath)
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("book", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return s.do(t, http.MethodPost, "/api/books/upload", &body, mw.FormDataContentType())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestUpload(t *testing.T) {
	t.Run("registers a well-formed archive", func(t *testing.T) {
		s := setupTestServer(t)

		entries := append(archivetest.Without(archivetest.Book("My Comic", 5, 5), "cover.jpg"),
			archivetest.Entry{Name: "cover.png", Body: []byte("cover")})
		w := s.upload(t, "My Comic.zip", entries)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Success bool          `json:"success"`
			Message string        `json:"message"`
			Details UploadDetails `json:"details"`
		}
		decode(t, w, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "My Comic", resp.Details.BookID)
		assert.Equal(t, "My Comic", resp.Details.Title)
		assert.Equal(t, 5, resp.Details.TotalPages)
		assert.Equal(t, "/uploads/My Comic/cover.png", resp.Details.CoverURL)

		w = s.do(t, http.MethodGet, "/api/books/My%20Comic", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var book map[string]any
		decode(t, w, &book)
		assert.Equal(t, "My Comic", book["book_id"])
		assert.Equal(t, float64(5), book["total_pages"])
		assert.NotContains(t, book, "Directory")

		w = s.do(t, http.MethodGet, "/uploads/My%20Comic/cover.png", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		staged, err := os.ReadDir(filepath.Join(s.staging, "incoming"))
		require.NoError(t, err)
		assert.Empty(t, staged, "staged upload must be removed")
	})

	t.Run("rejects an archive without manifest", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.upload(t, "broken.zip", archivetest.Without(archivetest.Book("Broken", 2, 2), "config.json"))
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		decode(t, w, &resp)
		assert.Equal(t, "validation_failed", resp.Code)
		assert.Contains(t, resp.Details, "config.json")

		w = s.do(t, http.MethodGet, "/api/books/broken", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects too few page images", func(t *testing.T) {
		s := setupTestServer(t)

		w := s.upload(t, "short.zip", archivetest.Book("Short", 5, 3))
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(t, http.MethodGet, "/api/books", nil, "")
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("conflicts on a duplicate identifier", func(t *testing.T) {
		s := setupTestServer(t)

		require.Equal(t, http.StatusOK, s.upload(t, "dup.zip", archivetest.Book("First", 2, 2)).Code)
		w := s.upload(t, "dup.zip", archivetest.Book("Second", 4, 4))
		require.Equal(t, http.StatusConflict, w.Code)

		w = s.do(t, http.MethodGet, "/api/books/dup", nil, "")
		var book map[string]any
		decode(t, w, &book)
		assert.Equal(t, "First", book["title"])
	})

	t.Run("requires the book field", func(t *testing.T) {
		s := setupTestServer(t)

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("other", "value"))
		require.NoError(t, mw.Close())

		w := s.do(t, http.MethodPost, "/api/books/upload", &body, mw.FormDataContentType())
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "no file uploaded")
	})
}

func TestBooksAPI(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.upload(t, "vol1.zip", archivetest.Book("Volume 1", 2, 2)).Code)

	t.Run("lists books", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var list []map[string]any
		decode(t, w, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "vol1", list[0]["book_id"])
	})

	t.Run("returns 404 for an unknown book", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books/missing", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("serves page images", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books/vol1/pages/2", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "page 2", w.Body.String())
	})

	t.Run("page errors", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/books/missing/pages/1", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "book not found")

		w = s.do(t, http.MethodGet, "/api/books/vol1/pages/9", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "page not found")
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/books/vol1/pages/0", nil, "").Code)
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/books/vol1/pages/abc", nil, "").Code)
	})
}

func TestProgressAPI(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.upload(t, "saga.zip", archivetest.Book("Saga", 5, 5)).Code)

	current := func() float64 {
		w := s.do(t, http.MethodGet, "/api/progress/saga", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]float64
		decode(t, w, &resp)
		return resp["current_page"]
	}
	set := func(body string) *httptest.ResponseRecorder {
		return s.do(t, http.MethodPost, "/api/progress/saga", strings.NewReader(body), "application/json")
	}

	assert.Equal(t, float64(1), current())

	w := set(`{"page": 3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
	assert.Equal(t, float64(3), current())

	require.Equal(t, http.StatusOK, set(`{"page": 4}`).Code)
	assert.Equal(t, float64(4), current())

	assert.Equal(t, http.StatusBadRequest, set(`{"page": 6}`).Code)
	assert.Equal(t, http.StatusBadRequest, set(`{}`).Code)
	assert.Equal(t, float64(4), current())

	w = s.do(t, http.MethodGet, "/api/progress/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPost, "/api/progress/unknown", strings.NewReader(`{"page": 1}`), "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBook(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.upload(t, "gone.zip", archivetest.Book("Gone", 1, 1)).Code)

	w := s.do(t, http.MethodDelete, "/api/books/gone", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/books/gone", nil, "").Code)
	assert.NoDirExists(t, s.layout.BookDir("gone"))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/books/gone", nil, "").Code)
}

func TestAuditAPI(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusOK, s.upload(t, "logged.zip", archivetest.Book("Logged", 1, 1)).Code)
	require.Equal(t, http.StatusBadRequest, s.upload(t, "bad.zip", archivetest.Without(archivetest.Book("Bad", 1, 1), "cover.jpg")).Code)
	s.audit.Wait()

	w := s.do(t, http.MethodGet, "/api/audit?type=ingest", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data  []map[string]any `json:"data"`
		Total int64            `json:"total"`
	}
	decode(t, w, &resp)
	assert.Equal(t, int64(2), resp.Total)

	w = s.do(t, http.MethodGet, "/api/audit?book=bad", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "failed", resp.Data[0]["status"])
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	decode(t, w, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Equal(t, "ok", resp.Checks["library"])
	assert.Equal(t, "test", resp.Version)

	w = s.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, os.RemoveAll(s.layout.Root))
	w = s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Checks["library"], "error")
}

func TestCORS(t *testing.T) {
	s := setupTestServer(t)

	req, err := http.NewRequest(http.MethodGet, "/api/books", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://reader.example")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
