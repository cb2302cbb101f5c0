package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/comicshelf/internal/library"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// uploadHelp describes a well-formed archive. It accompanies rejected uploads.
const uploadHelp = "The zip archive must contain config.json (with title and total_pages), " +
	"a cover image (cover.jpg, cover.jpeg or cover.png) and page images named 1.jpg, 2.jpg, ... " +
	"or 001(1).jpg, a(1).jpg"

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, action string) {
	log.Printf("Internal error (%s): %v", action, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
// Use the specific helpers (respondBadRequest, respondNotFound, etc.) when possible.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondUnavailable sends a 503 for contention that a retry can resolve.
func respondUnavailable(c *gin.Context, message string) {
	c.Header("Retry-After", "1")
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: message, Code: "busy"})
}

// respondLibraryError maps library errors onto HTTP responses.
func respondLibraryError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, library.ErrPageNotFound):
		respondNotFound(c, "page")
	case errors.Is(err, library.ErrNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, library.ErrInvalidPage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_page"})
	case errors.Is(err, library.ErrBookExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "book_exists"})
	case errors.Is(err, library.ErrBusy):
		respondUnavailable(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("Database busy (%s): %v", action, err)
		respondUnavailable(c, "database is busy, try again")
	default:
		respondInternalError(c, err, action)
	}
}

// respondIngestError maps an ingestion failure onto an HTTP response.
func respondIngestError(c *gin.Context, err error) {
	kind := library.IngestKindOf(err)
	switch kind {
	case library.KindInvalidIdentifier, library.KindExtractionFailed, library.KindValidation:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Code:    string(kind),
			Details: uploadHelp,
		})
	case library.KindBusy:
		respondUnavailable(c, err.Error())
	default:
		if errors.Is(err, library.ErrBookExists) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   err.Error(),
				Code:    "book_exists",
				Details: "Delete the existing book before uploading it again",
			})
			return
		}
		respondLibraryError(c, err, "ingest")
	}
}
