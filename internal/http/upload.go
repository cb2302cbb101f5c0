package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/library"
)

// uploadField is the multipart field carrying the archive.
const uploadField = "book"

// UploadController accepts zip archives and ingests them into the library.
type UploadController struct {
	ingester *library.Ingester
	maxBytes int64
}

func NewUploadController(ingester *library.Ingester, maxBytes int64) *UploadController {
	return &UploadController{
		ingester: ingester,
		maxBytes: maxBytes,
	}
}

// UploadDetails describes a freshly ingested book.
type UploadDetails struct {
	BookID     string `json:"bookId"`
	Title      string `json:"title"`
	TotalPages int    `json:"totalPages"`
	CoverURL   string `json:"coverUrl"`
}

// Upload handles POST /api/books/upload
func (uc *UploadController) Upload(c *gin.Context) {
	if uc.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uc.maxBytes)
	}

	file, err := c.FormFile(uploadField)
	if c.Request.MultipartForm != nil {
		defer func() {
			if err := c.Request.MultipartForm.RemoveAll(); err != nil {
				log.Printf("Upload: failed to remove multipart temp files: %v", err)
			}
		}()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no file uploaded in field \"" + uploadField + "\"",
			Details: uploadHelp,
		})
		return
	}

	staged, err := uc.ingester.StagingPath()
	if err != nil {
		respondInternalError(c, err, "stage upload")
		return
	}
	if err := c.SaveUploadedFile(file, staged); err != nil {
		os.Remove(staged)
		respondInternalError(c, err, "save upload")
		return
	}

	book, err := uc.ingester.Ingest(c.Request.Context(), library.Upload{
		Path:     staged,
		Filename: file.Filename,
		Origin: audit.Origin{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		},
	})
	if err != nil {
		respondIngestError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Book uploaded successfully",
		Details: UploadDetails{
			BookID:     book.BookID,
			Title:      book.Title,
			TotalPages: book.TotalPages,
			CoverURL:   book.CoverPath,
		},
	})
}
