package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/library"
)

type DeleteController struct {
	library *library.Service
}

func NewDeleteController(lib *library.Service) *DeleteController {
	return &DeleteController{library: lib}
}

// DeleteBook removes a book, its reading progress and its pages.
// The directory itself is purged in the background when a task queue is running.
// DELETE /api/books/:id
func (dc *DeleteController) DeleteBook(c *gin.Context) {
	origin := audit.Origin{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}

	book, err := dc.library.DeleteBook(c.Request.Context(), c.Param("id"), origin)
	if err != nil {
		respondLibraryError(c, err, "delete book")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Book deleted",
		Details: gin.H{"bookId": book.BookID, "title": book.Title},
	})
}
