package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/comicshelf/internal/library"
)

type BooksController struct {
	library *library.Service
}

func NewBooksController(lib *library.Service) *BooksController {
	return &BooksController{
		library: lib,
	}
}

// GetAllBooks handles GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.library.ListBooks(c.Request.Context())
	if err != nil {
		respondLibraryError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetBook handles GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.library.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLibraryError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetPage handles GET /api/books/:id/pages/:page
// Responds with the image file for the page.
func (controller *BooksController) GetPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		respondBadRequest(c, "invalid page")
		return
	}

	path, err := controller.library.PagePath(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		respondLibraryError(c, err, "get page")
		return
	}
	c.File(path)
}
