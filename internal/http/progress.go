package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/comicshelf/internal/library"
)

// ProgressController reads and records the reading position of books.
type ProgressController struct {
	library *library.Service
}

func NewProgressController(lib *library.Service) *ProgressController {
	return &ProgressController{library: lib}
}

// UpdateProgressRequest is the request body for POST /api/progress/:id.
type UpdateProgressRequest struct {
	Page *int `json:"page" binding:"required"`
}

// GetProgress handles GET /api/progress/:id
func (pc *ProgressController) GetProgress(c *gin.Context) {
	page, err := pc.library.GetProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLibraryError(c, err, "get progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_page": page})
}

// UpdateProgress handles POST /api/progress/:id
func (pc *ProgressController) UpdateProgress(c *gin.Context) {
	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "page is required")
		return
	}

	if err := pc.library.SetProgress(c.Request.Context(), c.Param("id"), *req.Page); err != nil {
		respondLibraryError(c, err, "update progress")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
