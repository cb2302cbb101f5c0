package http

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/comicshelf/internal/database"
	"github.com/mrlokans/comicshelf/internal/library"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports whether the catalogue database answers and the
// library directory pages are served from is still present.
type HealthController struct {
	db      *database.Database
	library *library.Service
	version string
}

func NewHealthController(db *database.Database, lib *library.Service, version string) *HealthController {
	return &HealthController{db: db, library: lib, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{
		"database": h.checkDatabase(c),
		"library":  h.checkLibraryDir(),
	}

	status, code := "healthy", http.StatusOK
	for _, result := range checks {
		if result != "ok" && result != "not configured" {
			status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}

	c.IndentedJSON(code, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}

func (h *HealthController) checkDatabase(c *gin.Context) string {
	if h.db == nil {
		return "not configured"
	}
	if err := h.db.Ping(c.Request.Context()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *HealthController) checkLibraryDir() string {
	if h.library == nil {
		return "not configured"
	}
	root := h.library.Layout().Root
	info, err := os.Stat(root)
	if err != nil {
		return "error: " + err.Error()
	}
	if !info.IsDir() {
		return fmt.Sprintf("error: %s is not a directory", root)
	}
	return "ok"
}
