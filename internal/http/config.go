package http

import (
	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/database"
	"github.com/mrlokans/comicshelf/internal/library"
	"github.com/mrlokans/comicshelf/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Library  *library.Service
	Ingester *library.Ingester
	Database *database.Database

	// Audit trail (optional)
	AuditService *audit.Service

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Static reader UI served at /viewer (optional)
	ViewerPath string

	// Uploads larger than this are rejected; zero disables the limit
	MaxUploadBytes int64

	// Lockout for clients sending rejected uploads; MaxFailures zero disables it
	UploadLimits UploadLimitConfig

	// Origins allowed for cross-origin requests; "*" allows any
	AllowedOrigins []string

	// Retention passed to manually triggered audit cleanups
	AuditRetentionDays int

	// Application info
	Version string
}
