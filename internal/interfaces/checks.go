package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/comicshelf/internal/audit"
	"github.com/mrlokans/comicshelf/internal/database/books"
	"github.com/mrlokans/comicshelf/internal/database/progress"
	"github.com/mrlokans/comicshelf/internal/library"
	"github.com/mrlokans/comicshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ library.BookRegistry = (*books.Repository)(nil)
var _ library.BookStore = (*books.Repository)(nil)
var _ library.OrphanIndex = (*books.Repository)(nil)
var _ library.ProgressStore = (*progress.Repository)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ library.IngestRecorder = (*audit.Service)(nil)
var _ library.DeleteRecorder = (*audit.Service)(nil)
var _ library.SweepRecorder = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ library.DirectoryPurger = (*tasks.Client)(nil)
var _ tasks.DirectoryRemover = (*library.Sweeper)(nil)
var _ library.DirectoryRemover = (*library.Sweeper)(nil)
var _ tasks.OrphanSweeper = (*library.Sweeper)(nil)
