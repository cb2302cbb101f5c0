// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - BookRegistry: existence check and insert used by ingestion (internal/library/ingest.go)
//   - BookStore: listing, lookup and deletion of books (internal/library/service.go)
//   - ProgressStore: reading position per book (internal/library/service.go)
//   - OrphanIndex: registered directories for the orphan sweep (internal/library/sweep.go)
//
// ## Audit Interfaces
//
//   - IngestRecorder, DeleteRecorder, SweepRecorder: outcome recording (internal/library)
//   - AuditEventCleaner: retention cleanup (internal/tasks/handlers.go)
//
// ## Background Work Interfaces
//
//   - DirectoryPurger: deferred removal of a deleted book's pages (internal/library/service.go)
//   - library.DirectoryRemover: locked removal that spares re-registered identifiers (internal/library/sweep.go)
//   - DirectoryRemover, OrphanSweeper: what the task queues act on (internal/tasks/handlers.go)
//
// # Adding a Page Naming Convention
//
// Page filenames are matched against pages.Patterns in priority order. To accept
// a new convention, append a pattern whose single capture group is the page number:
//
//	newPattern("dash-suffix", `^[a-z]+-(\d+)`)
//
// The extension check is appended by newPattern. Earlier patterns keep priority.
//
// # Adding a Maintenance Job
//
//  1. Add a task type and queue in internal/tasks/ (Config, Processor, NewXQueue)
//  2. Register it in Client.RegisterLibraryQueues
//  3. Schedule it from maintenanceJobs in internal/entrypoint/entrypoint.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the checks of this module.
package interfaces
