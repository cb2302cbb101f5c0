// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, pool limits, migrations
//	├── books/           # Book registration, lookup and deletion
//	├── progress/        # Per-book reading position
//	└── audit/           # Ingestion and deletion audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./data/library.db", database.DefaultPoolConfig())
//	defer db.Close()
//
//	// Create domain-specific repositories
//	booksRepo := books.NewRepository(db.DB, db.AcquireTimeout())
//	progressRepo := progress.NewRepository(db.DB, db.AcquireTimeout())
//
//	// Use repositories
//	book, err := booksRepo.GetByBookID(ctx, "onepiece")
//	page, err := progressRepo.Get(ctx, book.ID)
//
// # Timeouts
//
// The pool is opened once per process. Every repository call runs under
// its own deadline (PoolConfig.AcquireTimeout), so a request stuck waiting
// for a connection fails with context.DeadlineExceeded instead of hanging.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB, timeout time.Duration) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check in internal/interfaces/checks.go
package database
