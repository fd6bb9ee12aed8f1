// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── books/           # Book listing, search, ordering and CRUD
//	├── relations/       # Per-user like/bookmark/rate state
//	├── users/           # User lookup and API token storage
//	└── audit/           # Audit event storage
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./bookstore.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	relationsRepo := relations.NewRepository(db.DB)
//
//	list, err := booksRepo.List(ctx, books.ListOptions{Search: "tolkien"})
//	rel, err := relationsRepo.Upsert(ctx, userID, bookID, patch)
//
// Every repository method takes a context.Context which is attached to the
// gorm session, so request cancellation reaches the driver.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add a compile-time interface check against the consumer's interface:
//     var _ http.BookStore = (*books.Repository)(nil) lives in the consumer
//  5. Register the entity in Migrate
package database
