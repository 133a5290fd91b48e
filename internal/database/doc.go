// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into resource-specific sub-packages:
//
//	database/
//	├── database.go      # Driver selection, pool sizing, migrations
//	├── schools/         # School CRUD and school_id uniqueness checks
//	├── subjects/        # Subject CRUD
//	├── publications/    # Publication CRUD and pubid uniqueness checks
//	├── booknames/       # Catalog titles joined with subject/publication names
//	├── books/           # Per-class price/quantity entries and price lookups
//	├── booklists/       # Booklists, booklist items, transactional commit, orphan sweep
//	└── audit/           # Audit event persistence
//
// # Using Sub-packages
//
//	db, err := database.Open(database.Options{Driver: "sqlite", Path: "./shelf.db"})
//
//	schoolsRepo := schools.NewRepository(db.DB)
//	booklistsRepo := booklists.NewRepository(db.DB)
//
//	school, err := schoolsRepo.GetBySchoolID("SCH1")
//	items, err := booklistsRepo.Items(school.ID, 2025)
//
// # Drivers
//
// SQLite is the default and is used by the tests. MySQL and PostgreSQL are
// selected with Options.Driver and require Options.DSN. The pool defaults to
// ten open connections; SQLite is pinned to a single connection.
//
// # Adding a New Resource
//
//  1. Create a new sub-package: internal/database/<resource>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the store interface declared by the HTTP controller
//  5. Register the entity in Open's AutoMigrate call
package database
