package config

const (
	// DefaultDatabasePath is the default SQLite file of the main store.
	DefaultDatabasePath = "./shelf-manager.db"

	// DefaultCleanupSchedule runs the cleanup sweep nightly at 03:00.
	DefaultCleanupSchedule = "0 3 * * *"

	DefaultAPIBaseURL = "http://localhost:8188"
)
