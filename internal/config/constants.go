package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./bookstore.db"

	// DefaultEnvFile is loaded (if present) before reading the environment
	DefaultEnvFile = ".env"
)
